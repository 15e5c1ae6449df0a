package model

import (
	"fmt"

	"github.com/dataspace-ops/emc/pkg/db"
)

func convertTimestampToTime(value interface{}) (interface{}, error) {
	return db.ToTime(value)
}

func stringValue(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("failed to convert value '%v' (type: %T) to string", value, value)
	}
}

func convertStringToConnectorStatus(value interface{}) (interface{}, error) {
	status, err := stringValue(value)
	if err != nil {
		return nil, err
	}
	return NewConnectorStatus(status)
}

func convertStringToActivityStatus(value interface{}) (interface{}, error) {
	status, err := stringValue(value)
	if err != nil {
		return nil, err
	}
	return NewActivityStatus(status)
}

func convertStringToAction(value interface{}) (interface{}, error) {
	action, err := stringValue(value)
	if err != nil {
		return nil, err
	}
	return Action(action), nil
}

func convertToString(value interface{}) (interface{}, error) {
	return fmt.Sprintf("%s", value), nil
}
