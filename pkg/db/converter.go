package db

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

//layouts used by the sqlite driver and by postgres text results
var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999 -0700 MST",
}

//ToTime converts a raw DB value into a UTC timestamp
func ToTime(value interface{}) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC(), nil
	case []byte:
		return parseTime(string(v))
	case string:
		return parseTime(v)
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("failed to convert value '%v' of type %T to time", value, value)
	}
}

func parseTime(value string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse '%s' as timestamp", value)
}

func ToString(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected a string but got '%v' of type %T", value, value)
	}
}

//ToInt64 accepts all integer types the drivers return
func ToInt64(value interface{}) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	default:
		return 0, fmt.Errorf("expected an integer but got '%v' of type %T", value, value)
	}
}

func ToFloat64(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case []byte:
		return strconv.ParseFloat(string(v), 64)
	default:
		return 0, fmt.Errorf("expected a float but got '%v' of type %T", value, value)
	}
}

//ToBool accepts booleans and their numeric or textual representation (sqlite has no boolean type)
func ToBool(value interface{}) (bool, error) {
	switch strings.ToLower(fmt.Sprintf("%v", value)) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("expected a boolean but got '%v' of type %T", value, value)
	}
}
