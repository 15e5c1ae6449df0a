package model

import (
	"fmt"
	"strings"
)

type ConnectorStatus string

const (
	ConnectorStatusUnknown   ConnectorStatus = "unknown"
	ConnectorStatusDeploying ConnectorStatus = "deploying"
	ConnectorStatusHealthy   ConnectorStatus = "healthy"
	ConnectorStatusUnhealthy ConnectorStatus = "unhealthy"
)

func NewConnectorStatus(status string) (ConnectorStatus, error) {
	switch ConnectorStatus(strings.ToLower(status)) {
	case ConnectorStatusUnknown:
		return ConnectorStatusUnknown, nil
	case ConnectorStatusDeploying:
		return ConnectorStatusDeploying, nil
	case ConnectorStatusHealthy:
		return ConnectorStatusHealthy, nil
	case ConnectorStatusUnhealthy:
		return ConnectorStatusUnhealthy, nil
	default:
		return "", fmt.Errorf("connector status '%s' does not exist", status)
	}
}

type ActivityStatus string

const (
	ActivityStatusSuccess ActivityStatus = "success"
	ActivityStatusWarning ActivityStatus = "warning"
	ActivityStatusFailure ActivityStatus = "failure"
)

func NewActivityStatus(status string) (ActivityStatus, error) {
	switch ActivityStatus(strings.ToLower(status)) {
	case ActivityStatusSuccess:
		return ActivityStatusSuccess, nil
	case ActivityStatusWarning:
		return ActivityStatusWarning, nil
	case ActivityStatusFailure:
		return ActivityStatusFailure, nil
	default:
		return "", fmt.Errorf("activity status '%s' does not exist", status)
	}
}

type Action string

const (
	ActionCreateConnector  Action = "CREATE_CONNECTOR"
	ActionUpgradeConnector Action = "UPGRADE_CONNECTOR"
	ActionUpdateConnector  Action = "UPDATE_CONNECTOR"
	ActionDeleteConnector  Action = "DELETE_CONNECTOR"
)
