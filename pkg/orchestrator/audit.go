package orchestrator

import (
	"fmt"
	"strings"

	"github.com/dataspace-ops/emc/pkg/model"
)

//audit collects the outcome of one orchestrator call and appends it as single activity
type audit struct {
	o             *Orchestrator
	action        model.Action
	connectorID   string
	connectorName string
	user          string
	warnings      []string
}

func (o *Orchestrator) newAudit(action model.Action, connectorName, user string) *audit {
	return &audit{
		o:             o,
		action:        action,
		connectorName: connectorName,
		user:          user,
	}
}

func (a *audit) warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	a.o.logger.Warnf("%s: %s", a.action, msg)
	a.warnings = append(a.warnings, msg)
}

//finish never fails: a broken activity log must not mask the result of the operation
func (a *audit) finish(err error) {
	activity := &model.ActivityEntity{
		ConnectorID:   a.connectorID,
		ConnectorName: a.connectorName,
		Action:        a.action,
		CreatedBy:     a.user,
	}
	switch {
	case err != nil:
		activity.Status = model.ActivityStatusFailure
		activity.Details = err.Error()
	case len(a.warnings) > 0:
		activity.Status = model.ActivityStatusWarning
		activity.Details = strings.Join(a.warnings, "; ")
	default:
		activity.Status = model.ActivityStatusSuccess
		activity.Details = fmt.Sprintf("%s of connector '%s' succeeded", strings.ToLower(strings.TrimSuffix(string(a.action), "_CONNECTOR")), a.connectorName)
	}
	if _, errLog := a.o.inventory.AppendActivity(activity); errLog != nil {
		a.o.logger.Warnf("Failed to append activity '%s' for connector '%s': %s", a.action, a.connectorName, errLog)
	}
}
