package model

import (
	"fmt"
	"time"

	"github.com/dataspace-ops/emc/pkg/db"
)

const tblActivityLogs string = "activity_logs"

type ActivityEntity struct {
	ID            string `db:"notNull"`
	ConnectorID   string
	ConnectorName string
	Action        Action `db:"notNull"`
	Details       string
	Status        ActivityStatus `db:"notNull"`
	CreatedBy     string
	Created       time.Time
}

func (a *ActivityEntity) String() string {
	return fmt.Sprintf("ActivityEntity [Action=%s,Connector=%s,Status=%s]",
		a.Action, a.ConnectorName, a.Status)
}

func (a *ActivityEntity) New() db.DatabaseEntity {
	return &ActivityEntity{}
}

func (a *ActivityEntity) Marshaller() *db.EntityMarshaller {
	marshaller := db.NewEntityMarshaller(a)
	marshaller.AddMarshaller("Action", convertToString)
	marshaller.AddMarshaller("Status", convertToString)
	marshaller.AddUnmarshaller("Action", convertStringToAction)
	marshaller.AddUnmarshaller("Status", convertStringToActivityStatus)
	marshaller.AddUnmarshaller("Created", convertTimestampToTime)
	return marshaller
}

func (a *ActivityEntity) Table() string {
	return tblActivityLogs
}

func (a *ActivityEntity) Equal(other db.DatabaseEntity) bool {
	otherActivity, ok := other.(*ActivityEntity)
	return ok && a.ID == otherActivity.ID
}
