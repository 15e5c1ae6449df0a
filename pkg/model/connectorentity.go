package model

import (
	"fmt"
	"time"

	"github.com/dataspace-ops/emc/pkg/db"
)

const tblConnectors string = "connectors"

//ConnectorEntity is the persisted record of a deployed connector.
//Config holds the JSON encoded ConnectorSpec the deployment was rendered from.
type ConnectorEntity struct {
	ID         string `db:"notNull"`
	Name       string `db:"notNull"`
	URL        string `db:"notNull"`
	BPN        string
	Chart      string
	Version    string `db:"notNull"`
	Namespace  string `db:"notNull"`
	Status     ConnectorStatus
	Config     string
	CPHostname string
	DPHostname string
	RegistryID string
	SubmodelID string
	CreatedBy  string
	Created    time.Time
	Updated    time.Time
}

func (c *ConnectorEntity) String() string {
	return fmt.Sprintf("ConnectorEntity [ID=%s,Name=%s,Version=%s,Status=%s]",
		c.ID, c.Name, c.Version, c.Status)
}

func (c *ConnectorEntity) New() db.DatabaseEntity {
	return &ConnectorEntity{}
}

func (c *ConnectorEntity) Marshaller() *db.EntityMarshaller {
	marshaller := db.NewEntityMarshaller(c)
	marshaller.AddMarshaller("Status", convertToString)
	marshaller.AddUnmarshaller("Status", convertStringToConnectorStatus)
	marshaller.AddUnmarshaller("Created", convertTimestampToTime)
	marshaller.AddUnmarshaller("Updated", convertTimestampToTime)
	return marshaller
}

func (c *ConnectorEntity) Table() string {
	return tblConnectors
}

func (c *ConnectorEntity) Equal(other db.DatabaseEntity) bool {
	if other == nil {
		return false
	}
	otherConn, ok := other.(*ConnectorEntity)
	if ok {
		return c.ID == otherConn.ID &&
			c.Name == otherConn.Name &&
			c.Version == otherConn.Version &&
			c.Status == otherConn.Status
	}
	return false
}
