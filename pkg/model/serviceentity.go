package model

import (
	"fmt"
	"time"

	"github.com/dataspace-ops/emc/pkg/db"
)

const (
	tblRegistries string = "registries"
	tblSubmodels  string = "submodels"
)

//RegistryEntity is a digital twin registry attached to a connector. The URL is its natural key.
type RegistryEntity struct {
	ID          string `db:"notNull"`
	URL         string `db:"notNull"`
	Credentials string
	Created     time.Time
}

func (r *RegistryEntity) String() string {
	return fmt.Sprintf("RegistryEntity [ID=%s,URL=%s]", r.ID, r.URL)
}

func (r *RegistryEntity) New() db.DatabaseEntity {
	return &RegistryEntity{}
}

func (r *RegistryEntity) Marshaller() *db.EntityMarshaller {
	marshaller := db.NewEntityMarshaller(r)
	marshaller.AddUnmarshaller("Created", convertTimestampToTime)
	return marshaller
}

func (r *RegistryEntity) Table() string {
	return tblRegistries
}

func (r *RegistryEntity) Equal(other db.DatabaseEntity) bool {
	otherRegistry, ok := other.(*RegistryEntity)
	return ok && r.URL == otherRegistry.URL
}

//SubmodelEntity is a submodel server attached to a connector
type SubmodelEntity struct {
	ID          string `db:"notNull"`
	URL         string `db:"notNull"`
	Credentials string
	Created     time.Time
}

func (s *SubmodelEntity) String() string {
	return fmt.Sprintf("SubmodelEntity [ID=%s,URL=%s]", s.ID, s.URL)
}

func (s *SubmodelEntity) New() db.DatabaseEntity {
	return &SubmodelEntity{}
}

func (s *SubmodelEntity) Marshaller() *db.EntityMarshaller {
	marshaller := db.NewEntityMarshaller(s)
	marshaller.AddUnmarshaller("Created", convertTimestampToTime)
	return marshaller
}

func (s *SubmodelEntity) Table() string {
	return tblSubmodels
}

func (s *SubmodelEntity) Equal(other db.DatabaseEntity) bool {
	otherSubmodel, ok := other.(*SubmodelEntity)
	return ok && s.URL == otherSubmodel.URL
}
