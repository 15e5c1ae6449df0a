package repository

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dataspace-ops/emc/pkg/db"
	"github.com/pkg/errors"
)

func (r *Repository) NewNotFoundError(err error, entity db.DatabaseEntity, identifier map[string]interface{}) error {
	return &EntityNotFoundError{
		entity:     entity,
		identifier: identifier,
		err:        err,
	}
}

type EntityNotFoundError struct {
	entity     db.DatabaseEntity
	identifier map[string]interface{}
	err        error
}

func (e *EntityNotFoundError) Error() string {
	idents := make([]string, 0, len(e.identifier))
	for k, v := range e.identifier {
		idents = append(idents, fmt.Sprintf("%s=%v", k, v))
	}
	sort.Strings(idents)
	table := "entity"
	if e.entity != nil {
		table = e.entity.Table()
	}
	return fmt.Sprintf("%s with identifier '%s' not found", table, strings.Join(idents, ","))
}

func (e *EntityNotFoundError) Is(err error) bool {
	_, ok := err.(*EntityNotFoundError)
	return ok
}

func (e *EntityNotFoundError) Unwrap() error {
	return e.err
}

func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, &EntityNotFoundError{})
}
