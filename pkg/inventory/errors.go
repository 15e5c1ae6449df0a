package inventory

import (
	"fmt"

	"github.com/pkg/errors"
)

//DuplicateNameError is returned when a connector name is already taken
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("connector with name '%s' already exists", e.Name)
}

func IsDuplicateNameError(err error) bool {
	var dupErr *DuplicateNameError
	return errors.As(err, &dupErr)
}
