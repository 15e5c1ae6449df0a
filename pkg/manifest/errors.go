package manifest

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

//TemplateNotFoundError is returned for versions whose minor component has no template generation
type TemplateNotFoundError struct {
	Version    string
	Generation int64
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("no manifest template for version '%s' (generation %d)", e.Version, e.Generation)
}

func IsTemplateNotFoundError(err error) bool {
	var tplErr *TemplateNotFoundError
	return errors.As(err, &tplErr)
}

type InvalidVersionError struct {
	Version string
	err     error
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("version '%s' is not a MAJOR.MINOR.PATCH version: %s", e.Version, e.err)
}

func (e *InvalidVersionError) Unwrap() error {
	return e.err
}

func IsInvalidVersionError(err error) bool {
	var versionErr *InvalidVersionError
	return errors.As(err, &versionErr)
}

//InvalidIdentityError is returned if required identity values are missing
type InvalidIdentityError struct {
	Missing []string
}

func (e *InvalidIdentityError) Error() string {
	return fmt.Sprintf("derived identity is incomplete, missing: %s", strings.Join(e.Missing, ", "))
}

func IsInvalidIdentityError(err error) bool {
	var identityErr *InvalidIdentityError
	return errors.As(err, &identityErr)
}
