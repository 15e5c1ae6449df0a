package repository_test

import (
	"database/sql"
	"testing"

	"github.com/dataspace-ops/emc/pkg/logger"
	"github.com/dataspace-ops/emc/pkg/model"
	"github.com/dataspace-ops/emc/pkg/repository"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestIsNotFoundErr(t *testing.T) {
	r := repository.NewRepository(nil, logger.NewOptionalLogger(true))

	t.Run("Wrapped not found error", func(t *testing.T) {
		err := errors.Wrap(errors.New("basic error"), "wrapping")
		err = r.NewNotFoundError(err, &model.ConnectorEntity{}, map[string]interface{}{"name": "acme"})
		err = errors.Wrap(err, "wrapping not found")

		require.True(t, repository.IsNotFoundError(err))
		require.Contains(t, err.Error(), "connectors with identifier 'name=acme' not found")
	})

	t.Run("Other error", func(t *testing.T) {
		err := errors.Wrap(errors.New("basic error"), "wrapping")
		require.False(t, repository.IsNotFoundError(err))
		require.False(t, repository.IsNotFoundError(nil))
	})

	t.Run("Map sql.ErrNoRows", func(t *testing.T) {
		err := r.MapNoRows(sql.ErrNoRows, &model.ConnectorEntity{}, map[string]interface{}{"id": "1"})
		require.True(t, repository.IsNotFoundError(err))

		other := errors.New("disk full")
		require.Equal(t, other, r.MapNoRows(other, &model.ConnectorEntity{}, nil))
	})
}
