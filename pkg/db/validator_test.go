package db

import (
	"testing"

	"github.com/dataspace-ops/emc/pkg/logger"
	"github.com/stretchr/testify/require"
)

func TestValidator(t *testing.T) {
	t.Run("Do not block invalid queries", func(t *testing.T) {
		validator := NewValidator(false, logger.NewOptionalLogger(true))
		require.NoError(t, validator.Validate("invalid query"))
	})

	t.Run("Block invalid queries", func(t *testing.T) {
		validator := NewValidator(true, logger.NewOptionalLogger(true))
		require.Error(t, validator.Validate("invalid query"))
	})

	validator := NewValidator(true, logger.NewOptionalLogger(true))

	valid := map[string]string{
		"insert":            "INSERT INTO connectors (id, name) VALUES ($1, $2) RETURNING id, name",
		"select":            "SELECT id, name FROM connectors WHERE name=$1",
		"select all":        "SELECT id, name FROM connectors ORDER BY created ASC, id ASC",
		"select with limit": "SELECT id, action FROM activity_logs ORDER BY created DESC LIMIT 20",
		"select in":         "SELECT id FROM registries WHERE id IN (SELECT registry_id FROM connectors WHERE id=$1)",
		"delete":            "DELETE FROM connectors WHERE id=$1",
		"update":            "UPDATE connectors SET name=$1, url=$2 WHERE id=$3 RETURNING id, name, url",
		"isolation level":   "SHOW TRANSACTION ISOLATION LEVEL",
	}
	for name, query := range valid {
		query := query
		t.Run("Accept "+name, func(t *testing.T) {
			require.NoError(t, validator.Validate(query))
		})
	}

	invalid := map[string]string{
		"insert with values": "INSERT INTO connectors (id, name) VALUES ('a', 'b') RETURNING id, name",
		"select with value":  "SELECT id FROM connectors WHERE name='x' OR 1=1",
		"stacked statement":  "DELETE FROM connectors WHERE id=$1; DROP TABLE connectors",
		"update with value":  "UPDATE connectors SET name='x' WHERE id=$1",
	}
	for name, query := range invalid {
		query := query
		t.Run("Reject "+name, func(t *testing.T) {
			require.Error(t, validator.Validate(query))
		})
	}
}
