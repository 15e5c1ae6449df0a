package test

import (
	"path/filepath"
	"testing"

	"github.com/dataspace-ops/emc/pkg/db"
	"github.com/dataspace-ops/emc/pkg/logger"
	"github.com/stretchr/testify/require"
)

//NewTestConnection returns a connection to a migrated sqlite database which lives in the test's temp dir
func NewTestConnection(t *testing.T) db.Connection {
	key, err := db.NewKey()
	require.NoError(t, err)

	connFac, err := db.NewConnectionFactory(db.Config{
		Driver:       string(db.SQLite),
		BlockQueries: true,
		Encryption:   db.EncryptionConfig{Key: key},
		Sqlite: db.SqliteConfig{
			File: filepath.Join(t.TempDir(), "emc.db"),
		},
	}, true, logger.NewOptionalLogger(true))
	require.NoError(t, err)

	conn, err := connFac.NewConnection()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}
