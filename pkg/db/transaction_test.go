package db

import (
	"path/filepath"
	"testing"

	"github.com/dataspace-ops/emc/pkg/logger"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func newSqliteTestConnection(t *testing.T) Connection {
	key, err := NewKey()
	require.NoError(t, err)

	connFact, err := NewConnectionFactory(Config{
		Driver:       string(SQLite),
		BlockQueries: true,
		Encryption:   EncryptionConfig{Key: key},
		Sqlite:       SqliteConfig{File: filepath.Join(t.TempDir(), "emc.db")},
	}, true, logger.NewOptionalLogger(true))
	require.NoError(t, err)

	conn, err := connFact.NewConnection()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, conn.Close())
	})
	return conn
}

func countRegistries(t *testing.T, conn Connection) int {
	var cnt int
	require.NoError(t, conn.DB().QueryRow("SELECT COUNT(*) FROM registries").Scan(&cnt))
	return cnt
}

func TestTransaction(t *testing.T) {
	conn := newSqliteTestConnection(t)
	log := logger.NewOptionalLogger(true)
	insert := "INSERT INTO registries (id, url, credentials, created) VALUES ($1, $2, $3, $4) RETURNING id"

	t.Run("Commit", func(t *testing.T) {
		err := Transaction(conn, func(tx *TxConnection) error {
			row, err := tx.QueryRow(insert, "r1", "https://dtr-1", "", "2024-01-01 00:00:00+00:00")
			if err != nil {
				return err
			}
			var id string
			return row.Scan(&id)
		}, log)
		require.NoError(t, err)
		require.Equal(t, 1, countRegistries(t, conn))
	})

	t.Run("Rollback", func(t *testing.T) {
		err := Transaction(conn, func(tx *TxConnection) error {
			row, err := tx.QueryRow(insert, "r2", "https://dtr-2", "", "2024-01-01 00:00:00+00:00")
			if err != nil {
				return err
			}
			var id string
			if err := row.Scan(&id); err != nil {
				return err
			}
			return errors.New("abort")
		}, log)
		require.EqualError(t, err, "abort")
		require.Equal(t, 1, countRegistries(t, conn))
	})

	t.Run("Nested transaction joins outer transaction", func(t *testing.T) {
		err := Transaction(conn, func(tx *TxConnection) error {
			return Transaction(tx, func(inner *TxConnection) error {
				require.Same(t, tx, inner)
				return errors.New("inner failure")
			}, log)
		}, log)
		require.Error(t, err)
		require.Equal(t, 1, countRegistries(t, conn))
	})

	t.Run("Unique constraint violation", func(t *testing.T) {
		row, err := conn.QueryRow(insert, "r3", "https://dtr-1", "", "2024-01-01 00:00:00+00:00")
		require.NoError(t, err)
		var id string
		err = row.Scan(&id)
		require.Error(t, err)
		require.True(t, IsUniqueConstraintError(err))
		require.False(t, IsUniqueConstraintError(errors.New("other")))
	})
}
