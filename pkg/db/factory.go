package db

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/dataspace-ops/emc/pkg/files"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func NewConnectionFactory(cfg Config, migrate bool, logger *zap.SugaredLogger) (ConnectionFactory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid database configuration")
	}

	encKey, err := readEncryptionKey(cfg.Encryption)
	if err != nil {
		return nil, err
	}

	var connFact ConnectionFactory
	switch Type(cfg.Driver) {
	case Postgres:
		connFact = createPostgresConnectionFactory(cfg, encKey, logger)
	default:
		connFact, err = createSqliteConnectionFactory(cfg, encKey, logger)
		if err != nil {
			return nil, errors.Wrap(err, "error creating sqliteConnectionFactory")
		}
	}
	return connFact, connFact.Init(migrate)
}

func createSqliteConnectionFactory(cfg Config, encKey string, logger *zap.SugaredLogger) (*sqliteConnectionFactory, error) {
	//ensure directory structure of db-file exists
	dbFileDir := filepath.Dir(cfg.Sqlite.File)
	if !file.DirExists(dbFileDir) {
		if err := os.MkdirAll(dbFileDir, 0700); err != nil {
			return nil, err
		}
	}
	return &sqliteConnectionFactory{
		file:          cfg.Sqlite.File,
		reset:         cfg.Sqlite.ResetDatabase,
		encryptionKey: encKey,
		blockQueries:  cfg.BlockQueries,
		logQueries:    cfg.LogQueries,
		logger:        logger,
	}, nil
}

func createPostgresConnectionFactory(cfg Config, encKey string, logger *zap.SugaredLogger) *postgresConnectionFactory {
	pg := cfg.Postgres
	return &postgresConnectionFactory{
		host:            pg.Host,
		port:            pg.Port,
		database:        pg.Database,
		user:            pg.User,
		password:        pg.Password,
		sslMode:         pg.SslMode,
		encryptionKey:   encKey,
		migrationsDir:   pg.MigrationsDir,
		blockQueries:    cfg.BlockQueries,
		logQueries:      cfg.LogQueries,
		maxOpenConns:    pg.MaxOpenConns,
		maxIdleConns:    pg.MaxIdleConns,
		connMaxLifetime: pg.ConnMaxLifetime,
		connMaxIdleTime: pg.ConnMaxIdleTime,
		logger:          logger,
	}
}

func readEncryptionKey(cfg EncryptionConfig) (string, error) {
	if cfg.Key != "" {
		return cfg.Key, nil
	}
	return readKeyFile(cfg.KeyFile)
}

func readKeyFile(keyFile string) (string, error) {
	if !file.Exists(keyFile) {
		return "", errors.Errorf("encryption key file '%s' not found", keyFile)
	}
	key, err := ioutil.ReadFile(keyFile)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read encryption key file '%s'", keyFile)
	}
	return strings.TrimSpace(string(key)), nil
}
