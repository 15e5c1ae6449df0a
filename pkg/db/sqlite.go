package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	//add SQlite driver:
	_ "github.com/mattn/go-sqlite3"
)

const sqliteBusyTimeoutMs = 5000

type sqliteConnection struct {
	id         string
	db         *sql.DB
	encryptor  *Encryptor
	validator  *Validator
	logQueries bool
	logger     *zap.SugaredLogger
}

func newSqliteConnection(db *sql.DB, encKey string, logQueries bool, blockQueries bool, logger *zap.SugaredLogger) (*sqliteConnection, error) {
	encryptor, err := NewEncryptor(encKey)
	if err != nil {
		return nil, err
	}

	return &sqliteConnection{
		id:         uuid.NewString(),
		db:         db,
		encryptor:  encryptor,
		validator:  NewValidator(blockQueries, logger),
		logQueries: logQueries,
		logger:     logger,
	}, nil
}

func (sc *sqliteConnection) ID() string {
	return sc.id
}

func (sc *sqliteConnection) DB() *sql.DB {
	return sc.db
}

func (sc *sqliteConnection) Encryptor() *Encryptor {
	return sc.encryptor
}

func (sc *sqliteConnection) Ping() error {
	return sc.db.Ping()
}

func (sc *sqliteConnection) debugf(msg string, args ...interface{}) {
	if sc.logQueries {
		sc.logger.Debugf(msg, args...)
	}
}

func (sc *sqliteConnection) QueryRow(query string, args ...interface{}) (DataRow, error) {
	sc.debugf("Sqlite3 QueryRow(): %s | %v", query, args)
	if err := sc.validator.Validate(query); err != nil {
		return nil, err
	}
	return sc.db.QueryRow(query, args...), nil
}

func (sc *sqliteConnection) Query(query string, args ...interface{}) (DataRows, error) {
	sc.debugf("Sqlite3 Query(): %s | %v", query, args)
	if err := sc.validator.Validate(query); err != nil {
		return nil, err
	}
	rows, err := sc.db.Query(query, args...)
	if err != nil {
		sc.logger.Errorf("Sqlite3 Query() error: %s", err)
		return nil, err
	}
	return rows, nil
}

func (sc *sqliteConnection) Exec(query string, args ...interface{}) (sql.Result, error) {
	sc.debugf("Sqlite3 Exec(): %s | %v", query, args)
	if err := sc.validator.Validate(query); err != nil {
		return nil, err
	}
	result, err := sc.db.Exec(query, args...)
	if err != nil {
		sc.logger.Errorf("Sqlite3 Exec() error: %s", err)
	}
	return result, err
}

func (sc *sqliteConnection) Begin() (*TxConnection, error) {
	sc.debugf("Sqlite3 Begin()")
	tx, err := sc.db.BeginTx(context.Background(), &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	return NewTxConnection(tx, sc, sc.validator, sc.logger), nil
}

func (sc *sqliteConnection) Close() error {
	sc.debugf("Sqlite3 Close()")
	return sc.db.Close()
}

func (sc *sqliteConnection) Type() Type {
	return SQLite
}

type sqliteConnectionFactory struct {
	file          string
	reset         bool
	encryptionKey string
	blockQueries  bool
	logQueries    bool
	logger        *zap.SugaredLogger
}

func (scf *sqliteConnectionFactory) Init(migrate bool) error {
	if scf.reset {
		if err := scf.resetFile(); err != nil {
			return err
		}
	}
	if !migrate {
		return nil
	}

	db, err := scf.open()
	if err != nil {
		return errors.Wrap(err, "not able to open DB connection to perform migration")
	}
	defer func() {
		if err := db.Close(); err != nil {
			scf.logger.Warnf("Failed to close DB connection which was used to perform migration: %s", err)
		}
	}()
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return errors.Wrap(err, "not able to instantiate sqlite driver for migration")
	}
	return runMigrations(driver, "sqlite3", "", scf.logger, scf.logQueries)
}

func (scf *sqliteConnectionFactory) open() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_busy_timeout=%d", scf.file, sqliteBusyTimeoutMs))
	if err != nil {
		return nil, err
	}
	//sqlite allows only one writer: serialise access through a single connection
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

func (scf *sqliteConnectionFactory) NewConnection() (Connection, error) {
	db, err := scf.open()
	if err != nil {
		return nil, err
	}
	return newSqliteConnection(db, scf.encryptionKey, scf.logQueries, scf.blockQueries, scf.logger)
}

func (scf *sqliteConnectionFactory) resetFile() error {
	if err := os.Remove(scf.file); err != nil && !os.IsNotExist(err) {
		//errors are ok if file was missing, but other errors are not expected
		return err
	}
	file, err := os.Create(scf.file)
	if err != nil {
		return err
	}
	return file.Close()
}
