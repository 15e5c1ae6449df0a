package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	//add Postgres driver:
	_ "github.com/lib/pq"
)

type postgresConnection struct {
	id         string
	db         *sql.DB
	encryptor  *Encryptor
	validator  *Validator
	logQueries bool
	logger     *zap.SugaredLogger
}

func newPostgresConnection(db *sql.DB, encryptionKey string, logQueries bool, blockQueries bool, logger *zap.SugaredLogger) (*postgresConnection, error) {
	encryptor, err := NewEncryptor(encryptionKey)
	if err != nil {
		return nil, err
	}

	return &postgresConnection{
		db:         db,
		id:         uuid.NewString(),
		encryptor:  encryptor,
		validator:  NewValidator(blockQueries, logger),
		logQueries: logQueries,
		logger:     logger,
	}, nil
}

func (pc *postgresConnection) ID() string {
	return pc.id
}

func (pc *postgresConnection) DB() *sql.DB {
	return pc.db
}

func (pc *postgresConnection) Encryptor() *Encryptor {
	return pc.encryptor
}

func (pc *postgresConnection) Ping() error {
	return pc.db.Ping()
}

func (pc *postgresConnection) debugf(msg string, args ...interface{}) {
	if pc.logQueries {
		pc.logger.Debugf(msg, args...)
	}
}

func (pc *postgresConnection) QueryRow(query string, args ...interface{}) (DataRow, error) {
	pc.debugf("Postgres QueryRow(): %s | %v", query, args)
	if err := pc.validator.Validate(query); err != nil {
		return nil, err
	}
	return pc.db.QueryRow(query, args...), nil
}

func (pc *postgresConnection) Query(query string, args ...interface{}) (DataRows, error) {
	pc.debugf("Postgres Query(): %s | %v", query, args)
	if err := pc.validator.Validate(query); err != nil {
		return nil, err
	}
	rows, err := pc.db.Query(query, args...)
	if err != nil {
		pc.logger.Errorf("Postgres Query() error: %s", err)
		return nil, err
	}
	return rows, nil
}

func (pc *postgresConnection) Exec(query string, args ...interface{}) (sql.Result, error) {
	pc.debugf("Postgres Exec(): %s | %v", query, args)
	if err := pc.validator.Validate(query); err != nil {
		return nil, err
	}
	result, err := pc.db.Exec(query, args...)
	if err != nil {
		pc.logger.Errorf("Postgres Exec() error: %s", err)
	}
	return result, err
}

func (pc *postgresConnection) Begin() (*TxConnection, error) {
	pc.debugf("Postgres Begin()")
	tx, err := pc.db.BeginTx(context.Background(), &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, err
	}
	return NewTxConnection(tx, pc, pc.validator, pc.logger), nil
}

func (pc *postgresConnection) Close() error {
	pc.debugf("Postgres Close()")
	return pc.db.Close()
}

func (pc *postgresConnection) Type() Type {
	return Postgres
}

type postgresConnectionFactory struct {
	host          string
	port          int
	database      string
	user          string
	password      string
	sslMode       bool
	encryptionKey string
	migrationsDir string
	blockQueries  bool
	logQueries    bool

	maxOpenConns    int
	maxIdleConns    int
	connMaxLifetime time.Duration
	connMaxIdleTime time.Duration

	logger *zap.SugaredLogger
}

func (pcf *postgresConnectionFactory) Init(migrate bool) error {
	if err := pcf.checkPostgresIsolationLevel(); err != nil {
		return err
	}
	if migrate {
		if err := pcf.migrateDatabase(); err != nil {
			return err
		}
	}
	return nil
}

func (pcf *postgresConnectionFactory) NewConnection() (Connection, error) {
	sslMode := "disable"
	if pcf.sslMode {
		sslMode = "require"
	}

	db, err := sql.Open(
		"postgres",
		fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			pcf.host, pcf.port, pcf.user, pcf.password, pcf.database, sslMode))
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(pcf.maxOpenConns)
	db.SetMaxIdleConns(pcf.maxIdleConns)
	db.SetConnMaxLifetime(pcf.connMaxLifetime)
	db.SetConnMaxIdleTime(pcf.connMaxIdleTime)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return newPostgresConnection(db, pcf.encryptionKey, pcf.logQueries, pcf.blockQueries, pcf.logger)
}

func (pcf *postgresConnectionFactory) checkPostgresIsolationLevel() error {
	dbConn, err := pcf.NewConnection()
	if err != nil {
		return errors.Wrap(err, "not able to open DB connection to verify DB isolation level")
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			pcf.logger.Warnf("Failed to close DB connection which was used to get Postgres isolation level: %s", err)
		}
	}()

	res, err := dbConn.Query("SHOW TRANSACTION ISOLATION LEVEL")
	if err != nil {
		return errors.Wrap(err, "failed to get isolation level from Postgres DB")
	}
	defer res.Close()

	var isoLevel string
	if !res.Next() {
		return errors.New("Postgres isolation level unknown")
	}
	if err := res.Scan(&isoLevel); err != nil {
		return errors.Wrap(err, "failed to bind Postgres result which includes isolation level")
	}
	if isoLevel == sql.LevelReadUncommitted.String() {
		//stop bootstrapping if isolation level is too low
		return fmt.Errorf("postgres isolation level has to be >= '%s' but was '%s'",
			sql.LevelReadCommitted.String(), isoLevel)
	}

	pcf.logger.Infof("Postgres isolation level is: %v", isoLevel)
	return nil
}

func (pcf *postgresConnectionFactory) migrateDatabase() error {
	dbConn, err := pcf.NewConnection()
	if err != nil {
		return errors.Wrap(err, "not able to open DB connection to perform migration")
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			pcf.logger.Warnf("Failed to close DB connection which was used to perform migration: %s", err)
		}
	}()
	driver, err := postgres.WithInstance(dbConn.DB(), &postgres.Config{})
	if err != nil {
		return errors.Wrap(err, "not able to instantiate postgres driver for migration")
	}
	return runMigrations(driver, "postgres", pcf.migrationsDir, pcf.logger, pcf.logQueries)
}
