package db

import (
	"embed"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	//add migrator source for external migration directories:
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

//go:embed migrations/*.sql
var migrations embed.FS

type migrateLogger struct {
	logger  *zap.SugaredLogger
	verbose bool
}

func newMigrateLogger(logger *zap.SugaredLogger, verbose bool) *migrateLogger {
	return &migrateLogger{
		logger:  logger,
		verbose: verbose,
	}
}

func (ml *migrateLogger) Printf(format string, v ...interface{}) {
	if ml.verbose {
		ml.logger.Debugf(format, v...)
	} else {
		ml.logger.Infof(format, v...)
	}
}

func (ml *migrateLogger) Verbose() bool {
	return ml.verbose
}

//runMigrations applies the embedded schema, or the migrations found in migrationsDir if one is given
func runMigrations(driver database.Driver, dbName, migrationsDir string, logger *zap.SugaredLogger, verbose bool) error {
	var m *migrate.Migrate
	var err error
	if migrationsDir == "" {
		source, srcErr := iofs.New(migrations, "migrations")
		if srcErr != nil {
			return errors.Wrap(srcErr, "not able to load embedded migrations")
		}
		m, err = migrate.NewWithInstance("iofs", source, dbName, driver)
	} else {
		m, err = migrate.NewWithDatabaseInstance("file://"+migrationsDir, dbName, driver)
	}
	if err != nil {
		return errors.Wrap(err, "not able to instantiate migrator with database instance")
	}
	m.Log = newMigrateLogger(logger, verbose)
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrapf(err, "not able to execute migrations")
	}
	logger.Infof("Database '%s' migrated", dbName)
	return nil
}
