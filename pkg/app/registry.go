package app

import (
	"github.com/dataspace-ops/emc/pkg/db"
	"github.com/dataspace-ops/emc/pkg/deployment"
	"github.com/dataspace-ops/emc/pkg/health"
	"github.com/dataspace-ops/emc/pkg/identity"
	"github.com/dataspace-ops/emc/pkg/inventory"
	"github.com/dataspace-ops/emc/pkg/manifest"
	"github.com/dataspace-ops/emc/pkg/metrics"
	"github.com/dataspace-ops/emc/pkg/orchestrator"
	"github.com/dataspace-ops/emc/pkg/reconciler"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

//ApplicationRegistry builds all components once from the configuration and hands them to commands and handlers
type ApplicationRegistry struct {
	cfg          *Config
	logger       *zap.SugaredLogger
	connection   db.Connection
	metrics      *metrics.Metrics
	inventory    *inventory.DefaultInventory
	driver       *deployment.HelmDriver
	checker      *health.Checker
	reconciler   *reconciler.Reconciler
	orchestrator *orchestrator.Orchestrator
}

//NewApplicationRegistry connects to the database (running the migrations if requested) and wires all components.
//The deployment tool is only required if withDriver is set: read-only commands work without a chart directory.
func NewApplicationRegistry(cfg *Config, logger *zap.SugaredLogger, migrate, withDriver bool) (*ApplicationRegistry, error) {
	registry := &ApplicationRegistry{
		cfg:    cfg,
		logger: logger,
	}
	if err := registry.init(migrate, withDriver); err != nil {
		_ = registry.Close()
		return nil, err
	}
	return registry, nil
}

func (r *ApplicationRegistry) init(migrate, withDriver bool) error {
	connFact, err := db.NewConnectionFactory(r.cfg.DB, migrate, r.logger)
	if err != nil {
		return errors.Wrap(err, "failed to create database connection factory")
	}
	if r.connection, err = connFact.NewConnection(); err != nil {
		return errors.Wrap(err, "failed to connect to database")
	}

	r.metrics = metrics.NewMetrics(r.connection, r.logger)
	r.inventory = inventory.NewInventory(r.connection, r.logger, r.metrics.ConnectorStatus)
	if err := r.seedMetrics(); err != nil {
		return err
	}

	r.checker = health.NewChecker(r.cfg.Health, r.logger)
	if r.reconciler, err = reconciler.NewReconciler(r.inventory, r.checker, r.cfg.Reconciler, r.logger); err != nil {
		return errors.Wrap(err, "failed to create reconciler")
	}

	if withDriver {
		if err := r.initOrchestrator(); err != nil {
			return err
		}
	}
	return nil
}

func (r *ApplicationRegistry) initOrchestrator() error {
	var err error
	r.driver, err = deployment.NewHelmDriver(r.cfg.Deployment, nil, r.logger)
	if err != nil {
		return errors.Wrap(err, "failed to create deployment driver")
	}
	r.driver.WithObserver(r.metrics.ToolDuration.Observe)

	deriver, err := identity.NewDeriver(r.cfg.Dataspace)
	if err != nil {
		return err
	}
	renderer, err := manifest.NewRenderer(r.cfg.ManifestConfig(), r.logger)
	if err != nil {
		return errors.Wrap(err, "failed to create manifest renderer")
	}
	r.orchestrator = orchestrator.NewOrchestrator(r.inventory, deriver, renderer, r.driver, orchestrator.Config{
		Chart:                r.cfg.chartName(),
		KeepInstallManifests: r.cfg.Deployment.KeepInstallManifests,
	}, r.logger)
	return nil
}

//seedMetrics publishes the status of the stored connectors before the first change happens
func (r *ApplicationRegistry) seedMetrics() error {
	connectors, err := r.inventory.GetAll()
	if err != nil {
		return err
	}
	for _, connector := range connectors {
		r.metrics.ConnectorStatus.OnConnectorUpdate(connector)
	}
	return nil
}

func (r *ApplicationRegistry) Close() error {
	if r.reconciler != nil {
		r.reconciler.Close()
	}
	if r.connection != nil {
		return r.connection.Close()
	}
	return nil
}

func (r *ApplicationRegistry) Config() *Config {
	return r.cfg
}

func (r *ApplicationRegistry) Logger() *zap.SugaredLogger {
	return r.logger
}

func (r *ApplicationRegistry) Connection() db.Connection {
	return r.connection
}

func (r *ApplicationRegistry) Metrics() *metrics.Metrics {
	return r.metrics
}

func (r *ApplicationRegistry) Inventory() inventory.Inventory {
	return r.inventory
}

func (r *ApplicationRegistry) Reconciler() *reconciler.Reconciler {
	return r.reconciler
}

//Driver is nil if the registry was created without deployment tool
func (r *ApplicationRegistry) Driver() deployment.Driver {
	if r.driver == nil {
		return nil
	}
	return r.driver
}

//Orchestrator is nil if the registry was created without deployment tool
func (r *ApplicationRegistry) Orchestrator() *orchestrator.Orchestrator {
	return r.orchestrator
}
