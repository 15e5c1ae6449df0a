package reconciler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dataspace-ops/emc/pkg/health"
	"github.com/dataspace-ops/emc/pkg/inventory"
	"github.com/dataspace-ops/emc/pkg/model"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	defaultPoolSize = 10

	ResourceRegistry = "registry"
	ResourceSubmodel = "submodel"
)

var defaultEndpoints = map[string]string{
	"assets":    "/management/v3/assets",
	"policies":  "/management/v3/policydefinitions",
	"contracts": "/management/v3/contractdefinitions",
}

type Config struct {
	PoolSize int `mapstructure:"poolSize"`
	//Endpoints are appended to https://<control plane host> to build the resource URLs of a connector
	Endpoints map[string]string `mapstructure:"endpoints"`
}

func (c *Config) validate() error {
	if c.PoolSize < 0 {
		return fmt.Errorf("pool size cannot be < 0 (was %d)", c.PoolSize)
	}
	if c.PoolSize == 0 {
		c.PoolSize = defaultPoolSize
	}
	if len(c.Endpoints) == 0 {
		c.Endpoints = defaultEndpoints
	}
	return nil
}

type HealthChecker interface {
	Check(ctx context.Context, url string) *health.Result
}

//ConnectorView is a connector record enriched with its current health and resource URLs
type ConnectorView struct {
	ID        string                `json:"id" yaml:"id"`
	Name      string                `json:"name" yaml:"name"`
	URL       string                `json:"url" yaml:"url"`
	BPN       string                `json:"bpn" yaml:"bpn"`
	Version   string                `json:"version" yaml:"version"`
	Namespace string                `json:"namespace" yaml:"namespace"`
	Status    model.ConnectorStatus `json:"status" yaml:"status"`
	Health    *health.Result        `json:"health" yaml:"health"`
	Resources map[string]string     `json:"resources" yaml:"resources"`
	CreatedBy string                `json:"createdBy" yaml:"createdBy"`
	Created   time.Time             `json:"created" yaml:"created"`
	Updated   time.Time             `json:"updated" yaml:"updated"`
}

type Reconciler struct {
	inventory inventory.Inventory
	checker   HealthChecker
	cfg       Config
	pool      *ants.Pool
	logger    *zap.SugaredLogger
}

func NewReconciler(inv inventory.Inventory, checker HealthChecker, cfg Config, logger *zap.SugaredLogger) (*Reconciler, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	pool, err := ants.NewPool(cfg.PoolSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create probe worker pool")
	}
	return &Reconciler{
		inventory: inv,
		checker:   checker,
		cfg:       cfg,
		pool:      pool,
		logger:    logger,
	}, nil
}

func (r *Reconciler) Close() {
	r.pool.Release()
}

func (r *Reconciler) HealthCheck(ctx context.Context, url string) *health.Result {
	return r.checker.Check(ctx, url)
}

//ReconcileList probes all connectors and persists their health status.
//The result keeps the order of the store and contains every record, also unreachable ones.
func (r *Reconciler) ReconcileList(ctx context.Context) ([]*ConnectorView, error) {
	connectors, err := r.inventory.GetAll()
	if err != nil {
		return nil, err
	}
	views := make([]*ConnectorView, len(connectors))

	var wg sync.WaitGroup
	for idx := range connectors {
		idx := idx
		wg.Add(1)
		task := func() {
			defer wg.Done()
			views[idx] = r.reconcile(ctx, connectors[idx])
		}
		if err := r.pool.Submit(task); err != nil {
			r.logger.Warnf("Worker pool rejected probe of connector '%s', probing inline: %s", connectors[idx].Name, err)
			task()
		}
	}
	wg.Wait()

	return views, nil
}

func (r *Reconciler) Reconcile(ctx context.Context, id string) (*ConnectorView, error) {
	connector, err := r.inventory.Get(id)
	if err != nil {
		return nil, err
	}
	return r.reconcile(ctx, connector), nil
}

func (r *Reconciler) reconcile(ctx context.Context, connector *model.ConnectorEntity) *ConnectorView {
	result := r.checker.Check(ctx, connector.URL)

	status := model.ConnectorStatusUnhealthy
	if result.Healthy {
		status = model.ConnectorStatusHealthy
	}
	if status != connector.Status {
		if _, err := r.inventory.Update(connector.ID, &inventory.ConnectorUpdate{Status: &status}); err != nil {
			r.logger.Warnf("Failed to persist status '%s' of connector '%s': %s", status, connector.Name, err)
		} else {
			r.logger.Debugf("Status of connector '%s' changed from '%s' to '%s'", connector.Name, connector.Status, status)
		}
	}

	return &ConnectorView{
		ID:        connector.ID,
		Name:      connector.Name,
		URL:       connector.URL,
		BPN:       connector.BPN,
		Version:   connector.Version,
		Namespace: connector.Namespace,
		Status:    status,
		Health:    result,
		Resources: r.resources(connector),
		CreatedBy: connector.CreatedBy,
		Created:   connector.Created,
		Updated:   connector.Updated,
	}
}

func (r *Reconciler) resources(connector *model.ConnectorEntity) map[string]string {
	resources := map[string]string{}
	if connector.CPHostname != "" {
		for name, endpoint := range r.cfg.Endpoints {
			resources[name] = fmt.Sprintf("https://%s/%s", connector.CPHostname, strings.TrimLeft(endpoint, "/"))
		}
	}
	if connector.RegistryID != "" {
		registry, err := r.inventory.Registry(connector.RegistryID)
		if err != nil {
			r.logger.Warnf("Failed to resolve registry of connector '%s': %s", connector.Name, err)
		} else {
			resources[ResourceRegistry] = registry.URL
		}
	}
	if connector.SubmodelID != "" {
		submodel, err := r.inventory.Submodel(connector.SubmodelID)
		if err != nil {
			r.logger.Warnf("Failed to resolve submodel server of connector '%s': %s", connector.Name, err)
		} else {
			resources[ResourceSubmodel] = submodel.URL
		}
	}
	return resources
}
