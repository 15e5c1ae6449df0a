package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dataspace-ops/emc/pkg/deployment"
	"github.com/dataspace-ops/emc/pkg/identity"
	"github.com/dataspace-ops/emc/pkg/inventory"
	"github.com/dataspace-ops/emc/pkg/manifest"
	"github.com/dataspace-ops/emc/pkg/model"
	"github.com/dataspace-ops/emc/pkg/repository"
	"github.com/imdario/mergo"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Config struct {
	//Chart is stored with every connector record
	Chart                string
	KeepInstallManifests bool
}

//Orchestrator runs the connector lifecycle: render manifest, drive the deployment tool, persist the record.
//Every state changing call appends exactly one activity, also if it fails.
type Orchestrator struct {
	inventory inventory.Inventory
	deriver   *identity.Deriver
	renderer  *manifest.Renderer
	driver    deployment.Driver
	cfg       Config
	locks     *keyLock
	logger    *zap.SugaredLogger
}

func NewOrchestrator(
	inv inventory.Inventory,
	deriver *identity.Deriver,
	renderer *manifest.Renderer,
	driver deployment.Driver,
	cfg Config,
	logger *zap.SugaredLogger) *Orchestrator {

	return &Orchestrator{
		inventory: inv,
		deriver:   deriver,
		renderer:  renderer,
		driver:    driver,
		cfg:       cfg,
		locks:     newKeyLock(),
		logger:    logger,
	}
}

//RenderManifest writes the manifest of a connector into the work directory without deploying it
func (o *Orchestrator) RenderManifest(spec *model.ConnectorSpec) (string, error) {
	id, err := o.derive(spec)
	if err != nil {
		return "", err
	}
	return o.renderer.Render(spec, id, manifest.FlagsFor(spec))
}

//PreviewManifest returns the manifest of a connector without writing or deploying it
func (o *Orchestrator) PreviewManifest(spec *model.ConnectorSpec) ([]byte, error) {
	id, err := o.derive(spec)
	if err != nil {
		return nil, err
	}
	data, _, err := o.renderer.Marshal(spec, id, manifest.FlagsFor(spec))
	return data, err
}

func (o *Orchestrator) derive(spec *model.ConnectorSpec) (*identity.Identity, error) {
	spec.ApplyDefaults()
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return o.deriver.Derive(spec)
}

func (o *Orchestrator) Create(ctx context.Context, spec *model.ConnectorSpec, user string) (*model.ConnectorEntity, error) {
	audit := o.newAudit(model.ActionCreateConnector, spec.Name, user)
	connector, err := o.create(ctx, spec, user, audit)
	if connector != nil {
		audit.connectorID = connector.ID
	}
	audit.finish(err)
	return connector, err
}

func (o *Orchestrator) create(ctx context.Context, spec *model.ConnectorSpec, user string, audit *audit) (*model.ConnectorEntity, error) {
	spec.ApplyDefaults()
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	unlock := o.locks.Lock(spec.Name)
	defer unlock()

	if _, err := o.inventory.GetByName(spec.Name); err == nil {
		return nil, &inventory.DuplicateNameError{Name: spec.Name}
	} else if !repository.IsNotFoundError(err) {
		return nil, err
	}

	id, err := o.deriver.Derive(spec)
	if err != nil {
		return nil, err
	}
	fileName, err := o.renderer.Render(spec, id, manifest.FlagsFor(spec))
	if err != nil {
		return nil, err
	}

	namespace := o.driver.Namespace()
	if _, err := o.driver.Install(ctx, spec.Name, []string{o.renderer.Path(fileName)}, namespace); err != nil {
		if !deployment.IsAlreadyExists(err) {
			return nil, err
		}
		audit.warn("release '%s' was already installed: record created for the existing release", spec.Name)
	}

	config, err := json.Marshal(spec)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode connector configuration")
	}
	connector, err := o.inventory.Create(&model.ConnectorEntity{
		Name:       spec.Name,
		URL:        spec.URL,
		BPN:        spec.BPN,
		Chart:      o.cfg.Chart,
		Version:    spec.Version,
		Namespace:  namespace,
		Config:     string(config),
		CPHostname: id.ControlPlaneHost,
		DPHostname: id.DataPlaneHost,
		CreatedBy:  user,
	}, enabled(spec.Registry), enabled(spec.Submodel))
	if err != nil {
		return nil, err
	}

	if !o.cfg.KeepInstallManifests {
		if err := o.renderer.Remove(fileName); err != nil {
			o.logger.Warnf("Failed to remove install manifest '%s': %s", fileName, err)
		}
	}
	o.logger.Infof("Connector '%s' (version %s) created by '%s'", connector.Name, connector.Version, user)
	return connector, nil
}

//Upgrade re-renders the manifest from the stored configuration overlaid with the given spec.
//Empty fields of the spec keep their stored values. The name cannot change.
func (o *Orchestrator) Upgrade(ctx context.Context, id string, spec *model.ConnectorSpec, user string) (*model.ConnectorEntity, error) {
	audit := o.newAudit(model.ActionUpgradeConnector, spec.Name, user)
	audit.connectorID = id
	connector, err := o.upgrade(ctx, id, spec, audit)
	audit.finish(err)
	return connector, err
}

func (o *Orchestrator) upgrade(ctx context.Context, id string, patch *model.ConnectorSpec, audit *audit) (*model.ConnectorEntity, error) {
	existing, err := o.inventory.Get(id)
	if err != nil {
		return nil, err
	}
	audit.connectorName = existing.Name

	unlock := o.locks.Lock(existing.Name)
	defer unlock()

	stored, err := decodeSpec(existing.Config)
	if err != nil {
		return nil, err
	}
	spec := *patch.DeepCopy()
	if spec.Name != "" && spec.Name != existing.Name {
		return nil, &model.InvalidSpecError{Problems: []string{
			fmt.Sprintf("name cannot be changed from '%s' to '%s'", existing.Name, spec.Name),
		}}
	}
	if err := mergo.Merge(&spec, stored); err != nil {
		return nil, errors.Wrap(err, "failed to merge stored connector configuration")
	}
	//merging fills empty fields only: a service without URL switches it off explicitly
	if patch.RegistryDisabled() {
		spec.Registry = nil
	}
	if patch.SubmodelDisabled() {
		spec.Submodel = nil
	}
	spec.Name = existing.Name
	spec.ApplyDefaults()
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	derived, err := o.deriver.Derive(&spec)
	if err != nil {
		return nil, err
	}
	if existing.CPHostname != "" {
		derived.ControlPlaneHost = existing.CPHostname
	}
	if existing.DPHostname != "" {
		derived.DataPlaneHost = existing.DPHostname
	}

	fileName, err := o.renderer.Render(&spec, derived, manifest.FlagsFor(&spec))
	if err != nil {
		return nil, err
	}
	if _, err := o.driver.Upgrade(ctx, existing.Name, []string{o.renderer.Path(fileName)}, existing.Namespace); err != nil {
		return nil, err
	}

	config, err := json.Marshal(&spec)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode connector configuration")
	}
	status := model.ConnectorStatusDeploying
	configStr := string(config)
	update := &inventory.ConnectorUpdate{
		URL:        &spec.URL,
		BPN:        &spec.BPN,
		Version:    &spec.Version,
		Config:     &configStr,
		Status:     &status,
		CPHostname: &derived.ControlPlaneHost,
		DPHostname: &derived.DataPlaneHost,
	}
	noService := ""
	if registry := enabled(spec.Registry); registry != nil {
		entity, err := o.inventory.SaveRegistry(registry)
		if err != nil {
			return nil, err
		}
		update.RegistryID = &entity.ID
	} else {
		update.RegistryID = &noService
	}
	if submodel := enabled(spec.Submodel); submodel != nil {
		entity, err := o.inventory.SaveSubmodel(submodel)
		if err != nil {
			return nil, err
		}
		update.SubmodelID = &entity.ID
	} else {
		update.SubmodelID = &noService
	}
	connector, err := o.inventory.Update(id, update)
	if err != nil {
		return nil, err
	}
	o.logger.Infof("Connector '%s' upgraded from version %s to %s", connector.Name, existing.Version, connector.Version)
	return connector, nil
}

//Delete uninstalls the release and removes the record. An unknown id returns false.
func (o *Orchestrator) Delete(ctx context.Context, id string, user string) (bool, error) {
	audit := o.newAudit(model.ActionDeleteConnector, "", user)
	audit.connectorID = id
	deleted, err := o.delete(ctx, id, audit)
	audit.finish(err)
	return deleted, err
}

func (o *Orchestrator) delete(ctx context.Context, id string, audit *audit) (bool, error) {
	existing, err := o.inventory.Get(id)
	if err != nil {
		if repository.IsNotFoundError(err) {
			audit.warn("connector '%s' does not exist", id)
			return false, nil
		}
		return false, err
	}
	audit.connectorName = existing.Name

	unlock := o.locks.Lock(existing.Name)
	defer unlock()

	if _, err := o.driver.Uninstall(ctx, existing.Name, existing.Namespace); err != nil {
		if !deployment.IsNotFound(err) {
			return false, err
		}
		audit.warn("release '%s' was not installed: only the record was removed", existing.Name)
	}
	deleted, err := o.inventory.Delete(id)
	if err != nil {
		return false, err
	}
	o.logger.Infof("Connector '%s' deleted", existing.Name)
	return deleted, nil
}

//UpdateRecord changes the stored record only. Nothing is deployed.
func (o *Orchestrator) UpdateRecord(id string, update *inventory.ConnectorUpdate, user string) (*model.ConnectorEntity, error) {
	audit := o.newAudit(model.ActionUpdateConnector, "", user)
	audit.connectorID = id
	connector, err := o.inventory.Update(id, update)
	if connector != nil {
		audit.connectorName = connector.Name
	}
	audit.finish(err)
	return connector, err
}

func decodeSpec(config string) (*model.ConnectorSpec, error) {
	spec := &model.ConnectorSpec{}
	if config == "" {
		return spec, nil
	}
	raw := map[string]interface{}{}
	if err := json.Unmarshal([]byte(config), &raw); err != nil {
		return nil, errors.Wrap(err, "stored connector configuration is not valid JSON")
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           spec,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, errors.Wrap(err, "failed to decode stored connector configuration")
	}
	return spec, nil
}

func enabled(descriptor *model.ServiceDescriptor) *model.ServiceDescriptor {
	if descriptor == nil || descriptor.URL == "" {
		return nil
	}
	return descriptor
}
