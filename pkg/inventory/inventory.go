package inventory

import (
	"time"

	"github.com/dataspace-ops/emc/pkg/db"
	"github.com/dataspace-ops/emc/pkg/model"
	"github.com/dataspace-ops/emc/pkg/repository"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const defaultActivityLimit = 20

type Inventory interface {
	Create(connector *model.ConnectorEntity, registry, submodel *model.ServiceDescriptor) (*model.ConnectorEntity, error)
	Get(id string) (*model.ConnectorEntity, error)
	GetByName(name string) (*model.ConnectorEntity, error)
	GetAll() ([]*model.ConnectorEntity, error)
	Update(id string, update *ConnectorUpdate) (*model.ConnectorEntity, error)
	Delete(id string) (bool, error)
	SaveRegistry(descriptor *model.ServiceDescriptor) (*model.RegistryEntity, error)
	Registry(id string) (*model.RegistryEntity, error)
	SaveSubmodel(descriptor *model.ServiceDescriptor) (*model.SubmodelEntity, error)
	Submodel(id string) (*model.SubmodelEntity, error)
	AppendActivity(activity *model.ActivityEntity) (*model.ActivityEntity, error)
	RecentActivity(limit int) ([]*model.ActivityEntity, error)
}

//ConnectorUpdate carries a partial update: nil fields stay untouched
type ConnectorUpdate struct {
	URL        *string
	BPN        *string
	Chart      *string
	Version    *string
	Namespace  *string
	Status     *model.ConnectorStatus
	Config     *string
	CPHostname *string
	DPHostname *string
	RegistryID *string
	SubmodelID *string
}

func (u *ConnectorUpdate) apply(entity *model.ConnectorEntity) {
	setString := func(target *string, value *string) {
		if value != nil {
			*target = *value
		}
	}
	setString(&entity.URL, u.URL)
	setString(&entity.BPN, u.BPN)
	setString(&entity.Chart, u.Chart)
	setString(&entity.Version, u.Version)
	setString(&entity.Namespace, u.Namespace)
	setString(&entity.Config, u.Config)
	setString(&entity.CPHostname, u.CPHostname)
	setString(&entity.DPHostname, u.DPHostname)
	setString(&entity.RegistryID, u.RegistryID)
	setString(&entity.SubmodelID, u.SubmodelID)
	if u.Status != nil {
		entity.Status = *u.Status
	}
}

type statusCollector interface {
	OnConnectorUpdate(connector *model.ConnectorEntity)
	OnConnectorDelete(connector *model.ConnectorEntity)
}

type DefaultInventory struct {
	*repository.Repository
	collector     statusCollector
	now           func() time.Time
	activityClock *activityClock
}

func NewInventory(conn db.Connection, logger *zap.SugaredLogger, collector statusCollector) *DefaultInventory {
	return &DefaultInventory{
		Repository:    repository.NewRepository(conn, logger),
		collector:     collector,
		activityClock: &activityClock{},
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (i *DefaultInventory) Create(connector *model.ConnectorEntity, registry, submodel *model.ServiceDescriptor) (*model.ConnectorEntity, error) {
	dbOps := func(tx *db.TxConnection) (interface{}, error) {
		if _, err := i.getConnector(tx, map[string]interface{}{"Name": connector.Name}); err == nil {
			return nil, &DuplicateNameError{Name: connector.Name}
		} else if !repository.IsNotFoundError(err) {
			return nil, err
		}

		entity := *connector
		if registry != nil && registry.URL != "" {
			registryEntity, err := i.saveRegistry(tx, registry)
			if err != nil {
				return nil, err
			}
			entity.RegistryID = registryEntity.ID
		}
		if submodel != nil && submodel.URL != "" {
			submodelEntity, err := i.saveSubmodel(tx, submodel)
			if err != nil {
				return nil, err
			}
			entity.SubmodelID = submodelEntity.ID
		}

		if entity.ID == "" {
			entity.ID = uuid.NewString()
		}
		if entity.Status == "" {
			entity.Status = model.ConnectorStatusUnknown
		}
		entity.Created = i.now()
		entity.Updated = entity.Created

		if err := i.encryptConfig(tx, &entity); err != nil {
			return nil, err
		}
		q, err := db.NewQuery(tx, &entity)
		if err != nil {
			return nil, err
		}
		if err := q.Insert().Exec(); err != nil {
			if db.IsUniqueConstraintError(err) {
				return nil, &DuplicateNameError{Name: connector.Name}
			}
			return nil, errors.Wrapf(err, "failed to create connector '%s'", connector.Name)
		}
		return &entity, i.decryptConfig(tx, &entity)
	}
	result, err := i.TransactionalResult(dbOps)
	if err != nil {
		return nil, err
	}
	created := result.(*model.ConnectorEntity)
	i.notifyUpdate(created)
	return created, nil
}

func (i *DefaultInventory) Get(id string) (*model.ConnectorEntity, error) {
	return i.getConnector(i.Conn, map[string]interface{}{"ID": id})
}

func (i *DefaultInventory) GetByName(name string) (*model.ConnectorEntity, error) {
	return i.getConnector(i.Conn, map[string]interface{}{"Name": name})
}

func (i *DefaultInventory) getConnector(conn db.Connection, where map[string]interface{}) (*model.ConnectorEntity, error) {
	q, err := db.NewQuery(conn, &model.ConnectorEntity{})
	if err != nil {
		return nil, err
	}
	entity, err := q.Select().Where(where).GetOne()
	if err != nil {
		return nil, i.MapNoRows(err, &model.ConnectorEntity{}, where)
	}
	connector := entity.(*model.ConnectorEntity)
	return connector, i.decryptConfig(conn, connector)
}

func (i *DefaultInventory) GetAll() ([]*model.ConnectorEntity, error) {
	q, err := db.NewQuery(i.Conn, &model.ConnectorEntity{})
	if err != nil {
		return nil, err
	}
	entities, err := q.Select().
		OrderBy(map[string]string{"Created": "ASC", "ID": "ASC"}).
		GetMany()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list connectors")
	}
	result := make([]*model.ConnectorEntity, 0, len(entities))
	for _, entity := range entities {
		connector := entity.(*model.ConnectorEntity)
		if err := i.decryptConfig(i.Conn, connector); err != nil {
			return nil, err
		}
		result = append(result, connector)
	}
	return result, nil
}

func (i *DefaultInventory) Update(id string, update *ConnectorUpdate) (*model.ConnectorEntity, error) {
	dbOps := func(tx *db.TxConnection) (interface{}, error) {
		entity, err := i.getConnector(tx, map[string]interface{}{"ID": id})
		if err != nil {
			return nil, err
		}
		previousRegistry, previousSubmodel := entity.RegistryID, entity.SubmodelID
		if update != nil {
			update.apply(entity)
		}
		entity.Updated = i.now()
		if err := i.encryptConfig(tx, entity); err != nil {
			return nil, err
		}
		q, err := db.NewQuery(tx, entity)
		if err != nil {
			return nil, err
		}
		if err := q.Update().Where(map[string]interface{}{"ID": id}).Exec(); err != nil {
			return nil, i.MapNoRows(err, entity, map[string]interface{}{"ID": id})
		}
		if previousRegistry != "" && previousRegistry != entity.RegistryID {
			if err := i.deleteUnreferenced(tx, &model.RegistryEntity{}, "RegistryID", previousRegistry); err != nil {
				return nil, err
			}
		}
		if previousSubmodel != "" && previousSubmodel != entity.SubmodelID {
			if err := i.deleteUnreferenced(tx, &model.SubmodelEntity{}, "SubmodelID", previousSubmodel); err != nil {
				return nil, err
			}
		}
		return entity, i.decryptConfig(tx, entity)
	}
	result, err := i.TransactionalResult(dbOps)
	if err != nil {
		return nil, err
	}
	updated := result.(*model.ConnectorEntity)
	i.notifyUpdate(updated)
	return updated, nil
}

//Delete removes the connector and the registry/submodel records no other connector refers to.
//Deleting an unknown id is not an error.
func (i *DefaultInventory) Delete(id string) (bool, error) {
	dbOps := func(tx *db.TxConnection) (interface{}, error) {
		entity, err := i.getConnector(tx, map[string]interface{}{"ID": id})
		if err != nil {
			if repository.IsNotFoundError(err) {
				return nil, nil
			}
			return nil, err
		}
		q, err := db.NewQuery(tx, &model.ConnectorEntity{})
		if err != nil {
			return nil, err
		}
		if _, err := q.Delete().Where(map[string]interface{}{"ID": id}).Exec(); err != nil {
			return nil, errors.Wrapf(err, "failed to delete connector '%s'", entity.Name)
		}
		if entity.RegistryID != "" {
			if err := i.deleteUnreferenced(tx, &model.RegistryEntity{}, "RegistryID", entity.RegistryID); err != nil {
				return nil, err
			}
		}
		if entity.SubmodelID != "" {
			if err := i.deleteUnreferenced(tx, &model.SubmodelEntity{}, "SubmodelID", entity.SubmodelID); err != nil {
				return nil, err
			}
		}
		return entity, nil
	}
	result, err := i.TransactionalResult(dbOps)
	if err != nil || result == nil {
		return false, err
	}
	if i.collector != nil {
		i.collector.OnConnectorDelete(result.(*model.ConnectorEntity))
	}
	return true, nil
}

func (i *DefaultInventory) deleteUnreferenced(tx db.Connection, entity db.DatabaseEntity, refField, refID string) error {
	q, err := db.NewQuery(tx, &model.ConnectorEntity{})
	if err != nil {
		return err
	}
	refs, err := q.Select().Where(map[string]interface{}{refField: refID}).GetMany()
	if err != nil {
		return err
	}
	if len(refs) > 0 {
		i.Logger.Debugf("Keeping %s '%s': still referenced by %d connector(s)", entity.Table(), refID, len(refs))
		return nil
	}
	qDel, err := db.NewQuery(tx, entity)
	if err != nil {
		return err
	}
	_, err = qDel.Delete().Where(map[string]interface{}{"ID": refID}).Exec()
	return err
}

func (i *DefaultInventory) encryptConfig(conn db.Connection, entity *model.ConnectorEntity) error {
	encConfig, err := conn.Encryptor().Encrypt(entity.Config)
	if err != nil {
		return errors.Wrapf(err, "failed to encrypt configuration of connector '%s'", entity.Name)
	}
	entity.Config = encConfig
	return nil
}

func (i *DefaultInventory) decryptConfig(conn db.Connection, entity *model.ConnectorEntity) error {
	config, err := conn.Encryptor().Decrypt(entity.Config)
	if err != nil {
		return errors.Wrapf(err, "failed to decrypt configuration of connector '%s'", entity.Name)
	}
	entity.Config = config
	return nil
}

func (i *DefaultInventory) notifyUpdate(connector *model.ConnectorEntity) {
	if i.collector != nil {
		i.collector.OnConnectorUpdate(connector)
	}
}
