package inventory

import (
	"github.com/dataspace-ops/emc/pkg/db"
	"github.com/dataspace-ops/emc/pkg/model"
	"github.com/dataspace-ops/emc/pkg/repository"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

//SaveRegistry returns the registry record for the descriptor URL and creates it if missing
func (i *DefaultInventory) SaveRegistry(descriptor *model.ServiceDescriptor) (*model.RegistryEntity, error) {
	result, err := i.TransactionalResult(func(tx *db.TxConnection) (interface{}, error) {
		return i.saveRegistry(tx, descriptor)
	})
	if err != nil {
		return nil, err
	}
	return result.(*model.RegistryEntity), nil
}

func (i *DefaultInventory) saveRegistry(tx db.Connection, descriptor *model.ServiceDescriptor) (*model.RegistryEntity, error) {
	credentials, err := tx.Encryptor().Encrypt(descriptor.Credentials)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encrypt registry credentials")
	}

	q, err := db.NewQuery(tx, &model.RegistryEntity{})
	if err != nil {
		return nil, err
	}
	existing, err := q.Select().Where(map[string]interface{}{"URL": descriptor.URL}).GetOne()
	switch {
	case err == nil:
		entity := existing.(*model.RegistryEntity)
		entity.Credentials = credentials
		qUpd, err := db.NewQuery(tx, entity)
		if err != nil {
			return nil, err
		}
		if err := qUpd.Update().Where(map[string]interface{}{"ID": entity.ID}).Exec(); err != nil {
			return nil, errors.Wrapf(err, "failed to update registry '%s'", descriptor.URL)
		}
		return entity, i.decryptCredentials(tx, &entity.Credentials)
	case repository.IsNotFoundError(i.MapNoRows(err, &model.RegistryEntity{}, nil)):
		entity := &model.RegistryEntity{
			ID:          uuid.NewString(),
			URL:         descriptor.URL,
			Credentials: credentials,
			Created:     i.now(),
		}
		qIns, err := db.NewQuery(tx, entity)
		if err != nil {
			return nil, err
		}
		if err := qIns.Insert().Exec(); err != nil {
			return nil, errors.Wrapf(err, "failed to create registry '%s'", descriptor.URL)
		}
		return entity, i.decryptCredentials(tx, &entity.Credentials)
	default:
		return nil, err
	}
}

func (i *DefaultInventory) Registry(id string) (*model.RegistryEntity, error) {
	q, err := db.NewQuery(i.Conn, &model.RegistryEntity{})
	if err != nil {
		return nil, err
	}
	where := map[string]interface{}{"ID": id}
	entity, err := q.Select().Where(where).GetOne()
	if err != nil {
		return nil, i.MapNoRows(err, &model.RegistryEntity{}, where)
	}
	registry := entity.(*model.RegistryEntity)
	return registry, i.decryptCredentials(i.Conn, &registry.Credentials)
}

//SaveSubmodel returns the submodel record for the descriptor URL and creates it if missing
func (i *DefaultInventory) SaveSubmodel(descriptor *model.ServiceDescriptor) (*model.SubmodelEntity, error) {
	result, err := i.TransactionalResult(func(tx *db.TxConnection) (interface{}, error) {
		return i.saveSubmodel(tx, descriptor)
	})
	if err != nil {
		return nil, err
	}
	return result.(*model.SubmodelEntity), nil
}

func (i *DefaultInventory) saveSubmodel(tx db.Connection, descriptor *model.ServiceDescriptor) (*model.SubmodelEntity, error) {
	credentials, err := tx.Encryptor().Encrypt(descriptor.Credentials)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encrypt submodel credentials")
	}

	q, err := db.NewQuery(tx, &model.SubmodelEntity{})
	if err != nil {
		return nil, err
	}
	existing, err := q.Select().Where(map[string]interface{}{"URL": descriptor.URL}).GetOne()
	switch {
	case err == nil:
		entity := existing.(*model.SubmodelEntity)
		entity.Credentials = credentials
		qUpd, err := db.NewQuery(tx, entity)
		if err != nil {
			return nil, err
		}
		if err := qUpd.Update().Where(map[string]interface{}{"ID": entity.ID}).Exec(); err != nil {
			return nil, errors.Wrapf(err, "failed to update submodel server '%s'", descriptor.URL)
		}
		return entity, i.decryptCredentials(tx, &entity.Credentials)
	case repository.IsNotFoundError(i.MapNoRows(err, &model.SubmodelEntity{}, nil)):
		entity := &model.SubmodelEntity{
			ID:          uuid.NewString(),
			URL:         descriptor.URL,
			Credentials: credentials,
			Created:     i.now(),
		}
		qIns, err := db.NewQuery(tx, entity)
		if err != nil {
			return nil, err
		}
		if err := qIns.Insert().Exec(); err != nil {
			return nil, errors.Wrapf(err, "failed to create submodel server '%s'", descriptor.URL)
		}
		return entity, i.decryptCredentials(tx, &entity.Credentials)
	default:
		return nil, err
	}
}

func (i *DefaultInventory) Submodel(id string) (*model.SubmodelEntity, error) {
	q, err := db.NewQuery(i.Conn, &model.SubmodelEntity{})
	if err != nil {
		return nil, err
	}
	where := map[string]interface{}{"ID": id}
	entity, err := q.Select().Where(where).GetOne()
	if err != nil {
		return nil, i.MapNoRows(err, &model.SubmodelEntity{}, where)
	}
	submodel := entity.(*model.SubmodelEntity)
	return submodel, i.decryptCredentials(i.Conn, &submodel.Credentials)
}

func (i *DefaultInventory) decryptCredentials(conn db.Connection, credentials *string) error {
	plain, err := conn.Encryptor().Decrypt(*credentials)
	if err != nil {
		return errors.Wrap(err, "failed to decrypt credentials")
	}
	*credentials = plain
	return nil
}
