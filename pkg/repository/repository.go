package repository

import (
	"database/sql"

	"github.com/dataspace-ops/emc/pkg/db"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

//Repository bundles the connection and logger shared by all entity stores
type Repository struct {
	Conn   db.Connection
	Logger *zap.SugaredLogger
}

func NewRepository(conn db.Connection, logger *zap.SugaredLogger) *Repository {
	return &Repository{
		Conn:   conn,
		Logger: logger,
	}
}

func (r *Repository) TransactionalResult(dbOps func(tx *db.TxConnection) (interface{}, error)) (interface{}, error) {
	return db.TransactionResult(r.Conn, dbOps, r.Logger)
}

func (r *Repository) Transactional(dbOps func(tx *db.TxConnection) error) error {
	return db.Transaction(r.Conn, dbOps, r.Logger)
}

//MapNoRows converts sql.ErrNoRows into an EntityNotFoundError
func (r *Repository) MapNoRows(err error, entity db.DatabaseEntity, identifier map[string]interface{}) error {
	if errors.Is(err, sql.ErrNoRows) {
		return r.NewNotFoundError(err, entity, identifier)
	}
	return err
}
