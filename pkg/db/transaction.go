package db

import (
	"database/sql"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func TransactionResult(conn Connection, dbOps func(tx *TxConnection) (interface{}, error), logger *zap.SugaredLogger) (interface{}, error) {
	txConnection, err := conn.Begin()
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}

	result, err := dbOps(txConnection)
	if err != nil {
		if logger != nil {
			logger.Debugf("Rollback transactional DB context because an error occurred: %s", err)
		}
		if rollbackErr := txConnection.rollback(); rollbackErr != nil {
			err = errors.Wrapf(err, "rollback of db operations failed: %s", rollbackErr)
		}
		return result, err
	}

	return result, txConnection.commit()
}

func Transaction(conn Connection, dbOps func(tx *TxConnection) error, logger *zap.SugaredLogger) error {
	dbOpsAdapter := func(tx *TxConnection) (interface{}, error) {
		return nil, dbOps(tx)
	}
	_, err := TransactionResult(conn, dbOpsAdapter, logger)
	return err
}

//TxConnection is a Connection bound to an open transaction. Nested Begin calls join the
//running transaction which is committed when the outermost caller finishes.
type TxConnection struct {
	tx        *sql.Tx
	conn      Connection
	validator *Validator
	counter   uint
	logger    *zap.SugaredLogger
	sync.Mutex
}

func NewTxConnection(tx *sql.Tx, conn Connection, validator *Validator, logger *zap.SugaredLogger) *TxConnection {
	return &TxConnection{
		tx:        tx,
		conn:      conn,
		validator: validator,
		counter:   1,
		logger:    logger,
	}
}

func (t *TxConnection) DB() *sql.DB {
	return t.conn.DB()
}

func (t *TxConnection) Encryptor() *Encryptor {
	return t.conn.Encryptor()
}

func (t *TxConnection) Ping() error {
	return t.conn.Ping()
}

func (t *TxConnection) QueryRow(query string, args ...interface{}) (DataRow, error) {
	if err := t.validator.Validate(query); err != nil {
		return nil, err
	}
	return t.tx.QueryRow(query, args...), nil
}

func (t *TxConnection) Query(query string, args ...interface{}) (DataRows, error) {
	if err := t.validator.Validate(query); err != nil {
		return nil, err
	}
	rows, err := t.tx.Query(query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (t *TxConnection) Exec(query string, args ...interface{}) (sql.Result, error) {
	if err := t.validator.Validate(query); err != nil {
		return nil, err
	}
	return t.tx.Exec(query, args...)
}

func (t *TxConnection) Begin() (*TxConnection, error) {
	t.increaseCounter()
	return t, nil
}

func (t *TxConnection) Close() error {
	return t.conn.Close()
}

func (t *TxConnection) Type() Type {
	return t.conn.Type()
}

func (t *TxConnection) commit() error {
	if t.decreaseCounter() == 0 {
		t.logger.Debug("Transaction committed")
		return t.tx.Commit()
	}
	return nil
}

func (t *TxConnection) rollback() error {
	//an inner failure aborts the whole transaction
	if t.decreaseCounter() == 0 {
		err := t.tx.Rollback()
		if err == sql.ErrTxDone {
			return nil
		}
		return err
	}
	return nil
}

func (t *TxConnection) increaseCounter() {
	t.Lock()
	defer t.Unlock()
	t.counter++
}

func (t *TxConnection) decreaseCounter() uint {
	t.Lock()
	defer t.Unlock()
	t.counter--
	return t.counter
}
