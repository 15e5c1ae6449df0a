package db

import "database/sql"

type Type string

const (
	Postgres Type = "postgres"
	SQLite   Type = "sqlite"
	Mock     Type = "mock"
)

//Connection hides the SQL dialect: queries use $N placeholders for both drivers.
//The Encryptor protects connector configurations and service credentials at rest.
type Connection interface {
	DB() *sql.DB
	Encryptor() *Encryptor
	Ping() error
	QueryRow(query string, args ...interface{}) (DataRow, error)
	Query(query string, args ...interface{}) (DataRows, error)
	Exec(query string, args ...interface{}) (sql.Result, error)
	Begin() (*TxConnection, error)
	Close() error
	Type() Type
}

type ConnectionFactory interface {
	//Init prepares the database (file, schema migrations) before the first connection is opened
	Init(migrate bool) error
	NewConnection() (Connection, error)
}

//DatabaseEntity is a row of Table. Fields map to snake case columns, see ColumnHandler.
type DatabaseEntity interface {
	Table() string
	Marshaller() *EntityMarshaller
	New() DatabaseEntity
	Equal(other DatabaseEntity) bool
}

//DataRow is implemented by sql.Row and sql.Rows
type DataRow interface {
	Scan(dest ...interface{}) error
}

type DataRows interface {
	Scan(dest ...interface{}) error
	Next() bool
	Err() error
	Close() error
}
