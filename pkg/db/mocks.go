package db

import (
	"database/sql"
)

const (
	MockRowsAffected = int64(999)
	MockLastInsertID = int64(111)
)

type mockState string

type MockDbEntity struct {
	Col1 string `db:"notNull"`
	Col2 bool   `db:"readOnly"`
	Col3 int
	Col4 mockState
}

func (fake *MockDbEntity) String() string {
	return "mock entity"
}

func (fake *MockDbEntity) New() DatabaseEntity {
	return &MockDbEntity{}
}

func (fake *MockDbEntity) Table() string {
	return "mockTable"
}

func (fake *MockDbEntity) Equal(other DatabaseEntity) bool {
	otherMock, ok := other.(*MockDbEntity)
	return ok && *fake == *otherMock
}

func (fake *MockDbEntity) Marshaller() *EntityMarshaller {
	return NewEntityMarshaller(fake)
}

//MockConnection records the last statement instead of executing it
type MockConnection struct {
	query string
	args  []interface{}
}

type MockDataRow struct {
}

func (dr *MockDataRow) Scan(_ ...interface{}) error {
	return nil
}

type MockDataRows struct {
	*MockDataRow
}

func (dr *MockDataRows) Next() bool {
	return false
}

func (dr *MockDataRows) Err() error {
	return nil
}

func (dr *MockDataRows) Close() error {
	return nil
}

type MockResult struct {
}

func (r *MockResult) LastInsertId() (int64, error) {
	return MockLastInsertID, nil
}

func (r *MockResult) RowsAffected() (int64, error) {
	return MockRowsAffected, nil
}

func (c *MockConnection) DB() *sql.DB {
	return nil
}

func (c *MockConnection) Encryptor() *Encryptor {
	return nil
}

func (c *MockConnection) Ping() error {
	return nil
}

func (c *MockConnection) QueryRow(query string, args ...interface{}) (DataRow, error) {
	c.query = query
	c.args = args
	return &MockDataRow{}, nil
}

func (c *MockConnection) Query(query string, args ...interface{}) (DataRows, error) {
	c.query = query
	c.args = args
	return &MockDataRows{}, nil
}

func (c *MockConnection) Exec(query string, args ...interface{}) (sql.Result, error) {
	c.query = query
	c.args = args
	return &MockResult{}, nil
}

func (c *MockConnection) Begin() (*TxConnection, error) {
	return nil, nil
}

func (c *MockConnection) Close() error {
	return nil
}

func (c *MockConnection) Type() Type {
	return Mock
}
