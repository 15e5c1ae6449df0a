package db

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/fatih/structs"
	"github.com/iancoleman/strcase"
)

const (
	dbTag         string = "db"
	dbTagReadOnly string = "readOnly"
	dbTagNotNull  string = "notNull"
)

//column maps a struct field to its snake case column. readOnly columns are never written by INSERT or UPDATE.
type column struct {
	name     string
	readOnly bool
	notNull  bool
	field    *structs.Field
	value    interface{}
}

type ColumnHandler struct {
	entity      DatabaseEntity
	columns     []*column
	columnNames map[string]string //field name -> column name
}

func NewColumnHandler(entity DatabaseEntity) (*ColumnHandler, error) {
	fields := structs.Fields(entity)
	colHdlr := &ColumnHandler{
		entity:      entity,
		columnNames: make(map[string]string, len(fields)),
	}

	values, err := entity.Marshaller().Marshal()
	if err != nil {
		return colHdlr, NewInvalidEntityError("failed to marshal values of entity '%s': %s", entity.Table(), err)
	}

	for _, field := range fields {
		tags := tagsOf(field)
		col := &column{
			name:     strcase.ToSnake(field.Name()),
			readOnly: tags[dbTagReadOnly],
			notNull:  tags[dbTagNotNull],
			field:    field,
			value:    values[field.Name()],
		}
		colHdlr.columns = append(colHdlr.columns, col)
		colHdlr.columnNames[field.Name()] = col.name
	}
	return colHdlr, nil
}

func tagsOf(field *structs.Field) map[string]bool {
	tags := map[string]bool{}
	for _, tag := range strings.Split(field.Tag(dbTag), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags[tag] = true
		}
	}
	return tags
}

//Validate fails if a notNull column holds the zero value of its type
func (ch *ColumnHandler) Validate() error {
	var undefined []string
	for _, col := range ch.columns {
		if !col.notNull {
			continue
		}
		switch col.field.Kind() {
		case reflect.String, reflect.Int, reflect.Int64, reflect.Float64:
			if col.value == nil || reflect.ValueOf(col.value).IsZero() {
				undefined = append(undefined, col.field.Name())
			}
		case reflect.Bool, reflect.Struct:
			//zero values are valid
		default:
			return fmt.Errorf("field '%s' of entity '%s' has unsupported type '%s'",
				col.field.Name(), ch.entity.Table(), col.field.Kind())
		}
	}
	if len(undefined) > 0 {
		return NewInvalidEntityError("the fields '%s' of entity '%s' are tagged with '%s' and cannot be undefined",
			strings.Join(undefined, "', '"), ch.entity.Table(), dbTagNotNull)
	}
	return nil
}

func (ch *ColumnHandler) ColumnName(field string) (string, error) {
	if colName, ok := ch.columnNames[field]; ok {
		return colName, nil
	}
	return "", fmt.Errorf("entity '%s' has no field '%s': cannot resolve column name", ch.entity.Table(), field)
}

func (ch *ColumnHandler) selected(onlyWriteable bool) []*column {
	if !onlyWriteable {
		return ch.columns
	}
	result := make([]*column, 0, len(ch.columns))
	for _, col := range ch.columns {
		if !col.readOnly {
			result = append(result, col)
		}
	}
	return result
}

//ColumnNamesCsv returns e.g. "id, name, created"
func (ch *ColumnHandler) ColumnNamesCsv(onlyWriteable bool) string {
	cols := ch.selected(onlyWriteable)
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.name
	}
	return strings.Join(names, ", ")
}

func (ch *ColumnHandler) ColumnValues(onlyWriteable bool) []interface{} {
	cols := ch.selected(onlyWriteable)
	values := make([]interface{}, len(cols))
	for i, col := range cols {
		values[i] = col.value
	}
	return values
}

//ColumnValuesPlaceholderCsv returns e.g. "$1, $2, $3"
func (ch *ColumnHandler) ColumnValuesPlaceholderCsv(onlyWriteable bool) string {
	cols := ch.selected(onlyWriteable)
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(placeholders, ", ")
}

//ColumnEntriesPlaceholderCsv returns e.g. "name=$1, status=$2" and the number of placeholders
func (ch *ColumnHandler) ColumnEntriesPlaceholderCsv(onlyWriteable bool) (string, int) {
	cols := ch.selected(onlyWriteable)
	entries := make([]string, len(cols))
	for i, col := range cols {
		entries[i] = fmt.Sprintf("%s=$%d", col.name, i+1)
	}
	return strings.Join(entries, ", "), len(cols)
}

//Unmarshal scans a row selected with ColumnNamesCsv(false) into the entity
func (ch *ColumnHandler) Unmarshal(row DataRow, entity DatabaseEntity) error {
	dest := make([]interface{}, len(ch.columns))
	for i, col := range ch.columns {
		dest[i] = &col.value
	}
	if err := row.Scan(dest...); err != nil {
		return err
	}
	data := make(map[string]interface{}, len(ch.columns))
	for _, col := range ch.columns {
		data[col.field.Name()] = col.value
	}
	return entity.Marshaller().Unmarshal(data)
}
