package db

import (
	"fmt"
	"reflect"
	"time"

	"github.com/fatih/structs"
)

//FieldConverter changes a field value on its way into (marshal) or out of (unmarshal) the database,
//e.g. to encrypt a connector configuration
type FieldConverter func(value interface{}) (interface{}, error)

//EntityMarshaller converts an entity into a map of field values and back
type EntityMarshaller struct {
	structs      *structs.Struct
	marshalers   map[string]FieldConverter
	unmarshalers map[string]FieldConverter
}

func NewEntityMarshaller(entity interface{}) *EntityMarshaller {
	return &EntityMarshaller{
		structs:      structs.New(entity),
		marshalers:   map[string]FieldConverter{},
		unmarshalers: map[string]FieldConverter{},
	}
}

func (es *EntityMarshaller) AddMarshaller(field string, fct FieldConverter) {
	es.mustHaveField(field)
	es.marshalers[field] = fct
}

func (es *EntityMarshaller) AddUnmarshaller(field string, fct FieldConverter) {
	es.mustHaveField(field)
	es.unmarshalers[field] = fct
}

//mustHaveField panics: a converter for an unknown field is a programming error
func (es *EntityMarshaller) mustHaveField(field string) {
	if _, ok := es.structs.FieldOk(field); !ok {
		panic(fmt.Sprintf("marshaller of entity '%s' has no field '%s'", es.structs.Name(), field))
	}
}

func (es *EntityMarshaller) Marshal() (map[string]interface{}, error) {
	fields := es.structs.Fields()
	result := make(map[string]interface{}, len(fields))
	for _, field := range fields {
		value := field.Value()
		if fct, ok := es.marshalers[field.Name()]; ok {
			var err error
			if value, err = fct(value); err != nil {
				return result, err
			}
		}
		result[field.Name()] = value
	}
	return result, nil
}

//Unmarshal sets all fields from raw database values. Every field needs a value.
func (es *EntityMarshaller) Unmarshal(rawData map[string]interface{}) error {
	for _, field := range es.structs.Fields() {
		raw, ok := rawData[field.Name()]
		if !ok {
			return fmt.Errorf("no value in database found for field '%s'", field.Name())
		}
		var value interface{}
		var err error
		if fct, ok := es.unmarshalers[field.Name()]; ok {
			value, err = fct(raw)
		} else {
			value, err = fromRaw(field, raw)
		}
		if err != nil {
			return err
		}
		if err := field.Set(value); err != nil {
			return err
		}
	}
	return nil
}

//fromRaw converts a value returned by the SQL driver into the type of the field
func fromRaw(field *structs.Field, raw interface{}) (interface{}, error) {
	var value interface{}
	var err error
	switch field.Kind() {
	case reflect.Int:
		var i int64
		i, err = ToInt64(raw)
		value = int(i)
	case reflect.Int64:
		value, err = ToInt64(raw)
	case reflect.Float64:
		value, err = ToFloat64(raw)
	case reflect.Bool:
		value, err = ToBool(raw)
	case reflect.String:
		var s string
		if s, err = ToString(raw); err == nil {
			//named string types (e.g. status enums) need a conversion
			value = reflect.ValueOf(s).Convert(reflect.TypeOf(field.Value())).Interface()
		}
	case reflect.Struct:
		if _, isTime := field.Value().(time.Time); !isTime {
			return nil, fmt.Errorf("field '%s' has unsupported struct type %T", field.Name(), field.Value())
		}
		value, err = ToTime(raw)
	default:
		return nil, fmt.Errorf("cannot synchronize field '%s' because type '%s' is not supported (value was '%v')",
			field.Name(), field.Kind(), raw)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to convert value from DB for entity field '%s': %s", field.Name(), err)
	}
	return value, nil
}
