package db

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEntityMarshaller(t *testing.T) {
	entity := &MockDbEntity{
		Col1: "plain",
		Col2: true,
		Col3: 123,
		Col4: "running",
	}
	reject := func(value interface{}) (interface{}, error) {
		return nil, fmt.Errorf("value '%v' rejected", value)
	}

	t.Run("Marshal applies field converters", func(t *testing.T) {
		marshaller := NewEntityMarshaller(entity)
		marshaller.AddMarshaller("Col1", func(value interface{}) (interface{}, error) {
			return "encrypted:" + value.(string), nil
		})
		data, err := marshaller.Marshal()
		require.NoError(t, err)
		require.Equal(t, map[string]interface{}{"Col1": "encrypted:plain", "Col2": true, "Col3": 123, "Col4": mockState("running")}, data)
	})

	t.Run("Marshal fails with converter", func(t *testing.T) {
		marshaller := NewEntityMarshaller(entity)
		marshaller.AddMarshaller("Col1", reject)
		_, err := marshaller.Marshal()
		require.EqualError(t, err, "value 'plain' rejected")
	})

	t.Run("Converter for unknown field", func(t *testing.T) {
		require.Panics(t, func() {
			NewEntityMarshaller(entity).AddMarshaller("Unknown", reject)
		})
	})

	t.Run("Unmarshal raw driver values", func(t *testing.T) {
		target := &MockDbEntity{}
		marshaller := NewEntityMarshaller(target)
		marshaller.AddUnmarshaller("Col1", func(value interface{}) (interface{}, error) {
			return string(value.([]byte))[len("encrypted:"):], nil
		})
		err := marshaller.Unmarshal(map[string]interface{}{"Col1": []byte("encrypted:plain"), "Col2": int64(1), "Col3": int64(123), "Col4": []byte("running")})
		require.NoError(t, err)
		require.Equal(t, entity, target)
	})

	t.Run("Unmarshal fails", func(t *testing.T) {
		tests := []struct {
			name      string
			data      map[string]interface{}
			converter FieldConverter
		}{
			{
				name:      "Converter error",
				data:      map[string]interface{}{"Col1": "x", "Col2": false, "Col3": 1, "Col4": "running"},
				converter: reject,
			},
			{
				name: "Missing column",
				data: map[string]interface{}{"Col1": "x", "Col2": false, "Col3": 1},
			},
			{
				name: "Wrong type",
				data: map[string]interface{}{"Col1": 42, "Col2": false, "Col3": 1, "Col4": "running"},
			},
			{
				name: "No boolean",
				data: map[string]interface{}{"Col1": "x", "Col2": "maybe", "Col3": 1, "Col4": "running"},
			},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				marshaller := NewEntityMarshaller(&MockDbEntity{})
				if tc.converter != nil {
					marshaller.AddUnmarshaller("Col1", tc.converter)
				}
				require.Error(t, marshaller.Unmarshal(tc.data))
			})
		}
	})
}
