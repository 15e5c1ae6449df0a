package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestToTime(t *testing.T) {
	expected := time.Date(2024, 3, 1, 10, 20, 30, 123000000, time.UTC)

	tests := []struct {
		name  string
		value interface{}
	}{
		{name: "time value", value: expected},
		{name: "sqlite text", value: "2024-03-01 10:20:30.123+00:00"},
		{name: "sqlite bytes", value: []byte("2024-03-01 10:20:30.123+00:00")},
		{name: "RFC3339", value: "2024-03-01T10:20:30.123Z"},
		{name: "other zone", value: "2024-03-01 12:20:30.123+02:00"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToTime(tc.value)
			require.NoError(t, err)
			require.True(t, expected.Equal(got), "got %s", got)
			require.Equal(t, time.UTC, got.Location())
		})
	}

	t.Run("Invalid value", func(t *testing.T) {
		_, err := ToTime("yesterday")
		require.Error(t, err)
		_, err = ToTime(42)
		require.Error(t, err)
	})
}

func TestScalarConverters(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		for _, value := range []interface{}{"acme", []byte("acme")} {
			s, err := ToString(value)
			require.NoError(t, err)
			require.Equal(t, "acme", s)
		}
		s, err := ToString(nil)
		require.NoError(t, err)
		require.Empty(t, s)
		_, err = ToString(42)
		require.Error(t, err)
	})

	t.Run("Integer", func(t *testing.T) {
		for _, value := range []interface{}{7, int32(7), int64(7), []byte("7")} {
			i, err := ToInt64(value)
			require.NoError(t, err)
			require.Equal(t, int64(7), i)
		}
		_, err := ToInt64("seven")
		require.Error(t, err)
	})

	t.Run("Float", func(t *testing.T) {
		f, err := ToFloat64([]byte("1.5"))
		require.NoError(t, err)
		require.Equal(t, 1.5, f)
		_, err = ToFloat64(true)
		require.Error(t, err)
	})

	t.Run("Boolean", func(t *testing.T) {
		for value, expected := range map[interface{}]bool{true: true, int64(1): true, "TRUE": true, false: false, int64(0): false, "false": false} {
			b, err := ToBool(value)
			require.NoError(t, err)
			require.Equal(t, expected, b, "value %v", value)
		}
		_, err := ToBool("maybe")
		require.Error(t, err)
	})
}
