package test

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIntegration(t *testing.T) {
	for value, expected := range map[string]bool{
		"false": false,
		"0":     false,
		"foo":   false,
		"trUe":  true,
		"1":     true,
	} {
		t.Setenv(EnvIntegrationTests, value)
		require.Equal(t, expected, RunIntegrationTests(), "value '%s'", value)
	}
}
