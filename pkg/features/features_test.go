package features

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFeatures(t *testing.T) {
	tests := []struct {
		description    string
		feature        Feature
		envVarValue    string
		expectedResult bool
	}{
		{description: "Runtime metrics set to 1", feature: RuntimeMetrics, envVarValue: "1", expectedResult: true},
		{description: "Runtime metrics set to lowercase true", feature: RuntimeMetrics, envVarValue: "true", expectedResult: true},
		{description: "Runtime metrics set to TrUe", feature: RuntimeMetrics, envVarValue: "TrUe", expectedResult: true},
		{description: "Runtime metrics set to 0", feature: RuntimeMetrics, envVarValue: "0", expectedResult: false},
		{description: "Runtime metrics not set", feature: RuntimeMetrics, envVarValue: "", expectedResult: false},
		{description: "Tool output logging set to 1", feature: ToolOutputLogging, envVarValue: "1", expectedResult: true},
		{description: "Tool output logging set to yes", feature: ToolOutputLogging, envVarValue: "yes", expectedResult: false},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			t.Setenv(envVar(tc.feature), tc.envVarValue)
			require.Equal(t, tc.expectedResult, Enabled(tc.feature))
		})
	}

	t.Run("Unknown feature", func(t *testing.T) {
		require.False(t, Enabled(Feature(99)))
	})
}
