package features

import (
	"os"
	"strings"
)

type Feature int

const (
	RuntimeMetrics Feature = iota + 1
	ToolOutputLogging
)

// define the mapping between feature name and env var name
var featureEnVarMap = map[Feature]string{
	RuntimeMetrics:    "EMC_RUNTIME_METRICS_ENABLED",
	ToolOutputLogging: "EMC_TOOL_OUTPUT_LOGGING_ENABLED",
}

func Enabled(feature Feature) bool {
	return checkEnvVar(envVar(feature))
}

func envVar(feature Feature) string {
	return featureEnVarMap[feature]
}

func checkEnvVar(envVar string) bool {
	if envVar == "" {
		return false
	}
	enabled := os.Getenv(envVar)
	return strings.ToLower(enabled) == "true" || enabled == "1"
}
