package test

import (
	"os"
	"strings"
	"testing"
)

const (
	EnvIntegrationTests = "EMC_INTEGRATION_TESTS"
)

func RunIntegrationTests() bool {
	integrationTests, ok := os.LookupEnv(EnvIntegrationTests)
	if !ok {
		return false
	}
	return integrationTests == "1" || strings.ToLower(integrationTests) == "true"
}

//IntegrationTest skips the calling test unless integration tests are enabled
func IntegrationTest(t *testing.T) {
	if !RunIntegrationTests() {
		t.Skipf("Integration tests disabled: set env-var '%s=true' to enable them", EnvIntegrationTests)
	}
}
