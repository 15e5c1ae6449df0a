package test

import (
	"fmt"
	"path/filepath"

	file "github.com/dataspace-ops/emc/pkg/files"
)

const configFile = "emc-unittest.yaml"

//GetConfigFile returns the configuration file used by unit tests
func GetConfigFile() (string, error) {
	cfgFile := filepath.Join(file.Root, "configs", configFile)
	if !file.Exists(cfgFile) {
		return "", fmt.Errorf("could not find configuration file for unit tests: %s", cfgFile)
	}
	return cfgFile, nil
}
