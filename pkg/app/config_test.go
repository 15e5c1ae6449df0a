package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dataspace-ops/emc/pkg/test"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Load unit test configuration", func(t *testing.T) {
		cfgFile, err := test.GetConfigFile()
		require.NoError(t, err)

		cfg, err := LoadConfig(cfgFile)
		require.NoError(t, err)
		require.Equal(t, "sqlite", cfg.DB.Driver)
		require.True(t, cfg.DB.Sqlite.ResetDatabase)
		require.Equal(t, 30*time.Second, cfg.Deployment.Timeout)
		require.Equal(t, 10*time.Millisecond, cfg.Deployment.RetryDelay)
		require.Equal(t, uint(2), cfg.Deployment.ListAttempts)
		require.Equal(t, "edc", cfg.Deployment.Namespace)
		require.Equal(t, "https://wallet.example", cfg.Dataspace.WalletURL)
		require.Equal(t, time.Second, cfg.Health.Timeout)
		require.Equal(t, 4, cfg.Reconciler.PoolSize)
		require.True(t, cfg.Logging.Debug)

		//relative paths are resolved against the config dir
		configDir := filepath.Dir(cfgFile)
		require.Equal(t, filepath.Join(configDir, "chart"), cfg.Deployment.ChartDir)
		require.Equal(t, filepath.Join(configDir, "..", "data", "emc-unittest.db"), cfg.DB.Sqlite.File)
		require.Equal(t, cfg.Deployment.ChartDir, cfg.ManifestConfig().WorkDir)
		require.Equal(t, "chart", cfg.DataspaceSettings().Chart)
	})

	t.Run("Defaults without configuration file", func(t *testing.T) {
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		require.Equal(t, "sqlite", cfg.DB.Driver)
		require.Equal(t, "helm", cfg.Deployment.Binary)
		require.Equal(t, 10*time.Minute, cfg.Deployment.Timeout)
		require.Equal(t, 5*time.Second, cfg.Health.Timeout)
		require.True(t, cfg.Health.InsecureSkipVerify)
		require.Equal(t, 8080, cfg.Server.Port)
		require.Equal(t, 100, cfg.Logging.MaxSizeMB)
	})

	t.Run("Environment overrides file", func(t *testing.T) {
		cfgFile, err := test.GetConfigFile()
		require.NoError(t, err)
		t.Setenv("EMC_DEPLOYMENT_NAMESPACE", "tenant-a")
		t.Setenv("EMC_SERVER_PORT", "9090")
		t.Setenv("EMC_DATASPACE_INGRESSDOMAIN", "connectors.example")

		cfg, err := LoadConfig(cfgFile)
		require.NoError(t, err)
		require.Equal(t, "tenant-a", cfg.Deployment.Namespace)
		require.Equal(t, 9090, cfg.Server.Port)
		require.Equal(t, "connectors.example", cfg.Dataspace.IngressDomain)
		require.Equal(t, "tenant-a", cfg.DataspaceSettings().Namespace)
	})

	t.Run("Missing configuration file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})

	t.Run("Invalid configuration file", func(t *testing.T) {
		cfgFile := filepath.Join(t.TempDir(), "emc.yaml")
		require.NoError(t, os.WriteFile(cfgFile, []byte("db: [unclosed"), 0600))
		_, err := LoadConfig(cfgFile)
		require.Error(t, err)
	})
}
