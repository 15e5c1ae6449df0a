package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dataspace-ops/emc/pkg/db"
	"github.com/dataspace-ops/emc/pkg/deployment"
	file "github.com/dataspace-ops/emc/pkg/files"
	"github.com/dataspace-ops/emc/pkg/health"
	"github.com/dataspace-ops/emc/pkg/identity"
	"github.com/dataspace-ops/emc/pkg/logger"
	"github.com/dataspace-ops/emc/pkg/manifest"
	"github.com/dataspace-ops/emc/pkg/reconciler"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	EnvVarPrefix = "EMC"
	//EnvConfigFile points to the configuration file if no --config flag was given
	EnvConfigFile = EnvVarPrefix + "_CONFIG"
)

type Config struct {
	DB         db.Config            `mapstructure:"db"`
	Deployment deployment.Config    `mapstructure:"deployment"`
	Manifest   manifest.Config      `mapstructure:"manifest"`
	Dataspace  identity.TrustConfig `mapstructure:"dataspace"`
	Health     health.Config        `mapstructure:"health"`
	Reconciler reconciler.Config    `mapstructure:"reconciler"`
	Logging    LoggingConfig        `mapstructure:"logging"`
	Server     ServerConfig         `mapstructure:"server"`
}

type LoggingConfig struct {
	Debug             bool `mapstructure:"debug"`
	logger.FileConfig `mapstructure:",squash"`
}

type ServerConfig struct {
	Port       int    `mapstructure:"port"`
	SSLCrtFile string `mapstructure:"sslCrtFile"`
	SSLKeyFile string `mapstructure:"sslKeyFile"`
}

//defaults are registered in viper so that every key can be overwritten by an env var (e.g. EMC_DB_DRIVER)
var defaults = map[string]interface{}{
	"db.driver":                       string(db.SQLite),
	"db.blockQueries":                 true,
	"db.logQueries":                   false,
	"db.encryption.keyFile":           "encryption/emc.key",
	"db.encryption.key":               "",
	"db.sqlite.file":                  "emc.db",
	"db.sqlite.resetDatabase":         false,
	"db.postgres.host":                "",
	"db.postgres.port":                5432,
	"db.postgres.database":            "",
	"db.postgres.user":                "",
	"db.postgres.password":            "",
	"db.postgres.sslMode":             false,
	"db.postgres.migrationsDir":       "",
	"deployment.binary":               "helm",
	"deployment.chartDir":             "",
	"deployment.namespace":            "default",
	"deployment.createNamespace":      false,
	"deployment.timeout":              "10m",
	"deployment.listAttempts":         3,
	"deployment.retryDelay":           "2s",
	"deployment.keepInstallManifests": false,
	"manifest.workDir":                "",
	"manifest.templateDir":            "",
	"dataspace.walletUrl":             "",
	"dataspace.trustAuthority":        "",
	"dataspace.stsDimUrl":             "",
	"dataspace.stsTokenUrl":           "",
	"dataspace.bdrsUrl":               "",
	"dataspace.secretAliasPattern":    "",
	"dataspace.ingressDomain":         "",
	"health.timeout":                  "5s",
	"health.insecureSkipVerify":       true,
	"health.livenessPath":             "",
	"health.readinessPath":            "",
	"reconciler.poolSize":             10,
	"logging.debug":                   false,
	"logging.file":                    "",
	"logging.maxSizeMB":               100,
	"logging.maxBackups":              5,
	"logging.maxAgeDays":              30,
	"server.port":                     8080,
	"server.sslCrtFile":               "",
	"server.sslKeyFile":               "",
}

//LoadConfig reads the configuration file (optional) and applies EMC_* environment variables on top.
//Relative paths in the file are resolved against the directory of the file.
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvVarPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	baseDir := ""
	if cfgFile != "" {
		if !file.Exists(cfgFile) {
			return nil, fmt.Errorf("configuration file '%s' not found", cfgFile)
		}
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read configuration file '%s'", cfgFile)
		}
		baseDir = filepath.Dir(v.ConfigFileUsed())
	}

	cfg := &Config{}
	err := v.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode configuration")
	}
	cfg.resolvePaths(baseDir)
	return cfg, nil
}

func (c *Config) resolvePaths(baseDir string) {
	for _, path := range []*string{
		&c.DB.Encryption.KeyFile,
		&c.DB.Sqlite.File,
		&c.DB.Postgres.MigrationsDir,
		&c.Deployment.ChartDir,
		&c.Manifest.WorkDir,
		&c.Manifest.TemplateDir,
		&c.Logging.Path,
	} {
		*path = file.Resolve(baseDir, *path)
	}
}

//ManifestConfig renders into the chart directory unless a dedicated work dir is configured
func (c *Config) ManifestConfig() manifest.Config {
	cfg := c.Manifest
	if cfg.WorkDir == "" {
		cfg.WorkDir = c.Deployment.ChartDir
	}
	return cfg
}

//DataspaceSettings is the read-only view of the dataspace configuration exposed by the service
type DataspaceSettings struct {
	WalletURL      string `json:"walletUrl" yaml:"walletUrl"`
	TrustAuthority string `json:"trustAuthority" yaml:"trustAuthority"`
	StsDimURL      string `json:"stsDimUrl" yaml:"stsDimUrl"`
	StsTokenURL    string `json:"stsTokenUrl" yaml:"stsTokenUrl"`
	BdrsURL        string `json:"bdrsUrl" yaml:"bdrsUrl"`
	IngressDomain  string `json:"ingressDomain,omitempty" yaml:"ingressDomain,omitempty"`
	Namespace      string `json:"namespace" yaml:"namespace"`
	Chart          string `json:"chart" yaml:"chart"`
}

func (c *Config) DataspaceSettings() *DataspaceSettings {
	return &DataspaceSettings{
		WalletURL:      c.Dataspace.WalletURL,
		TrustAuthority: c.Dataspace.TrustAuthority,
		StsDimURL:      c.Dataspace.StsDimURL,
		StsTokenURL:    c.Dataspace.StsTokenURL,
		BdrsURL:        c.Dataspace.BdrsURL,
		IngressDomain:  c.Dataspace.IngressDomain,
		Namespace:      c.Deployment.Namespace,
		Chart:          c.chartName(),
	}
}

func (c *Config) chartName() string {
	if c.Deployment.ChartDir == "" {
		return ""
	}
	return filepath.Base(c.Deployment.ChartDir)
}
