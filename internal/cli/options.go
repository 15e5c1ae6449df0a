package cli

import (
	"fmt"
	"os"
	"os/user"
	"sync"

	"github.com/dataspace-ops/emc/pkg/app"
	"github.com/dataspace-ops/emc/pkg/logger"
	"go.uber.org/zap"
)

//EnvUser overrides the user name recorded in the activity log for CLI invocations
const EnvUser = app.EnvVarPrefix + "_USER"

type Options struct {
	Verbose      bool
	ConfigFile   string
	OutputFormat string
	Registry     *app.ApplicationRegistry
	cfg          *app.Config
	logger       *zap.SugaredLogger
	mu           sync.Mutex
}

func (o *Options) String() string {
	return fmt.Sprintf("CLI options: verbose=%t config=%s output=%s registry=%t",
		o.Verbose, o.ConfigFile, o.OutputFormat, o.Registry != nil)
}

//Config loads the configuration once. Verbose mode enables debug logging independent of the file.
func (o *Options) Config() (*app.Config, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cfg != nil {
		return o.cfg, nil
	}
	cfg, err := app.LoadConfig(o.ConfigFile)
	if err != nil {
		return nil, err
	}
	if o.Verbose {
		cfg.Logging.Debug = true
	}
	o.cfg = cfg
	return cfg, nil
}

func (o *Options) Logger() *zap.SugaredLogger {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.logger != nil {
		return o.logger
	}
	debug := o.Verbose
	fileCfg := logger.FileConfig{}
	if o.cfg != nil {
		debug = debug || o.cfg.Logging.Debug
		fileCfg = o.cfg.Logging.FileConfig
	}
	log, err := logger.NewFileLogger(debug, fileCfg)
	if err != nil {
		log = logger.NewOptionalLogger(debug)
		log.Warnf("Failed to initialize log file '%s': %s", fileCfg.Path, err)
	}
	o.logger = log
	return o.logger
}

//InitApplicationRegistry creates the registry unless it exists already.
//Commands which deploy connectors set withDriver: the others work without chart directory.
func (o *Options) InitApplicationRegistry(migrate, withDriver bool) error {
	if o.Registry != nil {
		return nil
	}
	cfg, err := o.Config()
	if err != nil {
		return err
	}
	o.Registry, err = app.NewApplicationRegistry(cfg, o.Logger(), migrate, withDriver)
	return err
}

func (o *Options) Close() error {
	if o.Registry == nil {
		return nil
	}
	err := o.Registry.Close()
	o.Registry = nil
	return err
}

//User is recorded as creator in the activity log
func (o *Options) User() string {
	if name := os.Getenv(EnvUser); name != "" {
		return name
	}
	if current, err := user.Current(); err == nil && current.Username != "" {
		return current.Username
	}
	return "cli"
}

func (o *Options) Validate() error {
	return validateFormat(o.OutputFormat)
}

//NewOutputFormatter creates a formatter for the configured output format
func (o *Options) NewOutputFormatter() (*OutputFormatter, error) {
	return NewOutputFormatter(o.OutputFormat)
}
