package deployment

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/dataspace-ops/emc/pkg/deployment/executor"
	"github.com/dataspace-ops/emc/pkg/features"
	"github.com/dataspace-ops/emc/pkg/files"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/util/validation"
)

const (
	defaultBinary     = "helm"
	defaultNamespace  = "default"
	defaultListRetry  = 3
	defaultRetryDelay = 2 * time.Second
	defaultTimeout    = 10 * time.Minute
)

type Config struct {
	Binary          string        `mapstructure:"binary"`
	ChartDir        string        `mapstructure:"chartDir"`
	Namespace       string        `mapstructure:"namespace"`
	CreateNamespace bool          `mapstructure:"createNamespace"`
	Timeout         time.Duration `mapstructure:"timeout"`
	ListAttempts    uint          `mapstructure:"listAttempts"`
	RetryDelay      time.Duration `mapstructure:"retryDelay"`
	//KeepInstallManifests keeps rendered install manifests in the chart directory after success
	KeepInstallManifests bool `mapstructure:"keepInstallManifests"`
}

func (c *Config) Validate() error {
	if c.ChartDir == "" {
		return errors.New("chart directory of deployment tool is undefined")
	}
	if !file.DirExists(c.ChartDir) {
		return fmt.Errorf("chart directory '%s' does not exist", c.ChartDir)
	}
	if c.Binary == "" {
		c.Binary = defaultBinary
	}
	if c.Namespace == "" {
		c.Namespace = defaultNamespace
	}
	if msgs := validation.IsDNS1123Label(c.Namespace); len(msgs) > 0 {
		return fmt.Errorf("namespace '%s' is invalid: %s", c.Namespace, strings.Join(msgs, ", "))
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout of deployment tool cannot be negative: %s", c.Timeout)
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.ListAttempts == 0 {
		c.ListAttempts = defaultListRetry
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = defaultRetryDelay
	}
	return nil
}

//Result of a successful deployment tool invocation
type Result struct {
	Operation Operation     `json:"operation"`
	Release   string        `json:"release"`
	Namespace string        `json:"namespace"`
	Output    string        `json:"-"`
	Duration  time.Duration `json:"duration"`
}

//Observer receives the duration of every deployment tool invocation
type Observer func(op Operation, success bool, duration time.Duration)

//Driver deploys connectors through the deployment tool
type Driver interface {
	Install(ctx context.Context, name string, files []string, namespace string) (*Result, error)
	Upgrade(ctx context.Context, name string, files []string, namespace string) (*Result, error)
	Uninstall(ctx context.Context, name string, namespace string) (*Result, error)
	List(ctx context.Context, namespace string) ([]*Release, error)
	GetByName(ctx context.Context, name string, namespace string) (*Release, error)
	DependencyUpdate(ctx context.Context) error
	Namespace() string
}

type HelmDriver struct {
	cfg      Config
	executor executor.CmdExecutor
	observer Observer
	logger   *zap.SugaredLogger
}

func NewHelmDriver(cfg Config, cmdExecutor executor.CmdExecutor, logger *zap.SugaredLogger) (*HelmDriver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cmdExecutor == nil {
		cmdExecutor = executor.NewCmdExecutor(cfg.Timeout, logger)
	}
	return &HelmDriver{
		cfg:      cfg,
		executor: cmdExecutor,
		logger:   logger,
	}, nil
}

func (d *HelmDriver) WithObserver(observer Observer) *HelmDriver {
	d.observer = observer
	return d
}

func (d *HelmDriver) Namespace() string {
	return d.cfg.Namespace
}

func (d *HelmDriver) Install(ctx context.Context, name string, files []string, namespace string) (*Result, error) {
	namespace, err := d.validate(name, namespace)
	if err != nil {
		return nil, err
	}
	args := append([]string{"install", name}, valueArgs(files)...)
	args = append(args, "--namespace", namespace)
	if d.cfg.CreateNamespace {
		args = append(args, "--create-namespace")
	}
	args = append(args, ".")
	return d.run(ctx, OperationInstall, name, namespace, args)
}

//Upgrade installs the release if missing. The overlay files are deleted after success.
func (d *HelmDriver) Upgrade(ctx context.Context, name string, files []string, namespace string) (*Result, error) {
	namespace, err := d.validate(name, namespace)
	if err != nil {
		return nil, err
	}
	args := append([]string{"upgrade", "-i", name}, valueArgs(files)...)
	args = append(args, "--namespace", namespace, ".")
	result, err := d.run(ctx, OperationUpgrade, name, namespace, args)
	if err != nil {
		return nil, err
	}
	for _, overlay := range files {
		if err := file.RemoveIfExists(d.path(overlay)); err != nil {
			d.logger.Warnf("Failed to remove upgrade overlay '%s' of release '%s': %s", overlay, name, err)
		}
	}
	return result, nil
}

func (d *HelmDriver) Uninstall(ctx context.Context, name string, namespace string) (*Result, error) {
	namespace, err := d.validate(name, namespace)
	if err != nil {
		return nil, err
	}
	return d.run(ctx, OperationUninstall, name, namespace, []string{"uninstall", name, "--namespace", namespace})
}

func (d *HelmDriver) List(ctx context.Context, namespace string) ([]*Release, error) {
	namespace, err := d.validateNamespace(namespace)
	if err != nil {
		return nil, err
	}
	return d.list(ctx, namespace, "list", "--namespace", namespace)
}

//GetByName returns nil if no release with this name exists
func (d *HelmDriver) GetByName(ctx context.Context, name string, namespace string) (*Release, error) {
	namespace, err := d.validate(name, namespace)
	if err != nil {
		return nil, err
	}
	releases, err := d.list(ctx, namespace, "list", "--namespace", namespace, "--filter", "^"+regexp.QuoteMeta(name)+"$")
	if err != nil {
		return nil, err
	}
	for _, rel := range releases {
		if rel.Name == name {
			return rel, nil
		}
	}
	return nil, nil
}

func (d *HelmDriver) DependencyUpdate(ctx context.Context) error {
	_, err := d.run(ctx, OperationDependencyUpdate, filepath.Base(d.cfg.ChartDir), "", []string{"dependency", "update"})
	return err
}

//list retries launch failures only: a non-zero exit or unparsable output is returned immediately
func (d *HelmDriver) list(ctx context.Context, namespace string, args ...string) ([]*Release, error) {
	var releases []*Release
	err := retry.Do(func() error {
		result, err := d.run(ctx, OperationList, "", namespace, args)
		if err != nil {
			return err
		}
		releases, err = ParseReleases(result.Output)
		if parseErr, ok := err.(*ParseError); ok {
			d.logger.Warnf("Failed to parse release list (%s): %q", parseErr, parseErr.Content)
		}
		return err
	},
		retry.Attempts(d.cfg.ListAttempts),
		retry.Delay(d.cfg.RetryDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			return !IsDeploymentFailure(err) && !IsParseError(err) && executor.IsLaunchError(err)
		}),
		retry.OnRetry(func(n uint, err error) {
			d.logger.Debugf("Retrying to list releases (attempt %d): %s", n+1, err)
		}))
	if err != nil {
		return nil, err
	}
	return releases, nil
}

func (d *HelmDriver) run(ctx context.Context, op Operation, release, namespace string, args []string) (*Result, error) {
	start := time.Now()
	cmdResult, err := d.executor.Run(ctx, d.cfg.ChartDir, d.cfg.Binary, args...)
	duration := time.Since(start)
	if d.observer != nil {
		d.observer(op, err == nil && cmdResult != nil && cmdResult.Exit == 0, duration)
	}

	if err != nil {
		if executor.IsTimeout(err) {
			output := ""
			if cmdResult != nil {
				output = cmdResult.Combined()
			}
			return nil, &DeploymentFailure{
				Operation: op,
				Release:   release,
				Reason:    ReasonTimeout,
				Message:   fmt.Sprintf("no result after %s", d.cfg.Timeout),
				Output:    output,
				Exit:      -1,
			}
		}
		return nil, errors.Wrapf(err, "failed to run %s of '%s'", op, release)
	}
	if cmdResult.Exit != 0 {
		failure := newDeploymentFailure(op, release, cmdResult.Combined(), cmdResult.Exit)
		d.logger.Warnf("Deployment tool %s of '%s' failed with exit code %d: %s", op, release, cmdResult.Exit, failure.Output)
		return nil, failure
	}

	d.logger.Infof("Deployment tool %s of '%s' in namespace '%s' finished after %s", op, release, namespace, duration)
	if features.Enabled(features.ToolOutputLogging) {
		d.logger.Debugf("Output of deployment tool %s of '%s':\n%s", op, release, cmdResult.Combined())
	}
	return &Result{
		Operation: op,
		Release:   release,
		Namespace: namespace,
		Output:    cmdResult.StdoutString(),
		Duration:  duration,
	}, nil
}

func (d *HelmDriver) validate(name, namespace string) (string, error) {
	if msgs := validation.IsDNS1123Label(name); len(msgs) > 0 {
		return "", fmt.Errorf("release name '%s' is invalid: %s", name, strings.Join(msgs, ", "))
	}
	return d.validateNamespace(namespace)
}

func (d *HelmDriver) validateNamespace(namespace string) (string, error) {
	if namespace == "" {
		return d.cfg.Namespace, nil
	}
	if msgs := validation.IsDNS1123Label(namespace); len(msgs) > 0 {
		return "", fmt.Errorf("namespace '%s' is invalid: %s", namespace, strings.Join(msgs, ", "))
	}
	return namespace, nil
}

func (d *HelmDriver) path(fileName string) string {
	if filepath.IsAbs(fileName) {
		return fileName
	}
	return filepath.Join(d.cfg.ChartDir, fileName)
}

func valueArgs(files []string) []string {
	var args []string
	for _, f := range files {
		args = append(args, "-f", f)
	}
	return args
}
