package deployment

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dataspace-ops/emc/pkg/deployment/executor"
	"github.com/dataspace-ops/emc/pkg/deployment/executor/mocks"
	"github.com/dataspace-ops/emc/pkg/logger"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestDriver(t *testing.T, cmdExecutor executor.CmdExecutor) (*HelmDriver, string) {
	chartDir := t.TempDir()
	driver, err := NewHelmDriver(Config{
		ChartDir:   chartDir,
		Namespace:  "edc",
		RetryDelay: time.Millisecond,
	}, cmdExecutor, logger.NewOptionalLogger(true))
	require.NoError(t, err)
	return driver, chartDir
}

func succeeded(stdout ...string) *executor.Result {
	return &executor.Result{Stdout: stdout}
}

func failed(exit int, stderr ...string) *executor.Result {
	return &executor.Result{Exit: exit, Stderr: stderr}
}

func TestHelmDriver(t *testing.T) {
	ctx := context.Background()

	t.Run("Install builds argument vector", func(t *testing.T) {
		cmdExecutor := &mocks.CmdExecutor{}
		driver, chartDir := newTestDriver(t, cmdExecutor)
		cmdExecutor.On("Run", ctx, chartDir, "helm",
			"install", "acme", "-f", "acme_values_10.yaml", "--namespace", "edc", ".").
			Return(succeeded("STATUS: deployed"), nil)

		result, err := driver.Install(ctx, "acme", []string{"acme_values_10.yaml"}, "")
		require.NoError(t, err)
		require.Equal(t, OperationInstall, result.Operation)
		require.Equal(t, "edc", result.Namespace)
		cmdExecutor.AssertExpectations(t)
	})

	t.Run("Install with namespace creation", func(t *testing.T) {
		cmdExecutor := &mocks.CmdExecutor{}
		chartDir := t.TempDir()
		driver, err := NewHelmDriver(Config{ChartDir: chartDir, CreateNamespace: true}, cmdExecutor, logger.NewOptionalLogger(true))
		require.NoError(t, err)
		cmdExecutor.On("Run", ctx, chartDir, "helm",
			"install", "acme", "-f", "a.yaml", "-f", "b.yaml", "--namespace", "other", "--create-namespace", ".").
			Return(succeeded(), nil)

		_, err = driver.Install(ctx, "acme", []string{"a.yaml", "b.yaml"}, "other")
		require.NoError(t, err)
		cmdExecutor.AssertExpectations(t)
	})

	t.Run("Install of existing release", func(t *testing.T) {
		cmdExecutor := &mocks.CmdExecutor{}
		driver, _ := newTestDriver(t, cmdExecutor)
		cmdExecutor.On("Run", mock.Anything, mock.Anything, "helm", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(failed(1, "Error: INSTALLATION FAILED: cannot re-use a name that is still in use"), nil)

		_, err := driver.Install(ctx, "acme", []string{"acme_values_10.yaml"}, "")
		require.Error(t, err)
		require.True(t, IsDeploymentFailure(err))
		require.True(t, IsAlreadyExists(err))
		failure, _ := asDeploymentFailure(err)
		require.Equal(t, "INSTALLATION FAILED: cannot re-use a name that is still in use", failure.Message)
		require.Equal(t, 1, failure.Exit)
	})

	t.Run("Invalid release name is rejected before invocation", func(t *testing.T) {
		cmdExecutor := &mocks.CmdExecutor{}
		driver, _ := newTestDriver(t, cmdExecutor)
		_, err := driver.Install(ctx, "Acme_1", nil, "")
		require.Error(t, err)
		_, err = driver.Uninstall(ctx, "acme", "bad namespace")
		require.Error(t, err)
		cmdExecutor.AssertNotCalled(t, "Run")
	})

	t.Run("Upgrade removes overlays after success", func(t *testing.T) {
		cmdExecutor := &mocks.CmdExecutor{}
		driver, chartDir := newTestDriver(t, cmdExecutor)
		overlay := filepath.Join(chartDir, "acme_values_11.yaml")
		require.NoError(t, ioutil.WriteFile(overlay, []byte("a: b"), 0600))
		cmdExecutor.On("Run", ctx, chartDir, "helm",
			"upgrade", "-i", "acme", "-f", "acme_values_11.yaml", "--namespace", "edc", ".").
			Return(succeeded(), nil)

		_, err := driver.Upgrade(ctx, "acme", []string{"acme_values_11.yaml"}, "")
		require.NoError(t, err)
		_, err = os.Stat(overlay)
		require.True(t, os.IsNotExist(err))
	})

	t.Run("Failed upgrade keeps overlays", func(t *testing.T) {
		cmdExecutor := &mocks.CmdExecutor{}
		driver, chartDir := newTestDriver(t, cmdExecutor)
		overlay := filepath.Join(chartDir, "acme_values_11.yaml")
		require.NoError(t, ioutil.WriteFile(overlay, []byte("a: b"), 0600))
		cmdExecutor.On("Run", mock.Anything, mock.Anything, "helm", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(failed(1, "Error: UPGRADE FAILED: boom"), nil)

		_, err := driver.Upgrade(ctx, "acme", []string{"acme_values_11.yaml"}, "")
		require.True(t, IsDeploymentFailure(err))
		require.FileExists(t, overlay)
	})

	t.Run("Uninstall of missing release", func(t *testing.T) {
		cmdExecutor := &mocks.CmdExecutor{}
		driver, chartDir := newTestDriver(t, cmdExecutor)
		cmdExecutor.On("Run", ctx, chartDir, "helm", "uninstall", "acme", "--namespace", "edc").
			Return(failed(1, "Error: uninstall: Release not loaded: acme: release: not found"), nil)

		_, err := driver.Uninstall(ctx, "acme", "")
		require.True(t, IsNotFound(err))
		require.False(t, IsAlreadyExists(err))
	})

	t.Run("Timeout", func(t *testing.T) {
		cmdExecutor := &mocks.CmdExecutor{}
		driver, _ := newTestDriver(t, cmdExecutor)
		cmdExecutor.On("Run", mock.Anything, mock.Anything, "helm", "uninstall", "acme", "--namespace", "edc").
			Return(failed(-1), errors.Wrap(executor.ErrTimeout, "helm"))

		_, err := driver.Uninstall(ctx, "acme", "")
		require.True(t, IsTimeout(err))
	})

	t.Run("List parses releases", func(t *testing.T) {
		cmdExecutor := &mocks.CmdExecutor{}
		driver, chartDir := newTestDriver(t, cmdExecutor)
		cmdExecutor.On("Run", ctx, chartDir, "helm", "list", "--namespace", "edc").
			Return(succeeded(listHeader, "acme\tedc\t2\tnow\tdeployed\tchart-0.10.2\t0.10.2"), nil)

		releases, err := driver.List(ctx, "")
		require.NoError(t, err)
		require.Len(t, releases, 1)
		require.Equal(t, "acme", releases[0].Name)
		require.Equal(t, 2, releases[0].Revision)
	})

	t.Run("List retries launch failures", func(t *testing.T) {
		cmdExecutor := &mocks.CmdExecutor{}
		driver, _ := newTestDriver(t, cmdExecutor)
		cmdExecutor.On("Run", mock.Anything, mock.Anything, "helm", "list", "--namespace", "edc").
			Return(nil, errors.New("exec: helm: not found")).Twice()
		cmdExecutor.On("Run", mock.Anything, mock.Anything, "helm", "list", "--namespace", "edc").
			Return(succeeded(listHeader), nil).Once()

		releases, err := driver.List(ctx, "")
		require.NoError(t, err)
		require.Empty(t, releases)
		cmdExecutor.AssertNumberOfCalls(t, "Run", 3)
	})

	t.Run("List does not retry parse failures", func(t *testing.T) {
		cmdExecutor := &mocks.CmdExecutor{}
		driver, _ := newTestDriver(t, cmdExecutor)
		cmdExecutor.On("Run", mock.Anything, mock.Anything, "helm", "list", "--namespace", "edc").
			Return(succeeded("garbage"), nil)

		_, err := driver.List(ctx, "")
		require.True(t, IsParseError(err))
		cmdExecutor.AssertNumberOfCalls(t, "Run", 1)
	})

	t.Run("Get by name filters exactly", func(t *testing.T) {
		cmdExecutor := &mocks.CmdExecutor{}
		driver, _ := newTestDriver(t, cmdExecutor)
		cmdExecutor.On("Run", mock.Anything, mock.Anything, "helm", "list", "--namespace", "edc", "--filter", "^acme$").
			Return(succeeded(listHeader, "acme\tedc\t1\tnow\tdeployed\tchart-0.10.2\t0.10.2"), nil).Once()
		cmdExecutor.On("Run", mock.Anything, mock.Anything, "helm", "list", "--namespace", "edc", "--filter", "^other$").
			Return(succeeded(listHeader), nil).Once()

		rel, err := driver.GetByName(ctx, "acme", "")
		require.NoError(t, err)
		require.NotNil(t, rel)
		require.Equal(t, "chart-0.10.2", rel.Chart)

		rel, err = driver.GetByName(ctx, "other", "")
		require.NoError(t, err)
		require.Nil(t, rel)
	})

	t.Run("Observer receives every invocation", func(t *testing.T) {
		cmdExecutor := &mocks.CmdExecutor{}
		driver, _ := newTestDriver(t, cmdExecutor)
		var observed []string
		driver.WithObserver(func(op Operation, success bool, _ time.Duration) {
			observed = append(observed, string(op)+":"+map[bool]string{true: "ok", false: "error"}[success])
		})
		cmdExecutor.On("Run", mock.Anything, mock.Anything, "helm", "dependency", "update").Return(succeeded(), nil).Once()
		cmdExecutor.On("Run", mock.Anything, mock.Anything, "helm", "uninstall", "acme", "--namespace", "edc").Return(failed(1, "Error: x"), nil).Once()

		require.NoError(t, driver.DependencyUpdate(ctx))
		_, _ = driver.Uninstall(ctx, "acme", "")
		require.Equal(t, "dependency-update:ok,uninstall:error", strings.Join(observed, ","))
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg := Config{ChartDir: t.TempDir()}
		require.NoError(t, cfg.Validate())
		require.Equal(t, "helm", cfg.Binary)
		require.Equal(t, "default", cfg.Namespace)
		require.Equal(t, 10*time.Minute, cfg.Timeout)
		require.Equal(t, uint(3), cfg.ListAttempts)
		require.Equal(t, 2*time.Second, cfg.RetryDelay)
	})

	t.Run("Configured timeout is kept", func(t *testing.T) {
		cfg := Config{ChartDir: t.TempDir(), Timeout: 30 * time.Second}
		require.NoError(t, cfg.Validate())
		require.Equal(t, 30*time.Second, cfg.Timeout)
	})

	t.Run("Negative timeout", func(t *testing.T) {
		cfg := Config{ChartDir: t.TempDir(), Timeout: -time.Second}
		require.Error(t, cfg.Validate())
	})

	t.Run("Missing chart directory", func(t *testing.T) {
		cfg := Config{ChartDir: filepath.Join(t.TempDir(), "missing")}
		require.Error(t, cfg.Validate())
	})

	t.Run("Invalid namespace", func(t *testing.T) {
		cfg := Config{ChartDir: t.TempDir(), Namespace: "Not_Valid"}
		require.Error(t, cfg.Validate())
	})
}

func TestFailureMessage(t *testing.T) {
	require.Equal(t, "exit status 2", failureMessage("something went wrong", 2))
	require.Equal(t, "exit status 1", failureMessage("Error:   ", 1))
	require.Equal(t, "first line", failureMessage("install.go:200 debug\nError: first line\nsecond line", 1))
}
