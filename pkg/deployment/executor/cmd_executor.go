package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	e "github.com/dataspace-ops/emc/pkg/error"
	gocmd "github.com/go-cmd/cmd"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var ErrTimeout = errors.New("command timed out")

//Result of a finished command. A non-zero Exit is not an error of the executor.
type Result struct {
	Cmd     string
	Stdout  []string
	Stderr  []string
	Exit    int
	Runtime time.Duration
}

func (r *Result) StdoutString() string {
	return strings.Join(r.Stdout, "\n")
}

//Combined returns stdout followed by stderr
func (r *Result) Combined() string {
	return strings.Join(append(append([]string{}, r.Stdout...), r.Stderr...), "\n")
}

//go:generate mockery --name=CmdExecutor --output=mocks --case=underscore
type CmdExecutor interface {
	//Run returns an error only if the command could not be launched, timed out or was cancelled
	Run(ctx context.Context, dir string, cmdName string, args ...string) (*Result, error)
}

type DefaultCmdExecutor struct {
	Timeout time.Duration
	Logger  *zap.SugaredLogger
}

func NewCmdExecutor(timeout time.Duration, logger *zap.SugaredLogger) *DefaultCmdExecutor {
	return &DefaultCmdExecutor{Timeout: timeout, Logger: logger}
}

func (d *DefaultCmdExecutor) Run(ctx context.Context, dir string, cmdName string, args ...string) (*Result, error) {
	if len(cmdName) < 1 {
		return nil, errors.New("cmdName must be not empty")
	}
	executableCmd := gocmd.NewCmdOptions(gocmd.Options{Buffered: true}, cmdName, args...)
	executableCmd.Dir = dir
	statusChan := executableCmd.Start()

	var timeout <-chan time.Time
	if d.Timeout > 0 {
		timer := time.NewTimer(d.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	var status gocmd.Status
	var runErr error
	select {
	case status = <-statusChan:
	case <-ctx.Done():
		_ = executableCmd.Stop()
		status = <-statusChan
		runErr = &e.ContextClosedError{
			Message: fmt.Sprintf("'%s' stopped because context got closed", cmdName),
			Cause:   ctx.Err(),
		}
	case <-timeout:
		_ = executableCmd.Stop()
		status = <-statusChan
		runErr = errors.Wrapf(ErrTimeout, "'%s' exceeded %s", cmdName, d.Timeout)
	}

	result := &Result{
		Cmd:     cmdName + " " + strings.Join(args, " "),
		Stdout:  status.Stdout,
		Stderr:  status.Stderr,
		Exit:    status.Exit,
		Runtime: time.Duration(status.Runtime * float64(time.Second)),
	}
	d.Logger.Debugf("Executed command '%s' in '%s' (exit %d, %s)", result.Cmd, dir, result.Exit, result.Runtime)

	if runErr != nil {
		return result, runErr
	}
	//go-cmd reports launch failures (e.g. binary not found) through status.Error with exit -1
	if status.Error != nil {
		return result, errors.Wrapf(status.Error, "failed to execute '%s'", cmdName)
	}
	return result, nil
}

func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

//IsLaunchError is true for errors which are neither a timeout nor a cancellation
func IsLaunchError(err error) bool {
	return err != nil && !IsTimeout(err) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
