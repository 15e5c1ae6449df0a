package deployment

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

type Operation string

const (
	OperationInstall          Operation = "install"
	OperationUpgrade          Operation = "upgrade"
	OperationUninstall        Operation = "uninstall"
	OperationList             Operation = "list"
	OperationDependencyUpdate Operation = "dependency-update"
)

type Reason string

const (
	ReasonAlreadyExists Reason = "already-exists"
	ReasonNotFound      Reason = "not-found"
	ReasonTimeout       Reason = "timeout"
	ReasonFailed        Reason = "failed"
)

const (
	alreadyExistsMarker = "cannot re-use a name that is still in use"
	notFoundMarker      = "release: not found"
	errorToken          = "Error"
)

//DeploymentFailure is returned if the deployment tool exits non-zero or times out.
//Output is diagnostic only and must not be handed to untrusted clients.
type DeploymentFailure struct {
	Operation Operation
	Release   string
	Reason    Reason
	Message   string
	Output    string
	Exit      int
}

func (e *DeploymentFailure) Error() string {
	return fmt.Sprintf("%s of '%s' failed (%s): %s", e.Operation, e.Release, e.Reason, e.Message)
}

func newDeploymentFailure(op Operation, release, output string, exit int) *DeploymentFailure {
	reason := ReasonFailed
	switch {
	case strings.Contains(output, alreadyExistsMarker):
		reason = ReasonAlreadyExists
	case strings.Contains(output, notFoundMarker):
		reason = ReasonNotFound
	}
	return &DeploymentFailure{
		Operation: op,
		Release:   release,
		Reason:    reason,
		Message:   failureMessage(output, exit),
		Output:    output,
		Exit:      exit,
	}
}

//failureMessage extracts the text following the first 'Error' token
func failureMessage(output string, exit int) string {
	idx := strings.Index(output, errorToken)
	if idx < 0 {
		return fmt.Sprintf("exit status %d", exit)
	}
	msg := strings.TrimLeft(output[idx+len(errorToken):], ": ")
	if nl := strings.IndexByte(msg, '\n'); nl >= 0 {
		msg = msg[:nl]
	}
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return fmt.Sprintf("exit status %d", exit)
	}
	return msg
}

func asDeploymentFailure(err error) (*DeploymentFailure, bool) {
	var failure *DeploymentFailure
	ok := errors.As(err, &failure)
	return failure, ok
}

func IsDeploymentFailure(err error) bool {
	_, ok := asDeploymentFailure(err)
	return ok
}

func IsAlreadyExists(err error) bool {
	failure, ok := asDeploymentFailure(err)
	return ok && failure.Reason == ReasonAlreadyExists
}

func IsNotFound(err error) bool {
	failure, ok := asDeploymentFailure(err)
	return ok && failure.Reason == ReasonNotFound
}

func IsTimeout(err error) bool {
	failure, ok := asDeploymentFailure(err)
	return ok && failure.Reason == ReasonTimeout
}

//ParseError is returned if the tabular output of the deployment tool has an unexpected shape.
//Content is the offending tool output: it is logged but never part of the error message.
type ParseError struct {
	Line    int
	Content string
	Reason  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unexpected deployment tool output in line %d (%s)", e.Line, e.Reason)
}

func IsParseError(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}
