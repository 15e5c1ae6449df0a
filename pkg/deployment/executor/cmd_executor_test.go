package executor

import (
	"context"
	"testing"
	"time"

	e "github.com/dataspace-ops/emc/pkg/error"
	"github.com/dataspace-ops/emc/pkg/logger"
	"github.com/stretchr/testify/require"
)

func TestCmdExecutor(t *testing.T) {
	log := logger.NewOptionalLogger(true)

	t.Run("Error when no command passed", func(t *testing.T) {
		_, err := NewCmdExecutor(0, log).Run(context.Background(), "", "")
		require.Error(t, err)
	})

	t.Run("Successful echo", func(t *testing.T) {
		result, err := NewCmdExecutor(0, log).Run(context.Background(), "", "echo", "Hello", "Go")
		require.NoError(t, err)
		require.Equal(t, 0, result.Exit)
		require.Equal(t, "Hello Go", result.StdoutString())
	})

	t.Run("Non-zero exit is reported in result", func(t *testing.T) {
		result, err := NewCmdExecutor(0, log).Run(context.Background(), "", "sh", "-c", "echo out; echo Error: broken >&2; exit 3")
		require.NoError(t, err)
		require.Equal(t, 3, result.Exit)
		require.Equal(t, []string{"out"}, result.Stdout)
		require.Equal(t, "out\nError: broken", result.Combined())
	})

	t.Run("Working directory", func(t *testing.T) {
		dir := t.TempDir()
		result, err := NewCmdExecutor(0, log).Run(context.Background(), dir, "pwd")
		require.NoError(t, err)
		require.Contains(t, result.StdoutString(), dir)
	})

	t.Run("Unknown binary is a launch error", func(t *testing.T) {
		_, err := NewCmdExecutor(0, log).Run(context.Background(), "", "may-the-fourth-be-with-you")
		require.Error(t, err)
		require.True(t, IsLaunchError(err))
	})

	t.Run("Timeout stops the process", func(t *testing.T) {
		start := time.Now()
		_, err := NewCmdExecutor(200*time.Millisecond, log).Run(context.Background(), "", "sleep", "10")
		require.Error(t, err)
		require.True(t, IsTimeout(err))
		require.False(t, IsLaunchError(err))
		require.Less(t, time.Since(start), 5*time.Second)
	})

	t.Run("Cancellation stops the process", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		_, err := NewCmdExecutor(0, log).Run(ctx, "", "sleep", "10")
		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.IsType(t, &e.ContextClosedError{}, err)
		require.False(t, IsLaunchError(err))
	})
}
