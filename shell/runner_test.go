package shell

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(t *testing.T) Runner {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	return NewRunner(command.NewFactory(env.NewRepository()), log.NewLogger())
}

func TestRun(t *testing.T) {
	runner := newTestRunner(t)

	out, err := runner.Run(context.Background(), "", "sh", "-c", "echo '  hello  '")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestRun_Dir(t *testing.T) {
	runner := newTestRunner(t)
	dir := t.TempDir()

	out, err := runner.Run(context.Background(), dir, "sh", "-c", "ls -a")
	require.NoError(t, err)
	assert.Contains(t, out, ".")
}

func TestRun_Failure(t *testing.T) {
	runner := newTestRunner(t)

	_, err := runner.Run(context.Background(), "", "sh", "-c", "echo boom; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed")
}

func TestRun_ReturnsWhenContextExpires(t *testing.T) {
	runner := newTestRunner(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := runner.Run(ctx, "", "sh", "-c", "sleep 3")
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, elapsed, 2*time.Second)
}

func TestRun_ContextAlreadyDone(t *testing.T) {
	runner := newTestRunner(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx, "", "sh", "-c", "echo never")
	require.ErrorIs(t, err, context.Canceled)
}
