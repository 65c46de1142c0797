//go:build integration && !windows

package rod_test

import (
	"syscall"
	"testing"
	"time"

	"github.com/fwojciec/adcrawl/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Close_KillsLauncherProcess(t *testing.T) {
	t.Parallel()

	s, err := rod.NewSession()
	require.NoError(t, err)

	pid := s.LauncherPID()
	require.NotZero(t, pid, "launcher PID should be set")

	// Signal 0 checks the process exists without affecting it.
	err = syscall.Kill(pid, syscall.Signal(0))
	require.NoError(t, err, "launcher process should be running before Close()")

	require.NoError(t, s.Close())
	time.Sleep(100 * time.Millisecond)

	err = syscall.Kill(pid, syscall.Signal(0))
	assert.Error(t, err, "launcher process should be terminated after Close()")
}
