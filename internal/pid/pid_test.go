package pid_test

import (
	"os"
	"strconv"
	"testing"

	"codeberg.org/mutker/qosprobe/internal/errors"
	"codeberg.org/mutker/qosprobe/internal/pid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readPID(t *testing.T, f *pid.File) int {
	t.Helper()

	data, err := os.ReadFile(f.Path())
	require.NoError(t, err)
	n, err := strconv.Atoi(string(data))
	require.NoError(t, err)
	return n
}

func TestWriteAndRemove(t *testing.T) {
	f := pid.New(t.TempDir(), "")

	require.NoError(t, f.Write())
	assert.Equal(t, os.Getpid(), readPID(t, f))

	// Rewriting our own pid file is allowed
	require.NoError(t, f.Write())

	require.NoError(t, f.Remove())
	_, err := os.Stat(f.Path())
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, f.Remove(), "removing a missing file is a no-op")
}

func TestWriteDetectsRunningProcess(t *testing.T) {
	f := pid.New(t.TempDir(), "test.pid")

	// The parent of the test binary is alive for the duration of the test
	require.NoError(t, os.WriteFile(f.Path(), []byte(strconv.Itoa(os.Getppid())), 0o600))

	err := f.Write()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrAlreadyRunning))

	require.NoError(t, f.Remove())
	assert.Equal(t, os.Getppid(), readPID(t, f), "another process's file is kept")
}

func TestWriteReplacesGarbage(t *testing.T) {
	f := pid.New(t.TempDir(), "test.pid")
	require.NoError(t, os.WriteFile(f.Path(), []byte("not-a-pid"), 0o600))

	require.NoError(t, f.Write())
	assert.Equal(t, os.Getpid(), readPID(t, f))
}
