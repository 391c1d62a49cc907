package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/qosprobe/internal/config"
	"codeberg.org/mutker/qosprobe/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "qosprobe.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"
target = "10.0.0.1"

[log]
dir = "/data/metrics"
basename = "session"
escape_markup = true

[probe]
ping_path = "/system/bin/ping"
timeout = "10s"
rate = 2.5

[jitter]
max_attempts = 3

[packet_loss]
count = 10

[cpu]
parse_mode = "header"

[journal]
enabled = true
path = "/data/journal.db"
`)
	t.Setenv("QOSPROBE_CONFIG", path)

	cfg, err := config.Load(config.WithArgs(nil))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "10.0.0.1", cfg.Target)
	assert.Equal(t, "/data/metrics", cfg.Log.Dir)
	assert.Equal(t, "session", cfg.Log.BaseName)
	assert.True(t, cfg.Log.EscapeMarkup)
	assert.Equal(t, "/system/bin/ping", cfg.Probe.PingPath)
	assert.Equal(t, config.DefaultTopPath, cfg.Probe.TopPath)
	assert.Equal(t, 10*time.Second, cfg.Probe.Timeout)
	assert.InDelta(t, 2.5, cfg.Probe.Rate, 1e-9)
	assert.Equal(t, 3, cfg.Jitter.MaxAttempts)
	assert.Equal(t, 10, cfg.PacketLoss.Count)
	assert.Equal(t, "header", cfg.CPU.ParseMode)
	assert.True(t, cfg.Journal.Enabled)
	assert.Equal(t, "/data/journal.db", cfg.Journal.Path)
	assert.Equal(t, config.DefaultJournalBatch, cfg.Journal.BatchSize)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("QOSPROBE_CONFIG", "")

	cfg, err := config.Load(config.WithArgs(nil))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, config.DefaultBaseName, cfg.Log.BaseName)
	assert.False(t, cfg.Log.EscapeMarkup)
	assert.Equal(t, config.DefaultPingPath, cfg.Probe.PingPath)
	assert.Equal(t, config.DefaultProbeTimeout, cfg.Probe.Timeout)
	assert.Equal(t, config.DefaultJitterRetries, cfg.Jitter.MaxAttempts)
	assert.Equal(t, config.DefaultLossCount, cfg.PacketLoss.Count)
	assert.Equal(t, config.DefaultCPUParseMode, cfg.CPU.ParseMode)
	assert.False(t, cfg.Journal.Enabled)
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	path := writeConfig(t, `
This is not a valid TOML file
`)

	_, err := config.Load(config.WithConfigFile(path), config.WithArgs(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read config file")
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
}

func TestInvalidLogLevel(t *testing.T) {
	path := writeConfig(t, `
log_level = "invalid"
`)

	_, err := config.Load(config.WithConfigFile(path), config.WithArgs(nil))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidLogLevel))
}

func TestInvalidJitterAttempts(t *testing.T) {
	path := writeConfig(t, `
[jitter]
max_attempts = 0
`)

	_, err := config.Load(config.WithConfigFile(path), config.WithArgs(nil))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidConfig))
	assert.Contains(t, err.Error(), "jitter.max_attempts")
}

func TestFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, `
log_level = "error"
target = "10.0.0.1"
`)

	cfg, err := config.Load(
		config.WithConfigFile(path),
		config.WithArgs([]string{"--log-level", "debug", "--target", "192.168.1.1", "--cpu-mode", "header", "--timeout", "2s"}),
	)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel to be set by flag")
	assert.Equal(t, "192.168.1.1", cfg.Target)
	assert.Equal(t, "header", cfg.CPU.ParseMode)
	assert.Equal(t, 2*time.Second, cfg.Probe.Timeout)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[packet_loss]
count = 10
`)
	t.Setenv("QOSPROBE_PACKET_LOSS_COUNT", "20")

	cfg, err := config.Load(config.WithConfigFile(path), config.WithArgs(nil))
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.PacketLoss.Count)
}
