package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/hibernatectl/internal/config"
	"codeberg.org/mutker/hibernatectl/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setArgs(t *testing.T, args ...string) {
	t.Helper()
	oldArgs := os.Args
	os.Args = append([]string{"hibernatectl"}, args...)
	t.Cleanup(func() { os.Args = oldArgs })
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hibernatectl.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	setArgs(t)

	configPath := writeConfig(t, `
log_level = "debug"
console = "serial"
serial_port = "/dev/ttyUSB0"
serial_baud = 9600
signal_file = "/tmp/comparator"
highz_on_sleep = true
telemetry = true
database = "/path/to/telemetry.db"
`)
	t.Setenv("HIBERNATECTL_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel debug")
	assert.Equal(t, "serial", cfg.Console, "Expected serial console backend")
	assert.Equal(t, "/dev/ttyUSB0", cfg.SerialPort)
	assert.Equal(t, 9600, cfg.SerialBaud)
	assert.Equal(t, "/tmp/comparator", cfg.SignalFile)
	assert.True(t, cfg.HighZOnSleep, "Expected HighZOnSleep true")
	assert.True(t, cfg.Telemetry, "Expected Telemetry true")
	assert.Equal(t, "/path/to/telemetry.db", cfg.TelemetryDB)
}

func TestLoadDefaults(t *testing.T) {
	setArgs(t)
	t.Setenv("HIBERNATECTL_CONFIG", "")

	cfg, err := config.Load()
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel, "Expected default LogLevel info")
	assert.Equal(t, config.DefaultConsole, cfg.Console, "Expected stdout console")
	assert.Equal(t, config.DefaultSerialBaud, cfg.SerialBaud)
	assert.Equal(t, config.DefaultSignalFile, cfg.SignalFile)
	assert.False(t, cfg.HighZOnSleep, "Expected default HighZOnSleep false")
	assert.False(t, cfg.Telemetry, "Expected default Telemetry false")
	assert.Equal(t, config.DefaultDBPath, cfg.TelemetryDB)
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	setArgs(t)

	configPath := writeConfig(t, `
This is not a valid TOML file
`)
	t.Setenv("HIBERNATECTL_CONFIG", configPath)

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read config file")
}

func TestInvalidLogLevel(t *testing.T) {
	setArgs(t)

	configPath := writeConfig(t, `
log_level = "invalid"
`)
	t.Setenv("HIBERNATECTL_CONFIG", configPath)

	_, err := config.Load()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInvalidLogLevel))
}

func TestSerialConsoleRequiresPort(t *testing.T) {
	setArgs(t)

	configPath := writeConfig(t, `
console = "serial"
`)
	t.Setenv("HIBERNATECTL_CONFIG", configPath)

	_, err := config.Load()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInvalidConfig))
}

func TestLogLevelFlag(t *testing.T) {
	setArgs(t, "--log-level", "debug")
	t.Setenv("HIBERNATECTL_CONFIG", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel to be set by flag")
}

func TestFlagOverridesFile(t *testing.T) {
	setArgs(t, "--signal-file", "/tmp/override")

	configPath := writeConfig(t, `
signal_file = "/tmp/from-file"
`)
	t.Setenv("HIBERNATECTL_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override", cfg.SignalFile)
}
