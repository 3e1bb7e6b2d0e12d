package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	unsetEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ".", cfg.Folder)
	assert.Equal(t, "sms_backup.csv", cfg.Output)
	assert.Equal(t, ModeAuto, cfg.Mode)
	assert.True(t, cfg.Progress)
	require.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	unsetEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
folder: /evidence/extract
output: /cases/42/messages.csv
sqlite: /cases/42/messages.db
mode: cli
logging:
  level: debug
  format: json
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/evidence/extract", cfg.Folder)
	assert.Equal(t, "/cases/42/messages.csv", cfg.Output)
	assert.Equal(t, "/cases/42/messages.db", cfg.SQLite)
	assert.Equal(t, ModeCLI, cfg.Mode)
	assert.True(t, cfg.Progress, "unset keys keep their defaults")
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv(envLogLevel, "warn")
	t.Setenv(envLogFormat, "logfmt")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "logfmt", cfg.Logging.Format)
}

func TestLoadErrors(t *testing.T) {
	unsetEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config file")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("folder: [unterminated"), 0o644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "parse config file")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Mode = "window"
	assert.ErrorContains(t, cfg.Validate(), "unknown mode")

	cfg = Default()
	cfg.Output = " "
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Folder = ""
	assert.Error(t, cfg.Validate())
}

func unsetEnv(t *testing.T) {
	t.Helper()
	t.Setenv(envLogLevel, "")
	t.Setenv(envLogFormat, "")
}
