package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withConfigDir(t *testing.T, dir string) {
	t.Helper()
	original := configDirFunc
	configDirFunc = func() string { return dir }
	t.Cleanup(func() { configDirFunc = original })
}

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestLoadMissingDefaultFile(t *testing.T) {
	withConfigDir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logging:
  level: debug
editor:
  temperature: 0.2
  output_format: json
server:
  port: 9000
  shutdown_timeout: 3s
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "auto", cfg.Logging.Format)
	assert.InDelta(t, 0.2, cfg.Editor.Temperature, 1e-9)
	assert.Equal(t, "json", cfg.Editor.OutputFormat)
	assert.Equal(t, "network.hocon", cfg.Editor.NetworkFile)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr())
}

func TestLoadEnvOverride(t *testing.T) {
	withConfigDir(t, t.TempDir())
	t.Setenv("NETFORGE_SERVER_PORT", "9100")
	t.Setenv("NETFORGE_EDITOR_DEFAULT_MODEL", "o1")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "o1", cfg.Editor.DefaultModel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: "logging.level must be one of",
		},
		{
			name:    "temperature too high",
			mutate:  func(c *Config) { c.Editor.Temperature = 1.5 },
			wantErr: "editor.temperature must be at most 1",
		},
		{
			name:    "port zero",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port must be at least 1",
		},
		{
			name:    "missing network file",
			mutate:  func(c *Config) { c.Editor.NetworkFile = "" },
			wantErr: "editor.network_file is required",
		},
		{
			name:    "unknown format",
			mutate:  func(c *Config) { c.Editor.OutputFormat = "toml" },
			wantErr: "editor.output_format must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWriteTemplate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "netforge")

	path, err := WriteTemplate(dir, false)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Netforge Configuration File"))

	_, err = WriteTemplate(dir, false)
	assert.True(t, errors.Is(err, ErrConfigExists))

	_, err = WriteTemplate(dir, true)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestDefaultConfigDirUsesXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "netforge"), defaultConfigDir())
}
