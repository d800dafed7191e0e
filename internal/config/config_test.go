package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	cfg.applyEnv(envMap(map[string]string{
		"STORE_DRIVER":    " Postgres ",
		"DATABASE_URL":    "postgres://localhost/bomboniere",
		"SERVER_PORT":     "9090",
		"ALLOWED_ORIGINS": "http://localhost:5173",
		"METRICS_ENABLED": "false",
		"TIMEZONE":        "UTC",
	}))

	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/bomboniere", cfg.Store.DatabaseURL)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "http://localhost:5173", cfg.Server.AllowedOrigins)
	assert.False(t, cfg.Server.MetricsEnabled)
	assert.Equal(t, "UTC", cfg.Timezone)
	require.NoError(t, cfg.Validate())
}

func TestApplyEnv_IgnoresMalformedBool(t *testing.T) {
	cfg := Default()
	cfg.applyEnv(envMap(map[string]string{"METRICS_ENABLED": "sometimes"}))
	assert.True(t, cfg.Server.MetricsEnabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Store.Driver = "mongo" }},
		{"postgres without url", func(c *Config) { c.Store.Driver = DriverPostgres }},
		{"sqlite without path", func(c *Config) { c.Store.SQLitePath = "" }},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := Default()
	cfg.Store.Driver = DriverMemory
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bomboniere.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
timezone = "UTC"

[store]
driver = "memory"

[server]
port = "3000"
metrics_enabled = false
`), 0o600))

	cfg := Default()
	require.NoError(t, cfg.loadFile(path, true))
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, "bomboniere.db", cfg.Store.SQLitePath)
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.False(t, cfg.Server.MetricsEnabled)
	assert.Equal(t, "UTC", cfg.Timezone)
}

func TestLoadFile_Missing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.toml")

	cfg := Default()
	assert.NoError(t, cfg.loadFile(missing, false))
	assert.Error(t, cfg.loadFile(missing, true))
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("BOMBONIERE_CONFIG", "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("SERVER_PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, "7070", cfg.Server.Port)
}
