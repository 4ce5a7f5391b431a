package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "application-test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("DATABASE__FILENAME", "reviews.csv")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "food-review-api", cfg.ServiceName)
	assert.Equal(t, ":8000", cfg.API.Addr)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, SourceCSV, cfg.Database.Kind)
	assert.Equal(t, "reviews.csv", cfg.Database.Filename)
	assert.Equal(t, "1", cfg.Database.Version)
	assert.Equal(t, 5, cfg.Reload.RateLimit)
	assert.False(t, cfg.Reload.TrustForwardedFor)
}

func TestLoad_ReadsYAML(t *testing.T) {
	path := writeConfig(t, `
service_name: test-food-review-api
environment: test
api:
  addr: ":9000"
logging:
  level: debug
database:
  filename: data/reviews.csv
  version: 2
metrics:
  enabled: true
  token: secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test-food-review-api", cfg.ServiceName)
	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, ":9000", cfg.API.Addr)
	assert.Equal(t, "Food Review API", cfg.API.Title)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "data/reviews.csv", cfg.Database.Filename)
	assert.Equal(t, "2", cfg.Database.Version, "integer versions are read as strings")
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "secret", cfg.Metrics.Token)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, `
database:
  filename: from-file.csv
logging:
  level: debug
`)
	t.Setenv("DATABASE__FILENAME", "from-env.csv")
	t.Setenv("MYT_ENVIRONMENT", "staging")
	t.Setenv("RELOAD__RATE_LIMIT", "0")
	t.Setenv("RELOAD__TRUST_FORWARDED_FOR", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env.csv", cfg.Database.Filename)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 0, cfg.Reload.RateLimit)
	assert.True(t, cfg.Reload.TrustForwardedFor)
}

func TestLoad_Postgres(t *testing.T) {
	t.Setenv("DATABASE__KIND", "postgres")
	t.Setenv("DATABASE__DSN", "postgres://u:p@localhost:5432/reviews")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, SourcePostgres, cfg.Database.Kind)
	assert.Equal(t, "reviews", cfg.Database.Table)
	assert.Empty(t, cfg.Database.Filename)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "missing filename", yaml: "database:\n  kind: csv\n"},
		{name: "unknown kind", yaml: "database:\n  kind: s3\n  filename: x.csv\n"},
		{name: "postgres without dsn", yaml: "database:\n  kind: postgres\n"},
		{name: "bad log level", yaml: "database:\n  filename: x.csv\nlogging:\n  level: loud\n"},
		{name: "zero window", yaml: "database:\n  filename: x.csv\nreload:\n  window_seconds: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "database: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode config")
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("DATABASE__FILENAME", "x.csv")
	t.Setenv("METRICS__ENABLED", "maybe")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}
