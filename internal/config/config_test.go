package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks the override variables for the duration of a test.
func clearEnv(t *testing.T) {
	for _, k := range []string{"DATABASE_URL", "FINSPECT_DYNAMODB_TABLE", "AWS_REGION", "FINSPECT_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestRoundTrip(t *testing.T) {
	clearEnv(t)
	cfg := Default("Escritorio Silva")
	cfg.Store.Backend = "postgres"
	cfg.Store.PostgresURL = "postgres://localhost/finspect"
	cfg.Aggregation.StrictAmbiguity = true
	cfg.Chart.Path = "accounts/chart-of-accounts.csv"

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: Escritorio Silva")
	assert.Contains(t, string(data), "strict_ambiguity: true")

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default("My Firm")

	assert.Equal(t, "My Firm", cfg.Business.Name)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, "data", cfg.Store.Dir)
	assert.EqualValues(t, 1<<20, cfg.Import.MaxFileSize)
	assert.Equal(t, 4, cfg.Import.Concurrency)
	assert.False(t, cfg.Aggregation.StrictAmbiguity)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Rules.Path)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("store:\n  backend: memory\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.EqualValues(t, DefaultMaxFileSize, cfg.Import.MaxFileSize)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, Save(path, Default("x")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("FINSPECT_DYNAMODB_TABLE=from-dotenv\nFINSPECT_LOG_LEVEL=debug\n"), 0o644))

	// Variables already in the environment win over the .env file.
	clearEnv(t)
	t.Setenv("FINSPECT_LOG_LEVEL", "warn")
	t.Setenv("DATABASE_URL", "postgres://env/db")
	os.Unsetenv("FINSPECT_DYNAMODB_TABLE")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/db", cfg.Store.PostgresURL)
	assert.Equal(t, "from-dotenv", cfg.Store.Table)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("store: [unclosed"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}
