package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OBRACOST_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("OBRACOST_DB", "")
	t.Setenv("OBRACOST_LOG", "")
	t.Setenv("OBRACOST_VARIANCE_THRESHOLD", "")
	t.Setenv("OBRACOST_PERIOD_TYPE", "")
	t.Setenv("OBRACOST_REQUIRE_APPROVAL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.InDelta(t, 0.10, cfg.VarianceThreshold, 1e-9)
	assert.Equal(t, "monthly", cfg.DefaultPeriodType)
	assert.Equal(t, "CLP", cfg.Currency)
	assert.False(t, cfg.RequireApproval)
	assert.Contains(t, cfg.DBPath, "obracost.db")
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"db_path: /tmp/obra.db\nvariance_threshold: 0.05\nrequire_approval: true\n"), 0o644))

	t.Setenv("OBRACOST_CONFIG", path)
	t.Setenv("OBRACOST_DB", "")
	t.Setenv("OBRACOST_LOG", "")
	t.Setenv("OBRACOST_VARIANCE_THRESHOLD", "")
	t.Setenv("OBRACOST_PERIOD_TYPE", "")
	t.Setenv("OBRACOST_REQUIRE_APPROVAL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/obra.db", cfg.DBPath)
	assert.InDelta(t, 0.05, cfg.VarianceThreshold, 1e-9)
	assert.True(t, cfg.RequireApproval)

	// Environment beats the file.
	t.Setenv("OBRACOST_DB", "/tmp/elsewhere.db")
	t.Setenv("OBRACOST_VARIANCE_THRESHOLD", "0.2")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/elsewhere.db", cfg.DBPath)
	assert.InDelta(t, 0.2, cfg.VarianceThreshold, 1e-9)
}

func TestLoad_BadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_path: [broken"), 0o644))
	t.Setenv("OBRACOST_CONFIG", path)

	_, err := Load()
	assert.Error(t, err)
}
