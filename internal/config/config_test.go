package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests in this file touch the process environment and must not run in
// parallel.

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)

	assert.Equal(t, "driverstats", cfg.Job)
	assert.Equal(t, "files/input/drivers.csv", cfg.Input.Drivers)
	assert.Equal(t, "files/input/timesheet.csv", cfg.Input.Timesheet)
	assert.Equal(t, "utf-8", cfg.Input.Encoding)
	assert.Equal(t, ",", cfg.Input.Comma)
	assert.False(t, cfg.Input.TrimSpace)
	assert.True(t, cfg.Input.LazyQuotes)
	assert.Equal(t, "files/output/summary.csv", cfg.Output.Summary)
	assert.Empty(t, cfg.Output.Workbook)
	assert.Equal(t, "files/plots/top10_drivers.png", cfg.Output.Chart)
	assert.Equal(t, ChartConfig{TopN: 10, WidthIn: 12, HeightIn: 8, DPI: 300}, cfg.Chart)
	assert.Equal(t, LoggingConfig{Level: "info", Format: "text"}, cfg.Logging)
	assert.Equal(t, "none", cfg.Metrics.Backend)

	assert.Empty(t, Validate(*cfg), "defaults must validate cleanly")
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DRIVERSTATS_INPUT_DRIVERS", "/data/roster.csv")
	t.Setenv("DRIVERSTATS_INPUT_COMMA", ";")
	t.Setenv("DRIVERSTATS_INPUT_TRIM_SPACE", "true")
	t.Setenv("DRIVERSTATS_INPUT_LAZY_QUOTES", "false")
	t.Setenv("DRIVERSTATS_OUTPUT_WORKBOOK", "out/summary.xlsx")
	t.Setenv("DRIVERSTATS_CHART_TOP_N", "5")
	t.Setenv("DRIVERSTATS_CHART_DPI", "72.5")
	t.Setenv("DRIVERSTATS_LOG_LEVEL", "debug")
	t.Setenv("DRIVERSTATS_METRICS_BACKEND", "datadog")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)

	assert.Equal(t, "/data/roster.csv", cfg.Input.Drivers)
	assert.Equal(t, ";", cfg.Input.Comma)
	assert.True(t, cfg.Input.TrimSpace)
	assert.False(t, cfg.Input.LazyQuotes)
	assert.Equal(t, "out/summary.xlsx", cfg.Output.Workbook)
	assert.Equal(t, 5, cfg.Chart.TopN)
	assert.Equal(t, 72.5, cfg.Chart.DPI)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "datadog", cfg.Metrics.Backend)
}

func TestLoad_EnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"DRIVERSTATS_JOB=nightly\nDRIVERSTATS_CHART_TOP_N=3\n"), 0o644))
	// godotenv never overrides variables that are already set, and t.Setenv
	// restores them afterwards.
	t.Setenv("DRIVERSTATS_JOB", "")
	require.NoError(t, os.Unsetenv("DRIVERSTATS_JOB"))
	t.Setenv("DRIVERSTATS_CHART_TOP_N", "7")

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, "nightly", cfg.Job)
	assert.Equal(t, 7, cfg.Chart.TopN, "process environment wins over the env file")
}

func TestLoad_BadValue(t *testing.T) {
	t.Setenv("DRIVERSTATS_CHART_TOP_N", "ten")

	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOP_N")
}
