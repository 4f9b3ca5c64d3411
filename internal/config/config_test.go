package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validYAML = `
app:
  name: haaslab
  environment: production
  log_level: info
haas:
  api_url: https://haas.example.com/api
  interface_key: test-key
  user_id: test-user
  timeout_seconds: 30
  retry_attempts: 3
  rate_limit_per_sec: 5.0
  page_size: 100
  max_pages_per_lab: 50
  price_cache_ttl_seconds: 60
cache:
  dir: ./cache/backtests
analysis:
  sort_by: roe
  top_n: 10
  baseline_sample_size: 100
  min_win_rate: 0.3
  min_trades: 5
deploy:
  target_usdt: 2000
  leverage: 20
  max_bots: 5
report:
  output_dir: ./output/reports
  formats: [csv, json, markdown]
`

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "haaslab", cfg.App.Name)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "https://haas.example.com/api", cfg.Haas.APIURL)
	assert.Equal(t, "test-key", cfg.Haas.InterfaceKey)
	assert.Equal(t, 100, cfg.Haas.PageSize)
	assert.Equal(t, "roe", cfg.Analysis.SortBy)
	assert.Equal(t, 0.3, cfg.Analysis.MinWinRate)
	assert.Equal(t, 2000.0, cfg.Deploy.TargetUSDT)
	assert.Equal(t, []string{"csv", "json", "markdown"}, cfg.Report.Formats)

	require.NoError(t, Validate(cfg))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoadExpandsEnvironmentPlaceholders(t *testing.T) {
	t.Setenv("TEST_HAAS_KEY", "expanded-key")

	path := writeConfigFile(t, `
haas:
  interface_key: ${TEST_HAAS_KEY}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "expanded-key", cfg.Haas.InterfaceKey)
}

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "haaslab", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, 30, cfg.Haas.TimeoutSeconds)
	assert.Equal(t, 5.0, cfg.Haas.RateLimitPerSec)
	assert.Equal(t, 100, cfg.Haas.PageSize)
	assert.Equal(t, "roe", cfg.Analysis.SortBy)
	assert.Equal(t, 10, cfg.Analysis.TopN)
	assert.Equal(t, 100, cfg.Analysis.BaselineSampleSize)
	assert.Equal(t, 200.0, cfg.Deploy.TargetUSDT)
	assert.Equal(t, []string{"csv", "json"}, cfg.Report.Formats)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadWithDefaultsFileOverrides(t *testing.T) {
	path := writeConfigFile(t, `
analysis:
  top_n: 3
`)
	cfg, err := LoadWithDefaults(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Analysis.TopN)
	assert.Equal(t, "roe", cfg.Analysis.SortBy)
}

func TestValidateRejectsBadEnvironment(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, validYAML))
	require.NoError(t, err)

	cfg.App.Environment = "qa"
	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "development, staging, production")
}

func TestValidateRejectsBadSortKey(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, validYAML))
	require.NoError(t, err)

	cfg.Analysis.SortBy = "sharpe"
	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "roi, roe, win_rate, profit, trades")
}

func TestValidateRejectsBadFormat(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, validYAML))
	require.NoError(t, err)

	cfg.Report.Formats = []string{"csv", "xml"}
	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv, json, markdown, md, text")
}

func TestValidateRejectsMissingCredentials(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, validYAML))
	require.NoError(t, err)

	cfg.Haas.InterfaceKey = ""
	require.Error(t, Validate(cfg))
}

func TestValidateCrossFieldROEBounds(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, validYAML))
	require.NoError(t, err)

	cfg.Analysis.MinROE = 50
	cfg.Analysis.MaxROE = 10
	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_roe cannot exceed max_roe")
}

func TestAPIEndpoint(t *testing.T) {
	haas := &HaasConfig{APIURL: "https://haas.example.com/api/"}
	assert.Equal(t, "https://haas.example.com/api/LabsAPI.php", haas.APIEndpoint("LabsAPI.php"))
}
