// Package config provides configuration management for the haaslab pipeline.
package config

import (
	"fmt"
	"strings"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Haas     HaasConfig     `mapstructure:"haas" validate:"required"`
	Cache    CacheConfig    `mapstructure:"cache" validate:"required"`
	Analysis AnalysisConfig `mapstructure:"analysis" validate:"required"`
	Deploy   DeployConfig   `mapstructure:"deploy" validate:"required"`
	Report   ReportConfig   `mapstructure:"report" validate:"required"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Watch    WatchConfig    `mapstructure:"watch"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// HaasConfig represents the trading platform API configuration
type HaasConfig struct {
	APIURL            string  `mapstructure:"api_url" validate:"required,url"`
	InterfaceKey      string  `mapstructure:"interface_key" validate:"required"`
	UserID            string  `mapstructure:"user_id" validate:"required"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts     int     `mapstructure:"retry_attempts" validate:"gte=0"`
	RateLimitPerSec   float64 `mapstructure:"rate_limit_per_sec" validate:"required,gt=0"`
	PageSize          int     `mapstructure:"page_size" validate:"required,gt=0"`
	MaxPagesPerLab    int     `mapstructure:"max_pages_per_lab" validate:"required,gt=0"`
	PriceCacheTTLSecs int     `mapstructure:"price_cache_ttl_seconds" validate:"required,gt=0"`
}

// CacheConfig represents the local backtest cache configuration
type CacheConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`
}

// AnalysisConfig represents ranking and filtering configuration
type AnalysisConfig struct {
	SortBy             string  `mapstructure:"sort_by" validate:"required,sortkey"`
	TopN               int     `mapstructure:"top_n" validate:"required,gt=0"`
	BaselineSampleSize int     `mapstructure:"baseline_sample_size" validate:"required,gt=0"`
	MinWinRate         float64 `mapstructure:"min_win_rate" validate:"gte=0,lte=1"`
	MinTrades          int     `mapstructure:"min_trades" validate:"gte=0"`
	MinROE             float64 `mapstructure:"min_roe"`
	MaxROE             float64 `mapstructure:"max_roe"`
	MaxDrawdown        float64 `mapstructure:"max_drawdown"`
}

// DeployConfig represents bot deployment configuration
type DeployConfig struct {
	TargetUSDT float64 `mapstructure:"target_usdt" validate:"required,gt=0"`
	Leverage   float64 `mapstructure:"leverage" validate:"gte=0"`
	MaxBots    int     `mapstructure:"max_bots" validate:"required,gt=0"`
	AllowReuse bool    `mapstructure:"allow_reuse"`
	DryRun     bool    `mapstructure:"dry_run"`
}

// ReportConfig represents report artifact configuration
type ReportConfig struct {
	OutputDir string   `mapstructure:"output_dir" validate:"required"`
	Formats   []string `mapstructure:"formats" validate:"required,min=1,formats"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Path    string `mapstructure:"path"`
}

// WatchConfig represents the scheduled re-analysis configuration
type WatchConfig struct {
	Schedule string `mapstructure:"schedule"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// APIEndpoint returns the full URL for a platform API endpoint file,
// normalizing any trailing slash on the configured base URL.
func (h *HaasConfig) APIEndpoint(api string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(h.APIURL, "/"), api)
}
