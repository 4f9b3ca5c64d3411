// Package main provides the haaslab CLI: lab backtest analysis and
// bot deployment against the trading platform.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iamcos/haaslab/internal/analysis"
	"github.com/iamcos/haaslab/internal/cache"
	"github.com/iamcos/haaslab/internal/config"
	"github.com/iamcos/haaslab/internal/deploy"
	"github.com/iamcos/haaslab/internal/haas"
	"github.com/iamcos/haaslab/internal/logger"
	"github.com/iamcos/haaslab/internal/metrics"
	"github.com/iamcos/haaslab/internal/pipeline"
	"github.com/iamcos/haaslab/internal/report"
	"github.com/iamcos/haaslab/internal/scheduler"
	"github.com/iamcos/haaslab/internal/transport"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	appLog     *logrus.Logger
	cfg        *config.Config
)

// Shared analysis flags.
var (
	flagLabs        []string
	flagTopN        int
	flagSortBy      string
	flagMinWinRate  float64
	flagMinTrades   int
	flagMinROE      float64
	flagMaxROE      float64
	flagMaxDrawdown float64
	flagBeatBase    bool
	flagRefresh     bool
	flagFormats     []string
)

// Deployment flags.
var (
	flagCount      int
	flagTargetUSDT float64
	flagLeverage   float64
	flagDryRun     bool
	flagAllowReuse bool
)

var flagSchedule string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")

	for _, cmd := range []*cobra.Command{analyzeCmd, createBotsCmd} {
		cmd.Flags().StringSliceVar(&flagLabs, "lab", nil, "Lab ID to process (repeatable; default: all labs)")
		cmd.Flags().IntVar(&flagTopN, "top", 0, "Number of top candidates to select per lab")
		cmd.Flags().StringVar(&flagSortBy, "sort-by", "", "Ranking metric: roi, roe, win_rate, profit, trades")
		cmd.Flags().Float64Var(&flagMinWinRate, "min-winrate", 0, "Minimum win rate (0-1 fraction)")
		cmd.Flags().IntVar(&flagMinTrades, "min-trades", 0, "Minimum trade count")
		cmd.Flags().Float64Var(&flagMinROE, "min-roe", 0, "Minimum ROE percentage")
		cmd.Flags().Float64Var(&flagMaxROE, "max-roe", 0, "Maximum ROE percentage")
		cmd.Flags().Float64Var(&flagMaxDrawdown, "max-drawdown", 0, "Maximum drawdown cap")
		cmd.Flags().BoolVar(&flagBeatBase, "beat-baseline", false, "Discard candidates that do not beat the baseline ROI")
		cmd.Flags().BoolVar(&flagRefresh, "refresh", false, "Bypass the cache and re-fetch results")
		cmd.Flags().StringSliceVar(&flagFormats, "format", nil, "Report formats: csv, json, markdown, text")
	}

	createBotsCmd.Flags().IntVar(&flagCount, "count", 0, "Maximum number of bots to create in this run")
	createBotsCmd.Flags().Float64Var(&flagTargetUSDT, "target-usdt", 0, "Target USDT notional per bot")
	createBotsCmd.Flags().Float64Var(&flagLeverage, "leverage", 0, "Bot leverage")
	createBotsCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Compute names and amounts but create nothing")
	createBotsCmd.Flags().BoolVar(&flagAllowReuse, "allow-reuse", false, "Cycle accounts when bots requested exceed free accounts")

	cacheCmd.Flags().StringSliceVar(&flagLabs, "lab", nil, "Lab ID to operate on (repeatable)")
	cacheCmd.Flags().BoolVar(&flagRefresh, "refresh", false, "Overwrite cached entries while warming")

	watchCmd.Flags().StringVar(&flagSchedule, "schedule", "", "Cron expression for periodic re-analysis")

	rootCmd.AddCommand(analyzeCmd, createBotsCmd, cacheCmd, watchCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "haaslab",
	Short: "Lab backtest analysis and bot deployment pipeline",
	Long: `haaslab pages through lab backtest results on the trading platform,
caches and ranks them, and deploys the best configurations as live bots
under per-account constraints.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		return setup()
	},
}

func setup() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	appLog = logger.NewLogger(cfg.App.LogLevel, cfg.IsProduction())
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
	}).Debug("haaslab starting")
	return nil
}

// buildPipeline wires the API client, cache store and (optionally) the
// deployer. The returned teardown func releases the HTTP client's idle
// connections and must be deferred by the caller.
func buildPipeline(withDeployer, dryRun bool) (*pipeline.Pipeline, func()) {
	httpCfg := transport.DefaultHTTPClientConfig()
	httpCfg.Timeout = time.Duration(cfg.Haas.TimeoutSeconds) * time.Second
	httpCfg.MaxRetries = cfg.Haas.RetryAttempts
	httpCfg.RateLimit = cfg.Haas.RateLimitPerSec

	httpLogger := log.New(os.Stderr, "haas-http: ", log.LstdFlags)
	httpClient := transport.NewRateLimitedHTTPClient(httpCfg, httpLogger)
	client := haas.NewClient(&cfg.Haas, httpClient, appLog)

	store := cache.NewStore(cfg.Cache.Dir, flagRefresh, appLog)

	var deployer *deploy.Deployer
	if withDeployer {
		targetUSDT := cfg.Deploy.TargetUSDT
		if flagTargetUSDT > 0 {
			targetUSDT = flagTargetUSDT
		}
		leverage := cfg.Deploy.Leverage
		if flagLeverage > 0 {
			leverage = flagLeverage
		}
		prices := deploy.NewPriceCache(client, time.Duration(cfg.Haas.PriceCacheTTLSecs)*time.Second)
		deployer = deploy.NewDeployer(client, prices, deploy.Config{
			TargetUSDT: targetUSDT,
			Leverage:   leverage,
			DryRun:     dryRun,
		}, appLog)
	}

	teardown := func() {
		if err := httpClient.Close(); err != nil {
			appLog.WithError(err).Debug("Failed to close HTTP client")
		}
	}
	return pipeline.New(client, store, deployer, appLog), teardown
}

// buildOptions merges config defaults with flag overrides.
func buildOptions(cmd *cobra.Command) pipeline.Options {
	opts := pipeline.Options{
		LabIDs:       flagLabs,
		TopN:         cfg.Analysis.TopN,
		SortKey:      analysis.ParseSortKey(cfg.Analysis.SortBy),
		Refresh:      flagRefresh,
		PageSize:     cfg.Haas.PageSize,
		MaxPages:     cfg.Haas.MaxPagesPerLab,
		SampleSize:   cfg.Analysis.BaselineSampleSize,
		BeatBaseline: flagBeatBase,
	}

	if flagTopN > 0 {
		opts.TopN = flagTopN
	}
	if flagSortBy != "" {
		opts.SortKey = analysis.ParseSortKey(flagSortBy)
	}

	t := analysis.Thresholds{}
	if cmd.Flags().Changed("min-winrate") {
		t.MinWinRate = &flagMinWinRate
	} else if cfg.Analysis.MinWinRate > 0 {
		t.MinWinRate = &cfg.Analysis.MinWinRate
	}
	if cmd.Flags().Changed("min-trades") {
		t.MinTrades = &flagMinTrades
	} else if cfg.Analysis.MinTrades > 0 {
		t.MinTrades = &cfg.Analysis.MinTrades
	}
	if cmd.Flags().Changed("min-roe") {
		t.MinROE = &flagMinROE
	} else if cfg.Analysis.MinROE != 0 {
		t.MinROE = &cfg.Analysis.MinROE
	}
	if cmd.Flags().Changed("max-roe") {
		t.MaxROE = &flagMaxROE
	} else if cfg.Analysis.MaxROE != 0 {
		t.MaxROE = &cfg.Analysis.MaxROE
	}
	if cmd.Flags().Changed("max-drawdown") {
		t.MaxDrawdown = &flagMaxDrawdown
	} else if cfg.Analysis.MaxDrawdown != 0 {
		t.MaxDrawdown = &cfg.Analysis.MaxDrawdown
	}
	opts.Thresholds = t
	return opts
}

func reportFormats() []string {
	if len(flagFormats) > 0 {
		return flagFormats
	}
	return cfg.Report.Formats
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze lab backtest results and rank candidates",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := signalContext()
		p, teardown := buildPipeline(false, false)
		defer teardown()

		summary, err := p.Run(ctx, buildOptions(cmd))
		if err != nil {
			return err
		}

		report.NewWriter(cfg.Report.OutputDir, appLog).Write(summary, reportFormats())
		fmt.Print(report.RenderText(summary))
		logger.NewAuditLogger(appLog).LogRunCompleted(summary)

		if summary.Failed() {
			return fmt.Errorf("one or more labs failed")
		}
		return nil
	},
}

var createBotsCmd = &cobra.Command{
	Use:   "create-bots",
	Short: "Deploy top-ranked backtests as live bots",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := signalContext()

		dryRun := flagDryRun || cfg.Deploy.DryRun
		p, teardown := buildPipeline(true, dryRun)
		defer teardown()

		opts := buildOptions(cmd)
		opts.Deploy = true
		opts.AllowReuse = flagAllowReuse || cfg.Deploy.AllowReuse
		opts.MaxBots = cfg.Deploy.MaxBots
		if flagCount > 0 {
			opts.MaxBots = flagCount
		}

		summary, err := p.Run(ctx, opts)
		if err != nil {
			return err
		}

		report.NewWriter(cfg.Report.OutputDir, appLog).Write(summary, reportFormats())
		fmt.Print(report.RenderText(summary))

		audit := logger.NewAuditLogger(appLog)
		for _, d := range summary.Deployments {
			audit.LogBotDeployment(d)
		}
		audit.LogRunCompleted(summary)

		if summary.Failed() {
			return fmt.Errorf("one or more deployments failed")
		}
		return nil
	},
}

var cacheCmd = &cobra.Command{
	Use:       "cache [list|warm|clear]",
	Short:     "Inspect, warm or clear the local backtest cache",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"list", "warm", "clear"},
	RunE: func(cmd *cobra.Command, args []string) error {
		store := cache.NewStore(cfg.Cache.Dir, flagRefresh, appLog)

		switch args[0] {
		case "list":
			stats, err := store.GetStats()
			if err != nil {
				return err
			}
			fmt.Printf("%d cached records, %.2f MB\n", stats.FileCount, float64(stats.TotalBytes)/(1024*1024))
			return nil

		case "clear":
			labID := ""
			if len(flagLabs) > 0 {
				labID = flagLabs[0]
			}
			removed, err := store.Clear(labID)
			if err != nil {
				return err
			}
			logger.NewAuditLogger(appLog).LogCacheClear(labID, removed)
			fmt.Printf("removed %d cache entries\n", removed)
			return nil

		case "warm":
			ctx := signalContext()
			p, teardown := buildPipeline(false, false)
			defer teardown()
			counts, err := p.WarmCache(ctx, pipeline.Options{
				LabIDs:   flagLabs,
				Refresh:  flagRefresh,
				PageSize: cfg.Haas.PageSize,
				MaxPages: cfg.Haas.MaxPagesPerLab,
			})
			if err != nil {
				return err
			}
			for labID, n := range counts {
				fmt.Printf("lab %s: %d records cached\n", labID, n)
			}
			return nil
		}
		return fmt.Errorf("unknown cache action %q", args[0])
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run lab analysis on a cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		schedule := flagSchedule
		if schedule == "" {
			schedule = cfg.Watch.Schedule
		}
		if schedule == "" {
			return fmt.Errorf("a cron schedule is required (--schedule or watch.schedule)")
		}

		p, teardown := buildPipeline(false, false)
		defer teardown()
		opts := buildOptions(cmd)

		s := scheduler.NewScheduler(p.Run, opts, appLog)
		if err := s.Schedule(schedule); err != nil {
			return err
		}

		if cfg.Metrics.Enabled {
			go func() {
				if err := metrics.Serve(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
					appLog.WithError(err).Error("Metrics endpoint failed")
				}
			}()
		}

		s.Start()
		appLog.WithField("schedule", schedule).Info("Watching labs")

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		sig := <-sigChan
		appLog.WithField("signal", sig).Info("Shutdown signal received")

		s.Stop()
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("haaslab %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

// signalContext returns a context cancelled by SIGINT/SIGTERM.
func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()
	return ctx
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
