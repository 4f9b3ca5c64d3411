// Package pipeline wires fetching, caching, analysis, allocation and
// deployment into the sequential per-lab run loop.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iamcos/haaslab/internal/allocator"
	"github.com/iamcos/haaslab/internal/analysis"
	"github.com/iamcos/haaslab/internal/cache"
	"github.com/iamcos/haaslab/internal/deploy"
	"github.com/iamcos/haaslab/internal/haas"
	"github.com/iamcos/haaslab/internal/metrics"
	"github.com/iamcos/haaslab/internal/models"
)

// ErrNoLabs aborts a run before any per-lab work happens.
var ErrNoLabs = errors.New("no labs found")

// Platform is the subset of the API client the pipeline needs.
type Platform interface {
	Authenticate(ctx context.Context) error
	GetLabs(ctx context.Context) ([]models.LabSummary, error)
	FetchAllResults(ctx context.Context, labID string, pageSize, maxPages, targetCount int) (haas.FetchOutcome, error)
	ListAccounts(ctx context.Context) ([]haas.RawAccount, error)
	ListBots(ctx context.Context) ([]haas.RawBot, error)
}

// Options selects what one run does.
type Options struct {
	LabIDs       []string // empty means every completed lab
	TopN         int
	SortKey      analysis.SortKey
	Thresholds   analysis.Thresholds
	BeatBaseline bool // discard candidates at or below the baseline ROI
	Refresh      bool // bypass the cache and re-fetch
	Deploy       bool // create bots for the selection
	MaxBots      int  // cap on deployments across the whole run
	AllowReuse   bool // cycle accounts when bots requested exceed accounts
	PageSize     int
	MaxPages     int
	TargetCount  int
	SampleSize   int // baseline sample size
}

// Pipeline runs lab analysis and bot deployment.
type Pipeline struct {
	platform Platform
	store    *cache.Store
	deployer *deploy.Deployer
	logger   *logrus.Logger
}

// New creates a pipeline. The deployer may be nil when the run will
// never deploy.
func New(platform Platform, store *cache.Store, deployer *deploy.Deployer, logger *logrus.Logger) *Pipeline {
	return &Pipeline{
		platform: platform,
		store:    store,
		deployer: deployer,
		logger:   logger,
	}
}

// Run executes the whole pipeline. Only authentication/connection
// failures and an empty lab set return an error; every other failure
// is captured in the summary.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*models.RunSummary, error) {
	summary := &models.RunSummary{
		RunID:     uuid.New(),
		StartedAt: time.Now().UTC(),
		DryRun:    opts.Deploy && p.deployer != nil && p.deployer.DryRun(),
	}

	// Credential failures must surface before any per-lab work.
	if err := p.platform.Authenticate(ctx); err != nil {
		return nil, err
	}

	labs, err := p.selectLabs(ctx, opts.LabIDs)
	if err != nil {
		return nil, err
	}
	if len(labs) == 0 {
		return nil, ErrNoLabs
	}

	var alloc *allocator.Allocator
	if opts.Deploy {
		alloc, err = p.buildAllocator(ctx, opts.AllowReuse)
		if err != nil {
			return nil, err
		}
	}

	deployed := make(map[string]bool) // backtest IDs already bound this run

	for _, lab := range labs {
		result := p.analyzeLab(ctx, lab, opts)
		summary.Labs = append(summary.Labs, result)

		if result.Status == models.LabAnalysisFailed {
			metrics.LabsFailedTotal.Inc()
			continue
		}
		metrics.LabsAnalyzedTotal.Inc()
		metrics.LastRunCandidates.WithLabelValues(lab.LabID).Set(float64(result.CandidateCount))

		if opts.Deploy {
			records := p.deployLab(ctx, &result, alloc, deployed, opts, summary)
			summary.Deployments = append(summary.Deployments, records...)
		}
	}

	summary.FinishedAt = time.Now().UTC()
	return summary, nil
}

// selectLabs resolves the lab filter against the platform's lab list.
func (p *Pipeline) selectLabs(ctx context.Context, labIDs []string) ([]models.LabSummary, error) {
	labs, err := p.platform.GetLabs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list labs: %w", err)
	}

	if len(labIDs) == 0 {
		return labs, nil
	}

	wanted := make(map[string]bool, len(labIDs))
	for _, id := range labIDs {
		wanted[id] = true
	}

	var selected []models.LabSummary
	for _, lab := range labs {
		if wanted[lab.LabID] {
			selected = append(selected, lab)
		}
	}
	return selected, nil
}

// buildAllocator scans accounts and existing bots to find free slots.
func (p *Pipeline) buildAllocator(ctx context.Context, allowReuse bool) (*allocator.Allocator, error) {
	accounts, err := p.platform.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	bots, err := p.platform.ListBots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bots: %w", err)
	}

	alloc := allocator.New(haas.AccountSlots(accounts, bots), allowReuse)
	metrics.FreeAccounts.Set(float64(alloc.PoolSize()))

	p.logger.WithFields(logrus.Fields{
		"accounts":    len(accounts),
		"free_slots":  alloc.PoolSize(),
		"allow_reuse": allowReuse,
	}).Info("Account allocator initialized")
	return alloc, nil
}
