package pipeline

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iamcos/haaslab/internal/analysis"
	"github.com/iamcos/haaslab/internal/haas"
	"github.com/iamcos/haaslab/internal/models"
)

// analyzeLab is the per-lab error boundary: whatever goes wrong inside
// produces a failed LabAnalysisResult and the outer loop moves on.
// Only authentication errors escape, via the failed result's error
// text and the fetch path having already surfaced them in Run.
func (p *Pipeline) analyzeLab(ctx context.Context, lab models.LabSummary, opts Options) models.LabAnalysisResult {
	result := models.LabAnalysisResult{
		LabID:      lab.LabID,
		LabName:    lab.Name,
		AnalyzedAt: time.Now().UTC(),
	}

	records, partial, err := p.collectRecords(ctx, lab.LabID, opts)
	if err != nil {
		p.logger.WithField("lab_id", lab.LabID).WithError(err).Error("Lab analysis failed")
		result.Status = models.LabAnalysisFailed
		result.Error = err.Error()
		return result
	}
	if len(records) == 0 {
		result.Status = models.LabAnalysisFailed
		result.Error = "no usable backtest records"
		return result
	}

	// Baseline from the leading sample, in fetch order.
	sample := records
	if opts.SampleSize > 0 && opts.SampleSize < len(sample) {
		sample = sample[:opts.SampleSize]
	}
	baseline, err := analysis.ComputeBaseline(sample)
	if err != nil {
		result.Status = models.LabAnalysisFailed
		result.Error = err.Error()
		return result
	}
	result.BaselineValue = baseline

	candidates := records
	if opts.BeatBaseline {
		candidates = beatingBaseline(records, baseline)
	}

	ranked := analysis.RankAndFilter(candidates, opts.SortKey, opts.Thresholds)
	result.CandidateCount = len(ranked)
	result.Selected = analysis.TopN(ranked, opts.TopN)

	result.Status = models.LabAnalysisCompleted
	if partial {
		result.Status = models.LabAnalysisPartial
	}

	p.logger.WithFields(logrus.Fields{
		"lab_id":     lab.LabID,
		"records":    len(records),
		"candidates": result.CandidateCount,
		"selected":   len(result.Selected),
		"baseline":   baseline,
		"status":     result.Status,
	}).Info("Lab analyzed")
	return result
}

// collectRecords returns the lab's normalized records, cache-first.
// The bool result reports whether a remote fetch ended partially.
func (p *Pipeline) collectRecords(ctx context.Context, labID string, opts Options) ([]models.BacktestRecord, bool, error) {
	if !opts.Refresh {
		cached, err := p.store.GetAll(labID)
		if err != nil {
			return nil, false, err
		}
		if len(cached) > 0 {
			p.logger.WithFields(logrus.Fields{
				"lab_id":  labID,
				"records": len(cached),
			}).Debug("Using cached records")
			return cached, false, nil
		}
	}

	outcome, err := p.platform.FetchAllResults(ctx, labID, opts.PageSize, opts.MaxPages, opts.TargetCount)
	if err != nil {
		return nil, false, err
	}

	records := make([]models.BacktestRecord, 0, len(outcome.Items))
	for _, raw := range outcome.Items {
		record, skip := analysis.Normalize(raw)
		if skip != analysis.SkipNone {
			p.logger.WithFields(logrus.Fields{
				"lab_id":      labID,
				"backtest_id": raw.BacktestID,
				"reason":      skip,
			}).Debug("Skipping raw record")
			continue
		}
		record.CachedAt = time.Now().UTC().Truncate(time.Second)
		if err := p.store.Put(record); err != nil {
			p.logger.WithField("backtest_id", record.BacktestID).WithError(err).
				Warn("Failed to cache record")
		}
		records = append(records, record)
	}

	return records, outcome.Partial, nil
}

// beatingBaseline keeps records whose ROI strictly exceeds the
// baseline threshold.
func beatingBaseline(records []models.BacktestRecord, baseline float64) []models.BacktestRecord {
	out := make([]models.BacktestRecord, 0, len(records))
	for _, r := range records {
		if r.ROIPercentage > baseline {
			out = append(out, r)
		}
	}
	return out
}

// warmFetch exists for the cache subcommand: it fills the cache for a
// lab without analyzing anything.
func (p *Pipeline) warmFetch(ctx context.Context, labID string, opts Options) (int, bool, error) {
	records, partial, err := p.collectRecords(ctx, labID, opts)
	return len(records), partial, err
}

// WarmCache fetches and caches records for every selected lab.
// Returns the number of records now cached per lab.
func (p *Pipeline) WarmCache(ctx context.Context, opts Options) (map[string]int, error) {
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

	counts := make(map[string]int, len(labs))
	for _, lab := range labs {
		n, partial, err := p.warmFetch(ctx, lab.LabID, opts)
		if err != nil {
			if haas.IsAuthenticationError(err) {
				return counts, err
			}
			p.logger.WithField("lab_id", lab.LabID).WithError(err).Warn("Cache warm failed for lab")
			continue
		}
		if partial {
			p.logger.WithField("lab_id", lab.LabID).Warn("Cache warm ended with partial results")
		}
		counts[lab.LabID] = n
	}
	return counts, nil
}
