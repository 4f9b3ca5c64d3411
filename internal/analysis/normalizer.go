// Package analysis converts raw platform records into canonical
// performance records, derives the per-lab baseline and ranks
// candidates for deployment.
package analysis

import (
	"time"

	"github.com/iamcos/haaslab/internal/haas"
	"github.com/iamcos/haaslab/internal/metrics"
	"github.com/iamcos/haaslab/internal/models"
)

// SkipReason explains why a raw record produced no canonical record.
type SkipReason string

const (
	SkipNone         SkipReason = ""
	SkipMissingROI   SkipReason = "missing_roi"
	SkipMissingTrade SkipReason = "missing_trade_count"
	SkipEmptyID      SkipReason = "missing_backtest_id"
)

const unknownScript = "Unknown"

// Normalize converts one raw backtest result into the canonical
// BacktestRecord. It prefers the flat pre-summarized fields when the
// platform supplies them and falls back to the nested report blocks
// otherwise. ROI and trade count are required for ranking; a record
// missing either is skipped rather than defaulted, because a silent
// zero would rank it instead of excluding it.
//
// Win rate leaves this function as a 0-1 fraction. This is the single
// fraction/percentage conversion boundary in the codebase; callers
// wanting percent multiply by 100 at the display edge.
func Normalize(raw haas.RawBacktestResult) (models.BacktestRecord, SkipReason) {
	if raw.BacktestID == "" {
		metrics.RecordsSkippedTotal.Inc()
		return models.BacktestRecord{}, SkipEmptyID
	}

	roi, roiOK := extractROI(raw)
	if !roiOK {
		metrics.RecordsSkippedTotal.Inc()
		return models.BacktestRecord{}, SkipMissingROI
	}

	trades, tradesOK := extractTrades(raw)
	if !tradesOK {
		metrics.RecordsSkippedTotal.Inc()
		return models.BacktestRecord{}, SkipMissingTrade
	}

	record := models.BacktestRecord{
		LabID:         raw.LabID,
		BacktestID:    raw.BacktestID,
		GenerationIdx: raw.Generation,
		PopulationIdx: raw.Population,
		ROIPercentage: roi,
		WinRate:       extractWinRate(raw, trades),
		TotalTrades:   trades,
		ScriptName:    raw.ScriptName,
		MarketTag:     raw.MarketTag,
		Parameters:    convertParameters(raw.Parameters),
		CachedAt:      time.Time{},
	}
	if record.ScriptName == "" {
		record.ScriptName = unknownScript
	}

	if perf := reportPerformance(raw); perf != nil {
		if perf.RealizedProfit != nil {
			record.RealizedProfitUSDT = *perf.RealizedProfit
		}
		if perf.StartingBalance != nil {
			record.StartingBalance = *perf.StartingBalance
		}
		if perf.MaxDrawdown != nil {
			record.MaxDrawdown = *perf.MaxDrawdown
		}
	}
	if fees := reportFees(raw); fees != nil && fees.TotalFees != nil {
		record.FeesUSDT = *fees.TotalFees
	}

	return record, SkipNone
}

// extractROI prefers the flat summarized field, then the performance
// report block.
func extractROI(raw haas.RawBacktestResult) (float64, bool) {
	if raw.ROI != nil {
		return *raw.ROI, true
	}
	if perf := reportPerformance(raw); perf != nil && perf.ROI != nil {
		return *perf.ROI, true
	}
	return 0, false
}

// extractTrades prefers the flat summarized field, then the trade
// report block.
func extractTrades(raw haas.RawBacktestResult) (int, bool) {
	if raw.Trades != nil {
		return *raw.Trades, true
	}
	if t := reportTrades(raw); t != nil && t.TotalTrades != nil {
		return *t.TotalTrades, true
	}
	return 0, false
}

// extractWinRate returns the win rate as a 0-1 fraction, deriving it
// from winning/total trades when no summarized rate is present.
// Absent data defaults to 0, which only ever makes a record rank
// worse.
func extractWinRate(raw haas.RawBacktestResult, totalTrades int) float64 {
	if raw.WinRate != nil {
		return clampFraction(*raw.WinRate)
	}
	if t := reportTrades(raw); t != nil && t.WinningTrades != nil && totalTrades > 0 {
		return clampFraction(float64(*t.WinningTrades) / float64(totalTrades))
	}
	return 0
}

func clampFraction(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func reportPerformance(raw haas.RawBacktestResult) *haas.RawPerformance {
	if raw.Report == nil {
		return nil
	}
	return raw.Report.Performance
}

func reportTrades(raw haas.RawBacktestResult) *haas.RawTrades {
	if raw.Report == nil {
		return nil
	}
	return raw.Report.Trades
}

func reportFees(raw haas.RawBacktestResult) *haas.RawFees {
	if raw.Report == nil {
		return nil
	}
	return raw.Report.Fees
}

func convertParameters(raw []haas.RawParameter) []models.Parameter {
	if len(raw) == 0 {
		return nil
	}
	params := make([]models.Parameter, 0, len(raw))
	for _, p := range raw {
		params = append(params, models.Parameter{Key: p.Key, Value: p.Value})
	}
	return params
}
