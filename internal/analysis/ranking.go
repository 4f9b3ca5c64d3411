package analysis

import (
	"sort"

	"github.com/iamcos/haaslab/internal/models"
)

// SortKey selects the ranking metric.
type SortKey string

const (
	SortROI     SortKey = "roi"
	SortROE     SortKey = "roe"
	SortWinRate SortKey = "win_rate"
	SortProfit  SortKey = "profit"
	SortTrades  SortKey = "trades"
)

// DefaultSortKey is ROE: realized profit normalized by capital base,
// which makes labs with different starting balances comparable.
const DefaultSortKey = SortROE

// ParseSortKey maps a config/flag string onto a SortKey, falling back
// to the default for anything unrecognized.
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortROI, SortROE, SortWinRate, SortProfit, SortTrades:
		return SortKey(s)
	default:
		return DefaultSortKey
	}
}

// Thresholds is a conjunction of inclusive bounds. Nil bounds are
// unbounded.
type Thresholds struct {
	MinROI      *float64
	MaxROI      *float64
	MinROE      *float64
	MaxROE      *float64
	MinWinRate  *float64 // 0-1 fraction
	MinTrades   *int
	MaxDrawdown *float64
}

// passes applies every configured bound; all must hold.
func (t Thresholds) passes(r *models.BacktestRecord) bool {
	roe := r.ROE()
	if t.MinROI != nil && r.ROIPercentage < *t.MinROI {
		return false
	}
	if t.MaxROI != nil && r.ROIPercentage > *t.MaxROI {
		return false
	}
	if t.MinROE != nil && roe < *t.MinROE {
		return false
	}
	if t.MaxROE != nil && roe > *t.MaxROE {
		return false
	}
	if t.MinWinRate != nil && r.WinRate < *t.MinWinRate {
		return false
	}
	if t.MinTrades != nil && r.TotalTrades < *t.MinTrades {
		return false
	}
	if t.MaxDrawdown != nil && r.MaxDrawdown > *t.MaxDrawdown {
		return false
	}
	return true
}

// metric returns the value a record is ranked by.
func metric(r *models.BacktestRecord, key SortKey) float64 {
	switch key {
	case SortROI:
		return r.ROIPercentage
	case SortWinRate:
		return r.WinRate
	case SortProfit:
		return r.RealizedProfitUSDT
	case SortTrades:
		return float64(r.TotalTrades)
	default:
		return r.ROE()
	}
}

// RankAndFilter filters records by the threshold conjunction and sorts
// the survivors descending by the chosen metric. The sort is stable
// and ties break on ascending backtest ID, so the output is a total
// order independent of input iteration order.
func RankAndFilter(records []models.BacktestRecord, key SortKey, thresholds Thresholds) []models.BacktestRecord {
	out := make([]models.BacktestRecord, 0, len(records))
	for i := range records {
		if thresholds.passes(&records[i]) {
			out = append(out, records[i])
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		mi, mj := metric(&out[i], key), metric(&out[j], key)
		if mi != mj {
			return mi > mj
		}
		return out[i].BacktestID < out[j].BacktestID
	})

	return out
}

// TopN truncates a ranked slice to at most n records.
func TopN(ranked []models.BacktestRecord, n int) []models.BacktestRecord {
	if n <= 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}
