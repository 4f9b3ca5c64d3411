package models

import (
	"time"
)

// Parameter is a single script parameter as reported by the platform.
// Parameters keep their server-side ordering, so they are held as a
// slice rather than a map.
type Parameter struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// BacktestRecord is the canonical, normalized view of one backtest
// inside a lab. It is immutable once cached: re-fetching the same
// (lab_id, backtest_id) pair must reproduce identical content.
type BacktestRecord struct {
	LabID              string      `json:"lab_id"`
	BacktestID         string      `json:"backtest_id"`
	GenerationIdx      int         `json:"generation_idx"`
	PopulationIdx      *int        `json:"population_idx,omitempty"`
	ROIPercentage      float64     `json:"roi_percentage"`
	WinRate            float64     `json:"win_rate"` // always a 0-1 fraction
	TotalTrades        int         `json:"total_trades"`
	MaxDrawdown        float64     `json:"max_drawdown"`
	RealizedProfitUSDT float64     `json:"realized_profit_usdt"`
	FeesUSDT           float64     `json:"fees_usdt"`
	StartingBalance    float64     `json:"starting_balance"`
	ScriptName         string      `json:"script_name"`
	MarketTag          string      `json:"market_tag"`
	Parameters         []Parameter `json:"parameters,omitempty"`
	CachedAt           time.Time   `json:"cached_at,omitempty"`
}

// ROE is return on equity: realized profit relative to the starting
// balance, as a percentage. The capital base is clamped to 1 so that
// records with a missing balance still produce a finite value.
func (r BacktestRecord) ROE() float64 {
	base := r.StartingBalance
	if base < 1 {
		base = 1
	}
	return r.RealizedProfitUSDT / base * 100
}
