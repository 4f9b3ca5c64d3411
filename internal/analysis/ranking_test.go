package analysis

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/iamcos/haaslab/internal/models"
)

func rankedIDs(records []models.BacktestRecord) []string {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.BacktestID)
	}
	return ids
}

func TestRankAndFilterOrdersByMetricDescending(t *testing.T) {
	records := []models.BacktestRecord{
		{BacktestID: "a", ROIPercentage: 5, RealizedProfitUSDT: 50, StartingBalance: 1000},
		{BacktestID: "b", ROIPercentage: 20, RealizedProfitUSDT: 200, StartingBalance: 1000},
		{BacktestID: "c", ROIPercentage: 12, RealizedProfitUSDT: 120, StartingBalance: 1000},
	}

	ranked := RankAndFilter(records, SortROI, Thresholds{})
	want := []string{"b", "c", "a"}
	if !reflect.DeepEqual(rankedIDs(ranked), want) {
		t.Fatalf("expected order %v, got %v", want, rankedIDs(ranked))
	}
}

func TestRankAndFilterTiesBreakOnBacktestID(t *testing.T) {
	records := []models.BacktestRecord{
		{BacktestID: "zz", ROIPercentage: 10},
		{BacktestID: "aa", ROIPercentage: 10},
		{BacktestID: "mm", ROIPercentage: 10},
	}

	ranked := RankAndFilter(records, SortROI, Thresholds{})
	want := []string{"aa", "mm", "zz"}
	if !reflect.DeepEqual(rankedIDs(ranked), want) {
		t.Fatalf("expected tie break order %v, got %v", want, rankedIDs(ranked))
	}
}

func TestRankAndFilterIndependentOfInputOrder(t *testing.T) {
	base := []models.BacktestRecord{
		{BacktestID: "a", ROIPercentage: 3},
		{BacktestID: "b", ROIPercentage: 9},
		{BacktestID: "c", ROIPercentage: 9},
		{BacktestID: "d", ROIPercentage: -2},
		{BacktestID: "e", ROIPercentage: 15},
	}
	want := rankedIDs(RankAndFilter(base, SortROI, Thresholds{}))

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := make([]models.BacktestRecord, len(base))
		copy(shuffled, base)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got := rankedIDs(RankAndFilter(shuffled, SortROI, Thresholds{}))
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("ranking depends on input order: expected %v, got %v", want, got)
		}
	}
}

func TestThresholdsExcludeBelowWinRate(t *testing.T) {
	records := []models.BacktestRecord{
		{BacktestID: "a", ROIPercentage: 10, WinRate: 0.25, TotalTrades: 30},
		{BacktestID: "b", ROIPercentage: 10, WinRate: 0.55, TotalTrades: 30},
	}

	minWinRate := 0.30
	ranked := RankAndFilter(records, SortROI, Thresholds{MinWinRate: &minWinRate})
	if len(ranked) != 1 || ranked[0].BacktestID != "b" {
		t.Fatalf("expected only b to survive, got %v", rankedIDs(ranked))
	}
}

func TestThresholdsExcludeBelowMinTrades(t *testing.T) {
	records := []models.BacktestRecord{
		{BacktestID: "a", ROIPercentage: 10, TotalTrades: 3},
		{BacktestID: "b", ROIPercentage: 10, TotalTrades: 5},
	}

	minTrades := 5
	ranked := RankAndFilter(records, SortROI, Thresholds{MinTrades: &minTrades})
	if len(ranked) != 1 || ranked[0].BacktestID != "b" {
		t.Fatalf("expected only b to survive, got %v", rankedIDs(ranked))
	}
}

func TestThresholdsAreAConjunction(t *testing.T) {
	records := []models.BacktestRecord{
		// Passes ROI but fails drawdown.
		{BacktestID: "a", ROIPercentage: 40, MaxDrawdown: 25, TotalTrades: 10},
		// Passes everything.
		{BacktestID: "b", ROIPercentage: 12, MaxDrawdown: 4, TotalTrades: 10},
		// Fails ROI.
		{BacktestID: "c", ROIPercentage: 2, MaxDrawdown: 1, TotalTrades: 10},
	}

	minROI := 5.0
	maxDD := 10.0
	ranked := RankAndFilter(records, SortROI, Thresholds{MinROI: &minROI, MaxDrawdown: &maxDD})
	if len(ranked) != 1 || ranked[0].BacktestID != "b" {
		t.Fatalf("expected only b to survive, got %v", rankedIDs(ranked))
	}
}

func TestRankAndFilterBoundsAreInclusive(t *testing.T) {
	records := []models.BacktestRecord{
		{BacktestID: "edge", ROIPercentage: 5, WinRate: 0.30, TotalTrades: 5},
	}

	minROI := 5.0
	minWinRate := 0.30
	minTrades := 5
	ranked := RankAndFilter(records, SortROI, Thresholds{
		MinROI:     &minROI,
		MinWinRate: &minWinRate,
		MinTrades:  &minTrades,
	})
	if len(ranked) != 1 {
		t.Fatalf("expected record at the exact bound to survive, got %v", rankedIDs(ranked))
	}
}

func TestTopN(t *testing.T) {
	records := []models.BacktestRecord{{BacktestID: "a"}, {BacktestID: "b"}, {BacktestID: "c"}}

	if got := TopN(records, 2); len(got) != 2 {
		t.Errorf("expected 2 records, got %d", len(got))
	}
	if got := TopN(records, 0); len(got) != 3 {
		t.Errorf("expected n<=0 to keep everything, got %d", len(got))
	}
	if got := TopN(records, 10); len(got) != 3 {
		t.Errorf("expected oversized n to keep everything, got %d", len(got))
	}
}

func TestParseSortKey(t *testing.T) {
	if got := ParseSortKey("win_rate"); got != SortWinRate {
		t.Errorf("expected win_rate, got %q", got)
	}
	if got := ParseSortKey("bogus"); got != DefaultSortKey {
		t.Errorf("expected default for unknown key, got %q", got)
	}
}
