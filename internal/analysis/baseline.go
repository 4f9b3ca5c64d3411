package analysis

import (
	"github.com/iamcos/haaslab/internal/models"
)

// ComputeBaseline derives the "beat this or discard" threshold for a
// lab: the maximum ROI among the supplied sample. The baseline is a
// per-lab scalar recomputed each run, never persisted.
func ComputeBaseline(records []models.BacktestRecord) (float64, error) {
	if len(records) == 0 {
		return 0, NewInsufficientDataError("empty baseline sample")
	}

	best := records[0].ROIPercentage
	for _, r := range records[1:] {
		if r.ROIPercentage > best {
			best = r.ROIPercentage
		}
	}
	return best, nil
}
