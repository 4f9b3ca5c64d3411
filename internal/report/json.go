package report

import (
	"encoding/json"
	"os"

	"github.com/iamcos/haaslab/internal/models"
)

// jsonSummary is the JSON artifact layout: run metadata plus the
// per-lab and per-bot results verbatim.
type jsonSummary struct {
	RunID       string                       `json:"run_id"`
	StartedAt   string                       `json:"started_at"`
	FinishedAt  string                       `json:"finished_at"`
	DurationMS  int64                        `json:"duration_ms"`
	DryRun      bool                         `json:"dry_run"`
	LabCount    int                          `json:"lab_count"`
	BotsCreated int                          `json:"bots_created"`
	BotsFailed  int                          `json:"bots_failed"`
	Labs        []models.LabAnalysisResult   `json:"labs"`
	Deployments []models.BotDeploymentRecord `json:"deployments"`
}

func (w *Writer) writeJSON(summary *models.RunSummary, stamp string) error {
	out := jsonSummary{
		RunID:       summary.RunID.String(),
		StartedAt:   summary.StartedAt.UTC().Format("2006-01-02T15:04:05Z"),
		FinishedAt:  summary.FinishedAt.UTC().Format("2006-01-02T15:04:05Z"),
		DurationMS:  duration(summary).Milliseconds(),
		DryRun:      summary.DryRun,
		LabCount:    len(summary.Labs),
		BotsCreated: countByStatus(summary.Deployments, models.DeploymentCreated),
		BotsFailed:  countByStatus(summary.Deployments, models.DeploymentFailed),
		Labs:        summary.Labs,
		Deployments: summary.Deployments,
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(w.path(stamp, "_summary.json"), data, 0o644)
}
