package models

import (
	"time"

	"github.com/google/uuid"
)

// RunSummary is everything one pipeline run produced, in the shape the
// report generator consumes.
type RunSummary struct {
	RunID       uuid.UUID             `json:"run_id"`
	StartedAt   time.Time             `json:"started_at"`
	FinishedAt  time.Time             `json:"finished_at"`
	DryRun      bool                  `json:"dry_run"`
	Labs        []LabAnalysisResult   `json:"labs"`
	Deployments []BotDeploymentRecord `json:"deployments"`
}

// Failed reports whether any lab or deployment in the run failed
// outright; it drives the process exit code.
func (s *RunSummary) Failed() bool {
	for _, lab := range s.Labs {
		if lab.Status == LabAnalysisFailed {
			return true
		}
	}
	for _, d := range s.Deployments {
		if d.Status == DeploymentFailed {
			return true
		}
	}
	return false
}
