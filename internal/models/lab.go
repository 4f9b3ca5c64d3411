package models

import (
	"time"

	"github.com/google/uuid"
)

// LabSummary describes one server-side parameter-sweep campaign.
type LabSummary struct {
	LabID          string `json:"lab_id"`
	Name           string `json:"name"`
	ScriptName     string `json:"script_name"`
	MarketTag      string `json:"market_tag"`
	CompletedCount int    `json:"completed_count"`
	Status         string `json:"status"`
}

// LabAnalysisStatus describes the outcome of analyzing one lab.
type LabAnalysisStatus string

const (
	LabAnalysisCompleted LabAnalysisStatus = "completed"
	LabAnalysisPartial   LabAnalysisStatus = "partial"
	LabAnalysisFailed    LabAnalysisStatus = "failed"
)

// LabAnalysisResult holds the ranked selection for one lab within a
// single run. It lives only for the duration of the run and its report
// artifacts; it is never persisted.
type LabAnalysisResult struct {
	RunID          uuid.UUID         `json:"run_id"`
	LabID          string            `json:"lab_id"`
	LabName        string            `json:"lab_name"`
	BaselineValue  float64           `json:"baseline_value"`
	CandidateCount int               `json:"candidate_count"`
	Selected       []BacktestRecord  `json:"selected"`
	Status         LabAnalysisStatus `json:"status"`
	Error          string            `json:"error,omitempty"`
	AnalyzedAt     time.Time         `json:"analyzed_at"`
}
