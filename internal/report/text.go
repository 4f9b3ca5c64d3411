package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/iamcos/haaslab/internal/models"
)

// writeText renders the summary as a plain-text console-style report.
func (w *Writer) writeText(summary *models.RunSummary, stamp string) error {
	return os.WriteFile(w.path(stamp, "_report.txt"), []byte(RenderText(summary)), 0o644)
}

// RenderText formats the run summary for terminal output. The analyze
// subcommand also prints this to stdout.
func RenderText(summary *models.RunSummary) string {
	var b strings.Builder
	b.WriteString("Lab Analysis Report\n")
	b.WriteString("===================\n")
	b.WriteString(fmt.Sprintf("Run ID: %s\n", summary.RunID))
	b.WriteString(fmt.Sprintf("Duration: %s\n", duration(summary)))
	if summary.DryRun {
		b.WriteString("Mode: dry run\n")
	}
	b.WriteString("\n")

	for _, lab := range summary.Labs {
		b.WriteString(fmt.Sprintf("Lab %s (%s): %s\n", lab.LabName, lab.LabID, lab.Status))
		if lab.Error != "" {
			b.WriteString(fmt.Sprintf("  error: %s\n", lab.Error))
			continue
		}
		b.WriteString(fmt.Sprintf("  Baseline ROI: %.2f\n", lab.BaselineValue))
		b.WriteString(fmt.Sprintf("  Candidates: %d, selected: %d\n", lab.CandidateCount, len(lab.Selected)))
		for rank, r := range lab.Selected {
			b.WriteString(fmt.Sprintf("  %2d. %s ROI %.2f%% ROE %.2f%% WR %.1f%% trades %d\n",
				rank+1, r.BacktestID, r.ROIPercentage, r.ROE(), r.WinRate*100, r.TotalTrades))
		}
	}

	if len(summary.Deployments) > 0 {
		b.WriteString("\nDeployments\n")
		b.WriteString("-----------\n")
		for _, d := range summary.Deployments {
			line := fmt.Sprintf("%s -> account %s amount %.6f [%s]", d.BotName, d.AccountID, d.TradeAmount, d.Status)
			if d.Error != "" {
				line += " " + d.Error
			}
			b.WriteString(line + "\n")
		}
		b.WriteString(fmt.Sprintf("\n%d created, %d failed\n",
			countByStatus(summary.Deployments, models.DeploymentCreated),
			countByStatus(summary.Deployments, models.DeploymentFailed)))
	}

	return b.String()
}
