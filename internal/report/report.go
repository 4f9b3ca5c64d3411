// Package report renders a completed run as CSV, JSON, Markdown or
// plain-text artifacts. All formats carry the same fields; only the
// serialization differs. Report generation is best-effort: a run is
// successful whether or not its reports could be written.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iamcos/haaslab/internal/models"
)

// Format names accepted in configuration and flags.
const (
	FormatCSV      = "csv"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatMD       = "md"
	FormatText     = "text"
)

// Writer emits run artifacts into an output directory.
type Writer struct {
	dir    string
	logger *logrus.Logger
}

// NewWriter creates a report writer rooted at dir.
func NewWriter(dir string, logger *logrus.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// Write renders the summary in every requested format. Failures are
// logged and swallowed; they never fail the run.
func (w *Writer) Write(summary *models.RunSummary, formats []string) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		w.logger.WithError(err).Warn("Failed to create report directory, skipping reports")
		return
	}

	stamp := summary.StartedAt.UTC().Format("2006-01-02_15-04-05")
	for _, format := range formats {
		var err error
		switch format {
		case FormatCSV:
			err = w.writeCSV(summary, stamp)
		case FormatJSON:
			err = w.writeJSON(summary, stamp)
		case FormatMarkdown, FormatMD:
			err = w.writeMarkdown(summary, stamp)
		case FormatText:
			err = w.writeText(summary, stamp)
		default:
			w.logger.WithField("format", format).Warn("Unknown report format, skipping")
			continue
		}
		if err != nil {
			w.logger.WithFields(logrus.Fields{"format": format}).WithError(err).
				Warn("Failed to write report")
			continue
		}
		w.logger.WithField("format", format).Debug("Report written")
	}
}

func (w *Writer) path(stamp, suffix string) string {
	return filepath.Join(w.dir, fmt.Sprintf("run_%s%s", stamp, suffix))
}

// duration formats the run duration for human-readable outputs.
func duration(summary *models.RunSummary) time.Duration {
	return summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond)
}

func countByStatus(deployments []models.BotDeploymentRecord, status models.DeploymentStatus) int {
	n := 0
	for _, d := range deployments {
		if d.Status == status {
			n++
		}
	}
	return n
}
