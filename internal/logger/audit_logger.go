// Package logger provides audit logging.
package logger

import (
	"github.com/sirupsen/logrus"

	"github.com/iamcos/haaslab/internal/models"
)

// AuditLogger provides a dedicated audit trail for actions that change
// platform state or destroy local data.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogBotDeployment records one bot-creation attempt.
func (al *AuditLogger) LogBotDeployment(d models.BotDeploymentRecord) {
	al.WithFields(logrus.Fields{
		"bot_id":       d.BotID,
		"bot_name":     d.BotName,
		"backtest_id":  d.BacktestID,
		"lab_id":       d.LabID,
		"account_id":   d.AccountID,
		"market_tag":   d.MarketTag,
		"trade_amount": d.TradeAmount,
		"status":       d.Status,
		"dry_run":      d.DryRun,
		"created_at":   d.CreatedAt.Unix(),
	}).Info("Bot deployment recorded")
}

// LogRunCompleted records the outcome of one pipeline run.
func (al *AuditLogger) LogRunCompleted(summary *models.RunSummary) {
	al.WithFields(logrus.Fields{
		"run_id":      summary.RunID,
		"labs":        len(summary.Labs),
		"deployments": len(summary.Deployments),
		"dry_run":     summary.DryRun,
		"failed":      summary.Failed(),
		"duration_ms": summary.FinishedAt.Sub(summary.StartedAt).Milliseconds(),
	}).Info("Pipeline run completed")
}

// LogCacheClear records a destructive cache operation.
func (al *AuditLogger) LogCacheClear(labID string, removed int) {
	al.WithFields(logrus.Fields{
		"lab_id":  labID,
		"removed": removed,
	}).Warn("Cache entries removed")
}
