package models

import "time"

// DeploymentStatus is the terminal state of one deployment attempt.
type DeploymentStatus string

const (
	DeploymentCreated DeploymentStatus = "created"
	DeploymentFailed  DeploymentStatus = "failed"
)

// BotDeploymentRecord captures one bot-creation attempt, successful or
// not. In dry-run mode BotID stays empty because the platform never
// assigns one.
type BotDeploymentRecord struct {
	BotID       string           `json:"bot_id,omitempty"`
	BacktestID  string           `json:"backtest_id"`
	LabID       string           `json:"lab_id"`
	AccountID   string           `json:"account_id"`
	BotName     string           `json:"bot_name"`
	MarketTag   string           `json:"market_tag"`
	TradeAmount float64          `json:"trade_amount"`
	Status      DeploymentStatus `json:"status"`
	DryRun      bool             `json:"dry_run,omitempty"`
	Error       string           `json:"error,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}
