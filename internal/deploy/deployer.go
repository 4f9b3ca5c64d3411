// Package deploy turns selected backtest records into live bots:
// deterministic naming, price-derived trade sizing and the create-bot
// call itself.
package deploy

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iamcos/haaslab/internal/haas"
	"github.com/iamcos/haaslab/internal/metrics"
	"github.com/iamcos/haaslab/internal/models"
)

// BotCreator issues create-bot requests against the platform.
type BotCreator interface {
	CreateBotFromLab(ctx context.Context, req haas.CreateBotRequest) (haas.RawBot, error)
}

// Config holds deployment parameters for one run.
type Config struct {
	TargetUSDT float64
	Leverage   float64
	DryRun     bool
}

// Deployer creates bots from ranked backtest records.
type Deployer struct {
	creator BotCreator
	prices  *PriceCache
	cfg     Config
	logger  *logrus.Logger
}

// NewDeployer creates a new bot deployer
func NewDeployer(creator BotCreator, prices *PriceCache, cfg Config, logger *logrus.Logger) *Deployer {
	return &Deployer{
		creator: creator,
		prices:  prices,
		cfg:     cfg,
		logger:  logger,
	}
}

// DryRun reports whether this deployer only simulates bot creation.
func (d *Deployer) DryRun() bool {
	return d.cfg.DryRun
}

// Deploy attempts to create one bot for a record on the given account.
// Failures are captured in the returned record, never propagated: a
// single rejected deployment must not stop the batch. In dry-run mode
// the name and trade amount are computed as usual but no platform call
// is made and no bot ID exists.
func (d *Deployer) Deploy(ctx context.Context, record models.BacktestRecord, slot models.AccountSlot, labName string) models.BotDeploymentRecord {
	population := 0
	if record.PopulationIdx != nil {
		population = *record.PopulationIdx
	}
	botName := BotName(labName, record.ScriptName, record.ROIPercentage, population, record.GenerationIdx, record.WinRate)

	tradeAmount := d.tradeAmount(ctx, record.MarketTag)

	result := models.BotDeploymentRecord{
		BacktestID:  record.BacktestID,
		LabID:       record.LabID,
		AccountID:   slot.AccountID,
		BotName:     botName,
		MarketTag:   record.MarketTag,
		TradeAmount: tradeAmount,
		DryRun:      d.cfg.DryRun,
		CreatedAt:   time.Now().UTC(),
	}

	if d.cfg.DryRun {
		d.logger.WithFields(logrus.Fields{
			"bot_name":     botName,
			"account_id":   slot.AccountID,
			"trade_amount": tradeAmount,
		}).Info("Dry run: skipping bot creation")
		result.Status = models.DeploymentCreated
		return result
	}

	bot, err := d.creator.CreateBotFromLab(ctx, haas.CreateBotRequest{
		LabID:      record.LabID,
		BacktestID: record.BacktestID,
		AccountID:  slot.AccountID,
		MarketTag:  record.MarketTag,
		BotName:    botName,
		Leverage:   d.cfg.Leverage,
	})
	if err != nil {
		d.logger.WithFields(logrus.Fields{
			"bot_name":   botName,
			"account_id": slot.AccountID,
		}).WithError(err).Error("Bot creation failed")
		metrics.BotsFailedTotal.Inc()
		result.Status = models.DeploymentFailed
		result.Error = err.Error()
		return result
	}

	d.logger.WithFields(logrus.Fields{
		"bot_id":     bot.BotID,
		"bot_name":   botName,
		"account_id": slot.AccountID,
	}).Info("Bot created")
	metrics.BotsCreatedTotal.Inc()
	result.Status = models.DeploymentCreated
	result.BotID = bot.BotID
	return result
}

// tradeAmount converts the target notional at the current market
// price, falling back to the raw USDT target when the price lookup
// fails.
func (d *Deployer) tradeAmount(ctx context.Context, marketTag string) float64 {
	if d.prices == nil {
		return d.cfg.TargetUSDT
	}
	price, err := d.prices.Get(ctx, marketTag)
	if err != nil || price <= 0 {
		d.logger.WithField("market", marketTag).WithError(err).
			Warn("Price lookup failed, falling back to USDT target as trade amount")
		return d.cfg.TargetUSDT
	}
	return TradeAmount(d.cfg.TargetUSDT, price)
}
