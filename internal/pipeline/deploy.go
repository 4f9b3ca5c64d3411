package pipeline

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/iamcos/haaslab/internal/allocator"
	"github.com/iamcos/haaslab/internal/models"
)

// deployLab walks a lab's ranked selection and creates one bot per
// record until accounts or the run-wide bot budget run out. Running
// out of accounts is a stop condition, logged and reported, never an
// error. A backtest already deployed earlier in the run is skipped:
// at most one bot per backtest per run.
func (p *Pipeline) deployLab(
	ctx context.Context,
	result *models.LabAnalysisResult,
	alloc *allocator.Allocator,
	deployed map[string]bool,
	opts Options,
	summary *models.RunSummary,
) []models.BotDeploymentRecord {
	if p.deployer == nil {
		return nil
	}

	var records []models.BotDeploymentRecord
	for _, record := range result.Selected {
		if opts.MaxBots > 0 && len(summary.Deployments)+len(records) >= opts.MaxBots {
			p.logger.WithField("max_bots", opts.MaxBots).Info("Bot budget reached, stopping deployment")
			break
		}
		if deployed[record.BacktestID] {
			continue
		}

		slot, ok := alloc.Next()
		if !ok {
			p.logger.WithFields(logrus.Fields{
				"lab_id":   result.LabID,
				"deployed": len(records),
			}).Info("0 bots left to create: no free accounts")
			break
		}

		deployment := p.deployer.Deploy(ctx, record, slot, result.LabName)
		deployed[record.BacktestID] = true
		records = append(records, deployment)
	}

	return records
}
