package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/iamcos/haaslab/internal/models"
)

// writeCSV emits two files: one row per selected backtest and one row
// per deployment attempt.
func (w *Writer) writeCSV(summary *models.RunSummary, stamp string) error {
	if err := w.writeBacktestsCSV(summary, stamp); err != nil {
		return err
	}
	return w.writeBotsCSV(summary, stamp)
}

func (w *Writer) writeBacktestsCSV(summary *models.RunSummary, stamp string) error {
	f, err := os.Create(w.path(stamp, "_backtests.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	header := []string{
		"lab_id", "lab_name", "baseline_roi", "backtest_id", "rank",
		"roi_pct", "roe_pct", "win_rate_pct", "total_trades",
		"max_drawdown", "realized_profit_usdt", "fees_usdt",
		"script_name", "market_tag", "generation", "population",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, lab := range summary.Labs {
		for rank, r := range lab.Selected {
			population := ""
			if r.PopulationIdx != nil {
				population = strconv.Itoa(*r.PopulationIdx)
			}
			row := []string{
				lab.LabID,
				lab.LabName,
				formatFloat(lab.BaselineValue),
				r.BacktestID,
				strconv.Itoa(rank + 1),
				formatFloat(r.ROIPercentage),
				formatFloat(r.ROE()),
				formatFloat(r.WinRate * 100),
				strconv.Itoa(r.TotalTrades),
				formatFloat(r.MaxDrawdown),
				formatFloat(r.RealizedProfitUSDT),
				formatFloat(r.FeesUSDT),
				r.ScriptName,
				r.MarketTag,
				strconv.Itoa(r.GenerationIdx),
				population,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func (w *Writer) writeBotsCSV(summary *models.RunSummary, stamp string) error {
	if len(summary.Deployments) == 0 {
		return nil
	}

	f, err := os.Create(w.path(stamp, "_bots.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	header := []string{
		"bot_id", "bot_name", "backtest_id", "lab_id", "account_id",
		"market_tag", "trade_amount", "status", "dry_run", "error", "created_at",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, d := range summary.Deployments {
		row := []string{
			d.BotID,
			d.BotName,
			d.BacktestID,
			d.LabID,
			d.AccountID,
			d.MarketTag,
			formatFloat(d.TradeAmount),
			string(d.Status),
			strconv.FormatBool(d.DryRun),
			d.Error,
			d.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.4f", v)
}
