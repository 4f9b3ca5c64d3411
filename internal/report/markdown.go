package report

import (
	"os"
	"text/template"

	"github.com/iamcos/haaslab/internal/models"
)

const markdownTemplate = `# Lab Analysis Report

- **Run ID**: {{.RunID}}
- **Started**: {{.StartedAt}}
- **Duration**: {{.Duration}}
- **Dry run**: {{.DryRun}}

## Labs

| Lab | Status | Baseline ROI | Candidates | Selected |
|-----|--------|--------------|------------|----------|
{{- range .Labs}}
| {{.LabName}} ({{.LabID}}) | {{.Status}} | {{printf "%.2f" .BaselineValue}} | {{.CandidateCount}} | {{len .Selected}} |
{{- end}}

## Selected Backtests

| Lab | Backtest | ROI % | ROE % | Win Rate % | Trades | Drawdown | Profit USDT |
|-----|----------|-------|-------|------------|--------|----------|-------------|
{{- range .Labs}}{{$lab := .}}
{{- range .Selected}}
| {{$lab.LabName}} | {{.BacktestID}} | {{printf "%.2f" .ROIPercentage}} | {{printf "%.2f" .ROE}} | {{printf "%.1f" (winRatePct .WinRate)}} | {{.TotalTrades}} | {{printf "%.2f" .MaxDrawdown}} | {{printf "%.2f" .RealizedProfitUSDT}} |
{{- end}}
{{- end}}

## Deployments

| Bot | Account | Market | Amount | Status |
|-----|---------|--------|--------|--------|
{{- range .Deployments}}
| {{.BotName}} | {{.AccountID}} | {{.MarketTag}} | {{printf "%.6f" .TradeAmount}} | {{.Status}}{{if .Error}} ({{.Error}}){{end}} |
{{- end}}

**{{.BotsCreated}} created, {{.BotsFailed}} failed.**
`

type markdownData struct {
	RunID       string
	StartedAt   string
	Duration    string
	DryRun      bool
	Labs        []models.LabAnalysisResult
	Deployments []models.BotDeploymentRecord
	BotsCreated int
	BotsFailed  int
}

func (w *Writer) writeMarkdown(summary *models.RunSummary, stamp string) error {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"winRatePct": func(fraction float64) float64 { return fraction * 100 },
	}).Parse(markdownTemplate)
	if err != nil {
		return err
	}

	f, err := os.Create(w.path(stamp, "_report.md"))
	if err != nil {
		return err
	}
	defer f.Close()

	data := markdownData{
		RunID:       summary.RunID.String(),
		StartedAt:   summary.StartedAt.UTC().Format("2006-01-02 15:04:05 UTC"),
		Duration:    duration(summary).String(),
		DryRun:      summary.DryRun,
		Labs:        summary.Labs,
		Deployments: summary.Deployments,
		BotsCreated: countByStatus(summary.Deployments, models.DeploymentCreated),
		BotsFailed:  countByStatus(summary.Deployments, models.DeploymentFailed),
	}
	return tmpl.Execute(f, data)
}
