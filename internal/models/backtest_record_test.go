package models

import "testing"

func TestROE(t *testing.T) {
	r := BacktestRecord{RealizedProfitUSDT: 812.5, StartingBalance: 5000}
	if got := r.ROE(); got != 16.25 {
		t.Fatalf("expected ROE 16.25, got %v", got)
	}
}

func TestROEClampsMissingBalance(t *testing.T) {
	r := BacktestRecord{RealizedProfitUSDT: 42}
	if got := r.ROE(); got != 4200 {
		t.Fatalf("expected profit over a unit base, got %v", got)
	}
}

func TestRunSummaryFailed(t *testing.T) {
	clean := RunSummary{
		Labs:        []LabAnalysisResult{{Status: LabAnalysisCompleted}, {Status: LabAnalysisPartial}},
		Deployments: []BotDeploymentRecord{{Status: DeploymentCreated}},
	}
	if clean.Failed() {
		t.Error("partial labs and created bots are not failures")
	}

	failedLab := RunSummary{Labs: []LabAnalysisResult{{Status: LabAnalysisFailed}}}
	if !failedLab.Failed() {
		t.Error("a failed lab must fail the run")
	}

	failedBot := RunSummary{Deployments: []BotDeploymentRecord{{Status: DeploymentFailed}}}
	if !failedBot.Failed() {
		t.Error("a failed deployment must fail the run")
	}
}
