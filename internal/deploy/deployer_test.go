package deploy

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iamcos/haaslab/internal/haas"
	"github.com/iamcos/haaslab/internal/models"
)

type fakeCreator struct {
	calls    []haas.CreateBotRequest
	response haas.RawBot
	err      error
}

func (f *fakeCreator) CreateBotFromLab(_ context.Context, req haas.CreateBotRequest) (haas.RawBot, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return haas.RawBot{}, f.err
	}
	return f.response, nil
}

type fakePriceSource struct {
	price float64
	err   error
	calls int
}

func (f *fakePriceSource) GetPrice(context.Context, string) (float64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.price, nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testRecord() models.BacktestRecord {
	population := 8
	return models.BacktestRecord{
		LabID:         "lab1",
		BacktestID:    "bt1",
		GenerationIdx: 3,
		PopulationIdx: &population,
		ScriptName:    "MadHatter",
		MarketTag:     "BINANCE_BTC_USDT",
		ROIPercentage: 16.2,
		WinRate:       0.62,
	}
}

func TestDeployCreatesBot(t *testing.T) {
	creator := &fakeCreator{response: haas.RawBot{BotID: "bot-123"}}
	d := NewDeployer(creator, nil, Config{TargetUSDT: 2000, Leverage: 20}, testLogger())

	result := d.Deploy(context.Background(), testRecord(), models.AccountSlot{AccountID: "acc1"}, "Trend_Lab")

	if result.Status != models.DeploymentCreated {
		t.Fatalf("expected created, got %q (%s)", result.Status, result.Error)
	}
	if result.BotID != "bot-123" {
		t.Errorf("expected bot ID bot-123, got %q", result.BotID)
	}
	if result.BotName != "Trend Lab - MadHatter - 16 8/3 62%" {
		t.Errorf("unexpected bot name %q", result.BotName)
	}
	if len(creator.calls) != 1 {
		t.Fatalf("expected 1 create call, got %d", len(creator.calls))
	}
	req := creator.calls[0]
	if req.LabID != "lab1" || req.BacktestID != "bt1" || req.AccountID != "acc1" {
		t.Errorf("unexpected create request %+v", req)
	}
	if req.Leverage != 20 {
		t.Errorf("expected leverage 20, got %v", req.Leverage)
	}
}

func TestDeployDryRunNeverCallsPlatform(t *testing.T) {
	creator := &fakeCreator{response: haas.RawBot{BotID: "bot-123"}}
	d := NewDeployer(creator, nil, Config{TargetUSDT: 2000, DryRun: true}, testLogger())

	result := d.Deploy(context.Background(), testRecord(), models.AccountSlot{AccountID: "acc1"}, "Trend_Lab")

	if len(creator.calls) != 0 {
		t.Fatalf("dry run must not call the platform, got %d calls", len(creator.calls))
	}
	if result.Status != models.DeploymentCreated {
		t.Errorf("expected created status, got %q", result.Status)
	}
	if result.BotID != "" {
		t.Errorf("dry run must not have a bot ID, got %q", result.BotID)
	}
	if !result.DryRun {
		t.Error("expected DryRun flag on the record")
	}
	if result.BotName == "" || result.TradeAmount == 0 {
		t.Errorf("dry run must still compute name and amount, got %q / %v", result.BotName, result.TradeAmount)
	}
}

func TestDeployCaptureFailure(t *testing.T) {
	creator := &fakeCreator{err: errors.New("account margin too low")}
	d := NewDeployer(creator, nil, Config{TargetUSDT: 2000}, testLogger())

	result := d.Deploy(context.Background(), testRecord(), models.AccountSlot{AccountID: "acc1"}, "Trend_Lab")

	if result.Status != models.DeploymentFailed {
		t.Fatalf("expected failed status, got %q", result.Status)
	}
	if result.Error == "" {
		t.Error("expected error message on the record")
	}
	if result.BotID != "" {
		t.Errorf("failed deployment must not have a bot ID, got %q", result.BotID)
	}
}

func TestDeployUsesPriceForTradeAmount(t *testing.T) {
	creator := &fakeCreator{response: haas.RawBot{BotID: "bot-1"}}
	prices := NewPriceCache(&fakePriceSource{price: 50000}, time.Minute)
	d := NewDeployer(creator, prices, Config{TargetUSDT: 2000}, testLogger())

	result := d.Deploy(context.Background(), testRecord(), models.AccountSlot{AccountID: "acc1"}, "Lab")

	if result.TradeAmount != 0.04 {
		t.Fatalf("expected trade amount 0.04, got %v", result.TradeAmount)
	}
}

func TestDeployFallsBackToTargetOnPriceFailure(t *testing.T) {
	creator := &fakeCreator{response: haas.RawBot{BotID: "bot-1"}}
	prices := NewPriceCache(&fakePriceSource{err: errors.New("market not found")}, time.Minute)
	d := NewDeployer(creator, prices, Config{TargetUSDT: 2000}, testLogger())

	result := d.Deploy(context.Background(), testRecord(), models.AccountSlot{AccountID: "acc1"}, "Lab")

	if result.TradeAmount != 2000 {
		t.Fatalf("expected fallback to USDT target, got %v", result.TradeAmount)
	}
	if result.Status != models.DeploymentCreated {
		t.Errorf("price failure must not fail the deployment, got %q", result.Status)
	}
}
