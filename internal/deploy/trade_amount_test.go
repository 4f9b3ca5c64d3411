package deploy

import "testing"

func TestTradeAmount(t *testing.T) {
	tests := []struct {
		name       string
		targetUSDT float64
		price      float64
		want       float64
	}{
		{"whole units", 1000, 1, 1000},
		{"two places for amounts above one", 100, 3, 33.33},
		{"sub one keeps significant digits", 2000, 50000, 0.04},
		{"tiny amount capped at eight places", 10, 1234567, 0.0000081},
		{"zero price falls back to target", 500, 0, 500},
		{"negative price falls back to target", 500, -1, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TradeAmount(tt.targetUSDT, tt.price)
			if got != tt.want {
				t.Fatalf("TradeAmount(%v, %v) = %v, want %v", tt.targetUSDT, tt.price, got, tt.want)
			}
		})
	}
}

func TestTradeAmountNeverZeroForPositiveTarget(t *testing.T) {
	got := TradeAmount(1, 90000000)
	if got <= 0 {
		t.Fatalf("expected positive amount, got %v", got)
	}
}
