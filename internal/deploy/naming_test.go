package deploy

import "testing"

func TestBotName(t *testing.T) {
	got := BotName("Trend_Lab", "MadHatter", 16.2, 8, 3, 0.62)
	want := "Trend Lab - MadHatter - 16 8/3 62%"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestBotNameStripsDisallowedCharacters(t *testing.T) {
	got := BotName("Lab#One!", "Scalper (v2)", 5, 1, 2, 0.5)
	want := "LabOne - Scalper v2 - 5 1/2 50%"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestBotNameRoundsMetrics(t *testing.T) {
	got := BotName("Lab", "Script", 99.6, 0, 0, 0.999)
	want := "Lab - Script - 100 0/0 100%"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestBotNameIsDeterministic(t *testing.T) {
	first := BotName("Trend_Lab", "MadHatter", 16.2, 8, 3, 0.62)
	for i := 0; i < 10; i++ {
		if got := BotName("Trend_Lab", "MadHatter", 16.2, 8, 3, 0.62); got != first {
			t.Fatalf("name changed between calls: %q vs %q", first, got)
		}
	}
}
