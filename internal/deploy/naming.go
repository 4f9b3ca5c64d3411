package deploy

import (
	"fmt"
	"strings"
)

// botNameAllowed keeps the characters the platform accepts in bot
// names. Everything else is stripped after formatting.
func botNameAllowed(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == ' ', r == '.', r == '_', r == '-', r == '/', r == '%':
		return true
	default:
		return false
	}
}

// BotName builds the deterministic bot name:
//
//	{lab} - {script} - {roi} {population}/{generation} {winrate}%
//
// Underscores in the lab and script names become spaces, ROI and win
// rate round to whole numbers, and the win rate is rendered as a
// percentage (the one place outside reports where the 0-1 fraction is
// scaled).
func BotName(labName, scriptName string, roi float64, populationIdx, generationIdx int, winRate float64) string {
	lab := strings.ReplaceAll(labName, "_", " ")
	script := strings.ReplaceAll(scriptName, "_", " ")

	name := fmt.Sprintf("%s - %s - %.0f %d/%d %.0f%%",
		lab, script, roi, populationIdx, generationIdx, winRate*100)

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if botNameAllowed(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
