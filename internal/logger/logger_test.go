package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLoggerProductionUsesJSON(t *testing.T) {
	logger := NewLogger("info", true)

	if _, ok := logger.Formatter.(*logrus.JSONFormatter); !ok {
		t.Fatalf("expected JSON formatter in production, got %T", logger.Formatter)
	}
}

func TestNewLoggerDevelopmentUsesText(t *testing.T) {
	logger := NewLogger("debug", false)

	if _, ok := logger.Formatter.(*logrus.TextFormatter); !ok {
		t.Fatalf("expected text formatter outside production, got %T", logger.Formatter)
	}
	if logger.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %v", logger.GetLevel())
	}
}

func TestNewLoggerInvalidLevelDefaultsToInfo(t *testing.T) {
	logger := NewLogger("shouting", false)

	if logger.GetLevel() != logrus.InfoLevel {
		t.Fatalf("expected info level fallback, got %v", logger.GetLevel())
	}
}
