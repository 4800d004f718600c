package logging

import (
	"testing"

	"go.uber.org/zap"
)

func TestNewLevels(t *testing.T) {
	logger, err := New("debug", false)
	if err != nil {
		t.Fatalf("Failed to build logger: %v", err)
	}
	if logger.Core().Enabled(zap.DebugLevel) {
		t.Error("Expected debug level disabled when not verbose")
	}

	verbose, err := New("release", true)
	if err != nil {
		t.Fatalf("Failed to build logger: %v", err)
	}
	if !verbose.Core().Enabled(zap.DebugLevel) {
		t.Error("Expected debug level enabled when verbose")
	}

	Sync(nil)
}
