package log

import "testing"

func TestGetLogger(t *testing.T) {
	logger := GetLogger()
	if logger == nil {
		t.Fatal("GetLogger returned nil")
	}

	// Logging through every level must not panic.
	logger.Debug("debug message", "key", "value")
	logger.Info("info message", SamplesKey, 10)
	logger.Warn("warn message")
	logger.Error("error message", "error", nil)
}

func TestGetLoggerWithName(t *testing.T) {
	logger := GetLoggerWithName("test-component")
	if logger == nil {
		t.Fatal("GetLoggerWithName returned nil")
	}
	logger.Info("named logger message")
}

func TestWith(t *testing.T) {
	base := GetLogger()
	child := base.With(OperationKey, "Fit", FeaturesKey, 4)
	if child == nil {
		t.Fatal("With returned nil")
	}
	if child == base {
		t.Error("With should return a new Logger")
	}
	child.Info("child logger message")

	// Odd field counts and non-string keys are dropped, not fatal.
	base.With("dangling").Info("message")
	base.With(42, "value").Info("message")
}

func TestSetLevel(t *testing.T) {
	defer SetLevel("info")

	SetLevel("debug")
	GetLogger().Debug("visible at debug level")

	// An unknown level falls back to info rather than failing.
	SetLevel("nonsense")
	GetLogger().Info("still logs at info")
}
