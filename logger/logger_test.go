package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestConfig(t *testing.T) {
	tests := []struct {
		debug bool
		want  zapcore.Level
	}{
		{false, zapcore.InfoLevel},
		{true, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		cfg := config(tt.debug)
		if got := cfg.Level.Level(); got != tt.want {
			t.Errorf("debug=%v: level = %v, want %v", tt.debug, got, tt.want)
		}
		if cfg.Encoding != "json" {
			t.Errorf("encoding = %q, want json", cfg.Encoding)
		}
		if cfg.InitialFields["app"] != App {
			t.Errorf("app field = %v", cfg.InitialFields["app"])
		}
	}
}

func TestNew(t *testing.T) {
	l, err := New(true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !l.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug logger does not log debug entries")
	}
}
