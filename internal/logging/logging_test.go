package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		jsonOutput bool
	}{
		{name: "JSON output mode", jsonOutput: true},
		{name: "Console output mode", jsonOutput: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.jsonOutput, zapcore.InfoLevel)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if logger == nil {
				t.Fatal("New() returned nil logger")
			}
			if logger.Desugar().Core().Enabled(zapcore.DebugLevel) {
				t.Error("debug should be disabled at info level")
			}
			if !logger.Desugar().Core().Enabled(zapcore.InfoLevel) {
				t.Error("info should be enabled at info level")
			}
		})
	}
}

func TestVerbosityToLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		want      zapcore.Level
	}{
		{-1, zapcore.WarnLevel},
		{VerbosityQuiet, zapcore.WarnLevel},
		{VerbosityInfo, zapcore.InfoLevel},
		{VerbosityDebug, zapcore.DebugLevel},
		{5, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		if got := VerbosityToLevel(tt.verbosity); got != tt.want {
			t.Errorf("VerbosityToLevel(%d) = %v, want %v", tt.verbosity, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	if l, err := ParseLevel(""); err != nil || l != zapcore.WarnLevel {
		t.Errorf("ParseLevel(\"\") = %v, %v", l, err)
	}
	if l, err := ParseLevel("DEBUG"); err != nil || l != zapcore.DebugLevel {
		t.Errorf("ParseLevel(\"DEBUG\") = %v, %v", l, err)
	}
	if _, err := ParseLevel("chatty"); err == nil {
		t.Error("ParseLevel(\"chatty\") should fail")
	}
}
