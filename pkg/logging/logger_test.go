package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelWarn {
		t.Errorf("default level = %s, want warn", cfg.Level)
	}
	if cfg.Pretty {
		t.Error("default pretty should be false")
	}
}

func TestSetup_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Config{Level: LevelWarn, Output: &buf})

	logger.Debug().Msg("cache hit detail")
	logger.Warn().Msg("retry exhausted")

	out := buf.String()
	if strings.Contains(out, "cache hit detail") {
		t.Error("debug message leaked through warn level")
	}
	if !strings.Contains(out, "retry exhausted") {
		t.Error("warn message missing")
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   LogLevel
		want zerolog.Level
	}{
		{LevelDebug, zerolog.DebugLevel},
		{LevelInfo, zerolog.InfoLevel},
		{LevelWarn, zerolog.WarnLevel},
		{"WARNING", zerolog.WarnLevel},
		{LevelError, zerolog.ErrorLevel},
		{"bogus", zerolog.WarnLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger_Component(t *testing.T) {
	var buf bytes.Buffer
	Setup(Config{Level: LevelDebug, Output: &buf})

	logger := NewLogger("cache-manager")
	logger.Debug().Msg("hello")

	if !strings.Contains(buf.String(), `"component":"cache-manager"`) {
		t.Errorf("output missing component field: %s", buf.String())
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}
