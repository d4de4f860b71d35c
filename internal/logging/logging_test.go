package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"

	"malldash/internal/config"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		" WARN ":  zerolog.WarnLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) want=%s got=%s", in, want, got)
		}
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWithWriter(config.LogConfig{Level: "warn"}, &buf)
	logger.Info().Msg("hidden")
	logger.Warn().Str("file", "a.xlsx").Msg("shown")

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("want one json line, got %q: %v", buf.String(), err)
	}
	if line["message"] != "shown" || line["file"] != "a.xlsx" || line["app"] != "malldash" {
		t.Fatalf("unexpected line: %v", line)
	}
}
