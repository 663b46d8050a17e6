// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		text string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info+2", slog.LevelInfo + 2},
	}
	for _, test := range tests {
		got, err := ParseLogLevel(test.text)
		if err != nil {
			t.Errorf("ParseLogLevel(%q): %v", test.text, err)
			continue
		}
		if got != test.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", test.text, got, test.want)
		}
	}

	if _, err := ParseLogLevel("loud"); err == nil {
		t.Error("ParseLogLevel(loud) = nil error, want error")
	}
}

func TestNewLogger_Handlers(t *testing.T) {
	var piped bytes.Buffer
	newLogger(&piped, false, slog.LevelInfo).Info("file assembled", "destination", "a.txt")

	var entry map[string]any
	if err := json.Unmarshal(piped.Bytes(), &entry); err != nil {
		t.Fatalf("piped output is not JSON: %v\n%s", err, piped.String())
	}
	if entry["msg"] != "file assembled" || entry["destination"] != "a.txt" {
		t.Errorf("entry = %v", entry)
	}

	var terminal bytes.Buffer
	logger := newLogger(&terminal, true, slog.LevelWarn)
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(terminal.String(), "hidden") || !strings.Contains(terminal.String(), "msg=shown") {
		t.Errorf("terminal output = %q", terminal.String())
	}
}
