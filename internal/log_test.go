package internal

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
)

func captureLog(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)
	fn()
	return buf.String()
}

func TestLoggerFiltersBelowLevel(t *testing.T) {
	l := NewLogger(LogLevelWarn)
	out := captureLog(t, func() {
		l.Error("boom")
		l.Warn("careful")
		l.Info("quiet")
		l.Debug("quiet")
	})
	if !strings.Contains(out, "[ERROR] boom") || !strings.Contains(out, "[WARN] careful") {
		t.Fatalf("expected error and warn lines, got %q", out)
	}
	if strings.Contains(out, "quiet") {
		t.Fatalf("info and debug must be filtered at warn level, got %q", out)
	}
}

func TestLoggerNamedScopesMessages(t *testing.T) {
	l := NewLogger(LogLevelInfo).Named("analysis")
	out := captureLog(t, func() { l.Info("ran %d units", 3) })
	if !strings.Contains(out, "[INFO] analysis: ran 3 units") {
		t.Fatalf("expected scoped line, got %q", out)
	}

	out = captureLog(t, func() { l.Named("batch").Warn("slow unit") })
	if !strings.Contains(out, "[WARN] analysis.batch: slow unit") {
		t.Fatalf("expected nested scope, got %q", out)
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"ERROR": LogLevelError,
		"warn":  LogLevelWarn,
		"Info":  LogLevelInfo,
		"DEBUG": LogLevelDebug,
		"TRACE": LogLevelTrace,
		"":      LogLevelInfo,
		"bogus": LogLevelInfo,
	}
	for name, want := range cases {
		if got := ParseLogLevel(name); got != want {
			t.Fatalf("ParseLogLevel(%q) = %d, want %d", name, got, want)
		}
	}
}
