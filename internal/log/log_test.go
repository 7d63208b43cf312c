package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestZeroLoggerIsSilent(t *testing.T) {
	var l Logger
	// Must not panic.
	l.Error("nothing", slog.Int("x", 1))
	if l.Enabled(context.Background(), LevelError) {
		t.Error("zero logger claims to be enabled")
	}
	if l.Level() != DefaultLevel {
		t.Errorf("zero logger level is %v, want %v", l.Level(), DefaultLevel)
	}
}

func TestLevels(t *testing.T) {
	cases := []struct {
		name  string
		level Level
		log   func(Logger)
		want  bool
	}{
		{"trace-at-info", LevelInfo, func(l Logger) { l.Trace("msg") }, false},
		{"trace-at-trace", LevelTrace, func(l Logger) { l.Trace("msg") }, true},
		{"debug-at-info", LevelInfo, func(l Logger) { l.Debug("msg") }, false},
		{"info-at-info", LevelInfo, func(l Logger) { l.Info("msg") }, true},
		{"warn-at-warn", LevelWarn, func(l Logger) { l.Warn("msg") }, true},
		{"warn-at-error", LevelError, func(l Logger) { l.Warn("msg") }, false},
		{"error-at-warn", LevelWarn, func(l Logger) { l.Error("msg") }, true},
		{"error-context", LevelError, func(l Logger) { l.ErrorContext(context.Background(), "msg") }, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var b bytes.Buffer
			l := Make(&b, WithLevel(c.level), WithTimeLayout(""))
			c.log(l)
			if got := b.Len() != 0; got != c.want {
				t.Errorf("wrote output %v, want %v: %q", got, c.want, b.String())
			}
		})
	}
}

func TestTraceLevelName(t *testing.T) {
	var b bytes.Buffer
	l := Make(&b, WithLevel(LevelTrace), WithTimeLayout(""))
	l.Trace("hello", slog.String("k", "v"))
	out := b.String()
	if !strings.Contains(out, "level=TRACE") {
		t.Errorf("trace message doesn't name its level: %q", out)
	}
	if !strings.Contains(out, "k=v") {
		t.Errorf("trace message lost its attribute: %q", out)
	}
}

func TestWith(t *testing.T) {
	var b bytes.Buffer
	l := Make(&b, WithFormat(FormatJSON), WithTimeLayout("")).With(slog.Int("cell", 7))
	l.Info("updated")
	if !strings.Contains(b.String(), `"cell":7`) {
		t.Errorf("attribute missing from %q", b.String())
	}
}

func TestParse(t *testing.T) {
	if ParseLevel("TRACE") != LevelTrace {
		t.Error("TRACE didn't parse")
	}
	if ParseLevel("debug") != LevelDebug {
		t.Error("debug didn't parse")
	}
	if ParseLevel("nonsense") != DefaultLevel {
		t.Error("nonsense didn't give the default level")
	}
	if ParseFormat(" JSON ") != FormatJSON {
		t.Error("JSON didn't parse")
	}
	if ParseFormat("xml") != DefaultFormat {
		t.Error("xml didn't give the default format")
	}
}

func TestFromHandler(t *testing.T) {
	if l := FromHandler(nil); l.Enabled(context.Background(), LevelError) {
		t.Error("logger from a nil handler claims to be enabled")
	}
	var b bytes.Buffer
	l := FromHandler(slog.NewJSONHandler(&b, &slog.HandlerOptions{Level: slog.Level(LevelTrace)}))
	l.Trace("evaluated", slog.Int("id", 3))
	if !strings.Contains(b.String(), `"msg":"evaluated"`) || !strings.Contains(b.String(), `"id":3`) {
		t.Errorf("message or attribute missing from %q", b.String())
	}
}

func TestOutputAndCaller(t *testing.T) {
	var ignored, b bytes.Buffer
	l := Make(&ignored, WithOutput(&b), WithCaller(true), WithFormat(FormatJSON), WithTimeLayout(""))
	l.Warn("moved")
	if ignored.Len() != 0 {
		t.Errorf("wrote to the replaced writer: %q", ignored.String())
	}
	if !strings.Contains(b.String(), `"msg":"moved"`) {
		t.Errorf("message missing from %q", b.String())
	}
	if !strings.Contains(b.String(), "log_test.go") {
		t.Errorf("caller missing from %q", b.String())
	}

	// A nil output discards.
	Make(nil, WithOutput(nil)).Error("gone")
}
