package logger

import (
	"bytes"
	"strings"
	"testing"
)

// resetGlobal clears the package-level logger between tests.
func resetGlobal() {
	mu.Lock()
	defaultLogger = nil
	initialized = false
	mu.Unlock()
}

func TestInit_Twice(t *testing.T) {
	resetGlobal()
	defer resetGlobal()

	cfg := Config{Level: LevelInfo, Outputs: []OutputConfig{{Type: OutputStdout, Writer: &bytes.Buffer{}}}}
	if err := Init(cfg); err != nil {
		t.Fatalf("First Init failed: %v", err)
	}
	if err := Init(cfg); err == nil {
		t.Errorf("Expected error on double Init")
	}
}

func TestGet_BeforeInitReturnsNull(t *testing.T) {
	resetGlobal()
	defer resetGlobal()

	l := Get()
	if _, ok := l.(*NullLogger); !ok {
		t.Errorf("Expected NullLogger before Init, got %T", l)
	}
	// Must not panic.
	l.Info("ignored")
}

func TestSlogLogger_WritesAndMasks(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewSlogLogger(Config{
		Level:   LevelDebug,
		Format:  FormatText,
		Outputs: []OutputConfig{{Type: OutputStdout, Writer: &buf}},
	})
	if err != nil {
		t.Fatalf("NewSlogLogger failed: %v", err)
	}

	l.Info("upload done", "file", "a.pdf", "token", "very-secret-token")

	out := buf.String()
	if !strings.Contains(out, "upload done") {
		t.Errorf("Expected message in output, got %s", out)
	}
	if !strings.Contains(out, "a.pdf") {
		t.Errorf("Expected file attr in output, got %s", out)
	}
	if strings.Contains(out, "very-secret-token") {
		t.Errorf("Token leaked into output: %s", out)
	}
}

func TestSlogLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewSlogLogger(Config{
		Level:   LevelWarn,
		Outputs: []OutputConfig{{Type: OutputStdout, Writer: &buf}},
	})
	if err != nil {
		t.Fatalf("NewSlogLogger failed: %v", err)
	}

	l.Debug("hidden")
	l.Info("hidden too")
	l.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Sub-level records emitted: %s", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("Warn record missing: %s", out)
	}
}

func TestSlogLogger_With(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewSlogLogger(Config{
		Level:   LevelInfo,
		Outputs: []OutputConfig{{Type: OutputStdout, Writer: &buf}},
	})
	if err != nil {
		t.Fatalf("NewSlogLogger failed: %v", err)
	}

	child := l.With("component", "uploader")
	child.Info("starting")

	if !strings.Contains(buf.String(), "component=uploader") {
		t.Errorf("Expected child attrs in output, got %s", buf.String())
	}
	// Child Shutdown must not close parent writers.
	if err := child.Shutdown(); err != nil {
		t.Errorf("Child shutdown errored: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"Warning", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("json") != FormatJSON {
		t.Errorf("Expected FormatJSON")
	}
	if ParseFormat("anything-else") != FormatText {
		t.Errorf("Expected FormatText fallback")
	}
}
