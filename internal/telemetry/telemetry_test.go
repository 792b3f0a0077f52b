package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := WithImportID(NewLogger(&buf, "info", "json"), "imp-1")

	logger.Debug("hidden")
	logger.Info("import finished", "categories", 4)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["msg"] != "import finished" {
		t.Errorf("unexpected msg %v", entry["msg"])
	}
	if entry["import_id"] != "imp-1" {
		t.Errorf("expected import_id, got %v", entry["import_id"])
	}
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := WithFilename(NewLogger(&buf, "debug", "text"), "a.xlsx")

	logger.Debug("file fetched")

	out := buf.String()
	if !strings.Contains(out, "msg=\"file fetched\"") || !strings.Contains(out, "filename=a.xlsx") {
		t.Errorf("unexpected text output %q", out)
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) != slog.Default() {
		t.Error("expected default logger without value in context")
	}

	logger := NewLogger(&bytes.Buffer{}, "info", "json")
	ctx := WithLogger(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Error("expected logger from context")
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveSuccess(4, 120*time.Millisecond)
	m.ObserveSuccess(2, 80*time.Millisecond)
	m.ObserveFailure("fetch", 10*time.Millisecond)
	m.ObserveFailure("", time.Millisecond)
	m.ObserveFetch(2048)

	if got := testutil.ToFloat64(m.imports.WithLabelValues("SUCCEEDED")); got != 2 {
		t.Errorf("expected 2 succeeded imports, got %v", got)
	}
	if got := testutil.ToFloat64(m.imports.WithLabelValues("FAILED")); got != 2 {
		t.Errorf("expected 2 failed imports, got %v", got)
	}
	if got := testutil.ToFloat64(m.failures.WithLabelValues("fetch")); got != 1 {
		t.Errorf("expected 1 fetch failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.failures.WithLabelValues("unknown")); got != 1 {
		t.Errorf("expected 1 unknown failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.categories); got != 6 {
		t.Errorf("expected 6 categories, got %v", got)
	}

	count, err := testutil.GatherAndCount(reg, "importer_import_duration_seconds", "importer_fetched_bytes")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 histogram series, got %d", count)
	}
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	m.ObserveSuccess(1, time.Second)
	m.ObserveFailure("build", time.Second)
	m.ObserveFetch(1)
}
