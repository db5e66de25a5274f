package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
)

type recordingPoster struct {
	mu    sync.Mutex
	tags  []string
	posts []map[string]any
	err   error
}

func (p *recordingPoster) Post(tag string, message any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tags = append(p.tags, tag)
	p.posts = append(p.posts, message.(map[string]any))
	return p.err
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Writer: &buf, Format: "json", Level: slog.LevelInfo})

	logger.Debug("hidden")
	logger.Info("estimate computed", "total", 37752, Err(errors.New("boom")))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["msg"] != "estimate computed" || entry["total"] != float64(37752) || entry["error"] != "boom" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestNew_AddSource(t *testing.T) {
	var buf bytes.Buffer
	New(Options{Writer: &buf, Format: "json", AddSource: true}).Info("with source")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	source, _ := entry["source"].(map[string]any)
	if file, _ := source["file"].(string); !strings.HasSuffix(file, "logging_test.go") {
		t.Fatalf("expected source location, got %v", entry["source"])
	}
}

func TestNew_TintFormatWritesMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Writer: &buf, Format: "tint"})
	logger.Warn("rate card missing", "version", "2024.1")

	out := buf.String()
	if !strings.Contains(out, "rate card missing") || !strings.Contains(out, "2024.1") {
		t.Fatalf("unexpected tint output %q", out)
	}
}

func TestFluentHandler_PostsFlatRecords(t *testing.T) {
	poster := &recordingPoster{}
	var buf bytes.Buffer
	logger := New(Options{
		Writer: &buf,
		Format: "text",
		Level:  slog.LevelDebug,
		Extra:  []slog.Handler{NewFluentHandler(poster, slog.LevelInfo)},
	})

	logger = logger.With("service", "renoquote").WithGroup("http")
	logger.Debug("only console")
	logger.Error("request failed", "status", 500, slog.Group("req", "method", "POST"))

	if !strings.Contains(buf.String(), "only console") {
		t.Fatalf("console handler missed debug record: %q", buf.String())
	}
	if len(poster.posts) != 1 {
		t.Fatalf("expected 1 fluent post, got %d", len(poster.posts))
	}
	if poster.tags[0] != "error" {
		t.Fatalf("tag = %q, want error", poster.tags[0])
	}
	got := poster.posts[0]
	if got["message"] != "request failed" || got["level"] != "ERROR" {
		t.Fatalf("unexpected record %v", got)
	}
	if got["service"] != "renoquote" {
		t.Fatalf("missing logger attribute: %v", got)
	}
	if got["http.status"] != int64(500) {
		t.Fatalf("missing grouped attribute: %v", got)
	}
	if got["http.req.method"] != "POST" {
		t.Fatalf("missing nested group: %v", got)
	}
	if _, ok := got["timestamp"]; !ok {
		t.Fatalf("missing timestamp: %v", got)
	}
}

func TestFanout_JoinsErrors(t *testing.T) {
	failing := &recordingPoster{err: errors.New("fluent down")}
	h := Fanout(NewFluentHandler(failing, slog.LevelInfo), NewFluentHandler(&recordingPoster{}, slog.LevelInfo))

	logger := slog.New(h)
	logger.Info("still logged")

	if len(failing.posts) != 1 {
		t.Fatalf("expected failing poster to be called once, got %d", len(failing.posts))
	}
	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelWarn, "direct", 0))
	if err == nil || !strings.Contains(err.Error(), "fluent down") {
		t.Fatalf("expected joined poster error, got %v", err)
	}
	if !h.Enabled(context.Background(), slog.LevelInfo) || h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("unexpected Enabled result")
	}
}
