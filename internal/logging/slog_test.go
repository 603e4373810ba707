package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlogLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := NewText(&buf, "debug")
	ctx := context.Background()

	log.Debug(ctx, "job not finished", "status", "pending")
	log.Info(ctx, "report saved", "path", "reports/r.txt")
	log.Warn(ctx, "retrying request", "attempt", 2)
	log.Error(ctx, "history update failed", "id", "h1")

	out := buf.String()
	for _, want := range []string{
		`level=DEBUG msg="job not finished" status=pending`,
		`level=INFO msg="report saved" path=reports/r.txt`,
		`level=WARN msg="retrying request" attempt=2`,
		`level=ERROR msg="history update failed" id=h1`,
	} {
		assert.Contains(t, out, want)
	}
}

func TestSlogLogger_With(t *testing.T) {
	var buf bytes.Buffer
	log := NewText(&buf, "info").With("job_id", "abc")

	log.Info(context.Background(), "polling finished", "state", "Completed")
	log.With("attempts", 3).Info(context.Background(), "again")

	out := buf.String()
	assert.Contains(t, out, `msg="polling finished" job_id=abc state=Completed`)
	assert.Contains(t, out, "msg=again job_id=abc attempts=3")
}

func TestNewText_Filters(t *testing.T) {
	var buf bytes.Buffer
	log := NewText(&buf, "warn")

	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard().With("k", "v").Error(context.TODO(), "dropped")
	})
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" DEBUG ": slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}
