package logger_test

import (
	"context"
	"testing"

	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/infrastructure/logger"
)

func TestWithContext_FromContext_RoundTrip(t *testing.T) {
	t.Parallel()

	base := mustTestLogger(t)
	ctx := logger.WithContext(context.Background(), base)

	if got := logger.FromContext(ctx); got != base {
		t.Errorf("FromContext returned %v, want the stored logger %v", got, base)
	}
}

func TestFromContext_EmptyContextFallsBack(t *testing.T) {
	t.Parallel()

	a := logger.FromContext(context.Background())
	b := logger.FromContext(context.Background())
	if a == nil {
		t.Fatal("FromContext on empty context returned nil")
	}
	if a != b {
		t.Error("fallback logger is not shared between calls")
	}

	// warn-level fallback: these must not panic
	a.Info("filtered")
	a.Warn("kept", logger.String("short_code", "abc123"))
}

func TestWithContext_EnrichedLoggerWins(t *testing.T) {
	t.Parallel()

	base := mustTestLogger(t)
	enriched := base.With(logger.String("request_id", "req-1"))

	ctx := logger.WithContext(context.Background(), base)
	ctx = logger.WithContext(ctx, enriched)

	got := logger.FromContext(ctx)
	if got != enriched {
		t.Error("FromContext did not return the most recently stored logger")
	}
	if got == base {
		t.Error("With() returned the base logger instead of a child")
	}
}

func TestNewNop_WithReturnsSelf(t *testing.T) {
	t.Parallel()

	nop := logger.NewNop()
	if nop.With(logger.Int("n", 1)) != nop {
		t.Error("NoOpLogger.With should return itself")
	}
	if err := nop.Sync(); err != nil {
		t.Errorf("Sync() = %v, want nil", err)
	}
}

func mustTestLogger(t *testing.T) logger.Logger {
	t.Helper()

	l, err := logger.New(logger.Config{Level: "warn", OutputPaths: []string{"stderr"}})
	if err != nil {
		t.Fatalf("create test logger: %v", err)
	}
	return l
}
