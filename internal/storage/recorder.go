package storage

import (
	"context"
	"errors"

	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/infrastructure/circuitbreaker"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/domain"
)

type clickAppender interface {
	Append(ctx context.Context, rec *domain.ClickRecord) (int64, error)
}

// LedgerRecorder appends each click synchronously. While the ledger keeps
// failing the breaker opens and clicks fail fast instead of waiting on a
// dead database.
type LedgerRecorder struct {
	ledger    clickAppender
	breaker   *circuitbreaker.Breaker
	onWritten func(n int)
}

// NewLedgerRecorder creates a LedgerRecorder. A nil breaker uses the
// circuitbreaker defaults.
func NewLedgerRecorder(ledger clickAppender, breaker *circuitbreaker.Breaker) *LedgerRecorder {
	if breaker == nil {
		breaker = circuitbreaker.New(circuitbreaker.DefaultConfig())
	}
	return &LedgerRecorder{ledger: ledger, breaker: breaker}
}

// OnWritten registers fn to be told about every appended click.
func (r *LedgerRecorder) OnWritten(fn func(n int)) {
	r.onWritten = fn
}

// Record appends rec to the ledger.
func (r *LedgerRecorder) Record(ctx context.Context, rec domain.ClickRecord) error {
	err := r.breaker.Execute(ctx, func() error {
		_, appendErr := r.ledger.Append(ctx, &rec)
		return appendErr
	})
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return domain.PersistenceError("click ledger unavailable", err)
	}
	if err == nil && r.onWritten != nil {
		r.onWritten(1)
	}
	return err
}
