// Package orchestrator runs the group transaction lifecycle: the
// confirmation gate, the split authorization fan-out with compensation, and
// capture/release settlement.
//
// Every gateway fan-out waits for all member calls to finish before deciding
// anything; one member's failure never short-circuits the others. State
// changes on an existing transaction run under a per-transaction lock and are
// written with a version compare-and-swap.
package orchestrator

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/groupcard/internal/gateway"
	"github.com/mmynk/groupcard/internal/metrics"
	"github.com/mmynk/groupcard/internal/models"
	"github.com/mmynk/groupcard/internal/storage"
)

const defaultConcurrency = 16

// Orchestrator coordinates groups, transactions and the payment gateway.
type Orchestrator struct {
	groups      storage.GroupStore
	txns        storage.TransactionStore
	gw          gateway.Gateway
	locks       *keyedMutex
	concurrency int
	now         func() time.Time
	logger      *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithConcurrency caps the number of in-flight gateway calls per fan-out.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an Orchestrator.
func New(groups storage.GroupStore, txns storage.TransactionStore, gw gateway.Gateway, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		groups:      groups,
		txns:        txns,
		gw:          gw,
		locks:       newKeyedMutex(),
		concurrency: defaultConcurrency,
		now:         time.Now,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// newAuthCode returns a merchant-display authorization code like AUTH3F9A1C.
func newAuthCode() string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "AUTH" + strings.ToUpper(id[:6])
}

func recordOutcome(txn *models.GroupTransaction) {
	metrics.TransactionsTotal.WithLabelValues(string(txn.Status)).Inc()
	for _, h := range txn.Holds {
		metrics.HoldsTotal.WithLabelValues(string(h.Status)).Inc()
	}
}
