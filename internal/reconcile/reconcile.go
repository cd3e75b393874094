// Package reconcile recovers from a failed hedge.
//
// When HedgeExecutor cannot place the opposite-side order, the bot is left
// with unhedged exposure and must not resume quoting straight away.
// Reconciler cancels all resting maker-venue orders for the symbol, logs at
// Error level, and resets BotState to Idle, then holds off new quoting for a
// cooldown window; once the window has passed, quoting resumes.
package reconcile

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"polymarket-mm/internal/botstate"
	"polymarket-mm/internal/venue"
)

// Reconciler cancels open orders and resets BotState after a hedge failure.
type Reconciler struct {
	client   venue.PacificaClient
	state    *botstate.BotState
	symbol   string
	cooldown time.Duration
	logger   *slog.Logger

	mu          sync.Mutex
	haltedUntil time.Time
}

// New constructs a Reconciler. cooldown is the minimum time after a
// reconcile before the engine is told quoting may resume.
func New(client venue.PacificaClient, state *botstate.BotState, symbol string, cooldown time.Duration, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		client:   client,
		state:    state,
		symbol:   symbol,
		cooldown: cooldown,
		logger:   logger.With("component", "reconcile"),
	}
}

// Reconcile cancels all resting orders on the maker venue for the symbol,
// resets BotState to Idle, and starts the halt cooldown. Called after
// BotState.SetError has already recorded the failure.
func (r *Reconciler) Reconcile(ctx context.Context, reason string) {
	r.logger.Error("reconciling after hedge failure", "reason", reason)

	n, err := r.client.CancelAllOrders(ctx, r.symbol)
	if err != nil {
		r.logger.Error("cancel-all during reconciliation failed", "error", err)
	} else {
		r.logger.Info("cancelled resting orders during reconciliation", "count", n)
	}

	r.state.Reset()

	r.mu.Lock()
	r.haltedUntil = time.Now().Add(r.cooldown)
	r.mu.Unlock()
}

// Halted reports whether the engine should still skip evaluating new
// opportunities because a reconciliation cooldown is in effect.
func (r *Reconciler) Halted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return time.Now().Before(r.haltedUntil)
}
