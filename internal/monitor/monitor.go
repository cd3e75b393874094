// Package monitor implements OrderMonitor, the 1kHz hot loop that watches
// the resting maker-venue order for two cancel triggers: staleness (age) and
// profit deviation (the recomputed profit has drifted from the placement-time
// profit by more than the threshold, in either direction).
package monitor

import (
	"context"
	"log/slog"
	"time"

	"polymarket-mm/internal/botstate"
	"polymarket-mm/internal/evaluator"
	"polymarket-mm/internal/orderbook"
)

const tickInterval = time.Millisecond
const profitLogInterval = 2 * time.Second

// CancelRequest identifies which resting order to cancel and why. Reason is
// for logging only; CancelHandler re-snapshots state itself and skips the
// request unless ClientOrderID still matches the active order.
type CancelRequest struct {
	ClientOrderID string
	Reason        string
}

// Monitor runs the age/profit-deviation cancel triggers.
type Monitor struct {
	state        *botstate.BotState
	eval         *evaluator.Evaluator
	hlFeed       *orderbook.Feed
	refresh      time.Duration
	deviationBps float64
	cancelCh     chan<- CancelRequest
	logger       *slog.Logger
}

// New constructs a Monitor. cancelCh is the shared capacity-64 cancel channel.
// deviationBps is the maximum allowed drift, in either direction, between an
// order's recomputed profit and its InitialProfitBps at placement time
// before the order is cancelled.
func New(state *botstate.BotState, eval *evaluator.Evaluator, hlFeed *orderbook.Feed, refresh time.Duration, deviationBps float64, cancelCh chan<- CancelRequest, logger *slog.Logger) *Monitor {
	return &Monitor{
		state:        state,
		eval:         eval,
		hlFeed:       hlFeed,
		refresh:      refresh,
		deviationBps: deviationBps,
		cancelCh:     cancelCh,
		logger:       logger.With("component", "order_monitor"),
	}
}

// Run blocks, driving both the 1kHz trigger loop and the 0.5Hz observational
// logger, until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	hotTicker := time.NewTicker(tickInterval)
	defer hotTicker.Stop()
	logTicker := time.NewTicker(profitLogInterval)
	defer logTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-hotTicker.C:
			m.checkTriggers()
		case <-logTicker.C:
			m.logProfit()
		}
	}
}

func (m *Monitor) checkTriggers() {
	if !m.state.HasActiveOrderFast() {
		return
	}
	snap := m.state.Snapshot()
	if snap.ActiveOrder == nil {
		return
	}

	if time.Since(snap.ActiveOrder.PlacedAt) > m.refresh {
		m.requestCancel(snap.ActiveOrder.ClientOrderID, "age")
		return
	}

	bid, ask, ok := m.hlFeed.BestBidAsk()
	if !ok {
		return
	}
	profitBps := m.eval.RecalculateProfitRaw(snap.ActiveOrder.Side, snap.ActiveOrder.Price, bid, ask)
	deviation := snap.ActiveOrder.InitialProfitBps - profitBps
	if deviation < 0 {
		deviation = -deviation
	}
	if deviation > m.deviationBps {
		m.requestCancel(snap.ActiveOrder.ClientOrderID, "profit_deviation")
	}
}

func (m *Monitor) requestCancel(clientOrderID, reason string) {
	select {
	case m.cancelCh <- CancelRequest{ClientOrderID: clientOrderID, Reason: reason}:
	default:
		m.logger.Warn("cancel channel full, dropping request", "client_order_id", clientOrderID, "reason", reason)
	}
}

func (m *Monitor) logProfit() {
	if !m.state.HasActiveOrderFast() {
		return
	}
	snap := m.state.Snapshot()
	if snap.ActiveOrder == nil {
		return
	}
	bid, ask, ok := m.hlFeed.BestBidAsk()
	if !ok {
		return
	}
	profitBps := m.eval.RecalculateProfitRaw(snap.ActiveOrder.Side, snap.ActiveOrder.Price, bid, ask)
	m.logger.Info("resting order profit",
		"client_order_id", snap.ActiveOrder.ClientOrderID, "profit_bps", profitBps)
}
