// Package hedge implements HedgeExecutor: the single consumer of the hedge
// channel, placing a slippage-bounded IOC market order on the hedge venue
// for every detected maker-venue fill.
package hedge

import (
	"context"
	"log/slog"
	"time"

	"polymarket-mm/internal/audit"
	"polymarket-mm/internal/botstate"
	"polymarket-mm/internal/reconcile"
	"polymarket-mm/internal/venue"
	"polymarket-mm/pkg/types"
)

// Executor drains the hedge channel and places the opposite-side order.
type Executor struct {
	client      venue.HyperliquidClient
	state       *botstate.BotState
	reconciler  *reconcile.Reconciler
	audit       *audit.Log
	coin        string
	slippagePct float64
	hedgeCh     <-chan types.HedgeEvent
	logger      *slog.Logger
}

// New constructs an Executor. hedgeCh is the shared capacity-1 hedge channel
// every FillDetector source writes to.
func New(client venue.HyperliquidClient, state *botstate.BotState, reconciler *reconcile.Reconciler, log *audit.Log, coin string, slippagePct float64, hedgeCh <-chan types.HedgeEvent, logger *slog.Logger) *Executor {
	return &Executor{
		client:      client,
		state:       state,
		reconciler:  reconciler,
		audit:       log,
		coin:        coin,
		slippagePct: slippagePct,
		hedgeCh:     hedgeCh,
		logger:      logger.With("component", "hedge_executor"),
	}
}

// Run drains the hedge channel until ctx is cancelled.
func (e *Executor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-e.hedgeCh:
			e.handle(ctx, evt)
		}
	}
}

func (e *Executor) handle(ctx context.Context, evt types.HedgeEvent) {
	e.state.MarkHedging()

	result, err := e.client.PlaceMarketIOC(ctx, types.MarketIOCRequest{
		Coin:           e.coin,
		Side:           evt.Side,
		Size:           evt.Size,
		ReferencePrice: evt.AvgPrice,
		SlippagePct:    e.slippagePct,
	})
	if err != nil {
		e.logger.Error("hedge order failed", "side", evt.Side, "size", evt.Size, "error", err)
		e.state.SetError(err.Error())
		e.reconciler.Reconcile(ctx, err.Error())
		return
	}

	hedgePrice := slippageBoundedLimit(evt.AvgPrice, e.slippagePct, evt.Side)
	profitBps := realizedProfitBps(evt, hedgePrice)
	if err := audit.RecordHedge(e.audit, e.coin, evt, hedgePrice, profitBps); err != nil {
		e.logger.Warn("audit log write failed", "error", err)
	}

	e.state.MarkComplete()
	e.state.ClearActiveOrder()

	e.logger.Info("hedge placed", "order_id", result.OrderID, "side", evt.Side, "size", evt.Size,
		"source", evt.Source, "detected_at", evt.DetectedAt, "duration", time.Since(evt.DetectedAt))
}

// slippageBoundedLimit mirrors the limit price the hedge-venue client itself
// computes for an IOC order: the worst price the fill is allowed to clear at.
// The audit log records this as the conservative estimate of the hedge fill
// price, since the venue doesn't echo back an actual fill price.
func slippageBoundedLimit(referencePrice, slippagePct float64, hedgeSide types.Side) float64 {
	if hedgeSide == types.Buy {
		return referencePrice * (1 + slippagePct)
	}
	return referencePrice * (1 - slippagePct)
}

// realizedProfitBps estimates the spread captured between the maker fill
// price and the slippage-bounded hedge price, for the audit log only.
func realizedProfitBps(evt types.HedgeEvent, hedgePrice float64) float64 {
	if evt.AvgPrice == 0 {
		return 0
	}
	if evt.Side == types.Sell {
		return (hedgePrice - evt.AvgPrice) / evt.AvgPrice * 10000
	}
	return (evt.AvgPrice - hedgePrice) / evt.AvgPrice * 10000
}
