// Package placer implements the single-consumer order-placement goroutine:
// it reads opportunities off a capacity-1 channel, rate-limit-backoff-checks,
// and places a GTC limit order on the maker venue.
//
// Mirrors the bounded placement channel and the original OrderPlacementService
// in original_source/src/services/order_placement.rs: only ever one placement
// request in flight, newer requests on a full channel are dropped since a
// fresher evaluation will supersede a stale one.
package placer

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"polymarket-mm/internal/botstate"
	"polymarket-mm/internal/evaluator"
	"polymarket-mm/internal/ratelimit"
	"polymarket-mm/internal/venue"
	"polymarket-mm/pkg/types"
)

// Placer owns the placement channel and single-flight semantics.
type Placer struct {
	client    venue.PacificaClient
	state     *botstate.BotState
	backoff   *ratelimit.Backoff
	symbol    string
	graceSecs int
	logger    *slog.Logger

	requestCh chan evaluator.Opportunity
	seq       atomic.Uint64
}

// New constructs a Placer. Call Enqueue from the evaluation loop and Run in
// its own goroutine. graceSecs is the minimum time after a cancel before a
// new order may be placed, avoiding a cancel/replace thrash loop.
func New(client venue.PacificaClient, state *botstate.BotState, backoff *ratelimit.Backoff, symbol string, graceSecs int, logger *slog.Logger) *Placer {
	return &Placer{
		client:    client,
		state:     state,
		backoff:   backoff,
		symbol:    symbol,
		graceSecs: graceSecs,
		logger:    logger.With("component", "order_placer"),
		requestCh: make(chan evaluator.Opportunity, 1),
	}
}

// Enqueue submits a candidate opportunity for placement. Non-blocking: a
// pending, unconsumed request means a fresher one is dropped since the next
// evaluation tick will produce an up-to-date candidate.
func (p *Placer) Enqueue(opp evaluator.Opportunity) {
	select {
	case p.requestCh <- opp:
	default:
		p.logger.Debug("placement channel full, dropping stale opportunity")
	}
}

// Run drains the placement channel until ctx is cancelled.
func (p *Placer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case opp := <-p.requestCh:
			p.place(ctx, opp)
		}
	}
}

func (p *Placer) place(ctx context.Context, opp evaluator.Opportunity) {
	if p.backoff.ShouldSkip() {
		p.logger.Debug("skipping placement, mid-backoff", "remaining", p.backoff.RemainingBackoff())
		return
	}
	if !p.state.GraceElapsed(p.graceSecs) {
		p.logger.Debug("skipping placement, within cancel grace period")
		return
	}

	clientOrderID := p.nextClientOrderID()
	result, err := p.client.PlaceLimitOrder(ctx, types.PlaceOrderRequest{
		Symbol:        p.symbol,
		Side:          opp.Direction,
		Price:         opp.PacificaPrice,
		Size:          opp.Size,
		ClientOrderID: clientOrderID,
	})
	if err != nil {
		if ratelimit.IsRateLimitError(err) {
			delay := p.backoff.RecordError()
			p.logger.Warn("rate limited placing order, backing off", "delay", delay, "error", err)
			return
		}
		p.logger.Error("place order failed", "error", err)
		return
	}

	p.backoff.RecordSuccess()
	p.state.SetActiveOrder(botstate.ActiveOrder{
		ClientOrderID:    result.ClientOrderID,
		Symbol:           p.symbol,
		Side:             opp.Direction,
		Price:            opp.PacificaPrice,
		Size:             opp.Size,
		InitialProfitBps: opp.InitialProfitBps,
		PlacedAt:         time.Now(),
	})
	p.logger.Info("order placed",
		"client_order_id", result.ClientOrderID, "side", opp.Direction,
		"price", opp.PacificaPrice, "size", opp.Size, "profit_bps", opp.InitialProfitBps)
}

func (p *Placer) nextClientOrderID() string {
	n := p.seq.Add(1)
	return fmt.Sprintf("xemm-%s-%d-%d", p.symbol, time.Now().UnixNano(), n)
}
