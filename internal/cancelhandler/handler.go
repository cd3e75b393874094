// Package cancelhandler implements CancelHandler: a single-consumer goroutine
// draining cancel requests and pre-checking for a fill race before issuing
// the cancel against the maker venue.
package cancelhandler

import (
	"context"
	"log/slog"

	"polymarket-mm/internal/botstate"
	"polymarket-mm/internal/monitor"
	"polymarket-mm/internal/venue"
)

// Handler drains the shared cancel-request channel.
type Handler struct {
	client venue.PacificaClient
	state  *botstate.BotState
	symbol string
	logger *slog.Logger

	cancelCh <-chan monitor.CancelRequest
}

// New constructs a Handler reading from the shared capacity-64 cancel channel.
func New(client venue.PacificaClient, state *botstate.BotState, symbol string, cancelCh <-chan monitor.CancelRequest, logger *slog.Logger) *Handler {
	return &Handler{
		client:   client,
		state:    state,
		symbol:   symbol,
		cancelCh: cancelCh,
		logger:   logger.With("component", "cancel_handler"),
	}
}

// Run drains requests until ctx is cancelled.
func (h *Handler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-h.cancelCh:
			h.handle(ctx, req)
		}
	}
}

func (h *Handler) handle(ctx context.Context, req monitor.CancelRequest) {
	snap := h.state.Snapshot()
	if snap.ActiveOrder == nil || snap.ActiveOrder.ClientOrderID != req.ClientOrderID {
		h.logger.Debug("skipping cancel, order already cleared or superseded",
			"client_order_id", req.ClientOrderID, "reason", req.Reason)
		return
	}

	if h.alreadyFilledOnExchange(ctx, req.ClientOrderID) {
		h.logger.Info("skipping cancel, order already has a fill on the exchange",
			"client_order_id", req.ClientOrderID, "reason", req.Reason)
		return
	}

	if err := h.client.CancelOrder(ctx, req.ClientOrderID); err != nil {
		h.logger.Warn("cancel order failed", "client_order_id", req.ClientOrderID, "error", err)
		return
	}

	h.state.ClearActiveOrder()
	h.logger.Info("order cancelled", "client_order_id", req.ClientOrderID, "reason", req.Reason, "symbol", h.symbol)
}

// alreadyFilledOnExchange re-checks the order against the live exchange
// state before cancelling it, closing the race where BotState's snapshot is
// still OrderPlaced but the order has already been (partially) filled and no
// FillDetector channel has observed it yet. A fetch error or a missing/
// unfilled order both fall through to "not filled" — CancelHandler must not
// block cancellation indefinitely on a flaky REST call.
func (h *Handler) alreadyFilledOnExchange(ctx context.Context, clientOrderID string) bool {
	orders, err := h.client.GetOpenOrders(ctx, h.symbol)
	if err != nil {
		h.logger.Warn("open-orders pre-check failed, proceeding with cancel", "client_order_id", clientOrderID, "error", err)
		return false
	}
	for _, o := range orders {
		if o.ClientOrderID == clientOrderID {
			return o.FilledAmount > 0
		}
	}
	return false
}
