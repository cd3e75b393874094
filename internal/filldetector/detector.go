// Package filldetector implements FillDetector: three independent channels
// (WS primary, REST backup, Position tertiary) that each detect a maker-venue
// fill and emit a deduplicated HedgeEvent.
//
// The REST-backup polling loop is grounded exactly in
// original_source/examples/test_rest_fill_detection.rs: track the last-known
// filled amount per order, compute the delta, and only treat it as
// hedge-worthy when isFullFill || notionalValue > minHedgeNotional.
package filldetector

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"polymarket-mm/internal/botstate"
	"polymarket-mm/internal/dedup"
	"polymarket-mm/internal/venue"
	"polymarket-mm/pkg/types"
)

const fullFillEpsilon = 1e-4

// Detector owns the dedup set and the hedge channel all three sources write to.
type Detector struct {
	client           venue.PacificaClient
	state            *botstate.BotState
	symbol           string
	pollInterval     time.Duration
	minHedgeNotional float64
	dedup            *dedup.Set
	hedgeCh          chan<- types.HedgeEvent
	logger           *slog.Logger

	restMu         sync.Mutex
	restLastFilled map[string]float64

	posMu       sync.Mutex
	posAmount   float64
	posHasPrior bool
	posSeq      atomic.Uint64
}

// New constructs a Detector. hedgeCh is the shared capacity-1 hedge channel.
func New(client venue.PacificaClient, state *botstate.BotState, symbol string, pollInterval time.Duration, minHedgeNotional float64, hedgeCh chan<- types.HedgeEvent, logger *slog.Logger) *Detector {
	return &Detector{
		client:           client,
		state:            state,
		symbol:           symbol,
		pollInterval:     pollInterval,
		minHedgeNotional: minHedgeNotional,
		dedup:            dedup.NewSet(),
		hedgeCh:          hedgeCh,
		logger:           logger.With("component", "fill_detector"),
		restLastFilled:   make(map[string]float64),
	}
}

// HandleWSFill is the WS-primary path, called for every fill event delivered
// by the maker venue's user stream.
func (d *Detector) HandleWSFill(evt types.WSFillEvent) {
	isFullFill := isFullFill(evt.FilledAmount, evt.InitialAmount)
	id := dedup.FillID(isFullFill, evt.ClientOrderID, "ws")
	if !d.dedup.CheckAndMark(id) {
		return
	}
	d.accept(evt.Side, types.HedgeEvent{
		Side:       evt.Side.Opposite(),
		Size:       evt.FilledAmount,
		AvgPrice:   evt.Price,
		DetectedAt: time.Now(),
		Source:     "ws",
	})
}

// RunRESTPoll polls GetOpenOrders on an interval, detecting fills the WS
// stream missed by diffing FilledAmount against the last-seen value.
func (d *Detector) RunRESTPoll(ctx context.Context) {
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.pollREST(ctx)
		}
	}
}

func (d *Detector) pollREST(ctx context.Context) {
	orders, err := d.client.GetOpenOrders(ctx, d.symbol)
	if err != nil {
		d.logger.Warn("rest fill poll failed", "error", err)
		return
	}

	d.restMu.Lock()
	defer d.restMu.Unlock()

	seenIDs := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		seenIDs[o.ClientOrderID] = struct{}{}
		last := d.restLastFilled[o.ClientOrderID]
		delta := o.FilledAmount - last
		if delta <= 0 {
			continue
		}
		d.restLastFilled[o.ClientOrderID] = o.FilledAmount

		isFull := isFullFill(o.FilledAmount, o.InitialAmount)
		notional := delta * o.Price
		if !isFull && notional <= d.minHedgeNotional {
			continue
		}

		id := dedup.FillID(isFull, o.ClientOrderID, "rest")
		if !d.dedup.CheckAndMark(id) {
			continue
		}
		d.accept(o.Side, types.HedgeEvent{
			Side:       o.Side.Opposite(),
			Size:       delta,
			AvgPrice:   o.Price,
			DetectedAt: time.Now(),
			Source:     "rest",
		})
	}

	// Orders no longer open (fully consumed or cancelled) don't need their
	// last-filled entry retained.
	for id := range d.restLastFilled {
		if _, ok := seenIDs[id]; !ok {
			delete(d.restLastFilled, id)
		}
	}
}

// RunPositionPoll polls GetPositions on the same cadence as the REST backup,
// catching any fill neither the WS nor REST channel saw.
func (d *Detector) RunPositionPoll(ctx context.Context) {
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.pollPosition(ctx)
		}
	}
}

func (d *Detector) pollPosition(ctx context.Context) {
	positions, err := d.client.GetPositions(ctx)
	if err != nil {
		d.logger.Warn("position poll failed", "error", err)
		return
	}

	var amount float64
	for _, p := range positions {
		if p.Symbol == d.symbol {
			amount = p.Amount
			break
		}
	}

	d.posMu.Lock()
	defer d.posMu.Unlock()

	if !d.posHasPrior {
		d.posAmount = amount
		d.posHasPrior = true
		return
	}

	prevAmount := d.posAmount
	delta := amount - prevAmount
	d.posAmount = amount
	if delta == 0 {
		return
	}

	side := types.Buy
	if delta < 0 {
		side = types.Sell
		delta = -delta
	}

	id := dedup.FillID(true, d.positionDedupOrderID(), "position")
	if !d.dedup.CheckAndMark(id) {
		return
	}
	d.accept(side, types.HedgeEvent{
		Side:       side.Opposite(),
		Size:       delta,
		DetectedAt: time.Now(),
		Source:     "position",
	})
}

// accept records the fill against BotState (keyed by the original fill
// side) and forwards the corresponding hedge event (opposite side) to the
// hedge executor.
func (d *Detector) accept(fillSide types.Side, evt types.HedgeEvent) {
	d.state.MarkFilled(evt.Size, fillSide)
	d.hedgeCh <- evt
	d.logger.Info("fill detected", "source", evt.Source, "side", evt.Side, "size", evt.Size)
}

func isFullFill(filledAmount, initialAmount float64) bool {
	diff := filledAmount - initialAmount
	if diff < 0 {
		diff = -diff
	}
	return diff < fullFillEpsilon
}

// positionDedupOrderID returns the identifier the Position channel's dedup
// key is built on: the tracked active order's ClientOrderID when one is
// resting, since that is the order whose fill this delta most likely
// reflects. If no order is currently tracked (WS or REST already cleared it
// before this poll observed the delta), fall back to a process-lifetime
// monotonic sequence number. Either way the key is never derived from the
// raw position amounts themselves, which would collide if the net position
// ever revisits the same (prevAmount, amount) pair later in the process's
// lifetime and silently drop a genuine second transition.
func (d *Detector) positionDedupOrderID() string {
	if snap := d.state.Snapshot(); snap.ActiveOrder != nil {
		return snap.ActiveOrder.ClientOrderID
	}
	return "seq" + strconv.FormatUint(d.posSeq.Add(1), 10)
}
