package monitor

import (
	"log/slog"
	"testing"
	"time"

	"polymarket-mm/internal/botstate"
	"polymarket-mm/internal/evaluator"
	"polymarket-mm/internal/orderbook"
	"polymarket-mm/pkg/types"
)

func newTestMonitor(cancelCh chan CancelRequest) (*Monitor, *botstate.BotState, *orderbook.Feed) {
	state := botstate.New()
	eval := evaluator.New(1.0, 2.5, 10.0, 0.01)
	feed := orderbook.New("wss://example.invalid", slog.Default(), nil, nil)
	m := New(state, eval, feed, 5*time.Second, 2.0, cancelCh, slog.Default())
	return m, state, feed
}

func TestCheckTriggersNoOrderIsNoop(t *testing.T) {
	t.Parallel()
	cancelCh := make(chan CancelRequest, 64)
	m, _, _ := newTestMonitor(cancelCh)
	m.checkTriggers()
	select {
	case <-cancelCh:
		t.Fatal("expected no cancel request with no active order")
	default:
	}
}

func TestCheckTriggersAgeFires(t *testing.T) {
	t.Parallel()
	cancelCh := make(chan CancelRequest, 64)
	m, state, _ := newTestMonitor(cancelCh)
	m.refresh = time.Millisecond

	state.SetActiveOrder(botstate.ActiveOrder{
		ClientOrderID: "abc", Side: types.Buy, Price: 99.86, Size: 1,
		PlacedAt: time.Now().Add(-time.Hour),
	})

	m.checkTriggers()
	select {
	case req := <-cancelCh:
		if req.Reason != "age" {
			t.Fatalf("reason = %q, want age", req.Reason)
		}
	default:
		t.Fatal("expected an age-triggered cancel request")
	}
}

func TestCheckTriggersProfitDeviationFires(t *testing.T) {
	t.Parallel()
	cancelCh := make(chan CancelRequest, 64)
	m, state, feed := newTestMonitor(cancelCh)

	state.SetActiveOrder(botstate.ActiveOrder{
		ClientOrderID: "abc", Side: types.Buy, Price: 99.86, Size: 1,
		InitialProfitBps: 50.0, PlacedAt: time.Now(),
	})
	feed.Seed(90.0, 90.02) // hedge price collapsed, profit now deeply negative

	m.checkTriggers()
	select {
	case req := <-cancelCh:
		if req.Reason != "profit_deviation" {
			t.Fatalf("reason = %q, want profit_deviation", req.Reason)
		}
	default:
		t.Fatal("expected a profit-deviation cancel request")
	}
}

// TestCheckTriggersProfitDeviationWorkedExample mirrors the documented
// scenario: initial profit 8.0 bps, threshold 3.0 bps, current profit
// recomputes to 4.0 bps. Deviation is |8.0 - 4.0| = 4.0, which exceeds the
// 3.0 threshold, so the cancel fires even though profit is still positive.
func TestCheckTriggersProfitDeviationWorkedExample(t *testing.T) {
	t.Parallel()
	cancelCh := make(chan CancelRequest, 64)
	state := botstate.New()
	eval := evaluator.New(1.0, 2.5, 10.0, 0.01)
	feed := orderbook.New("wss://example.invalid", slog.Default(), nil, nil)
	m := New(state, eval, feed, 5*time.Second, 3.0, cancelCh, slog.Default())

	state.SetActiveOrder(botstate.ActiveOrder{
		ClientOrderID: "abc", Side: types.Buy, Price: 99.86, Size: 1,
		InitialProfitBps: 8.0, PlacedAt: time.Now(),
	})

	// Seed a hedge price such that RecalculateProfitRaw yields ~4.0 bps for
	// this order: cost = 99.86 * (1 + makerFee), revenue = cost * 1.0004
	// must equal hlBid * (1 - takerFee), with makerFee=1bps, takerFee=2.5bps.
	cost := 99.86 * 1.0001
	hlBid := (cost * 1.0004) / 0.99975
	feed.Seed(hlBid, hlBid+0.02)

	m.checkTriggers()
	select {
	case req := <-cancelCh:
		if req.Reason != "profit_deviation" {
			t.Fatalf("reason = %q, want profit_deviation", req.Reason)
		}
	default:
		t.Fatal("expected a profit-deviation cancel request for the worked example")
	}
}

func TestCheckTriggersNoFireWithinDeviationThreshold(t *testing.T) {
	t.Parallel()
	cancelCh := make(chan CancelRequest, 64)
	m, state, feed := newTestMonitor(cancelCh)

	state.SetActiveOrder(botstate.ActiveOrder{
		ClientOrderID: "abc", Side: types.Buy, Price: 99.86, Size: 1,
		InitialProfitBps: 10.0, PlacedAt: time.Now(),
	})
	feed.Seed(100.0, 100.02) // profit recomputes to ~10.5 bps, within 2 bps of initial

	m.checkTriggers()
	select {
	case <-cancelCh:
		t.Fatal("expected no cancel request within the deviation threshold")
	default:
	}
}

func TestRequestCancelDropsWhenChannelFull(t *testing.T) {
	t.Parallel()
	cancelCh := make(chan CancelRequest, 1)
	m, _, _ := newTestMonitor(cancelCh)
	cancelCh <- CancelRequest{ClientOrderID: "filler"}

	m.requestCancel("abc", "age") // must not block even though the channel is full
	if len(cancelCh) != 1 {
		t.Fatal("expected the channel to remain at capacity, the new request dropped")
	}
}
