package placer

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"polymarket-mm/internal/botstate"
	"polymarket-mm/internal/evaluator"
	"polymarket-mm/internal/ratelimit"
	"polymarket-mm/pkg/types"
)

type fakeMakerClient struct {
	venueClientStub
	placed []types.PlaceOrderRequest
	err    error
}

func (f *fakeMakerClient) PlaceLimitOrder(ctx context.Context, req types.PlaceOrderRequest) (types.OrderResult, error) {
	if f.err != nil {
		return types.OrderResult{}, f.err
	}
	f.placed = append(f.placed, req)
	return types.OrderResult{OrderID: "o1", ClientOrderID: req.ClientOrderID, Status: "new"}, nil
}

func TestPlaceSuccessSetsActiveOrder(t *testing.T) {
	t.Parallel()

	client := &fakeMakerClient{}
	state := botstate.New()
	p := New(client, state, ratelimit.NewBackoff(), "SOL", 0, slog.Default())

	p.Enqueue(evaluator.Opportunity{Direction: types.Buy, PacificaPrice: 99.86, Size: 1, InitialProfitBps: 5, Timestamp: time.Now()})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	go p.Run(ctx)
	time.Sleep(20 * time.Millisecond)

	if len(client.placed) != 1 {
		t.Fatalf("expected exactly one order placed, got %d", len(client.placed))
	}
	if !state.HasActiveOrderFast() {
		t.Fatal("expected BotState to have an active order after placement")
	}
}

func TestPlaceSkipsDuringBackoff(t *testing.T) {
	t.Parallel()

	client := &fakeMakerClient{}
	state := botstate.New()
	bo := ratelimit.NewBackoff()
	bo.RecordError() // now inside the backoff window

	p := New(client, state, bo, "SOL", 0, slog.Default())
	p.Enqueue(evaluator.Opportunity{Direction: types.Buy, PacificaPrice: 99.86, Size: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	go p.Run(ctx)
	time.Sleep(20 * time.Millisecond)

	if len(client.placed) != 0 {
		t.Fatal("expected placement to be skipped during backoff")
	}
}

func TestPlaceSkipsWithinCancelGracePeriod(t *testing.T) {
	t.Parallel()

	client := &fakeMakerClient{}
	state := botstate.New()
	state.SetActiveOrder(botstate.ActiveOrder{ClientOrderID: "prior"})
	state.ClearActiveOrder() // stamps lastCancellationTime = now

	p := New(client, state, ratelimit.NewBackoff(), "SOL", 60, slog.Default())
	p.Enqueue(evaluator.Opportunity{Direction: types.Buy, PacificaPrice: 99.86, Size: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	go p.Run(ctx)
	time.Sleep(20 * time.Millisecond)

	if len(client.placed) != 0 {
		t.Fatal("expected placement to be skipped within the cancel grace period")
	}
}
