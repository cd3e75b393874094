package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"polymarket-mm/internal/botstate"
)

func TestReconcileCancelsOrdersAndResetsState(t *testing.T) {
	t.Parallel()

	client := &venueClientStub{cancelCount: 2}
	state := botstate.New()
	state.SetActiveOrder(botstate.ActiveOrder{ClientOrderID: "abc"})
	state.SetError("hedge failed: timeout")

	r := New(client, state, "SOL", time.Minute, slog.Default())
	r.Reconcile(context.Background(), "hedge failed: timeout")

	snap := state.Snapshot()
	if snap.ActiveOrder != nil {
		t.Fatal("expected active order cleared after reconcile")
	}
	if snap.Status != botstate.StatusIdle {
		t.Fatalf("status = %v, want Idle", snap.Status)
	}
	if !r.Halted() {
		t.Fatal("expected reconciler to be in cooldown immediately after reconcile")
	}
}

func TestReconcileLogsCancelErrorButStillResets(t *testing.T) {
	t.Parallel()

	client := &venueClientStub{cancelErr: errors.New("network down")}
	state := botstate.New()
	state.SetActiveOrder(botstate.ActiveOrder{ClientOrderID: "abc"})

	r := New(client, state, "SOL", time.Minute, slog.Default())
	r.Reconcile(context.Background(), "hedge failed")

	if state.Snapshot().Status != botstate.StatusIdle {
		t.Fatal("state should still reset to Idle even if cancel-all failed")
	}
}

func TestHaltedExpiresAfterCooldown(t *testing.T) {
	t.Parallel()

	client := &venueClientStub{}
	state := botstate.New()
	r := New(client, state, "SOL", time.Millisecond, slog.Default())
	r.Reconcile(context.Background(), "test")

	time.Sleep(5 * time.Millisecond)
	if r.Halted() {
		t.Fatal("expected cooldown to have expired")
	}
}
