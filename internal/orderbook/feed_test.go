package orderbook

import (
	"log/slog"
	"testing"
	"time"
)

func newTestFeed() *Feed {
	return New("wss://example.invalid", slog.Default(), nil, nil)
}

func TestBestBidAskBeforeAnyUpdate(t *testing.T) {
	t.Parallel()
	f := newTestFeed()
	if _, _, ok := f.BestBidAsk(); ok {
		t.Fatal("expected no price before any update")
	}
	if f.IsStale(time.Hour) != true {
		t.Fatal("a feed with no updates should always be stale")
	}
}

func TestSetPriceUpdatesMidAndNotifies(t *testing.T) {
	t.Parallel()
	f := newTestFeed()

	f.setPrice(100.0, 100.2)

	bid, ask, ok := f.BestBidAsk()
	if !ok || bid != 100.0 || ask != 100.2 {
		t.Fatalf("BestBidAsk = (%v, %v, %v), want (100.0, 100.2, true)", bid, ask, ok)
	}

	mid, ok := f.MidPrice()
	if !ok || mid != 100.1 {
		t.Fatalf("MidPrice = (%v, %v), want (100.1, true)", mid, ok)
	}

	select {
	case <-f.Updates():
	default:
		t.Fatal("expected a coalesced update notification")
	}
}

func TestSetPriceCoalescesNotifications(t *testing.T) {
	t.Parallel()
	f := newTestFeed()

	f.setPrice(1, 2)
	f.setPrice(3, 4) // should not block even though the channel is already full

	select {
	case <-f.Updates():
	default:
		t.Fatal("expected at least one pending notification")
	}
	select {
	case <-f.Updates():
		t.Fatal("expected only one coalesced notification, got a second")
	default:
	}
}

func TestIsStaleAfterUpdate(t *testing.T) {
	t.Parallel()
	f := newTestFeed()
	f.setPrice(1, 2)
	if f.IsStale(time.Hour) {
		t.Fatal("freshly updated feed should not be stale")
	}
	if !f.IsStale(0) {
		t.Fatal("a zero max age should always report stale")
	}
}
