// Package orderbook maintains a best-bid/ask mirror for one venue, fed by a
// WebSocket stream with REST fallback for the initial snapshot. Each venue
// gets its own Feed instance; OrderPlacer/OrderMonitor read through
// BestBidAsk/MidPrice without ever touching the underlying connection.
package orderbook

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	initialReconnectDelay = time.Second
	maxReconnectDelay     = 30 * time.Second
	readDeadline          = 90 * time.Second
	pingInterval          = 30 * time.Second
)

// Feed tracks the best bid/ask for one symbol on one venue and notifies
// subscribers of updates through a coalescing channel.
type Feed struct {
	mu  sync.RWMutex
	bid float64
	ask float64

	updated time.Time

	url    string
	logger *slog.Logger

	updateCh  chan struct{}
	dialer    *websocket.Dialer
	subscribe func(*websocket.Conn) error
	onMessage func([]byte) (bid, ask float64, ok bool)
}

// New constructs a Feed. subscribe writes the venue-specific subscription
// message(s) once connected; onMessage parses a single WS frame into a
// best-bid/ask pair, returning ok=false for frames that carry no book update.
func New(url string, logger *slog.Logger, subscribe func(*websocket.Conn) error, onMessage func([]byte) (bid, ask float64, ok bool)) *Feed {
	return &Feed{
		url:       url,
		logger:    logger.With("component", "orderbook_feed", "url", url),
		updateCh:  make(chan struct{}, 1),
		dialer:    websocket.DefaultDialer,
		subscribe: subscribe,
		onMessage: onMessage,
	}
}

// Updates returns a channel that receives a coalesced notification whenever
// the best bid/ask changes. A pending, unread notification means "there is
// fresher data"; further updates while one is pending are dropped.
func (f *Feed) Updates() <-chan struct{} {
	return f.updateCh
}

// BestBidAsk returns the last known best bid/ask and whether any update has
// ever been received.
func (f *Feed) BestBidAsk() (bid, ask float64, ok bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.updated.IsZero() {
		return 0, 0, false
	}
	return f.bid, f.ask, true
}

// MidPrice returns (bid+ask)/2, or false if no update has been received.
func (f *Feed) MidPrice() (float64, bool) {
	bid, ask, ok := f.BestBidAsk()
	if !ok {
		return 0, false
	}
	return (bid + ask) / 2, true
}

// IsStale reports whether no update has arrived within maxAge.
func (f *Feed) IsStale(maxAge time.Duration) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.updated.IsZero() {
		return true
	}
	return time.Since(f.updated) > maxAge
}

// Seed primes the feed with a one-shot REST snapshot so consumers have a
// usable price before the WebSocket connection delivers its first update.
func (f *Feed) Seed(bid, ask float64) {
	f.setPrice(bid, ask)
}

func (f *Feed) setPrice(bid, ask float64) {
	f.mu.Lock()
	f.bid = bid
	f.ask = ask
	f.updated = time.Now()
	f.mu.Unlock()

	select {
	case f.updateCh <- struct{}{}:
	default:
	}
}

// Run connects and reconnects with exponential backoff (1s -> 30s cap, reset
// on a successful connection) until ctx is cancelled.
func (f *Feed) Run(ctx context.Context) {
	delay := initialReconnectDelay
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		connected := false
		if err := f.connectAndRead(ctx, &connected); err != nil {
			f.logger.Warn("orderbook feed disconnected", "error", err, "retry_in", delay)
		}

		if connected {
			delay = initialReconnectDelay
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		if !connected {
			delay *= 2
			if delay > maxReconnectDelay {
				delay = maxReconnectDelay
			}
		}
	}
}

func (f *Feed) connectAndRead(ctx context.Context, connected *bool) error {
	conn, _, err := f.dialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return err
	}
	*connected = true
	defer conn.Close()

	if err := f.subscribe(conn); err != nil {
		return err
	}

	conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	stopPing := make(chan struct{})
	defer close(stopPing)
	go f.pingLoop(conn, stopPing)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		conn.SetReadDeadline(time.Now().Add(readDeadline))

		bid, ask, ok := f.onMessage(data)
		if ok {
			f.setPrice(bid, ask)
		}
	}
}

func (f *Feed) pingLoop(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
