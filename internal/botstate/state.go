// Package botstate implements the XEMM lifecycle state machine: a single
// resting maker order moves Idle -> OrderPlaced -> Filled -> Hedging ->
// Complete -> Idle, with Error reachable from a failed hedge and collapsing
// back to Idle once reconciliation completes.
//
// Every mutation holds the write lock and updates the atomic mirror under
// the same critical section, so a lock-free reader on the hot path never
// observes Status and StatusAtomic disagreeing.
package botstate

import (
	"sync"
	"sync/atomic"
	"time"

	"polymarket-mm/pkg/types"
)

// BotStatus is the full lifecycle status, retained for logging even where
// the atomic fast-path mirror collapses two statuses to the same value.
type BotStatus uint8

const (
	StatusIdle BotStatus = iota
	StatusOrderPlaced
	StatusFilled
	StatusHedging
	StatusComplete
	StatusError
)

func (s BotStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusOrderPlaced:
		return "order_placed"
	case StatusFilled:
		return "filled"
	case StatusHedging:
		return "hedging"
	case StatusComplete:
		return "complete"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// atomic-encoded status values. Error and Idle both read as atomIdle on the
// fast path. A reader that only needs "is it safe to evaluate a fresh
// opportunity" never needs to distinguish the two; a reader that needs the
// real status reads the locked Status field instead.
const (
	atomIdle uint32 = iota
	atomOrderPlaced
	atomFilled
	atomHedging
	atomComplete
)

// ActiveOrder describes the single resting order the bot may have open on
// the maker venue at any time.
type ActiveOrder struct {
	ClientOrderID    string
	Symbol           string
	Side             types.Side
	Price            float64
	Size             float64
	InitialProfitBps float64
	PlacedAt         time.Time
}

// OrderSnapshot is an immutable, lock-free-to-read copy of BotState taken
// under the read lock. Consumers that need to act on BotState without
// holding its lock across I/O always work from a Snapshot.
type OrderSnapshot struct {
	ActiveOrder *ActiveOrder // nil if no order is resting
	Position    float64
	Status      BotStatus
}

// BotState is the single source of truth for the bot's lifecycle. Safe for
// concurrent use.
type BotState struct {
	mu                   sync.RWMutex
	activeOrder          *ActiveOrder
	position             float64
	status               BotStatus
	lastError            string
	lastCancellationTime time.Time

	statusAtomic atomic.Uint32
}

// New returns a BotState starting in StatusIdle.
func New() *BotState {
	return &BotState{}
}

// SetActiveOrder records a newly placed resting order and moves to OrderPlaced.
func (s *BotState) SetActiveOrder(order ActiveOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeOrder = &order
	s.status = StatusOrderPlaced
	s.statusAtomic.Store(atomOrderPlaced)
}

// ClearActiveOrder drops the resting order and returns to Idle, stamping the
// cancellation time for grace-period enforcement.
func (s *BotState) ClearActiveOrder() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeOrder = nil
	s.status = StatusIdle
	s.statusAtomic.Store(atomIdle)
	s.lastCancellationTime = time.Now()
}

// MarkFilled records a fill against the resting order and updates position.
func (s *BotState) MarkFilled(filledSize float64, side types.Side) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusFilled
	s.statusAtomic.Store(atomFilled)
	if side == types.Buy {
		s.position += filledSize
	} else {
		s.position -= filledSize
	}
}

// MarkHedging records that a hedge is now in flight on the hedge venue.
func (s *BotState) MarkHedging() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusHedging
	s.statusAtomic.Store(atomHedging)
}

// MarkComplete records a successful hedge. Complete is transient: the caller
// should immediately follow with ClearActiveOrder to return to Idle.
func (s *BotState) MarkComplete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusComplete
	s.statusAtomic.Store(atomComplete)
	s.activeOrder = nil
}

// SetError records a failed hedge. The atomic mirror collapses this to Idle
// so the evaluation hot path doesn't stall on an error it can't act on; the
// full Status retains StatusError for logging until reconciliation resets it.
func (s *BotState) SetError(errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusError
	s.lastError = errMsg
	s.statusAtomic.Store(atomIdle)
}

// Reset clears any error and returns the state machine to Idle. Called by
// the hedge-failure reconciliation routine after all open orders have been
// cancelled on the maker venue.
func (s *BotState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeOrder = nil
	s.status = StatusIdle
	s.lastError = ""
	s.statusAtomic.Store(atomIdle)
	s.lastCancellationTime = time.Now()
}

// IsIdleFast is a lock-free hot-path check used by the evaluation loop and
// the 1kHz order monitor.
func (s *BotState) IsIdleFast() bool {
	return s.statusAtomic.Load() == atomIdle
}

// HasActiveOrderFast is a lock-free hot-path check used by the order monitor.
func (s *BotState) HasActiveOrderFast() bool {
	return s.statusAtomic.Load() == atomOrderPlaced
}

// GraceElapsed reports whether enough time has passed since the last cancel
// to permit placing a new order, avoiding a cancel/replace thrash loop.
func (s *BotState) GraceElapsed(graceSecs int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastCancellationTime.IsZero() {
		return true
	}
	return time.Since(s.lastCancellationTime) >= time.Duration(graceSecs)*time.Second
}

// Snapshot takes a consistent, lock-free-to-read copy of the current state.
func (s *BotState) Snapshot() OrderSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var orderCopy *ActiveOrder
	if s.activeOrder != nil {
		o := *s.activeOrder
		orderCopy = &o
	}

	return OrderSnapshot{
		ActiveOrder: orderCopy,
		Position:    s.position,
		Status:      s.status,
	}
}

// LastError returns the error message recorded by the last SetError call.
func (s *BotState) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}
