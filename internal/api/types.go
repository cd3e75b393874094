package api

import "time"

// ActiveOrderView is the read-only projection of the resting maker order,
// if any, for the /status surface.
type ActiveOrderView struct {
	ClientOrderID string    `json:"client_order_id"`
	Side          string    `json:"side"`
	Price         float64   `json:"price"`
	Size          float64   `json:"size"`
	ProfitBps     float64   `json:"profit_bps"`
	PlacedAt      time.Time `json:"placed_at"`
}

// StatusView is the single-symbol status projection served at /status. It
// collapses what would otherwise be a multi-market dashboard snapshot to
// one object, since exactly one symbol runs per process.
type StatusView struct {
	Symbol             string           `json:"symbol"`
	Status             string           `json:"status"`
	Position           float64          `json:"position"`
	ActiveOrder        *ActiveOrderView `json:"active_order,omitempty"`
	LastError          string           `json:"last_error,omitempty"`
	PacificaBestBid    float64          `json:"pacifica_best_bid,omitempty"`
	PacificaBestAsk    float64          `json:"pacifica_best_ask,omitempty"`
	HyperliquidBestBid float64          `json:"hyperliquid_best_bid,omitempty"`
	HyperliquidBestAsk float64          `json:"hyperliquid_best_ask,omitempty"`
	BackoffActive      bool             `json:"backoff_active"`
	ReconcileHalted    bool             `json:"reconcile_halted"`
}

// StatusProvider supplies the current snapshot for the /status endpoint.
// Engine implements this directly.
type StatusProvider interface {
	Status() StatusView
}
