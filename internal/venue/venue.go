// Package venue declares the narrow interfaces each strategy component
// depends on against the two trading venues. The concrete internal/pacifica
// and internal/hyperliquid clients satisfy these structurally; nothing in
// those packages imports venue.
package venue

import (
	"context"

	"polymarket-mm/pkg/types"
)

// PacificaClient is the maker-venue surface: quoting, order management,
// position reads.
type PacificaClient interface {
	GetMarketInfo(ctx context.Context, symbol string) (types.MarketInfo, error)
	GetBestBidAskREST(ctx context.Context, symbol string) (bid, ask float64, err error)
	PlaceLimitOrder(ctx context.Context, req types.PlaceOrderRequest) (types.OrderResult, error)
	GetOpenOrders(ctx context.Context, symbol string) ([]types.OpenOrder, error)
	GetPositions(ctx context.Context) ([]types.Position, error)
	CancelAllOrders(ctx context.Context, symbol string) (int, error)
	CancelOrder(ctx context.Context, clientOrderID string) error
}

// HyperliquidClient is the hedge-venue surface: metadata, book snapshot, and
// IOC market order placement.
type HyperliquidClient interface {
	GetMeta(ctx context.Context) (types.Meta, error)
	GetL2Snapshot(ctx context.Context, coin string) (types.L2Snapshot, error)
	PlaceMarketIOC(ctx context.Context, req types.MarketIOCRequest) (types.OrderResult, error)
}
