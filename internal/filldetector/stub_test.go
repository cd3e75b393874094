package filldetector

import (
	"context"

	"polymarket-mm/pkg/types"
)

type venueClientStub struct {
	openOrders []types.OpenOrder
	positions  []types.Position
	err        error
}

func (s *venueClientStub) GetMarketInfo(ctx context.Context, symbol string) (types.MarketInfo, error) {
	return types.MarketInfo{}, nil
}

func (s *venueClientStub) GetBestBidAskREST(ctx context.Context, symbol string) (float64, float64, error) {
	return 0, 0, nil
}

func (s *venueClientStub) PlaceLimitOrder(ctx context.Context, req types.PlaceOrderRequest) (types.OrderResult, error) {
	return types.OrderResult{}, nil
}

func (s *venueClientStub) GetOpenOrders(ctx context.Context, symbol string) ([]types.OpenOrder, error) {
	return s.openOrders, s.err
}

func (s *venueClientStub) GetPositions(ctx context.Context) ([]types.Position, error) {
	return s.positions, s.err
}

func (s *venueClientStub) CancelAllOrders(ctx context.Context, symbol string) (int, error) {
	return 0, nil
}

func (s *venueClientStub) CancelOrder(ctx context.Context, clientOrderID string) error {
	return nil
}
