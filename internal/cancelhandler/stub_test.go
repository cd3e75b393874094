package cancelhandler

import (
	"context"

	"polymarket-mm/pkg/types"
)

type venueClientStub struct{}

func (venueClientStub) GetMarketInfo(ctx context.Context, symbol string) (types.MarketInfo, error) {
	return types.MarketInfo{}, nil
}

func (venueClientStub) GetBestBidAskREST(ctx context.Context, symbol string) (float64, float64, error) {
	return 0, 0, nil
}

func (venueClientStub) PlaceLimitOrder(ctx context.Context, req types.PlaceOrderRequest) (types.OrderResult, error) {
	return types.OrderResult{}, nil
}

func (venueClientStub) GetOpenOrders(ctx context.Context, symbol string) ([]types.OpenOrder, error) {
	return nil, nil
}

func (venueClientStub) GetPositions(ctx context.Context) ([]types.Position, error) {
	return nil, nil
}

func (venueClientStub) CancelAllOrders(ctx context.Context, symbol string) (int, error) {
	return 0, nil
}

func (venueClientStub) CancelOrder(ctx context.Context, clientOrderID string) error {
	return nil
}
