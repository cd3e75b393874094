package hedge

import (
	"context"

	"polymarket-mm/pkg/types"
)

type hlClientStub struct {
	result types.OrderResult
	err    error
	calls  []types.MarketIOCRequest
}

func (s *hlClientStub) GetMeta(ctx context.Context) (types.Meta, error) {
	return types.Meta{}, nil
}

func (s *hlClientStub) GetL2Snapshot(ctx context.Context, coin string) (types.L2Snapshot, error) {
	return types.L2Snapshot{}, nil
}

func (s *hlClientStub) PlaceMarketIOC(ctx context.Context, req types.MarketIOCRequest) (types.OrderResult, error) {
	s.calls = append(s.calls, req)
	return s.result, s.err
}

type makerClientStub struct {
	cancelCount int
}

func (makerClientStub) GetMarketInfo(ctx context.Context, symbol string) (types.MarketInfo, error) {
	return types.MarketInfo{}, nil
}

func (makerClientStub) GetBestBidAskREST(ctx context.Context, symbol string) (float64, float64, error) {
	return 0, 0, nil
}

func (makerClientStub) PlaceLimitOrder(ctx context.Context, req types.PlaceOrderRequest) (types.OrderResult, error) {
	return types.OrderResult{}, nil
}

func (makerClientStub) GetOpenOrders(ctx context.Context, symbol string) ([]types.OpenOrder, error) {
	return nil, nil
}

func (makerClientStub) GetPositions(ctx context.Context) ([]types.Position, error) {
	return nil, nil
}

func (s *makerClientStub) CancelAllOrders(ctx context.Context, symbol string) (int, error) {
	return s.cancelCount, nil
}

func (makerClientStub) CancelOrder(ctx context.Context, clientOrderID string) error {
	return nil
}
