package hyperliquid

import (
	"context"
	"log/slog"
	"testing"

	"polymarket-mm/pkg/types"
)

func TestPlaceMarketIOCDryRunSkipsNetwork(t *testing.T) {
	t.Parallel()

	s, err := NewSigner(testPrivateKey, 421614)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	c := NewClient("https://example.invalid", "SOL", s, true, slog.Default())

	result, err := c.PlaceMarketIOC(context.Background(), types.MarketIOCRequest{
		Coin:           "SOL",
		Side:           types.Sell,
		Size:           1.0,
		ReferencePrice: 100.0,
		SlippagePct:    0.003,
	})
	if err != nil {
		t.Fatalf("PlaceMarketIOC: %v", err)
	}
	if result.OrderID == "" {
		t.Fatal("expected a dry-run order id")
	}
}
