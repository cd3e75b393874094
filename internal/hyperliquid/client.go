package hyperliquid

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"polymarket-mm/pkg/types"
)

// Client is the Hyperliquid REST API client used for metadata, L2 snapshots,
// and market IOC order placement (the hedge leg of every fill).
type Client struct {
	http   *resty.Client
	signer *Signer
	coin   string
	dryRun bool
	logger *slog.Logger
	nonce  int64
}

// NewClient creates a REST client bound to one agent wallet and hedge coin.
func NewClient(baseURL, coin string, signer *Signer, dryRun bool, logger *slog.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() >= 500
		}).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:   httpClient,
		signer: signer,
		coin:   coin,
		dryRun: dryRun,
		logger: logger.With("component", "hyperliquid_client"),
		nonce:  time.Now().UnixMilli(),
	}
}

// GetMeta fetches per-asset metadata (size decimals) for the configured
// hedge coin, pre-fetched once at startup so the hot hedge path never needs
// a metadata round trip.
func (c *Client) GetMeta(ctx context.Context) (types.Meta, error) {
	coin := c.coin
	var universe struct {
		Universe []struct {
			Name       string `json:"name"`
			SzDecimals int    `json:"szDecimals"`
		} `json:"universe"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"type": "meta"}).
		SetResult(&universe).
		Post("/info")
	if err != nil {
		return types.Meta{}, fmt.Errorf("get meta: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return types.Meta{}, fmt.Errorf("get meta: status %d: %s", resp.StatusCode(), resp.String())
	}
	for _, a := range universe.Universe {
		if a.Name == coin {
			return types.Meta{Coin: coin, SzDecimals: a.SzDecimals}, nil
		}
	}
	return types.Meta{}, fmt.Errorf("get meta: coin %q not found in universe", coin)
}

// GetL2Snapshot fetches the current order book for one coin.
func (c *Client) GetL2Snapshot(ctx context.Context, coin string) (types.L2Snapshot, error) {
	var raw struct {
		Levels [][]struct {
			Px string `json:"px"`
			Sz string `json:"sz"`
		} `json:"levels"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"type": "l2Book", "coin": coin}).
		SetResult(&raw).
		Post("/info")
	if err != nil {
		return types.L2Snapshot{}, fmt.Errorf("get l2 snapshot: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return types.L2Snapshot{}, fmt.Errorf("get l2 snapshot: status %d: %s", resp.StatusCode(), resp.String())
	}
	if len(raw.Levels) != 2 {
		return types.L2Snapshot{}, fmt.Errorf("get l2 snapshot: unexpected level count %d", len(raw.Levels))
	}

	parseLevels := func(side []struct {
		Px string `json:"px"`
		Sz string `json:"sz"`
	}) ([]types.L2Level, error) {
		out := make([]types.L2Level, 0, len(side))
		for _, lvl := range side {
			var px, sz float64
			if _, err := fmt.Sscanf(lvl.Px, "%f", &px); err != nil {
				return nil, fmt.Errorf("parse price %q: %w", lvl.Px, err)
			}
			if _, err := fmt.Sscanf(lvl.Sz, "%f", &sz); err != nil {
				return nil, fmt.Errorf("parse size %q: %w", lvl.Sz, err)
			}
			out = append(out, types.L2Level{Price: px, Size: sz})
		}
		return out, nil
	}

	bids, err := parseLevels(raw.Levels[0])
	if err != nil {
		return types.L2Snapshot{}, err
	}
	asks, err := parseLevels(raw.Levels[1])
	if err != nil {
		return types.L2Snapshot{}, err
	}
	return types.L2Snapshot{Coin: coin, Bids: bids, Asks: asks}, nil
}

// PlaceMarketIOC hedges a fill with an immediate-or-cancel market order,
// bounded by ReferencePrice +/- SlippagePct so a thin book can't blow through
// the expected hedge cost.
func (c *Client) PlaceMarketIOC(ctx context.Context, req types.MarketIOCRequest) (types.OrderResult, error) {
	limitPrice := req.ReferencePrice
	if req.Side == types.Buy {
		limitPrice = req.ReferencePrice * (1 + req.SlippagePct)
	} else {
		limitPrice = req.ReferencePrice * (1 - req.SlippagePct)
	}

	if c.dryRun {
		c.logger.Info("DRY-RUN: would place market IOC hedge",
			"coin", req.Coin, "side", req.Side, "size", req.Size, "limit_price", limitPrice)
		return types.OrderResult{OrderID: "dry-run-hedge", Status: "filled"}, nil
	}

	// sz/limit_px are wire-formatted through shopspring/decimal so the venue
	// never sees a binary-float rounding artifact on the order payload.
	action := map[string]interface{}{
		"type": "order",
		"orders": []map[string]interface{}{
			{
				"coin":        req.Coin,
				"is_buy":      req.Side == types.Buy,
				"sz":          decimal.NewFromFloat(req.Size).String(),
				"limit_px":    decimal.NewFromFloat(limitPrice).String(),
				"order_type":  map[string]interface{}{"limit": map[string]string{"tif": "Ioc"}},
				"reduce_only": false,
			},
		},
	}
	c.nonce++
	nonce := c.nonce

	actionBytes, err := json.Marshal(action)
	if err != nil {
		return types.OrderResult{}, fmt.Errorf("marshal action: %w", err)
	}
	r, s, v, err := c.signer.SignAction(nonce, crypto.Keccak256(actionBytes))
	if err != nil {
		return types.OrderResult{}, fmt.Errorf("sign action: %w", err)
	}

	body := map[string]interface{}{
		"action":       action,
		"nonce":        nonce,
		"signature":    map[string]string{"r": r, "s": s, "v": v},
		"vaultAddress": nil,
	}

	var result struct {
		Status   string `json:"status"`
		OrderID  string `json:"oid"`
		FilledSz string `json:"filled_sz"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		Post("/exchange")
	if err != nil {
		return types.OrderResult{}, fmt.Errorf("place market ioc: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return types.OrderResult{}, fmt.Errorf("place market ioc: status %d: %s", resp.StatusCode(), resp.String())
	}

	return types.OrderResult{OrderID: result.OrderID, Status: result.Status}, nil
}
