package pacifica

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"polymarket-mm/internal/ratelimit"
	"polymarket-mm/pkg/types"
)

// Client is the Pacifica REST API client: market metadata, order placement,
// order/position reads, and cancellation. Wraps a resty client with retry and
// HMAC request signing.
type Client struct {
	http   *resty.Client
	auth   *Auth
	dryRun bool
	logger *slog.Logger
}

// NewClient creates a REST client bound to one venue account.
func NewClient(baseURL string, auth *Auth, dryRun bool, logger *slog.Logger) *Client {
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
		auth:   auth,
		dryRun: dryRun,
		logger: logger.With("component", "pacifica_client"),
	}
}

// GetMarketInfo fetches tick size, minimum order size, and lot size for a symbol.
func (c *Client) GetMarketInfo(ctx context.Context, symbol string) (types.MarketInfo, error) {
	var result types.MarketInfo
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("symbol", symbol).
		SetResult(&result).
		Get("/info/market")
	if err != nil {
		return types.MarketInfo{}, fmt.Errorf("get market info: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return types.MarketInfo{}, fmt.Errorf("get market info: status %d: %s", resp.StatusCode(), resp.String())
	}
	return result, nil
}

// GetBestBidAskREST fetches a one-shot book snapshot, used for the initial
// price before the WebSocket feed has delivered its first update.
func (c *Client) GetBestBidAskREST(ctx context.Context, symbol string) (bid, ask float64, err error) {
	var result struct {
		Bid float64 `json:"bid"`
		Ask float64 `json:"ask"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("symbol", symbol).
		SetResult(&result).
		Get("/book")
	if err != nil {
		return 0, 0, fmt.Errorf("get book: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return 0, 0, fmt.Errorf("get book: status %d: %s", resp.StatusCode(), resp.String())
	}
	return result.Bid, result.Ask, nil
}

// PlaceLimitOrder places a single GTC limit order on the maker venue.
func (c *Client) PlaceLimitOrder(ctx context.Context, req types.PlaceOrderRequest) (types.OrderResult, error) {
	if c.dryRun {
		c.logger.Info("DRY-RUN: would place order",
			"symbol", req.Symbol, "side", req.Side, "price", req.Price, "size", req.Size,
			"client_order_id", req.ClientOrderID)
		return types.OrderResult{OrderID: "dry-run-" + req.ClientOrderID, ClientOrderID: req.ClientOrderID, Status: "new"}, nil
	}

	// Wire price/size as decimal strings, not raw floats, so the venue never
	// receives a binary-float rounding artifact for a tick-aligned price.
	body, err := json.Marshal(struct {
		Symbol        string `json:"symbol"`
		Side          string `json:"side"`
		Price         string `json:"price"`
		Size          string `json:"size"`
		ClientOrderID string `json:"client_order_id"`
		ReduceOnly    bool   `json:"reduce_only"`
		OrderType     string `json:"order_type"`
	}{
		Symbol:        req.Symbol,
		Side:          req.Side.String(),
		Price:         decimal.NewFromFloat(req.Price).String(),
		Size:          decimal.NewFromFloat(req.Size).String(),
		ClientOrderID: req.ClientOrderID,
		ReduceOnly:    req.ReduceOnly,
		OrderType:     string(types.GTC),
	})
	if err != nil {
		return types.OrderResult{}, fmt.Errorf("marshal order: %w", err)
	}

	headers, err := c.auth.Headers(http.MethodPost, "/orders", string(body))
	if err != nil {
		return types.OrderResult{}, fmt.Errorf("sign request: %w", err)
	}

	var result types.OrderResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetBody(json.RawMessage(body)).
		SetResult(&result).
		Post("/orders")
	if err != nil {
		return types.OrderResult{}, fmt.Errorf("place order: %w", err)
	}
	if resp.StatusCode() == http.StatusTooManyRequests {
		return types.OrderResult{}, &ratelimit.RateLimitError{Err: fmt.Errorf("place order: status %d: %s", resp.StatusCode(), resp.String())}
	}
	if resp.StatusCode() != http.StatusOK {
		return types.OrderResult{}, fmt.Errorf("place order: status %d: %s", resp.StatusCode(), resp.String())
	}
	return result, nil
}

// GetOpenOrders lists currently resting orders for a symbol.
func (c *Client) GetOpenOrders(ctx context.Context, symbol string) ([]types.OpenOrder, error) {
	headers, err := c.auth.Headers(http.MethodGet, "/orders", "")
	if err != nil {
		return nil, fmt.Errorf("sign request: %w", err)
	}

	var result []types.OpenOrder
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetQueryParam("symbol", symbol).
		SetResult(&result).
		Get("/orders")
	if err != nil {
		return nil, fmt.Errorf("get open orders: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("get open orders: status %d: %s", resp.StatusCode(), resp.String())
	}
	return result, nil
}

// GetPositions lists all open positions on the account.
func (c *Client) GetPositions(ctx context.Context) ([]types.Position, error) {
	headers, err := c.auth.Headers(http.MethodGet, "/positions", "")
	if err != nil {
		return nil, fmt.Errorf("sign request: %w", err)
	}

	var result []types.Position
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetResult(&result).
		Get("/positions")
	if err != nil {
		return nil, fmt.Errorf("get positions: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("get positions: status %d: %s", resp.StatusCode(), resp.String())
	}
	return result, nil
}

// CancelAllOrders cancels every resting order for a symbol, used at startup
// and on hedge-failure reconciliation. Returns the number cancelled.
func (c *Client) CancelAllOrders(ctx context.Context, symbol string) (int, error) {
	if c.dryRun {
		c.logger.Info("DRY-RUN: would cancel all orders", "symbol", symbol)
		return 0, nil
	}

	body := fmt.Sprintf(`{"symbol":%q}`, symbol)
	headers, err := c.auth.Headers(http.MethodDelete, "/orders", body)
	if err != nil {
		return 0, fmt.Errorf("sign request: %w", err)
	}

	var result struct {
		Cancelled int `json:"cancelled"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetBody(json.RawMessage(body)).
		SetResult(&result).
		Delete("/orders")
	if err != nil {
		return 0, fmt.Errorf("cancel all orders: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return 0, fmt.Errorf("cancel all orders: status %d: %s", resp.StatusCode(), resp.String())
	}
	c.logger.Warn("cancelled all resting orders", "symbol", symbol, "count", result.Cancelled)
	return result.Cancelled, nil
}

// CancelOrder cancels a single order by client order ID.
func (c *Client) CancelOrder(ctx context.Context, clientOrderID string) error {
	if c.dryRun {
		c.logger.Info("DRY-RUN: would cancel order", "client_order_id", clientOrderID)
		return nil
	}

	body := fmt.Sprintf(`{"client_order_id":%q}`, clientOrderID)
	headers, err := c.auth.Headers(http.MethodDelete, "/order", body)
	if err != nil {
		return fmt.Errorf("sign request: %w", err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetBody(json.RawMessage(body)).
		Delete("/order")
	if err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("cancel order: status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
