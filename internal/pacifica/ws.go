package pacifica

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"polymarket-mm/pkg/types"
)

const (
	pingInterval     = 30 * time.Second
	readTimeout      = 90 * time.Second
	maxReconnectWait = 30 * time.Second
	writeTimeout     = 10 * time.Second
	fillBufferSize   = 64
)

// UserStream is the authenticated user channel: delivers fill notifications
// for the account's orders. One instance per symbol is created by the engine;
// FillDetector reads FillEvents() as its WS-primary source.
type UserStream struct {
	url    string
	symbol string
	auth   *Auth

	connMu sync.Mutex
	conn   *websocket.Conn

	fillCh chan types.WSFillEvent
	logger *slog.Logger
}

// NewUserStream builds a user fill stream for one symbol.
func NewUserStream(wsURL, symbol string, auth *Auth, logger *slog.Logger) *UserStream {
	return &UserStream{
		url:    wsURL,
		symbol: symbol,
		auth:   auth,
		fillCh: make(chan types.WSFillEvent, fillBufferSize),
		logger: logger.With("component", "pacifica_user_stream"),
	}
}

// FillEvents returns a read-only channel of fill notifications.
func (s *UserStream) FillEvents() <-chan types.WSFillEvent {
	return s.fillCh
}

// Run connects and reconnects with exponential backoff (reset after a
// successful connection) until ctx is cancelled.
func (s *UserStream) Run(ctx context.Context) {
	backoff := time.Second
	for {
		connected := false
		err := s.connectAndRead(ctx, &connected)
		if ctx.Err() != nil {
			return
		}
		if connected {
			backoff = time.Second
		}
		s.logger.Warn("user stream disconnected, reconnecting", "error", err, "backoff", backoff)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		if !connected {
			backoff *= 2
			if backoff > maxReconnectWait {
				backoff = maxReconnectWait
			}
		}
	}
}

func (s *UserStream) connectAndRead(ctx context.Context, connected *bool) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	*connected = true
	s.connMu.Lock()
	s.conn = conn
	s.connMu.Unlock()
	defer func() {
		s.connMu.Lock()
		conn.Close()
		s.conn = nil
		s.connMu.Unlock()
	}()

	auth, err := s.auth.WSAuthPayload()
	if err != nil {
		return fmt.Errorf("auth payload: %w", err)
	}
	sub := struct {
		Op     string            `json:"op"`
		Symbol string            `json:"symbol"`
		Auth   map[string]string `json:"auth"`
	}{Op: "subscribe_user", Symbol: s.symbol, Auth: auth}
	if err := s.writeJSON(sub); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	stopPing := make(chan struct{})
	defer close(stopPing)
	go s.pingLoop(stopPing)

	for {
		if ctx.Err() != nil {
			return nil
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		s.dispatch(data)
	}
}

func (s *UserStream) dispatch(data []byte) {
	var evt types.WSFillEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		s.logger.Debug("ignoring unparsable user stream message", "data", string(data))
		return
	}
	if evt.EventType == "" {
		return
	}
	select {
	case s.fillCh <- evt:
	default:
		s.logger.Warn("fill channel full, dropping event", "client_order_id", evt.ClientOrderID)
	}
}

func (s *UserStream) pingLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := s.writeMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *UserStream) writeJSON(v interface{}) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.conn == nil {
		return fmt.Errorf("not connected")
	}
	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteJSON(v)
}

func (s *UserStream) writeMessage(msgType int, data []byte) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.conn == nil {
		return fmt.Errorf("not connected")
	}
	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteMessage(msgType, data)
}

// BookSubscribe writes the market-data subscription for orderbook.Feed's
// subscribe callback.
func BookSubscribe(symbol string, aggLevel int) func(*websocket.Conn) error {
	return func(conn *websocket.Conn) error {
		msg := struct {
			Op       string `json:"op"`
			Symbol   string `json:"symbol"`
			AggLevel int    `json:"agg_level"`
		}{Op: "subscribe_book", Symbol: symbol, AggLevel: aggLevel}
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		return conn.WriteJSON(msg)
	}
}

// BookOnMessage parses a market-data frame into a best-bid/ask pair for
// orderbook.Feed's onMessage callback.
func BookOnMessage(symbol string) func([]byte) (bid, ask float64, ok bool) {
	return func(data []byte) (float64, float64, bool) {
		var evt types.WSBookEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			return 0, 0, false
		}
		if evt.Symbol != "" && evt.Symbol != symbol {
			return 0, 0, false
		}
		if evt.Bid <= 0 || evt.Ask <= 0 {
			return 0, 0, false
		}
		return evt.Bid, evt.Ask, true
	}
}
