package hyperliquid

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 10 * time.Second

// BookSubscribe writes the l2Book subscription for orderbook.Feed's
// subscribe callback.
func BookSubscribe(coin string) func(*websocket.Conn) error {
	return func(conn *websocket.Conn) error {
		msg := struct {
			Method       string `json:"method"`
			Subscription struct {
				Type string `json:"type"`
				Coin string `json:"coin"`
			} `json:"subscription"`
		}{Method: "subscribe"}
		msg.Subscription.Type = "l2Book"
		msg.Subscription.Coin = coin
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		return conn.WriteJSON(msg)
	}
}

// BookOnMessage parses an l2Book WS frame into a best-bid/ask pair for
// orderbook.Feed's onMessage callback.
func BookOnMessage() func([]byte) (bid, ask float64, ok bool) {
	return func(data []byte) (float64, float64, bool) {
		var envelope struct {
			Channel string `json:"channel"`
			Data    struct {
				Levels [][]struct {
					Px string `json:"px"`
					Sz string `json:"sz"`
				} `json:"levels"`
			} `json:"data"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return 0, 0, false
		}
		if envelope.Channel != "l2Book" || len(envelope.Data.Levels) != 2 {
			return 0, 0, false
		}
		if len(envelope.Data.Levels[0]) == 0 || len(envelope.Data.Levels[1]) == 0 {
			return 0, 0, false
		}

		var bid, ask float64
		if _, err := fmt.Sscanf(envelope.Data.Levels[0][0].Px, "%f", &bid); err != nil {
			return 0, 0, false
		}
		if _, err := fmt.Sscanf(envelope.Data.Levels[1][0].Px, "%f", &ask); err != nil {
			return 0, 0, false
		}
		if bid <= 0 || ask <= 0 {
			return 0, 0, false
		}
		return bid, ask, true
	}
}
