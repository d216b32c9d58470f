package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"

	"bookfeed/internal/book"
)

// Bitstamp streams the live order book channel. Unlike Binance, the channel
// is selected with a subscribe message sent right after the connection opens.
type Bitstamp struct {
	pair    string
	baseURL string
}

func NewBitstamp(pair string) *Bitstamp {
	return &Bitstamp{pair: strings.ToLower(pair), baseURL: "wss://ws.bitstamp.net"}
}

func (b *Bitstamp) Name() string { return "bitstamp" }

func (b *Bitstamp) Dial(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, b.baseURL, nil)
	if err != nil {
		return nil, err
	}
	sub := map[string]any{
		"event": "bts:subscribe",
		"data":  map[string]string{"channel": "order_book_" + b.pair},
	}
	if err := conn.WriteJSON(sub); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	return conn, nil
}

type bitstampMsg struct {
	Event   string `json:"event"`
	Channel string `json:"channel"`
	Data    struct {
		Timestamp string      `json:"timestamp"`
		Bids      [][2]string `json:"bids"`
		Asks      [][2]string `json:"asks"`
	} `json:"data"`
}

func (b *Bitstamp) Decode(data []byte) (*book.Update, error) {
	var msg bitstampMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("bitstamp message: %w", err)
	}
	switch msg.Event {
	case "data":
		up, err := book.ParseUpdate(b.Name(), msg.Data.Bids, msg.Data.Asks)
		if err != nil {
			return nil, err
		}
		return &up, nil
	case "bts:request_reconnect":
		// Bitstamp asks clients to reconnect before maintenance windows.
		return nil, errors.New("server requested reconnect")
	default:
		// Subscription acks, heartbeats and other control events carry no
		// book data.
		return nil, nil
	}
}
