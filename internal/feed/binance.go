package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"

	"bookfeed/internal/book"
)

// Binance streams the partial depth snapshot channel. No handshake: the
// subscription is encoded in the stream URL.
type Binance struct {
	pair    string
	baseURL string
}

func NewBinance(pair string) *Binance {
	return &Binance{pair: strings.ToLower(pair), baseURL: "wss://stream.binance.com:9443"}
}

func (b *Binance) Name() string { return "binance" }

func (b *Binance) url() string {
	return fmt.Sprintf("%s/ws/%s@depth20@100ms", b.baseURL, b.pair)
}

func (b *Binance) Dial(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, b.url(), nil)
	return conn, err
}

type binanceMsg struct {
	LastUpdateID int64       `json:"lastUpdateId"`
	Bids         [][2]string `json:"bids"`
	Asks         [][2]string `json:"asks"`
}

func (b *Binance) Decode(data []byte) (*book.Update, error) {
	var msg binanceMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("binance message: %w", err)
	}
	up, err := book.ParseUpdate(b.Name(), msg.Bids, msg.Asks)
	if err != nil {
		return nil, err
	}
	return &up, nil
}
