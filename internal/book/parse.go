package book

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ParseLevels converts [price, amount] string pairs, as both Binance and
// Bitstamp deliver them, into exact decimal levels. The textual form is parsed
// directly; values never pass through a float.
func ParseLevels(raw [][2]string) ([]Level, error) {
	levels := make([]Level, 0, len(raw))
	for _, pair := range raw {
		price, err := decimal.NewFromString(pair[0])
		if err != nil {
			return nil, fmt.Errorf("parse price %q: %w", pair[0], err)
		}
		amount, err := decimal.NewFromString(pair[1])
		if err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", pair[1], err)
		}
		levels = append(levels, Level{Price: price, Amount: amount})
	}
	return levels, nil
}

// ParseUpdate builds a canonical update from raw bid and ask pairs tagged with
// the exchange name.
func ParseUpdate(exchange string, bids, asks [][2]string) (Update, error) {
	b, err := ParseLevels(bids)
	if err != nil {
		return Update{}, fmt.Errorf("bids: %w", err)
	}
	a, err := ParseLevels(asks)
	if err != nil {
		return Update{}, fmt.Errorf("asks: %w", err)
	}
	return Update{Exchange: exchange, Bids: b, Asks: a}, nil
}
