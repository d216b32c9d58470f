package book

import (
	"github.com/shopspring/decimal"
)

// Level is one price level of a single exchange's book side.
type Level struct {
	Price  decimal.Decimal
	Amount decimal.Decimal
}

// Update is the canonical snapshot one connector produced from one wire
// message. Bids are sorted descending and asks ascending by price, as
// delivered by the exchange; the merge engine trusts that ordering.
type Update struct {
	Exchange string
	Bids     []Level
	Asks     []Level
}

// Entry is a level annotated with the exchange it came from.
type Entry struct {
	Exchange string          `json:"exchange"`
	Price    decimal.Decimal `json:"price"`
	Amount   decimal.Decimal `json:"amount"`
}

// Merged is the combined top-of-book view across all exchanges after one
// update. Spread is nil whenever either side is empty. A negative spread
// (crossed book across venues) is reported as-is.
type Merged struct {
	Asks   []Entry          `json:"asks"`
	Bids   []Entry          `json:"bids"`
	Spread *decimal.Decimal `json:"spread,omitempty"`
}
