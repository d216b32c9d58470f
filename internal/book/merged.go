package book

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// MergedBook keeps the latest snapshot per exchange and recomputes the
// combined top-N view on every update. It is owned by the single consumer
// loop and is not safe for concurrent use.
type MergedBook struct {
	latestBids map[string][]Level
	latestAsks map[string][]Level
	topN       int
}

func NewMergedBook(topN int) *MergedBook {
	return &MergedBook{
		latestBids: make(map[string][]Level),
		latestAsks: make(map[string][]Level),
		topN:       topN,
	}
}

// Update replaces the exchange's stored bid and ask lists wholesale and
// returns the recomputed merged view. An update with an empty side is valid:
// that exchange simply contributes nothing to that side until its next update.
func (m *MergedBook) Update(up Update) Merged {
	m.latestAsks[up.Exchange] = up.Asks
	m.latestBids[up.Exchange] = up.Bids

	asks := m.mergeSide(m.latestAsks, false)
	bids := m.mergeSide(m.latestBids, true)

	var spread *decimal.Decimal
	if len(asks) > 0 && len(bids) > 0 {
		s := asks[0].Price.Sub(bids[0].Price)
		spread = &s
	}

	return Merged{Asks: asks, Bids: bids, Spread: spread}
}

// mergeSide takes each exchange's own best topN levels (the stored lists are
// already sorted by the exchange), concatenates them tagged with the exchange
// name, ranks globally and truncates. Equal prices tie-break on exchange name
// so the result does not depend on map iteration order.
func (m *MergedBook) mergeSide(latest map[string][]Level, bidSide bool) []Entry {
	all := make([]Entry, 0, len(latest)*m.topN)
	for exchange, levels := range latest {
		n := min(len(levels), m.topN)
		for _, lvl := range levels[:n] {
			all = append(all, Entry{Exchange: exchange, Price: lvl.Price, Amount: lvl.Amount})
		}
	}

	slices.SortStableFunc(all, func(a, b Entry) int {
		c := a.Price.Cmp(b.Price)
		if bidSide {
			// best bid is highest price first (descending)
			c = -c
		}
		if c == 0 {
			return strings.Compare(a.Exchange, b.Exchange)
		}
		return c
	})

	if len(all) > m.topN {
		all = all[:m.topN]
	}
	return all
}

// Normalize rounds every numeric field in place, taking independent decimal
// place counts for prices, amounts and the spread. Rounding is half away from
// zero throughout; rounding an already-rounded result is a no-op.
func (r *Merged) Normalize(priceDP, amountDP, spreadDP int32) {
	for i := range r.Asks {
		r.Asks[i].Price = r.Asks[i].Price.Round(priceDP)
		r.Asks[i].Amount = r.Asks[i].Amount.Round(amountDP)
	}
	for i := range r.Bids {
		r.Bids[i].Price = r.Bids[i].Price.Round(priceDP)
		r.Bids[i].Amount = r.Bids[i].Amount.Round(amountDP)
	}
	if r.Spread != nil {
		s := r.Spread.Round(spreadDP)
		r.Spread = &s
	}
}
