package feed

import (
	"testing"
)

func TestBinanceDecode(t *testing.T) {
	b := NewBinance("BTCUSDT")
	if b.pair != "btcusdt" {
		t.Fatalf("pair not lower-cased: %s", b.pair)
	}

	data := []byte(`{"lastUpdateId":160,"bids":[["100.5","1.5"],["100.0","2.0"]],"asks":[["101.0","0.5"]]}`)
	up, err := b.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if up == nil {
		t.Fatal("expected update")
	}
	if up.Exchange != "binance" {
		t.Fatalf("exchange got %s", up.Exchange)
	}
	if len(up.Bids) != 2 || len(up.Asks) != 1 {
		t.Fatalf("got %d bids %d asks", len(up.Bids), len(up.Asks))
	}
	if up.Bids[0].Price.String() != "100.5" {
		t.Fatalf("best bid got %s", up.Bids[0].Price.String())
	}
}

func TestBinanceDecodeNonNumericPrice(t *testing.T) {
	b := NewBinance("btcusdt")
	data := []byte(`{"lastUpdateId":161,"bids":[["oops","1.5"]],"asks":[]}`)
	if _, err := b.Decode(data); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestBinanceDecodeMalformedJSON(t *testing.T) {
	b := NewBinance("btcusdt")
	if _, err := b.Decode([]byte(`{"bids":`)); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestBinanceURL(t *testing.T) {
	b := NewBinance("ethbtc")
	want := "wss://stream.binance.com:9443/ws/ethbtc@depth20@100ms"
	if got := b.url(); got != want {
		t.Fatalf("url got %s want %s", got, want)
	}
}
