package state

import (
	"testing"
	"time"
)

func TestConnectedTracking(t *testing.T) {
	s := NewState()
	if s.Connected("binance") {
		t.Fatal("unknown exchange should not be connected")
	}
	if s.AnyConnected() {
		t.Fatal("nothing connected yet")
	}
	s.SetConnected("binance", true)
	if !s.Connected("binance") {
		t.Fatal("binance should be connected")
	}
	if !s.AnyConnected() {
		t.Fatal("AnyConnected should see binance")
	}
	s.SetConnected("binance", false)
	if s.AnyConnected() {
		t.Fatal("nothing should be connected")
	}
}

func TestSnapshotOrdered(t *testing.T) {
	s := NewState()
	s.SetConnected("bitstamp", true)
	s.SetConnected("binance", false)
	s.MarkUpdate("bitstamp", time.Now())

	snap := s.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("snapshot len got %d want 2", len(snap))
	}
	if snap[0].Exchange != "binance" || snap[1].Exchange != "bitstamp" {
		t.Fatalf("snapshot order got [%s %s]", snap[0].Exchange, snap[1].Exchange)
	}
	if snap[1].LastUpdate.IsZero() {
		t.Fatal("bitstamp last update missing")
	}
	if !snap[0].LastUpdate.IsZero() {
		t.Fatal("binance last update should be zero")
	}
}
