package state

import (
	"sort"
	"sync"
	"time"
)

// SourceStatus is a point-in-time view of one connector.
type SourceStatus struct {
	Exchange   string    `json:"exchange"`
	Connected  bool      `json:"connected"`
	LastUpdate time.Time `json:"lastUpdate,omitzero"`
}

// State tracks per-exchange connection health for readiness checks and the
// browser status broadcast. Connectors write to it concurrently.
type State struct {
	mu      sync.RWMutex
	sources map[string]*SourceStatus
}

func NewState() *State {
	return &State{sources: make(map[string]*SourceStatus)}
}

func (s *State) source(exchange string) *SourceStatus {
	st, ok := s.sources[exchange]
	if !ok {
		st = &SourceStatus{Exchange: exchange}
		s.sources[exchange] = st
	}
	return st
}

func (s *State) SetConnected(exchange string, v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source(exchange).Connected = v
}

func (s *State) Connected(exchange string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.sources[exchange]
	return ok && st.Connected
}

func (s *State) MarkUpdate(exchange string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source(exchange).LastUpdate = now
}

// AnyConnected reports whether at least one connector is streaming; the
// merged book is meaningful as soon as one source delivers.
func (s *State) AnyConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.sources {
		if st.Connected {
			return true
		}
	}
	return false
}

// Snapshot returns a copy of all source statuses for rendering, ordered by
// exchange name.
func (s *State) Snapshot() []SourceStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SourceStatus, 0, len(s.sources))
	for _, st := range s.sources {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Exchange < out[j].Exchange })
	return out
}
