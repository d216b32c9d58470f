package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"bookfeed/internal/book"
	"bookfeed/internal/config"
	"bookfeed/internal/state"
)

// HTTPServer exposes the merged book over a websocket broadcast plus
// liveness, readiness and metrics endpoints.
type HTTPServer struct {
	cfg        config.Config
	instrument string
	st         *state.State
	hub        *hub
	metricsH   http.Handler
	log        *slog.Logger
	mux        *http.ServeMux
}

func NewHTTPServer(cfg config.Config, instrument string, st *state.State, metricsHandler http.Handler, logger *slog.Logger) *HTTPServer {
	s := &HTTPServer{
		cfg:        cfg,
		instrument: instrument,
		st:         st,
		hub:        newHub(logger),
		metricsH:   metricsHandler,
		log:        logger,
		mux:        http.NewServeMux(),
	}
	s.routes()
	go s.hub.run()
	return s
}

func (s *HTTPServer) Router() http.Handler { return s.mux }

// --------- WS broadcasts ----------

func (s *HTTPServer) BroadcastStatus() {
	msg := map[string]any{
		"instrument": s.instrument,
		"sources":    s.st.Snapshot(),
	}
	s.hub.broadcast <- marshalWS("status", msg)
}

func (s *HTTPServer) BroadcastBook(merged book.Merged) {
	s.hub.broadcast <- marshalWS("book", merged)
}

func (s *HTTPServer) BroadcastError(msg string) {
	s.hub.broadcast <- marshalWS("error", map[string]string{"message": msg})
}

// --------- Routes ----------

func (s *HTTPServer) routes() {
	s.mux.HandleFunc("/ws", s.hub.serveWS)
	s.mux.HandleFunc("/healthz", s.healthz)
	s.mux.HandleFunc("/readyz", s.readyz)
	s.mux.Handle("/metrics", s.metricsH)
	s.mux.HandleFunc("/api/status", s.apiStatus)
	s.mux.HandleFunc("/api/config", s.apiConfig)
}

func (s *HTTPServer) healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// readyz reports ready once at least one venue is streaming.
func (s *HTTPServer) readyz(w http.ResponseWriter, r *http.Request) {
	if s.st.AnyConnected() {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
		return
	}
	http.Error(w, "no venue connected", http.StatusServiceUnavailable)
}

func (s *HTTPServer) apiStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"instrument": s.instrument,
		"sources":    s.st.Snapshot(),
	})
}

func (s *HTTPServer) apiConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"instrument":          s.instrument,
		"topN":                s.cfg.TopN,
		"channelSize":         s.cfg.ChannelSize,
		"priceDecimalPlaces":  s.cfg.Render.PriceDP,
		"amountDecimalPlaces": s.cfg.Render.AmountDP,
		"spreadDecimalPlaces": s.cfg.Render.SpreadDP,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
