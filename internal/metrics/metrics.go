package metrics

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	UpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "book_updates_total", Help: "Canonical updates forwarded to the merge engine"},
		[]string{"exchange"},
	)
	DecodeErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "decode_errors_total", Help: "Wire messages that failed to decode"},
		[]string{"exchange"},
	)
	WSReconnectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ws_reconnects_total", Help: "WS reconnects by exchange and reason"},
		[]string{"exchange", "reason"},
	)
	MergeDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "merge_duration_seconds", Help: "Time to recompute the merged book", Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10)},
	)
	BookSpread             = prometheus.NewGauge(prometheus.GaugeOpts{Name: "book_spread", Help: "Best ask minus best bid of the last merged book"})
	FanInDepth             = prometheus.NewGauge(prometheus.GaugeOpts{Name: "fanin_channel_depth", Help: "Updates queued in the fan-in channel"})
	SinkPublishErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{Name: "sink_publish_errors_total", Help: "Failed merged book publishes"})
)

func Init(logger *slog.Logger) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	toRegister := []prometheus.Collector{
		UpdatesTotal, DecodeErrorsTotal, WSReconnectsTotal,
		MergeDurationSeconds, BookSpread, FanInDepth, SinkPublishErrorsTotal,
		collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	for _, c := range toRegister {
		_ = reg.Register(c)
	}
	logger.Info("prometheus metrics initialized")
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
