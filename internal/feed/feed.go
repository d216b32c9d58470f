package feed

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/gorilla/websocket"

	"bookfeed/internal/book"
	"bookfeed/internal/metrics"
)

const (
	// ReadTimeout bounds the wait for the next message; a silent connection
	// is torn down and redialed.
	ReadTimeout = 15 * time.Second
	// ReconnectDelay is the fixed pause between connection attempts. There is
	// no ceiling and no exponential growth: a dead venue is retried forever.
	ReconnectDelay = 2 * time.Second
)

// Source describes one venue's streaming endpoint. Dial opens the connection
// and performs any subscription handshake the venue requires. Decode turns one
// wire message into a canonical update; a nil update with a nil error marks a
// recognized non-data message (subscription ack, heartbeat) to be skipped.
type Source interface {
	Name() string
	Dial(ctx context.Context) (*websocket.Conn, error)
	Decode(data []byte) (*book.Update, error)
}

// failure tags an error with the connector stage it occurred in, mirroring
// the connect/timeout/decode/send taxonomy. All stages are handled the same
// way: tear down, wait, redial.
type failure struct {
	stage string
	err   error
}

func (f *failure) Error() string { return f.stage + ": " + f.err.Error() }
func (f *failure) Unwrap() error { return f.err }

func reason(err error) string {
	var f *failure
	if errors.As(err, &f) {
		return f.stage
	}
	return "other"
}

// Feed drives one Source: connect, read, decode, push to the fan-in channel,
// and on any failure reconnect after a fixed delay, indefinitely.
type Feed struct {
	src      Source
	out      chan<- book.Update
	log      *slog.Logger
	onStatus func(connected bool)
}

func New(src Source, out chan<- book.Update, logger *slog.Logger, onStatus func(connected bool)) *Feed {
	if onStatus == nil {
		onStatus = func(bool) {}
	}
	return &Feed{src: src, out: out, log: logger, onStatus: onStatus}
}

// Begin starts the connector in the background and returns a channel that
// closes when it stops. Context cancellation is the only way out; errors
// never are.
func (f *Feed) Begin(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		f.Run(ctx)
	}()
	return done
}

// Run loops forever: one streaming attempt, then the fixed backoff. It returns
// only once ctx is cancelled.
func (f *Feed) Run(ctx context.Context) {
	for {
		err := f.stream(ctx)
		f.onStatus(false)
		if ctx.Err() != nil {
			return
		}
		f.log.Error("stream failed, reconnecting",
			slog.String("exchange", f.src.Name()),
			slog.String("err", err.Error()),
		)
		metrics.WSReconnectsTotal.WithLabelValues(f.src.Name(), reason(err)).Inc()

		select {
		case <-ctx.Done():
			return
		case <-time.After(ReconnectDelay):
		}
	}
}

// stream runs one connection attempt to completion. It only returns an error:
// a healthy stream never ends on its own.
func (f *Feed) stream(ctx context.Context) error {
	conn, err := f.src.Dial(ctx)
	if err != nil {
		return &failure{stage: "connect", err: err}
	}
	defer func() { _ = conn.Close() }()

	f.onStatus(true)
	f.log.Info("stream connected", slog.String("exchange", f.src.Name()))

	for {
		if err := conn.SetReadDeadline(time.Now().Add(ReadTimeout)); err != nil {
			return &failure{stage: "read", err: err}
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				return &failure{stage: "timeout", err: err}
			}
			return &failure{stage: "read", err: err}
		}

		up, err := f.src.Decode(data)
		if err != nil {
			metrics.DecodeErrorsTotal.WithLabelValues(f.src.Name()).Inc()
			return &failure{stage: "decode", err: err}
		}
		if up == nil {
			continue
		}

		// Blocking send: a slow consumer stalls this read loop, which is the
		// system's backpressure point.
		select {
		case f.out <- *up:
			metrics.UpdatesTotal.WithLabelValues(f.src.Name()).Inc()
		case <-ctx.Done():
			return &failure{stage: "send", err: ctx.Err()}
		}
	}
}
