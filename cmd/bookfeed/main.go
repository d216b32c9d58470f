package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"bookfeed/internal/book"
	"bookfeed/internal/config"
	"bookfeed/internal/feed"
	"bookfeed/internal/metrics"
	"bookfeed/internal/runner"
	"bookfeed/internal/server"
	"bookfeed/internal/sink"
	"bookfeed/internal/state"
)

func main() {
	_ = godotenv.Load() // best-effort: .env is optional

	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <currency_pair>\n", os.Args[0])
		os.Exit(1)
	}
	instrument := os.Args[1]

	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config.yaml: %v\n", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg.LogLevel)

	logger.Info("bookfeed starting",
		slog.String("instrument", instrument),
		slog.Int("port", cfg.Port),
		slog.Int("top_n", cfg.TopN),
	)

	// Prices and amounts render as bare JSON numbers, like every exchange
	// emits them.
	decimal.MarshalJSONWithoutQuotes = true

	reg := metrics.Init(logger)

	// State + fan-in channel shared by all connectors.
	st := state.NewState()
	updates := make(chan book.Update, cfg.ChannelSize)

	// HTTP server + WS hub
	srv := server.NewHTTPServer(cfg, instrument, st, metrics.Handler(reg), logger)

	// Optional Kafka sink
	var publisher *sink.KafkaPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = sink.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, instrument, logger)
		defer func() { _ = publisher.Close() }()
	}

	// Context & signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var group runner.Group

	// Connectors, one task per venue; they reconnect forever on their own.
	for _, src := range []feed.Source{
		feed.NewBinance(instrument),
		feed.NewBitstamp(instrument),
	} {
		f := feed.New(src, updates, logger, func(name string) func(bool) {
			return func(connected bool) {
				st.SetConnected(name, connected)
				srv.BroadcastStatus()
			}
		}(src.Name()))
		group.Go(ctx, func(ctx context.Context) error {
			f.Run(ctx)
			return nil
		})
	}

	// Consumer loop: single owner of the merge engine.
	engine := book.NewMergedBook(cfg.TopN)
	group.Go(ctx, func(ctx context.Context) error {
		for {
			select {
			case up := <-updates:
				metrics.FanInDepth.Set(float64(len(updates)))
				st.MarkUpdate(up.Exchange, time.Now())
				logger.Debug("order book update", slog.String("exchange", up.Exchange))

				start := time.Now()
				merged := engine.Update(up)
				metrics.MergeDurationSeconds.Observe(time.Since(start).Seconds())

				merged.Normalize(cfg.Render.PriceDP, cfg.Render.AmountDP, cfg.Render.SpreadDP)
				if merged.Spread != nil {
					f, _ := merged.Spread.Float64()
					metrics.BookSpread.Set(f)
				}

				out, err := json.MarshalIndent(merged, "", "  ")
				if err != nil {
					logger.Error("marshal merged book", slog.String("err", err.Error()))
					continue
				}
				fmt.Println(string(out))

				srv.BroadcastBook(merged)
				if publisher != nil {
					publisher.Publish(ctx, merged)
				}
			case <-ctx.Done():
				return nil
			}
		}
	})

	// HTTP serving
	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: srv.Router(),
	}

	done := make(chan struct{})
	go func() {
		logger.Info("HTTP server listening", slog.Int("port", cfg.Port))
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", slog.String("err", err.Error()))
			cancel()
		}
		close(done)
	}()

	// Graceful shutdown
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
	case <-ctx.Done():
	}

	logger.Info("shutting down...")
	shCtx, shCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shCancel()

	_ = httpSrv.Shutdown(shCtx)
	cancel()
	group.Wait()
	<-done
	logger.Info("bye")
}
