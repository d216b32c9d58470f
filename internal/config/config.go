package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        int    `yaml:"port"`
	TopN        int    `yaml:"top_n"`
	ChannelSize int    `yaml:"channel_size"`
	LogLevel    string `yaml:"log_level"`
	Render      struct {
		PriceDP  int32 `yaml:"price_decimal_places"`
		AmountDP int32 `yaml:"amount_decimal_places"`
		SpreadDP int32 `yaml:"spread_decimal_places"`
	} `yaml:"render"`
	Kafka struct {
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"kafka"`
}

func defaults() Config {
	cfg := Config{
		Port:        8087,
		TopN:        10,
		ChannelSize: 64,
		LogLevel:    "info",
	}
	cfg.Render.PriceDP = 2
	cfg.Render.AmountDP = 4
	cfg.Render.SpreadDP = 3
	cfg.Kafka.Topic = "merged-book"
	return cfg
}

// Load reads config.yaml, falling back to coded defaults when the file does
// not exist, then applies BOOKFEED_* env overrides.
func Load(path string) (Config, error) {
	cfg := defaults()
	b, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse yaml: %w", err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	// Validation & normalization
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return cfg, errors.New("invalid port")
	}
	if cfg.TopN < 1 {
		return cfg, errors.New("top_n must be >=1")
	}
	if cfg.ChannelSize < 1 {
		return cfg, errors.New("channel_size must be >=1")
	}
	if cfg.Render.PriceDP < 0 || cfg.Render.AmountDP < 0 || cfg.Render.SpreadDP < 0 {
		return cfg, errors.New("decimal places must be >=0")
	}
	return cfg, nil
}

// applyEnv applies BOOKFEED_* overrides. A numeric override that does not
// parse is an error: silently keeping the yaml value would hide the typo from
// the operator.
func applyEnv(cfg *Config) error {
	if v := os.Getenv("BOOKFEED_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BOOKFEED_PORT %q: %w", v, err)
		}
		cfg.Port = n
	}
	if v := os.Getenv("BOOKFEED_TOP_N"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BOOKFEED_TOP_N %q: %w", v, err)
		}
		cfg.TopN = n
	}
	if v := os.Getenv("BOOKFEED_CHANNEL_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BOOKFEED_CHANNEL_SIZE %q: %w", v, err)
		}
		cfg.ChannelSize = n
	}
	if v := os.Getenv("BOOKFEED_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("BOOKFEED_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("BOOKFEED_KAFKA_TOPIC"); v != "" {
		cfg.Kafka.Topic = v
	}
	return nil
}

func NewLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	h := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	return slog.New(h)
}
