package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	AccountName     string
	AppKey          string
	AppToken        string
	OMSHost         string
	DatabaseURI     string
	BrokerURL       string
	RunAddress      string
	PollInterval    time.Duration
	HTTPTimeout     time.Duration
	ShutdownTimeout time.Duration
	GenerateOrders  bool
	SyntheticBatch  int
}

const (
	defaultOMSHost         = "vtexcommercestable.com.br"
	defaultRunAddress      = ":8080"
	defaultPollInterval    = 60 * time.Second
	defaultHTTPTimeout     = 30 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultSyntheticBatch  = 10
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		AccountName:     getString(lookup, "ACCOUNT_NAME", ""),
		AppKey:          getString(lookup, "OMS_APP_KEY", ""),
		AppToken:        getString(lookup, "OMS_APP_TOKEN", ""),
		OMSHost:         getString(lookup, "OMS_HOST", defaultOMSHost),
		DatabaseURI:     getString(lookup, "DATABASE_URI", ""),
		BrokerURL:       getString(lookup, "BROKER_URL", ""),
		RunAddress:      getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		PollInterval:    getDuration(lookup, "POLL_INTERVAL", defaultPollInterval),
		HTTPTimeout:     getDuration(lookup, "HTTP_TIMEOUT", defaultHTTPTimeout),
		ShutdownTimeout: getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		GenerateOrders:  getBool(lookup, "GENERATE_RANDOM_ORDERS", false),
		SyntheticBatch:  getInt(lookup, "SYNTHETIC_BATCH", defaultSyntheticBatch),
	}

	fs := flag.NewFlagSet("omsrelay", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		pollIntervalStr    = cfg.PollInterval.String()
		httpTimeoutStr     = cfg.HTTPTimeout.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.AccountName, "account", cfg.AccountName, "OMS account name")
	fs.StringVar(&cfg.OMSHost, "oms-host", cfg.OMSHost, "OMS base hostname")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.BrokerURL, "broker", cfg.BrokerURL, "Event broker AMQP URL")
	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&pollIntervalStr, "poll-interval", pollIntervalStr, "Interval between feed polls")
	fs.StringVar(&httpTimeoutStr, "http-timeout", httpTimeoutStr, "Per-request timeout for OMS calls")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.BoolVar(&cfg.GenerateOrders, "random-orders", cfg.GenerateOrders, "Fabricate random orders instead of polling the OMS feed")
	fs.IntVar(&cfg.SyntheticBatch, "synthetic-batch", cfg.SyntheticBatch, "Orders fabricated per cycle in demo mode")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.PollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid poll interval: %w", err)
	}

	if cfg.HTTPTimeout, err = time.ParseDuration(httpTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid http timeout: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}

	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = defaultHTTPTimeout
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.SyntheticBatch <= 0 {
		cfg.SyntheticBatch = defaultSyntheticBatch
	}

	if cfg.AccountName == "" {
		return nil, fmt.Errorf("account name must be provided")
	}

	if !cfg.GenerateOrders && (cfg.AppKey == "" || cfg.AppToken == "") {
		return nil, fmt.Errorf("OMS app key and token must be provided")
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.BrokerURL == "" {
		return nil, fmt.Errorf("broker URL must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getBool(lookup envLookup, key string, def bool) bool {
	if v, ok := lookup(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
