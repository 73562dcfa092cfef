// Package config loads callsearch's runtime configuration from flags with
// environment-variable overrides, the same layering the teacher uses
// (internal/signaling/config/config.go's flag.Parse + os.Getenv overrides).
package config

import (
	"flag"
	"os"
	"strconv"
	"time"
)

// Config holds the correlation engine's tunables (spec.md §6) plus a
// handful of ambient settings (log level, store address).
type Config struct {
	LogLevel string

	// UseXCorrelationHeader toggles rule 3's x_call_id closure
	// (session.use-x-correlation-header).
	UseXCorrelationHeader bool

	// MaxLegs bounds a CorrelatedCall's cardinality
	// (session.call.max-legs).
	MaxLegs int

	// AggregationTimeout is the clock-skew budget for grouping temporally
	// adjacent legs (session.call.aggregation-timeout).
	AggregationTimeout time.Duration

	// TerminationTimeout is the slack for treating two in-progress legs as
	// overlapping (session.call.termination-timeout).
	TerminationTimeout time.Duration

	// StoreAddr is the address of a remote document store. No remote
	// adapter exists in this repository: cmd/callsearch logs a warning when
	// it is set and still uses the in-memory store.
	StoreAddr string
}

// Load parses flags and applies environment-variable overrides, returning
// the resolved Config.
func Load() *Config {
	cfg := &Config{
		LogLevel:              "info",
		UseXCorrelationHeader: true,
		MaxLegs:               10,
		AggregationTimeout:    60000 * time.Millisecond,
		TerminationTimeout:    10000 * time.Millisecond,
	}

	flag.StringVar(&cfg.LogLevel, "loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flag.BoolVar(&cfg.UseXCorrelationHeader, "use-x-correlation-header", cfg.UseXCorrelationHeader, "Correlate legs via the x_call_id cross-correlation header")
	flag.IntVar(&cfg.MaxLegs, "max-legs", cfg.MaxLegs, "Maximum legs per correlated call")
	aggMs := flag.Int64("aggregation-timeout-ms", int64(cfg.AggregationTimeout/time.Millisecond), "Aggregation timeout in milliseconds")
	termMs := flag.Int64("termination-timeout-ms", int64(cfg.TerminationTimeout/time.Millisecond), "Termination timeout in milliseconds")
	flag.StringVar(&cfg.StoreAddr, "store-addr", "", "Remote document store gRPC address (empty uses the in-memory demo store)")
	flag.Parse()

	cfg.AggregationTimeout = time.Duration(*aggMs) * time.Millisecond
	cfg.TerminationTimeout = time.Duration(*termMs) * time.Millisecond

	if v := os.Getenv("LOGLEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("SESSION_USE_X_CORRELATION_HEADER"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.UseXCorrelationHeader = b
		}
	}
	if v := os.Getenv("SESSION_CALL_MAX_LEGS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxLegs = n
		}
	}
	if v := os.Getenv("SESSION_CALL_AGGREGATION_TIMEOUT_MS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.AggregationTimeout = time.Duration(n) * time.Millisecond
		}
	}
	if v := os.Getenv("SESSION_CALL_TERMINATION_TIMEOUT_MS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.TerminationTimeout = time.Duration(n) * time.Millisecond
		}
	}
	if v := os.Getenv("STORE_ADDR"); v != "" {
		cfg.StoreAddr = v
	}

	return cfg
}
