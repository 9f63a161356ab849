package holograph

import (
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/holograph/codebook"
	"github.com/hupe1980/holograph/codec"
	"github.com/hupe1980/holograph/embed"
	"github.com/hupe1980/holograph/persistence"
)

// DuplicatePolicy selects what Insert does with a triple that is already
// stored.
type DuplicatePolicy uint8

const (
	// DuplicateRevise combines the stored and the new truth value with the
	// revision rule and keeps the new qualia.
	DuplicateRevise DuplicatePolicy = iota
	// DuplicateOverwrite replaces truth value and qualia.
	DuplicateOverwrite
	// DuplicateKeep ignores the re-insert.
	DuplicateKeep
)

func (p DuplicatePolicy) String() string {
	switch p {
	case DuplicateRevise:
		return "revise"
	case DuplicateOverwrite:
		return "overwrite"
	case DuplicateKeep:
		return "keep"
	default:
		return fmt.Sprintf("DuplicatePolicy(%d)", uint8(p))
	}
}

// ParseDuplicatePolicy parses the names returned by DuplicatePolicy.String.
// The empty string selects DuplicateRevise.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch s {
	case "", "revise":
		return DuplicateRevise, nil
	case "overwrite":
		return DuplicateOverwrite, nil
	case "keep":
		return DuplicateKeep, nil
	default:
		return 0, fmt.Errorf("unknown duplicate policy %q", s)
	}
}

// DefaultParallelism is the default number of grid cells scanned concurrently.
const DefaultParallelism = 4

type options struct {
	codec            codec.Codec
	metricsCollector MetricsCollector
	logger           *Logger
	cleanupStrength  int
	duplicatePolicy  DuplicatePolicy
	parallelism      int
	compression      persistence.Compression
	provider         embed.Provider
	tracerProvider   trace.TracerProvider
}

// Option configures a Store.
type Option func(*options)

// WithCodec configures the codec used to encode the snapshot manifest.
// Snapshots written with any built-in codec can be loaded regardless of
// this setting.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &holograph.BasicMetricsCollector{}
//	kb, _ := holograph.New(holograph.WithMetricsCollector(metrics))
//	// ... use kb ...
//	stats := metrics.GetStats()
//	fmt.Printf("Inserts: %d, Avg latency: %dns\n", stats.InsertCount, stats.InsertAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := holograph.NewJSONLogger(slog.LevelInfo)
//	kb, _ := holograph.New(holograph.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithCleanupStrength selects the codebook generation pass: 0 keeps the raw
// PRNG output, 1 or more balances every symbol vector to exactly half its
// bits set. Negative values are treated as 0.
//
// The strength is recorded in snapshots; Load adopts the snapshot's value.
func WithCleanupStrength(strength int) Option {
	return func(o *options) {
		o.cleanupStrength = max(strength, 0)
	}
}

// WithDuplicatePolicy selects how Insert treats a triple that is already stored.
func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(o *options) {
		o.duplicatePolicy = p
	}
}

// WithParallelism bounds the number of grid cells a resonance query scans
// concurrently. Values below 1 are treated as 1.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = max(n, 1)
	}
}

// WithCompression selects the snapshot payload compression used by Save.
func WithCompression(c persistence.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithFingerprintProvider makes Insert and Resonate take subject and object
// vectors for symbols not yet in the codebook from p instead of generating
// them. Predicates stay symbolic.
func WithFingerprintProvider(p embed.Provider) Option {
	return func(o *options) {
		o.provider = p
	}
}

// WithTracerProvider configures the OpenTelemetry tracer provider.
// The default is the global provider, which is a no-op unless configured.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:            codec.Default,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		cleanupStrength:  codebook.DefaultOptions.CleanupStrength,
		duplicatePolicy:  DuplicateRevise,
		parallelism:      DefaultParallelism,
		compression:      persistence.CompressionNone,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
