package holograph

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/holograph/codec"
	"github.com/hupe1980/holograph/persistence"
)

// Config is the file form of the store options.
//
//	log_level: debug
//	log_format: json
//	codec: go-json
//	cleanup_strength: 1
//	duplicate_policy: revise
//	parallelism: 8
//	compression: zstd
//
// Omitted keys keep their defaults.
type Config struct {
	// LogLevel is one of debug, info, warn, error. Empty disables logging.
	LogLevel string `yaml:"log_level"`

	// LogFormat is text (default) or json.
	LogFormat string `yaml:"log_format"`

	// Codec names the manifest codec: json or go-json.
	Codec string `yaml:"codec"`

	// CleanupStrength is the codebook generation pass.
	CleanupStrength *int `yaml:"cleanup_strength"`

	// DuplicatePolicy is revise, overwrite, or keep.
	DuplicatePolicy string `yaml:"duplicate_policy"`

	// Parallelism bounds concurrent cell scans.
	Parallelism int `yaml:"parallelism"`

	// Compression is none, lz4, or zstd.
	Compression string `yaml:"compression"`
}

// LoadConfig reads a YAML config file. Unknown keys are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML config data. Empty input yields the zero Config.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Options converts the config into store options.
func (c *Config) Options() ([]Option, error) {
	var opts []Option

	if c.LogLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
			return nil, fmt.Errorf("config log_level: %w", err)
		}
		switch c.LogFormat {
		case "", "text":
			opts = append(opts, WithLogger(NewTextLogger(level)))
		case "json":
			opts = append(opts, WithLogger(NewJSONLogger(level)))
		default:
			return nil, fmt.Errorf("config log_format: unknown format %q", c.LogFormat)
		}
	}

	if c.Codec != "" {
		cd, ok := codec.ByName(c.Codec)
		if !ok {
			return nil, fmt.Errorf("config codec: unknown codec %q", c.Codec)
		}
		opts = append(opts, WithCodec(cd))
	}

	if c.CleanupStrength != nil {
		if *c.CleanupStrength < 0 {
			return nil, fmt.Errorf("config cleanup_strength: must be >= 0, got %d", *c.CleanupStrength)
		}
		opts = append(opts, WithCleanupStrength(*c.CleanupStrength))
	}

	policy, err := ParseDuplicatePolicy(c.DuplicatePolicy)
	if err != nil {
		return nil, fmt.Errorf("config duplicate_policy: %w", err)
	}
	opts = append(opts, WithDuplicatePolicy(policy))

	if c.Parallelism < 0 {
		return nil, fmt.Errorf("config parallelism: must be >= 0, got %d", c.Parallelism)
	}
	if c.Parallelism > 0 {
		opts = append(opts, WithParallelism(c.Parallelism))
	}

	comp, err := persistence.ParseCompression(c.Compression)
	if err != nil {
		return nil, fmt.Errorf("config compression: %w", err)
	}
	opts = append(opts, WithCompression(comp))

	return opts, nil
}
