package holograph

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/holograph/model"
	"github.com/hupe1980/holograph/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
log_level: debug
log_format: json
codec: json
cleanup_strength: 0
duplicate_policy: keep
parallelism: 8
compression: zstd
`))
	require.NoError(t, err)
	require.NotNil(t, cfg.CleanupStrength)
	assert.Equal(t, 0, *cfg.CleanupStrength)
	assert.Equal(t, "keep", cfg.DuplicatePolicy)

	opts, err := cfg.Options()
	require.NoError(t, err)

	o := applyOptions(opts)
	assert.Equal(t, "json", o.codec.Name())
	assert.Equal(t, 0, o.cleanupStrength)
	assert.Equal(t, DuplicateKeep, o.duplicatePolicy)
	assert.Equal(t, 8, o.parallelism)
	assert.Equal(t, persistence.CompressionZstd, o.compression)
	assert.True(t, o.logger.Enabled(context.Background(), -4))
}

func TestParseConfig_Empty(t *testing.T) {
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)

	opts, err := cfg.Options()
	require.NoError(t, err)

	o := applyOptions(opts)
	assert.Equal(t, DuplicateRevise, o.duplicatePolicy)
	assert.Equal(t, DefaultParallelism, o.parallelism)
	assert.Equal(t, persistence.CompressionNone, o.compression)
	assert.Equal(t, 1, o.cleanupStrength)
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"UnknownKey", "colour: blue\n"},
		{"BadLevel", "log_level: loud\n"},
		{"BadFormat", "log_level: info\nlog_format: xml\n"},
		{"BadCodec", "codec: xml\n"},
		{"NegativeStrength", "cleanup_strength: -1\n"},
		{"BadPolicy", "duplicate_policy: merge\n"},
		{"NegativeParallelism", "parallelism: -2\n"},
		{"BadCompression", "compression: gzip\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tt.yaml))
			if err != nil {
				return
			}
			_, err = cfg.Options()
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holograph.yaml")
	require.NoError(t, os.WriteFile(path, []byte("duplicate_policy: overwrite\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	opts, err := cfg.Options()
	require.NoError(t, err)

	kb := newStore(t, opts...)
	ctx := context.Background()
	first := model.TruthValue{Frequency: 1, Confidence: 0.5}
	second := model.TruthValue{Frequency: 0, Confidence: 0.3}
	require.NoError(t, kb.Insert(ctx, model.Triple{Subject: "a", Predicate: "b", Object: "c", Truth: &first}))
	require.NoError(t, kb.Insert(ctx, model.Triple{Subject: "a", Predicate: "b", Object: "c", Truth: &second}))

	matches, err := kb.QueryObject(ctx, "a", "b")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, second, matches[0].Truth)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
