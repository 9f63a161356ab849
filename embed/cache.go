package embed

import (
	"context"
	"math"
	"sync/atomic"

	"github.com/hupe1980/holograph/hypervector"
)

const (
	// DefaultCacheCapacity is the default number of memoized texts.
	DefaultCacheCapacity = 4096

	// DefaultTolerance is the default near-match bound on normalized
	// Hamming distance between sketch vectors.
	DefaultTolerance = 0.15
)

// CacheOptions configures a Cache.
type CacheOptions struct {
	// Capacity bounds the in-memory LRU.
	Capacity int

	// Tolerance is the exclusive upper bound on the normalized Hamming
	// distance between sketch vectors for a near-match hit. Values outside
	// (0, 1] fall back to DefaultTolerance.
	Tolerance float64

	// Sketch is a cheap local provider used for near-match lookups.
	// Nil disables near matching.
	Sketch Provider

	// Store persists remote results. Nil keeps the cache in memory only.
	Store *BoltStore
}

// WithCapacity sets the LRU capacity.
func WithCapacity(n int) func(*CacheOptions) {
	return func(o *CacheOptions) { o.Capacity = n }
}

// WithTolerance sets the near-match tolerance.
func WithTolerance(t float64) func(*CacheOptions) {
	return func(o *CacheOptions) { o.Tolerance = t }
}

// WithSketch enables near matching with the given local provider.
func WithSketch(p Provider) func(*CacheOptions) {
	return func(o *CacheOptions) { o.Sketch = p }
}

// WithStore enables persistence.
func WithStore(s *BoltStore) func(*CacheOptions) {
	return func(o *CacheOptions) { o.Store = s }
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	ExactHits int64
	NearHits  int64
	Misses    int64
	Len       int
}

type cacheEntry struct {
	vector    hypervector.Vector
	sketch    hypervector.Vector
	hasSketch bool
}

// Cache is a memoizing Provider. It is safe for concurrent use; concurrent
// misses on the same text may both reach the remote provider.
type Cache struct {
	remote Provider
	opts   CacheOptions
	lru    *lru[cacheEntry]

	exactHits atomic.Int64
	nearHits  atomic.Int64
	misses    atomic.Int64
}

// NewCache wraps remote.
func NewCache(remote Provider, optFns ...func(*CacheOptions)) *Cache {
	opts := CacheOptions{
		Capacity:  DefaultCacheCapacity,
		Tolerance: DefaultTolerance,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if math.IsNaN(opts.Tolerance) || opts.Tolerance <= 0 || opts.Tolerance > 1 {
		opts.Tolerance = DefaultTolerance
	}
	return &Cache{
		remote: remote,
		opts:   opts,
		lru:    newLRU[cacheEntry](opts.Capacity),
	}
}

// Embed returns the memoized vector for text, a near match, or the remote
// provider's result.
func (c *Cache) Embed(ctx context.Context, text string) (hypervector.Vector, error) {
	if text == "" {
		return hypervector.Vector{}, ErrEmptyText
	}

	if e, ok := c.lru.get(text); ok {
		c.exactHits.Add(1)
		return e.vector, nil
	}

	if c.opts.Store != nil {
		v, ok, err := c.opts.Store.Get(text)
		if err != nil {
			return hypervector.Vector{}, err
		}
		if ok {
			c.exactHits.Add(1)
			c.lru.set(text, cacheEntry{vector: v})
			return v, nil
		}
	}

	var entry cacheEntry
	if c.opts.Sketch != nil {
		sketch, err := c.opts.Sketch.Embed(ctx, text)
		if err != nil {
			return hypervector.Vector{}, err
		}
		entry.sketch, entry.hasSketch = sketch, true

		if v, ok := c.nearest(&sketch); ok {
			c.nearHits.Add(1)
			entry.vector = v
			c.lru.set(text, entry)
			return v, nil
		}
	}

	v, err := c.remote.Embed(ctx, text)
	if err != nil {
		return hypervector.Vector{}, err
	}
	c.misses.Add(1)

	entry.vector = v
	c.lru.set(text, entry)
	if c.opts.Store != nil {
		if err := c.opts.Store.Put(text, v); err != nil {
			return hypervector.Vector{}, err
		}
	}
	return v, nil
}

// nearest returns the vector of the cached entry whose sketch is closest to
// sketch, if it lies within the tolerance.
func (c *Cache) nearest(sketch *hypervector.Vector) (hypervector.Vector, bool) {
	var (
		best  hypervector.Vector
		bestD = math.Inf(1)
	)
	c.lru.each(func(_ string, e cacheEntry) bool {
		if !e.hasSketch {
			return true
		}
		if d := hypervector.NormalizedHammingDistance(sketch, &e.sketch); d < bestD {
			best, bestD = e.vector, d
		}
		return true
	})
	if bestD < c.opts.Tolerance {
		return best, true
	}
	return hypervector.Vector{}, false
}

// Stats returns hit and miss counters.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		ExactHits: c.exactHits.Load(),
		NearHits:  c.nearHits.Load(),
		Misses:    c.misses.Load(),
		Len:       c.lru.len(),
	}
}
