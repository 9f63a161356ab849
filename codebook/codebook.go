// Package codebook maps symbol strings to near-orthogonal hypervectors and
// recovers symbols from noisy vectors.
//
// Vectors are generated lazily on first use from a PRNG seeded with the
// symbol's content, so encoding is idempotent across calls, processes, and
// independently built codebooks. Entries are assigned dense IDs in insertion
// order and are never removed.
package codebook

import (
	"errors"
	"fmt"
	"iter"
	"math/rand/v2"
	"sync"
	"unicode/utf8"

	"github.com/hupe1980/holograph/hypervector"
	"github.com/hupe1980/holograph/internal/hash"
)

var (
	// ErrInvalidSymbol is returned for empty or non-UTF-8 symbols.
	ErrInvalidSymbol = errors.New("codebook: invalid symbol")

	// ErrSymbolDefined is returned when Define would change an existing vector.
	ErrSymbolDefined = errors.New("codebook: symbol already defined with a different vector")

	// ErrFull is returned when the ID space is exhausted.
	ErrFull = errors.New("codebook: id space exhausted")
)

// symbolStream is the second PCG seed word for symbol vectors.
// Changing it changes every generated vector.
const symbolStream = 0x686f6c6f67726170 // "holograp"

// Options configures a Codebook.
type Options struct {
	// CleanupStrength selects the generation-time adjustment pass.
	//   0: raw PRNG output.
	//   1 or more: balance every generated vector to exactly Width/2 set bits,
	//   which pins the expected pairwise distance to Width/2.
	CleanupStrength int
}

// DefaultOptions contains the default codebook configuration.
var DefaultOptions = Options{
	CleanupStrength: 1,
}

// Codebook is a symbol table of hypervectors. It is safe for concurrent use.
type Codebook struct {
	opts Options

	mu      sync.RWMutex
	ids     map[string]uint32
	symbols []string
	vectors []hypervector.Vector
}

// New creates an empty codebook.
func New(optFns ...func(o *Options)) *Codebook {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Codebook{
		opts: opts,
		ids:  make(map[string]uint32),
	}
}

// Generate derives the vector for symbol without touching any codebook.
func Generate(symbol string, cleanupStrength int) hypervector.Vector {
	r := rand.New(rand.NewPCG(hash.FNV64a(symbol), symbolStream))
	v := hypervector.Random(r)
	if cleanupStrength > 0 {
		v = hypervector.Balance(v, r)
	}
	return v
}

// Validate checks that symbol is usable as a codebook key.
func Validate(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("%w: empty", ErrInvalidSymbol)
	}
	if !utf8.ValidString(symbol) {
		return fmt.Errorf("%w: %q is not valid UTF-8", ErrInvalidSymbol, symbol)
	}
	return nil
}

// Resolve returns the vector for symbol, generating and caching it on first use.
func (c *Codebook) Resolve(symbol string) (hypervector.Vector, error) {
	id, err := c.ResolveID(symbol)
	if err != nil {
		return hypervector.Vector{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vectors[id], nil
}

// ResolveID is like Resolve but returns the symbol's ID.
func (c *Codebook) ResolveID(symbol string) (uint32, error) {
	if err := Validate(symbol); err != nil {
		return 0, err
	}

	c.mu.RLock()
	id, ok := c.ids[symbol]
	c.mu.RUnlock()
	if ok {
		return id, nil
	}

	// Generate outside the lock; another writer may win the race.
	v := Generate(symbol, c.opts.CleanupStrength)

	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.ids[symbol]; ok {
		return id, nil
	}
	return c.appendLocked(symbol, v)
}

// Define registers an externally produced vector for symbol, e.g. from a
// semantic fingerprint provider. Defining an existing symbol with the same
// vector is a no-op.
func (c *Codebook) Define(symbol string, v hypervector.Vector) (uint32, error) {
	if err := Validate(symbol); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.ids[symbol]; ok {
		if c.vectors[id] != v {
			return 0, fmt.Errorf("%w: %q", ErrSymbolDefined, symbol)
		}
		return id, nil
	}
	return c.appendLocked(symbol, v)
}

func (c *Codebook) appendLocked(symbol string, v hypervector.Vector) (uint32, error) {
	if uint64(len(c.symbols)) >= 1<<32-1 {
		return 0, ErrFull
	}
	id := uint32(len(c.symbols))
	c.ids[symbol] = id
	c.symbols = append(c.symbols, symbol)
	c.vectors = append(c.vectors, v)
	return id, nil
}

// Lookup returns the ID of symbol without creating an entry.
func (c *Codebook) Lookup(symbol string) (uint32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.ids[symbol]
	return id, ok
}

// Contains reports whether symbol has an entry.
func (c *Codebook) Contains(symbol string) bool {
	_, ok := c.Lookup(symbol)
	return ok
}

// Symbol returns the symbol with the given ID.
func (c *Codebook) Symbol(id uint32) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if int(id) >= len(c.symbols) {
		return "", false
	}
	return c.symbols[id], true
}

// Vector returns a copy of the vector with the given ID.
func (c *Codebook) Vector(id uint32) (hypervector.Vector, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if int(id) >= len(c.vectors) {
		return hypervector.Vector{}, false
	}
	return c.vectors[id], true
}

// Ref returns a read-only pointer to the vector with the given ID, avoiding
// a copy in hot loops. The caller must not modify the vector and must not
// hold the pointer across concurrent Resolve/Define calls.
func (c *Codebook) Ref(id uint32) *hypervector.Vector {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return &c.vectors[id]
}

// Len returns the number of entries.
func (c *Codebook) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.symbols)
}

// All iterates entries in ID order. The codebook is read-locked for the
// duration of the iteration.
func (c *Codebook) All() iter.Seq2[string, hypervector.Vector] {
	return func(yield func(string, hypervector.Vector) bool) {
		c.mu.RLock()
		defer c.mu.RUnlock()
		for i, s := range c.symbols {
			if !yield(s, c.vectors[i]) {
				return
			}
		}
	}
}

// CleanupStrength returns the configured generation pass.
func (c *Codebook) CleanupStrength() int {
	return c.opts.CleanupStrength
}
