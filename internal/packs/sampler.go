package packs

import (
	"math/rand/v2"

	"github.com/ramonehamilton/stccg-pack-opener/internal/catalog"
)

// RandomSource is the uniform random source used for every draw.
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
	// IntN returns a uniform value in [0, n). n must be > 0.
	IntN(n int) int
}

// NewRandomSource returns a reproducible PCG source for the given seed.
func NewRandomSource(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// DefaultRandomSource returns a randomly seeded source.
func DefaultRandomSource() RandomSource {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Sampler implements the draw primitives used by the composer.
// It is not safe for concurrent use.
type Sampler struct {
	rng RandomSource
}

// NewSampler creates a sampler; a nil source uses DefaultRandomSource.
func NewSampler(rng RandomSource) *Sampler {
	if rng == nil {
		rng = DefaultRandomSource()
	}
	return &Sampler{rng: rng}
}

// Float64 returns a uniform roll in [0, 1).
func (s *Sampler) Float64() float64 {
	return s.rng.Float64()
}

// WithoutReplacement draws up to n distinct entries from pool. Fewer than n are
// returned when the pool is smaller than n. The pool is not modified.
func (s *Sampler) WithoutReplacement(pool []*catalog.Card, n int) []*catalog.Card {
	if n <= 0 || len(pool) == 0 {
		return nil
	}

	work := make([]*catalog.Card, len(pool))
	copy(work, pool)

	out := make([]*catalog.Card, 0, min(n, len(pool)))
	for len(out) < n && len(work) > 0 {
		idx := s.rng.IntN(len(work))
		out = append(out, work[idx])
		work = append(work[:idx], work[idx+1:]...)
	}
	return out
}

// WithReplacement makes n independent draws from pool. An empty pool yields nil.
func (s *Sampler) WithReplacement(pool []*catalog.Card, n int) []*catalog.Card {
	if n <= 0 || len(pool) == 0 {
		return nil
	}

	out := make([]*catalog.Card, n)
	for i := range out {
		out[i] = pool[s.rng.IntN(len(pool))]
	}
	return out
}

// Fill draws n cards without replacement and tops up with replacement when the
// pool has fewer than n cards.
func (s *Sampler) Fill(pool []*catalog.Card, n int) []*catalog.Card {
	out := s.WithoutReplacement(pool, n)
	if len(out) < n {
		out = append(out, s.WithReplacement(pool, n-len(out))...)
	}
	return out
}

// Index returns a uniform index in [0, n).
func (s *Sampler) Index(n int) int {
	return s.rng.IntN(n)
}

// Pick returns one uniform draw, or nil for an empty pool.
func (s *Sampler) Pick(pool []*catalog.Card) *catalog.Card {
	if len(pool) == 0 {
		return nil
	}
	return pool[s.rng.IntN(len(pool))]
}

// Shuffle permutes seq in place (Fisher-Yates).
func (s *Sampler) Shuffle(seq []*catalog.Card) []*catalog.Card {
	for i := len(seq) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		seq[i], seq[j] = seq[j], seq[i]
	}
	return seq
}
