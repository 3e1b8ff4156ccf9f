// Package sampling implements the index-selection policies used by the
// incremental solvers: randomized draws, deterministic cycling, and
// per-epoch random shuffling.
package sampling

import (
	"fmt"
	"math/rand"
)

// Strategy selects how component indices are produced each step.
type Strategy int

// Supported sweeping strategies.
const (
	Randomized Strategy = iota + 1 // uniform draws, with replacement by default
	Cyclic                         // round-robin 0,1,...,n-1,0,...
	Shuffled                       // fresh permutation consumed once per epoch
)

// String returns a human-readable name for the strategy.
func (s Strategy) String() string {
	switch s {
	case Randomized:
		return "randomized"
	case Cyclic:
		return "cyclic"
	case Shuffled:
		return "shuffled"
	default:
		return "unknown"
	}
}

// Config holds construction parameters for a Sampler.
type Config struct {
	Strategy      Strategy // default Randomized
	Batch         int      // minibatch size, default 1
	NoReplacement bool     // randomized minibatch draws without replacement
	Seed          int64    // used when Rand is nil
	Rand          *rand.Rand
}

// Sampler produces the minibatch of component indices to process at
// each inner step. The random source is owned by the Sampler so runs
// are reproducible in isolation.
//
// An epoch covers n index slots. When n is not a multiple of the batch
// size, the final minibatch of the epoch is truncated so that cyclic
// and shuffled sweeps visit every index exactly once per epoch.
type Sampler struct {
	n        int
	batch    int
	strategy Strategy
	noRepl   bool
	rng      *rand.Rand

	perm []int // shuffled order, redrawn each epoch
	pos  int   // slots consumed within the current epoch
}

// New creates a Sampler over indices 0..n-1.
func New(n int, cfg Config) (*Sampler, error) {
	if n <= 0 {
		return nil, fmt.Errorf("sampling: non-positive index count %d", n)
	}
	if cfg.Strategy == 0 {
		cfg.Strategy = Randomized
	}
	if cfg.Batch == 0 {
		cfg.Batch = 1
	}
	if cfg.Batch < 0 || cfg.Batch > n {
		return nil, fmt.Errorf("sampling: batch size %d out of range [1, %d]", cfg.Batch, n)
	}
	switch cfg.Strategy {
	case Randomized, Cyclic, Shuffled:
	default:
		return nil, fmt.Errorf("sampling: unknown strategy %d", cfg.Strategy)
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}
	s := &Sampler{
		n:        n,
		batch:    cfg.Batch,
		strategy: cfg.Strategy,
		noRepl:   cfg.NoReplacement,
		rng:      rng,
	}
	if cfg.Strategy == Shuffled {
		s.perm = rng.Perm(n)
	}
	return s, nil
}

// N returns the number of indices covered by the sampler.
func (s *Sampler) N() int { return s.n }

// Batch returns the configured minibatch size.
func (s *Sampler) Batch() int { return s.batch }

// StepsPerEpoch returns the number of inner steps making up one epoch.
func (s *Sampler) StepsPerEpoch() int {
	return (s.n + s.batch - 1) / s.batch
}

// Next appends the next minibatch of indices to dst and returns it.
// The returned slice holds between 1 and Batch indices; only the final
// minibatch of an epoch may be short.
func (s *Sampler) Next(dst []int) []int {
	size := s.batch
	if rem := s.n - s.pos; size > rem {
		size = rem
	}
	dst = dst[:0]
	switch s.strategy {
	case Randomized:
		if s.noRepl && size > 1 {
			dst = s.drawDistinct(dst, size)
		} else {
			for i := 0; i < size; i++ {
				dst = append(dst, s.rng.Intn(s.n))
			}
		}
		s.pos += size
	case Cyclic:
		for i := 0; i < size; i++ {
			dst = append(dst, (s.pos+i)%s.n)
		}
		s.pos += size
	case Shuffled:
		dst = append(dst, s.perm[s.pos:s.pos+size]...)
		s.pos += size
	}
	if s.pos >= s.n {
		s.pos = 0
		if s.strategy == Shuffled {
			s.perm = s.rng.Perm(s.n)
		}
	}
	return dst
}

// drawDistinct samples size distinct indices uniformly via a partial
// Fisher-Yates pass.
func (s *Sampler) drawDistinct(dst []int, size int) []int {
	pool := make([]int, s.n)
	for i := range pool {
		pool[i] = i
	}
	for i := 0; i < size; i++ {
		j := i + s.rng.Intn(s.n-i)
		pool[i], pool[j] = pool[j], pool[i]
		dst = append(dst, pool[i])
	}
	return dst
}
