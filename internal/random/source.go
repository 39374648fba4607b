// Package random provides the injectable randomness used by dice rolls and
// skill draws.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sync"
)

// Source is the random source consumed by the game rules.
type Source interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// IntN returns a value in [0, n).
	IntN(n int) int
}

// NewSeed generates a seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// Seeded is a PCG-backed Source safe for concurrent use.
type Seeded struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeeded returns a Source that replays the same sequence for the same seed.
func NewSeeded(seed uint64) *Seeded {
	return &Seeded{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// New returns a Source seeded from crypto/rand.
func New() (*Seeded, error) {
	seed, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return NewSeeded(seed), nil
}

func (s *Seeded) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *Seeded) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// Scripted replays fixed values, for tests. When a list runs out its last
// value repeats; an empty list yields zero.
type Scripted struct {
	mu     sync.Mutex
	Floats []float64
	Ints   []int
}

func (s *Scripted) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Floats) == 0 {
		return 0
	}
	v := s.Floats[0]
	if len(s.Floats) > 1 {
		s.Floats = s.Floats[1:]
	}
	return v
}

// IntN returns the next scripted int reduced modulo n.
func (s *Scripted) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Ints) == 0 || n <= 0 {
		return 0
	}
	v := s.Ints[0]
	if len(s.Ints) > 1 {
		s.Ints = s.Ints[1:]
	}
	if v < 0 {
		v = -v
	}
	return v % n
}
