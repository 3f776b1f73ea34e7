package random

import "math/rand"

// Seeded is a deterministic random source: the same seed always yields
// the same draw sequence. Board generation depends on this to make layouts
// reproducible from a game's stored seed.
type Seeded struct {
	rng *rand.Rand
}

// NewSeeded creates a deterministic source from the given seed
func NewSeeded(seed int64) *Seeded {
	return &Seeded{rng: rand.New(rand.NewSource(seed))}
}

// Intn returns a deterministic int in [0, n)
func (s *Seeded) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return s.rng.Intn(n)
}

// Shuffle pseudo-randomizes the order of n elements via swap
func (s *Seeded) Shuffle(n int, swap func(i, j int)) {
	s.rng.Shuffle(n, swap)
}
