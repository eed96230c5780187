// Package rng abstracts random choice so first-turn selection is seedable
// and deterministic under test.
package rng

import (
	"math/rand"
	"sync"
	"time"
)

type Rand interface {
	// Intn returns a uniform int in [0, n).
	Intn(n int) int
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// New returns a Rand seeded with the given seed; a zero seed falls back to
// the current time.
func New(seed int64) Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}
