// Package dice provides the seeded die roller used by skill checks and
// random-event draws. A fixed seed reproduces a full run.
package dice

import (
	"math/rand"
	"time"
)

// CheckDie is the die rolled for every skill check.
const CheckDie = 10

// Roller wraps a seeded math/rand source.
type Roller struct {
	src *rand.Rand
}

// New creates a Roller from a seed.
func New(seed int64) *Roller {
	return &Roller{src: rand.New(rand.NewSource(seed))}
}

// NewRandom creates a time-seeded Roller.
func NewRandom() *Roller {
	return New(time.Now().UnixNano())
}

// Roll returns a uniform integer in [1, sides].
func (r *Roller) Roll(sides int) int {
	return r.src.Intn(sides) + 1
}

// Intn returns a uniform integer in [0, n). n must be > 0.
func (r *Roller) Intn(n int) int {
	return r.src.Intn(n)
}

// Pick returns a uniform index into a collection of length n.
// Returns -1 when the collection is empty.
func (r *Roller) Pick(n int) int {
	if n <= 0 {
		return -1
	}
	return r.src.Intn(n)
}
