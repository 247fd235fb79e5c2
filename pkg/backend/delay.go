package backend

import (
	"math/rand/v2"
	"time"
)

// Default inter-frame delay bounds.
const (
	DefaultDelayMin = 40 * time.Millisecond
	DefaultDelayMax = 120 * time.Millisecond
)

// Delay draws the pause between two frames of a transition.
type Delay struct {
	Min, Max time.Duration

	// Rand draws the target delay. Nil uses the global source.
	Rand *rand.Rand
}

// Target draws a delay uniformly from [Min, Max].
func (d Delay) Target() time.Duration {
	lo, hi := d.Min, d.Max
	if hi < lo {
		lo, hi = hi, lo
	}
	span := int64(hi - lo)
	if span <= 0 {
		return lo
	}
	if d.Rand != nil {
		return lo + time.Duration(d.Rand.Int64N(span+1))
	}
	return lo + time.Duration(rand.Int64N(span+1))
}

// Compute returns how long to sleep after a backend call that took
// elapsed: a freshly drawn target minus elapsed, never negative.
func (d Delay) Compute(elapsed time.Duration) time.Duration {
	return max(d.Target()-elapsed, 0)
}
