package taskqueue

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Interval is a delay policy applied between two tasks. It is either a
// fixed duration or a duration drawn uniformly from [lo, hi) every time
// a delay is needed. The zero value is Fixed(0).
type Interval struct {
	lo     time.Duration
	hi     time.Duration
	random bool
}

// Fixed returns an interval that always yields d.
func Fixed(d time.Duration) Interval {
	return Interval{lo: d, hi: d}
}

// RandomRange returns an interval sampling uniformly from [lo, hi).
func RandomRange(lo, hi time.Duration) Interval {
	return Interval{lo: lo, hi: hi, random: true}
}

// IsRandom reports whether the interval is sampled from a range.
func (i Interval) IsRandom() bool { return i.random }

// Bounds returns the range of the interval. For fixed intervals both
// values are equal.
func (i Interval) Bounds() (lo, hi time.Duration) { return i.lo, i.hi }

// Validate checks that the interval can produce a non-negative delay.
func (i Interval) Validate() error {
	if i.lo < 0 || i.hi < 0 {
		return ErrNegativeInterval
	}
	if i.random && i.hi <= i.lo {
		return ErrEmptyRange
	}
	return nil
}

// Delay resolves the interval to a concrete duration. Random intervals
// are sampled on every call.
func (i Interval) Delay() time.Duration {
	d := i.lo
	if i.random && i.hi > i.lo {
		d += rand.N(i.hi - i.lo)
	}
	return max(d, 0)
}

func (i Interval) String() string {
	if i.random {
		return fmt.Sprintf("random[%v,%v)", i.lo, i.hi)
	}
	return fmt.Sprintf("fixed(%v)", i.lo)
}
