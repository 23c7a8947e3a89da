package alarm

import (
	"math"
	"strconv"
)

// Hz is the alarm driver's tick rate in cycles per second. Always non-zero
// when produced by Frequency.
type Hz uint32

// Ticks is a count of hardware ticks at the driver's current frequency.
//
// The hardware counter wraps, so tick arithmetic is modular: callers asking
// "has interval dt passed since start?" must phrase it as
// now.Sub(start) >= dt, never as a comparison against an absolute deadline.
type Ticks uint32

// Add returns t+o under modular 2^32 arithmetic.
func (t Ticks) Add(o Ticks) Ticks { return t + o }

// Sub returns t-o under modular 2^32 arithmetic.
func (t Ticks) Sub(o Ticks) Ticks { return t - o }

func (t Ticks) String() string {
	return strconv.FormatUint(uint64(t), 10)
}

// Convert is a duration expressible in hardware ticks at a given frequency.
type Convert interface {
	// ToTicks converts the duration, rounding up.
	ToTicks(freq Hz) Ticks
}

// ToTicks returns t unchanged; a Ticks value is already in hardware units.
func (t Ticks) ToTicks(_ Hz) Ticks { return t }

// Milliseconds is a duration in milliseconds.
type Milliseconds uint32

// ToTicks converts to ticks as ceil(ms*freq/1000), saturating at the 32-bit
// maximum. Saturation tops out around one hour at 1 MHz, large enough for an
// alarm and simpler than failing for a deadline the driver can still honor.
func (m Milliseconds) ToTicks(freq Hz) Ticks {
	n := uint64(m) * uint64(freq)
	t := n / 1000
	if n%1000 != 0 {
		t++
	}
	if t > math.MaxUint32 {
		t = math.MaxUint32
	}
	return Ticks(t)
}
