// Package alarm implements the kernel-side alarm driver over a HAL tick
// stream.
package alarm

import (
	"ember/emberos/abi"
	"ember/emberos/kernel"
	"ember/emberos/sys"
	"ember/hal"
)

// Service is the alarm driver. It tracks a wrapping 32-bit tick counter and
// at most one armed alarm; when the alarm expires it schedules the callback
// upcall with (scheduled tick, tick count at firing).
type Service struct {
	ht  hal.Time
	up  kernel.Upcalls
	num uint32

	freq uint32
	now  uint32

	armed     bool
	start     uint32
	dt        uint32
	scheduled uint32
}

// New creates the alarm driver. freq is the rate of ht's tick stream in Hz
// and must be non-zero.
func New(ht hal.Time, freq uint32, up kernel.Upcalls, num uint32) *Service {
	return &Service{ht: ht, up: up, num: num, freq: freq}
}

// Command implements kernel.Driver.
func (s *Service) Command(cmd, arg1, arg2 uint32) sys.CommandResult {
	switch cmd {
	case abi.AlarmExists:
		return sys.Success(0)

	case abi.AlarmFrequency:
		return sys.Success(s.freq)

	case abi.AlarmTime:
		s.drainTicks()
		return sys.Success(s.now)

	case abi.AlarmStop:
		s.armed = false
		return sys.Success(0)

	case abi.AlarmSetRelative:
		s.drainTicks()
		s.arm(s.now, arg1)
		return sys.Success(s.scheduled)

	case abi.AlarmSetAbsolute:
		// arg1 is the reference tick, arg2 the offset from it.
		s.drainTicks()
		s.arm(arg1, arg2)
		return sys.Success(s.scheduled)

	default:
		return sys.Failure(sys.ErrNoSupport)
	}
}

func (s *Service) arm(start, dt uint32) {
	s.armed = true
	s.start = start
	s.dt = dt
	s.scheduled = start + dt
}

// Poll implements kernel.Poller: advance the counter and fire a due alarm.
func (s *Service) Poll() {
	s.drainTicks()
	if !s.armed {
		return
	}
	// Wrapping elapsed-time check; the counter may have rolled over since
	// the alarm was armed.
	if s.now-s.start < s.dt {
		return
	}
	s.armed = false
	s.up.Schedule(s.num, abi.AlarmCallback, s.scheduled, s.now)
}

func (s *Service) drainTicks() {
	if s.ht == nil {
		return
	}
	ch := s.ht.Ticks()
	if ch == nil {
		return
	}
	for {
		select {
		case seq := <-ch:
			s.now = uint32(seq)
		default:
			return
		}
	}
}
