// Package alarm is the userspace client for the kernel alarm driver.
//
// It exposes the driver's tick counter and a blocking relative sleep:
//
//	a := alarm.New(syscalls)
//	if err := a.SleepFor(alarm.Milliseconds(2500)); err != nil { ... }
package alarm

import (
	"fmt"

	"ember/emberos/abi"
	"ember/emberos/sys"
)

// Alarm is a client for the alarm driver. The zero value is not usable;
// construct with New.
type Alarm struct {
	s sys.Syscalls
}

// New returns an alarm client over the given syscall transport.
func New(s sys.Syscalls) Alarm {
	return Alarm{s: s}
}

// Exists checks that the alarm driver is registered in the kernel.
func (a Alarm) Exists() error {
	return a.s.Command(abi.AlarmDriver, abi.AlarmExists, 0, 0).Err()
}

// Frequency reads the driver's tick rate.
func (a Alarm) Frequency() (Hz, error) {
	v, err := a.s.Command(abi.AlarmDriver, abi.AlarmFrequency, 0, 0).Value()
	if err != nil {
		return 0, err
	}
	return Hz(v), nil
}

// Time reads the current tick counter.
func (a Alarm) Time() (Ticks, error) {
	v, err := a.s.Command(abi.AlarmDriver, abi.AlarmTime, 0, 0).Value()
	if err != nil {
		return 0, err
	}
	return Ticks(v), nil
}

// fired records delivery of the alarm upcall. One instance lives on the
// stack of each SleepFor call; the kernel's reference to it is scoped by
// WithSubscription and dropped before the call returns. No synchronization:
// the upcall runs on this goroutine inside YieldWait.
type fired struct {
	done bool
	when uint32
	ref  uint32
}

func (f *fired) upcall(arg0, arg1 uint32) {
	f.when = arg0
	f.ref = arg1
	f.done = true
}

// SleepFor blocks until approximately d has elapsed.
//
// The frequency is re-queried on every call; the client holds no state
// across calls. Any syscall error is returned as-is, with the subscription
// torn down first. Concurrent SleepFor calls on the same transport are not
// supported.
func (a Alarm) SleepFor(d Convert) error {
	freq, err := a.Frequency()
	if err != nil {
		return fmt.Errorf("alarm frequency: %w", err)
	}
	ticks := d.ToTicks(freq)

	var f fired
	return sys.WithSubscription(a.s, abi.AlarmDriver, abi.AlarmCallback, f.upcall, func() error {
		// Arm strictly after the subscription is installed, so an alarm
		// firing immediately cannot be lost.
		if err := a.s.Command(abi.AlarmDriver, abi.AlarmSetRelative, uint32(ticks), 0).Err(); err != nil {
			return fmt.Errorf("alarm set relative: %w", err)
		}
		for !f.done {
			// YieldWait may deliver an unrelated upcall; keep waiting
			// until ours lands.
			a.s.YieldWait()
		}
		return nil
	})
}
