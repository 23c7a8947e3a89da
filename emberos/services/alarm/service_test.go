package alarm

import (
	"errors"
	"math"
	"testing"

	"ember/emberos/abi"
	"ember/emberos/kernel"
	"ember/emberos/sys"

	alarmclient "ember/emberos/client/alarm"
)

type fakeTime struct {
	ch chan uint64
}

func newFakeTime() fakeTime {
	return fakeTime{ch: make(chan uint64, 64)}
}

func (f fakeTime) Ticks() <-chan uint64 { return f.ch }

// tick feeds raw sequence values; the service truncates them to 32 bits.
func (f fakeTime) tick(seqs ...uint64) {
	for _, s := range seqs {
		f.ch <- s
	}
}

type upcallRec struct {
	calls [][4]uint32
}

func (r *upcallRec) Schedule(driver, slot, arg0, arg1 uint32) bool {
	r.calls = append(r.calls, [4]uint32{driver, slot, arg0, arg1})
	return true
}

func TestCommandQueries(t *testing.T) {
	ht := newFakeTime()
	s := New(ht, 16_000, &upcallRec{}, abi.AlarmDriver)

	if err := s.Command(abi.AlarmExists, 0, 0).Err(); err != nil {
		t.Fatalf("EXISTS err = %v, want nil", err)
	}
	v, err := s.Command(abi.AlarmFrequency, 0, 0).Value()
	if err != nil {
		t.Fatalf("FREQUENCY err = %v, want nil", err)
	}
	if v != 16_000 {
		t.Fatalf("FREQUENCY = %d, want 16000", v)
	}

	ht.tick(1, 2, 3)
	v, err = s.Command(abi.AlarmTime, 0, 0).Value()
	if err != nil {
		t.Fatalf("TIME err = %v, want nil", err)
	}
	if v != 3 {
		t.Fatalf("TIME = %d, want 3", v)
	}
}

func TestCommandUnsupported(t *testing.T) {
	s := New(newFakeTime(), 1000, &upcallRec{}, abi.AlarmDriver)
	if err := s.Command(99, 0, 0).Err(); !errors.Is(err, sys.ErrNoSupport) {
		t.Fatalf("Command(99) err = %v, want %v", err, sys.ErrNoSupport)
	}
}

func TestSetRelativeFires(t *testing.T) {
	ht := newFakeTime()
	rec := &upcallRec{}
	s := New(ht, 1000, rec, abi.AlarmDriver)

	ht.tick(1, 2, 3, 4, 5)
	when, err := s.Command(abi.AlarmSetRelative, 10, 0).Value()
	if err != nil {
		t.Fatalf("SET_RELATIVE err = %v, want nil", err)
	}
	if when != 15 {
		t.Fatalf("SET_RELATIVE = %d, want 15", when)
	}

	ht.tick(14)
	s.Poll()
	if len(rec.calls) != 0 {
		t.Fatalf("alarm fired early at tick 14: %v", rec.calls)
	}

	ht.tick(15)
	s.Poll()
	if len(rec.calls) != 1 {
		t.Fatalf("upcalls = %d, want 1", len(rec.calls))
	}
	got := rec.calls[0]
	want := [4]uint32{abi.AlarmDriver, abi.AlarmCallback, 15, 15}
	if got != want {
		t.Fatalf("Schedule args = %v, want %v", got, want)
	}

	// One-shot: further polls do not fire again.
	ht.tick(16, 17)
	s.Poll()
	if len(rec.calls) != 1 {
		t.Fatalf("upcalls = %d after extra polls, want 1", len(rec.calls))
	}
}

func TestSetRelativeZeroFiresImmediately(t *testing.T) {
	ht := newFakeTime()
	rec := &upcallRec{}
	s := New(ht, 1000, rec, abi.AlarmDriver)

	ht.tick(7)
	if err := s.Command(abi.AlarmSetRelative, 0, 0).Err(); err != nil {
		t.Fatalf("SET_RELATIVE err = %v", err)
	}
	s.Poll()
	if len(rec.calls) != 1 {
		t.Fatalf("upcalls = %d, want 1", len(rec.calls))
	}
}

func TestSetRelativeAcrossRollover(t *testing.T) {
	ht := newFakeTime()
	rec := &upcallRec{}
	s := New(ht, 1000, rec, abi.AlarmDriver)

	ht.tick(math.MaxUint32 - 4) // counter at 0xFFFF_FFFB
	when, err := s.Command(abi.AlarmSetRelative, 10, 0).Value()
	if err != nil {
		t.Fatalf("SET_RELATIVE err = %v", err)
	}
	if when != 5 { // wraps past zero
		t.Fatalf("SET_RELATIVE = %d, want 5", when)
	}

	ht.tick(math.MaxUint32) // 4 ticks elapsed, 6 to go
	s.Poll()
	if len(rec.calls) != 0 {
		t.Fatal("alarm fired before rollover deadline")
	}

	ht.tick(1<<32 + 5) // truncates to 5
	s.Poll()
	if len(rec.calls) != 1 {
		t.Fatalf("upcalls = %d, want 1", len(rec.calls))
	}
	if rec.calls[0][2] != 5 {
		t.Fatalf("scheduled tick = %d, want 5", rec.calls[0][2])
	}
}

func TestStopCancels(t *testing.T) {
	ht := newFakeTime()
	rec := &upcallRec{}
	s := New(ht, 1000, rec, abi.AlarmDriver)

	ht.tick(1)
	if err := s.Command(abi.AlarmSetRelative, 5, 0).Err(); err != nil {
		t.Fatalf("SET_RELATIVE err = %v", err)
	}
	if err := s.Command(abi.AlarmStop, 0, 0).Err(); err != nil {
		t.Fatalf("STOP err = %v", err)
	}

	ht.tick(100)
	s.Poll()
	if len(rec.calls) != 0 {
		t.Fatalf("upcalls = %d after STOP, want 0", len(rec.calls))
	}
}

func TestSetAbsolute(t *testing.T) {
	ht := newFakeTime()
	rec := &upcallRec{}
	s := New(ht, 1000, rec, abi.AlarmDriver)

	ht.tick(50)
	when, err := s.Command(abi.AlarmSetAbsolute, 40, 30).Value()
	if err != nil {
		t.Fatalf("SET_ABSOLUTE err = %v", err)
	}
	if when != 70 {
		t.Fatalf("SET_ABSOLUTE = %d, want 70", when)
	}

	ht.tick(69)
	s.Poll()
	if len(rec.calls) != 0 {
		t.Fatal("alarm fired before reference+offset")
	}
	ht.tick(70)
	s.Poll()
	if len(rec.calls) != 1 {
		t.Fatalf("upcalls = %d, want 1", len(rec.calls))
	}
}

func TestSleepEndToEnd(t *testing.T) {
	ht := newFakeTime()
	k := kernel.New(nil)
	s := New(ht, 1000, k, abi.AlarmDriver)
	if !k.Register(abi.AlarmDriver, s) {
		t.Fatal("Register() = false, want true")
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for seq := uint64(1); ; seq++ {
			select {
			case ht.ch <- seq:
			case <-stop:
				return
			}
		}
	}()

	a := alarmclient.New(k)
	if err := a.Exists(); err != nil {
		t.Fatalf("Exists() = %v, want nil", err)
	}
	freq, err := a.Frequency()
	if err != nil {
		t.Fatalf("Frequency() err = %v", err)
	}
	if freq != 1000 {
		t.Fatalf("Frequency() = %d, want 1000", freq)
	}

	before, err := a.Time()
	if err != nil {
		t.Fatalf("Time() err = %v", err)
	}
	if err := a.SleepFor(alarmclient.Milliseconds(5)); err != nil {
		t.Fatalf("SleepFor() = %v, want nil", err)
	}
	after, err := a.Time()
	if err != nil {
		t.Fatalf("Time() err = %v", err)
	}
	if elapsed := after.Sub(before); elapsed < 5 {
		t.Fatalf("elapsed = %d ticks, want >= 5", elapsed)
	}
}
