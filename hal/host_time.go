//go:build !tinygo

package hal

import "time"

// HostTickHz is the host tick source rate.
const HostTickHz = 1000

type hostTime struct {
	ch  chan uint64
	seq uint64
}

func newHostTime() *hostTime {
	return &hostTime{ch: make(chan uint64, 1024)}
}

func (t *hostTime) Ticks() <-chan uint64 { return t.ch }

func (t *hostTime) start() {
	go func() {
		tk := time.NewTicker(time.Second / HostTickHz)
		defer tk.Stop()
		for range tk.C {
			t.seq++
			select {
			case t.ch <- t.seq:
			default:
				// Consumer lagging; it resynchronizes from the next tick.
			}
		}
	}()
}
