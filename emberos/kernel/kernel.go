// Package kernel is a cooperative simulated kernel: a driver table, per-driver
// subscription slots, and a pending-upcall queue drained at yield points.
//
// It implements sys.Syscalls for a single userspace task. Tasks and drivers
// run on one goroutine; nothing here is safe for concurrent use.
package kernel

import (
	"runtime"

	"ember/emberos/sys"
	"ember/hal"
)

const (
	maxDrivers       = 16
	maxSubscriptions = 4
	pendingSlots     = 8
)

// Driver handles the commands of one driver number.
type Driver interface {
	Command(cmd, arg1, arg2 uint32) sys.CommandResult
}

// Poller is implemented by drivers that advance on an external timebase.
// The kernel polls at every yield step.
type Poller interface {
	Poll()
}

// Upcalls lets a driver schedule a subscription upcall for delivery at the
// task's next yield.
type Upcalls interface {
	// Schedule queues an upcall for the driver's slot. It reports false if
	// the queue is full; the upcall is then dropped.
	Schedule(driver, slot, arg0, arg1 uint32) bool
}

type upcallEntry struct {
	driver uint32
	slot   uint32
	arg0   uint32
	arg1   uint32
}

// pendingRing is a fixed-size FIFO of scheduled upcalls.
type pendingRing struct {
	head  uint8
	tail  uint8
	slots [pendingSlots]upcallEntry
}

func (r *pendingRing) push(e upcallEntry) bool {
	if r.head-r.tail >= pendingSlots {
		return false
	}
	r.slots[r.head%pendingSlots] = e
	r.head++
	return true
}

func (r *pendingRing) pop() (upcallEntry, bool) {
	if r.tail == r.head {
		return upcallEntry{}, false
	}
	e := r.slots[r.tail%pendingSlots]
	r.tail++
	return e, true
}

// Kernel routes syscalls to registered drivers and delivers their upcalls.
type Kernel struct {
	log hal.Logger

	drivers [maxDrivers]Driver
	subs    [maxDrivers][maxSubscriptions]sys.Upcall
	pending pendingRing
}

// New creates a kernel. log may be nil.
func New(log hal.Logger) *Kernel {
	return &Kernel{log: log}
}

// Register installs d as the handler for the driver number. It reports false
// if the number is out of range or already taken.
func (k *Kernel) Register(driver uint32, d Driver) bool {
	if driver >= maxDrivers || d == nil {
		return false
	}
	if k.drivers[driver] != nil {
		return false
	}
	k.drivers[driver] = d
	return true
}

// Command routes a command syscall to the registered driver.
func (k *Kernel) Command(driver, cmd, arg1, arg2 uint32) sys.CommandResult {
	if driver >= maxDrivers || k.drivers[driver] == nil {
		return sys.Failure(sys.ErrNoDevice)
	}
	return k.drivers[driver].Command(cmd, arg1, arg2)
}

// Subscribe installs up on the driver's slot, replacing any current entry.
// A nil up removes the current subscription; upcalls already queued for the
// slot are resolved at delivery time, so removal also quenches them.
func (k *Kernel) Subscribe(driver, slot uint32, up sys.Upcall) error {
	if driver >= maxDrivers || k.drivers[driver] == nil {
		return sys.ErrNoDevice
	}
	if slot >= maxSubscriptions {
		return sys.ErrInvalid
	}
	k.subs[driver][slot] = up
	return nil
}

// YieldWait blocks until a pending upcall with a live subscription exists,
// and delivers exactly one before returning.
func (k *Kernel) YieldWait() {
	for {
		k.poll()
		e, ok := k.pending.pop()
		if !ok {
			runtime.Gosched()
			continue
		}
		up := k.subs[e.driver][e.slot]
		if up == nil {
			// Subscription removed after scheduling; drop silently.
			continue
		}
		up(e.arg0, e.arg1)
		return
	}
}

// Schedule implements Upcalls.
func (k *Kernel) Schedule(driver, slot, arg0, arg1 uint32) bool {
	if driver >= maxDrivers || slot >= maxSubscriptions {
		return false
	}
	if !k.pending.push(upcallEntry{driver: driver, slot: slot, arg0: arg0, arg1: arg1}) {
		if k.log != nil {
			k.log.WriteLineString("kernel: upcall queue full, dropping")
		}
		return false
	}
	return true
}

func (k *Kernel) poll() {
	for _, d := range k.drivers {
		if p, ok := d.(Poller); ok {
			p.Poll()
		}
	}
}
