// Package abi holds the driver numbers, command IDs, and subscription slots
// shared between the kernel-side drivers and their userspace clients.
package abi

// AlarmDriver is the alarm driver's number.
const AlarmDriver uint32 = 0

// Alarm driver commands.
const (
	AlarmExists uint32 = iota
	AlarmFrequency
	AlarmTime
	AlarmStop

	AlarmSetRelative uint32 = 5
	AlarmSetAbsolute uint32 = 6
)

// AlarmCallback is the alarm driver's single subscription slot. The upcall
// carries the tick the alarm was scheduled for and the tick count observed
// when it fired.
const AlarmCallback uint32 = 0
