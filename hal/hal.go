package hal

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// Time provides a base tick stream.
//
// The tick duration is platform-defined; the alarm driver turns it into a
// frequency-stamped counter for userspace.
type Time interface {
	Ticks() <-chan uint64
}

// HAL provides the only contact point between the OS and the outside world.
type HAL interface {
	Logger() Logger
	Time() Time
}
