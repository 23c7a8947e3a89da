//go:build !tinygo

package hal

import (
	"os"
	"sync"
)

type hostHAL struct {
	logger *hostLogger
	t      *hostTime
}

// New returns a host HAL implementation with a running 1 kHz tick source.
func New() HAL {
	t := newHostTime()
	t.start()
	return &hostHAL{
		logger: &hostLogger{w: os.Stdout},
		t:      t,
	}
}

func (h *hostHAL) Logger() Logger { return h.logger }
func (h *hostHAL) Time() Time     { return h.t }

type hostLogger struct {
	mu sync.Mutex
	w  *os.File
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.w.WriteString(s)
	_, _ = l.w.WriteString("\n")
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.w.Write(b)
	_, _ = l.w.WriteString("\n")
}
