//go:build !tinygo

// Command embersim runs the simulated kernel with the alarm driver and a
// single userspace task that sleeps in a loop.
package main

import (
	"flag"
	"fmt"
	"os"

	"ember/emberos/abi"
	"ember/emberos/client/alarm"
	"ember/emberos/kernel"
	alarmsvc "ember/emberos/services/alarm"
	"ember/hal"
	"ember/internal/buildinfo"
)

func main() {
	sleepMS := flag.Uint("sleep", 250, "sleep duration per iteration in milliseconds")
	count := flag.Int("count", 4, "number of sleeps")
	flag.Parse()

	h := hal.New()
	log := h.Logger()
	log.WriteLineString("embersim " + buildinfo.Short())

	k := kernel.New(log)
	svc := alarmsvc.New(h.Time(), hal.HostTickHz, k, abi.AlarmDriver)
	if !k.Register(abi.AlarmDriver, svc) {
		fmt.Fprintln(os.Stderr, "embersim: register alarm driver failed")
		os.Exit(1)
	}

	a := alarm.New(k)
	if err := a.Exists(); err != nil {
		fmt.Fprintf(os.Stderr, "embersim: alarm driver: %v\n", err)
		os.Exit(1)
	}
	freq, err := a.Frequency()
	if err != nil {
		fmt.Fprintf(os.Stderr, "embersim: frequency: %v\n", err)
		os.Exit(1)
	}
	log.WriteLineString(fmt.Sprintf("alarm driver at %d Hz", freq))

	for i := 0; i < *count; i++ {
		before, err := a.Time()
		if err != nil {
			fmt.Fprintf(os.Stderr, "embersim: time: %v\n", err)
			os.Exit(1)
		}
		if err := a.SleepFor(alarm.Milliseconds(*sleepMS)); err != nil {
			fmt.Fprintf(os.Stderr, "embersim: sleep: %v\n", err)
			os.Exit(1)
		}
		after, err := a.Time()
		if err != nil {
			fmt.Fprintf(os.Stderr, "embersim: time: %v\n", err)
			os.Exit(1)
		}
		log.WriteLineString(fmt.Sprintf("slept %d ms (%s ticks)", *sleepMS, after.Sub(before)))
	}
}
