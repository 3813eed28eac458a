// Package clock provides absolute monotonic time arithmetic and the clock
// source the periodic loop sleeps on.
package clock

import "fmt"

// NanosPerSecond is the normalization bound of Timespec.Nsec.
const NanosPerSecond int64 = 1_000_000_000

// Timespec is an absolute monotonic timestamp split into whole seconds and
// nanoseconds. A normalized value has Nsec in [0, NanosPerSecond).
type Timespec struct {
	Sec  int64
	Nsec int64
}

// FromNanos builds a normalized Timespec from a nanosecond count.
func FromNanos(ns int64) Timespec {
	ts := Timespec{Sec: ns / NanosPerSecond, Nsec: ns % NanosPerSecond}
	if ts.Nsec < 0 {
		ts.Sec--
		ts.Nsec += NanosPerSecond
	}
	return ts
}

// Nanoseconds returns the timestamp as a single nanosecond count.
func (t Timespec) Nanoseconds() int64 {
	return t.Sec*NanosPerSecond + t.Nsec
}

// AddNanos returns t advanced by ns (ns >= 0). The overflow is carried in a
// loop since a single addition can exceed one second by more than one second.
func (t Timespec) AddNanos(ns int64) Timespec {
	t.Nsec += ns
	for t.Nsec >= NanosPerSecond {
		t.Sec++
		t.Nsec -= NanosPerSecond
	}
	return t
}

// Before reports whether t is strictly earlier than u.
func (t Timespec) Before(u Timespec) bool {
	return Diff(t, u) < 0
}

func (t Timespec) String() string {
	return fmt.Sprintf("%d.%09d", t.Sec, t.Nsec)
}

// Diff returns t1 - t0 in signed nanoseconds.
func Diff(t1, t0 Timespec) int64 {
	return NanosPerSecond*(t1.Sec-t0.Sec) + (t1.Nsec - t0.Nsec)
}
