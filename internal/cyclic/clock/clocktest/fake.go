// Package clocktest provides a manually driven clock.Source for tests.
package clocktest

import (
	"sync"

	"rttester/internal/cyclic/clock"
)

// Fake is a clock.Source whose time only moves when told to. SleepUntil
// jumps straight to the deadline, plus any configured wake latency.
type Fake struct {
	mu      sync.Mutex
	now     clock.Timespec
	latency func(deadline clock.Timespec) int64
	sleeps  []clock.Timespec
	err     error
}

// NewFake returns a Fake starting at start.
func NewFake(start clock.Timespec) *Fake {
	return &Fake{now: start}
}

// Now implements clock.Source.
func (f *Fake) Now() clock.Timespec {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// SleepUntil implements clock.Source.
func (f *Fake) SleepUntil(deadline clock.Timespec) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sleeps = append(f.sleeps, deadline)
	if f.err != nil {
		return f.err
	}
	if f.now.Before(deadline) {
		f.now = deadline
		if f.latency != nil {
			if ns := f.latency(deadline); ns > 0 {
				f.now = f.now.AddNanos(ns)
			}
		}
	}
	return nil
}

// Elapse moves the clock forward by ns, as if work had been done.
func (f *Fake) Elapse(ns int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.AddNanos(ns)
}

// SetLatency installs a wake latency applied after each blocking sleep.
func (f *Fake) SetLatency(fn func(deadline clock.Timespec) int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latency = fn
}

// FailSleeps makes SleepUntil return err without moving the clock.
func (f *Fake) FailSleeps(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Sleeps returns the deadlines passed to SleepUntil so far.
func (f *Fake) Sleeps() []clock.Timespec {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]clock.Timespec, len(f.sleeps))
	copy(out, f.sleeps)
	return out
}
