//go:build !linux

package clock

import (
	"time"
)

// monotonicSource derives monotonic readings from the runtime clock where
// CLOCK_MONOTONIC with absolute waits is unavailable.
type monotonicSource struct {
	epoch time.Time
}

func newSystemSource(o options) Source {
	return &monotonicSource{epoch: time.Now()}
}

func (s *monotonicSource) Now() Timespec {
	return FromNanos(int64(time.Since(s.epoch)))
}

func (s *monotonicSource) SleepUntil(deadline Timespec) error {
	d := time.Duration(Diff(deadline, s.Now()))
	if d > 0 {
		time.Sleep(d)
	}
	return nil
}
