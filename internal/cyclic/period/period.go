// Package period tracks the absolute deadline of a fixed-period loop.
package period

import (
	"rttester/internal/cyclic/clock"
	"rttester/pkg/errors"
)

// Clock owns the period length and the next absolute deadline. The deadline
// only ever moves forward by exactly one period per Advance, however long
// the previous cycle took.
type Clock struct {
	src       clock.Source
	periodNs  int64
	next      clock.Timespec
	printRate int64
}

// New captures the current time of src as the first deadline.
func New(src clock.Source, periodNs, printPerSec int64) (*Clock, error) {
	if src == nil {
		return nil, errors.BadRequest("clock source is required")
	}
	if periodNs <= 0 {
		return nil, errors.Newf(errors.InvalidParams, "period must be positive, got %dns", periodNs)
	}
	if printPerSec < 0 {
		return nil, errors.Newf(errors.InvalidParams, "print rate must not be negative, got %d", printPerSec)
	}
	return &Clock{
		src:       src,
		periodNs:  periodNs,
		next:      src.Now(),
		printRate: PrintRate(periodNs, printPerSec),
	}, nil
}

// PrintRate returns how many periods separate two routine reports, or 0
// when rate based reporting is off. A product above one second yields 0,
// the same as the integer division would.
func PrintRate(periodNs, printPerSec int64) int64 {
	if periodNs <= 0 || printPerSec <= 0 {
		return 0
	}
	if printPerSec > clock.NanosPerSecond/periodNs {
		return 0
	}
	return clock.NanosPerSecond / (periodNs * printPerSec)
}

// Period returns the period length in nanoseconds.
func (c *Clock) Period() int64 { return c.periodNs }

// PrintRate returns the report divisor computed at construction.
func (c *Clock) PrintRate() int64 { return c.printRate }

// Next returns the current absolute deadline.
func (c *Clock) Next() clock.Timespec { return c.next }

// Now reads the underlying source.
func (c *Clock) Now() clock.Timespec { return c.src.Now() }

// Advance moves the deadline forward by one period.
func (c *Clock) Advance() {
	c.next = c.next.AddNanos(c.periodNs)
}

// SleepUntilDeadline blocks until the current deadline. Early wakes are
// not corrected here; the error from the wait is returned as is.
func (c *Clock) SleepUntilDeadline() error {
	return c.src.SleepUntil(c.next)
}

// ShouldReport reports whether the current deadline falls on a report
// boundary, counted in elapsed periods rather than wall-clock seconds.
func (c *Clock) ShouldReport() bool {
	if c.printRate == 0 {
		return false
	}
	return (c.next.Nsec/c.periodNs)%c.printRate == 0
}
