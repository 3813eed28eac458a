//go:build linux

package clock

import (
	"golang.org/x/sys/unix"
)

type monotonicSource struct {
	strict bool
}

func newSystemSource(o options) Source {
	return &monotonicSource{strict: o.strict}
}

func (s *monotonicSource) Now() Timespec {
	var ts unix.Timespec
	// CLOCK_MONOTONIC cannot fail with a valid pointer.
	_ = unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts)
	sec, nsec := ts.Unix()
	return Timespec{Sec: sec, Nsec: nsec}
}

func (s *monotonicSource) SleepUntil(deadline Timespec) error {
	req := unix.NsecToTimespec(deadline.Nanoseconds())
	for {
		err := unix.ClockNanosleep(unix.CLOCK_MONOTONIC, unix.TIMER_ABSTIME, &req, nil)
		if err == nil {
			return nil
		}
		if err != unix.EINTR || !s.strict {
			return err
		}
		if !s.Now().Before(deadline) {
			return nil
		}
	}
}
