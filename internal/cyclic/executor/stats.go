package executor

import "time"

// Stats summarizes the cycles run so far.
type Stats struct {
	Cycles   uint64
	Exceeded uint64
	Reported uint64
	MinDelay time.Duration
	MaxDelay time.Duration
	MaxTask  time.Duration
	sumDelay time.Duration
}

// MeanDelay returns the average wake delay, 0 before the first cycle.
func (s Stats) MeanDelay() time.Duration {
	if s.Cycles == 0 {
		return 0
	}
	return s.sumDelay / time.Duration(s.Cycles)
}

func (s *Stats) observe(m Measurement) {
	if s.Cycles == 0 || m.Delay < s.MinDelay {
		s.MinDelay = m.Delay
	}
	if s.Cycles == 0 || m.Delay > s.MaxDelay {
		s.MaxDelay = m.Delay
	}
	if m.Task > s.MaxTask {
		s.MaxTask = m.Task
	}
	if m.Exceeded {
		s.Exceeded++
	}
	if m.Exceeded || m.ShouldReport {
		s.Reported++
	}
	s.sumDelay += m.Delay
	s.Cycles++
}
