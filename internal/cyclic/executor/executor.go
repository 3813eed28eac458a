// Package executor runs the periodic measurement loop.
package executor

import (
	"context"
	"time"

	"rttester/internal/cyclic/clock"
	"rttester/internal/cyclic/period"
	"rttester/pkg/errors"
	"rttester/pkg/utils/logger"

	"go.uber.org/zap"
)

// Reporter receives the measurements of reported cycles.
type Reporter interface {
	Report(delay, task time.Duration, exceeded bool)
}

// Task is the work body executed once per cycle. A nil Task runs the
// measurement alone.
type Task func(ctx context.Context)

// Config holds the read-only task configuration handed to the worker.
type Config struct {
	Period      time.Duration
	PrintPerSec int64
	Task        Task
}

// Measurement is computed fresh every cycle and never retained.
type Measurement struct {
	Cycle        uint64
	Delay        time.Duration
	Task         time.Duration
	Exceeded     bool
	ShouldReport bool
}

// Executor owns a period clock and drives one cycle per period.
type Executor struct {
	cfg      Config
	clock    *period.Clock
	reporter Reporter
	stats    Stats
	cycle    uint64
}

// New creates an executor whose first deadline is the current time of src.
func New(cfg Config, src clock.Source, reporter Reporter) (*Executor, error) {
	if reporter == nil {
		return nil, errors.BadRequest("reporter is required")
	}
	pc, err := period.New(src, int64(cfg.Period), cfg.PrintPerSec)
	if err != nil {
		return nil, err
	}
	return &Executor{
		cfg:      cfg,
		clock:    pc,
		reporter: reporter,
	}, nil
}

// Clock exposes the period clock, mainly for inspection.
func (e *Executor) Clock() *period.Clock {
	return e.clock
}

// Stats returns a snapshot of the run statistics. Call it after Run returned.
func (e *Executor) Stats() Stats {
	return e.stats
}

// Run executes cycles until ctx is cancelled. The stop signal is checked
// once per cycle, right after the deadline wait returns. Cycles never
// overlap: an overrun simply makes the next wake late.
func (e *Executor) Run(ctx context.Context) error {
	logger.Info(ctx, "periodic loop started",
		zap.Duration("period", e.cfg.Period),
		zap.Int64("print_per_sec", e.cfg.PrintPerSec),
		zap.Int64("print_rate", e.clock.PrintRate()),
	)
	log := logger.FromContext(ctx)
	for {
		m := e.RunCycle(ctx)
		if m.Exceeded {
			log.Debug("deadline exceeded",
				zap.Uint64("cycle", m.Cycle),
				zap.Duration("delay", m.Delay),
			)
		}

		e.clock.Advance()
		if err := e.clock.SleepUntilDeadline(); err != nil {
			log.Debug("deadline wait ended early", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			log.Info("periodic loop stopped", zap.Uint64("cycles", e.cycle))
			return nil
		default:
		}
	}
}

// RunCycle measures and reports a single cycle without advancing the
// deadline.
func (e *Executor) RunCycle(ctx context.Context) Measurement {
	start := e.clock.Now()
	next := e.clock.Next()
	delayNs := clock.Diff(start, next)

	m := Measurement{
		Cycle:    e.cycle,
		Delay:    time.Duration(delayNs),
		Exceeded: delayNs > e.clock.Period(),
	}

	if e.cfg.Task != nil {
		e.cfg.Task(ctx)
	}
	end := e.clock.Now()
	m.Task = time.Duration(clock.Diff(end, start))
	m.ShouldReport = e.clock.ShouldReport()

	if m.Exceeded || m.ShouldReport {
		e.reporter.Report(m.Delay, m.Task, m.Exceeded)
	}

	e.stats.observe(m)
	e.cycle++
	return m
}
