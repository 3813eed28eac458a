package rtsched

import (
	"context"
	"runtime"
	"sync/atomic"

	"rttester/pkg/errors"
	"rttester/pkg/utils/contextkey"
)

// Thread is a running worker pinned to its own OS thread.
type Thread struct {
	tid      int
	policy   Policy
	priority int
	done     chan struct{}
	err      error
}

// Start creates the worker thread with attr and runs fn on it. The
// goroutine is locked to its OS thread for its whole life and never
// unlocked, so the thread, with its scheduling class, exits together with
// fn. Scheduling is applied before fn runs; if that fails fn never runs
// and the error is returned here.
func (c *Configurator) Start(ctx context.Context, attr *Attr, fn func(ctx context.Context) error) (*Thread, error) {
	if attr == nil {
		return nil, errors.BadRequest("thread attributes are required")
	}
	if fn == nil {
		return nil, errors.BadRequest("thread function is required")
	}

	spec := attr.Spec()
	t := &Thread{done: make(chan struct{})}
	ready := make(chan error, 1)

	go func() {
		defer close(t.done)
		runtime.LockOSThread()

		t.tid = c.ops.threadID()
		if spec.Inherit == InheritExplicit {
			if err := c.ops.applySched(spec.Policy, spec.Priority); err != nil {
				ready <- err
				return
			}
			t.policy, t.priority = spec.Policy, spec.Priority
		} else {
			// The runtime picks the thread, so read what it actually runs with.
			policy, priority, err := c.ops.currentSched()
			if err != nil {
				ready <- err
				return
			}
			t.policy, t.priority = policy, priority
		}
		reserveStack(spec.StackSize)
		ready <- nil

		defer func() {
			if r := recover(); r != nil {
				t.err = errors.Newf(errors.ThreadJoinFailed, "worker panicked: %v", r)
			}
		}()
		t.err = fn(context.WithValue(ctx, contextkey.ThreadID, t.tid))
	}()

	if err := <-ready; err != nil {
		<-t.done
		return nil, stepError(errors.ThreadCreateFailed, err).
			WithDetail("policy", spec.Policy.String()).
			WithDetail("priority", spec.Priority)
	}
	return t, nil
}

// TID returns the kernel thread id of the worker.
func (t *Thread) TID() int { return t.tid }

// Policy returns the scheduling class the worker runs with.
func (t *Thread) Policy() Policy { return t.policy }

// Priority returns the static priority the worker runs with.
func (t *Thread) Priority() int { return t.priority }

// Done is closed when the worker has returned.
func (t *Thread) Done() <-chan struct{} { return t.done }

// Wait blocks until the worker returns and yields its result.
func (t *Thread) Wait() error {
	<-t.done
	return t.err
}

var stackSink atomic.Uint32

// reserveStack grows the goroutine stack by at least size bytes up front,
// so the periodic loop does not hit a stack copy in its first cycles.
//
//go:noinline
func reserveStack(size int) {
	var frame [1024]byte
	frame[0] = byte(size)
	if size > len(frame) {
		reserveStack(size - len(frame))
	}
	stackSink.Add(uint32(frame[0] ^ frame[len(frame)-1]))
}
