//go:build linux

package rtsched

import (
	"context"
	stderrors "errors"
	"syscall"
	"testing"
)

func TestLinuxCurrentSched(t *testing.T) {
	ops := linuxOps{}
	policy, priority, err := ops.currentSched()
	if err != nil {
		t.Fatalf("currentSched() error = %v", err)
	}
	lo, hi := policy.PriorityRange()
	if priority < lo || priority > hi {
		t.Errorf("priority %d outside [%d, %d] for %v", priority, lo, hi, policy)
	}
	if ops.threadID() <= 0 {
		t.Errorf("threadID() = %d, want > 0", ops.threadID())
	}
}

func TestLinuxStartRealtimeWorker(t *testing.T) {
	c := NewConfigurator()
	attr, err := c.Configure(context.Background(), DefaultSpec())
	if err != nil {
		skipIfUnprivileged(t, err)
		t.Fatalf("Configure() error = %v", err)
	}
	th, err := c.Start(context.Background(), attr, func(context.Context) error {
		policy, priority, err := linuxOps{}.currentSched()
		if err != nil {
			return err
		}
		if policy != PolicyFIFO || priority != DefaultPriority {
			t.Errorf("worker runs %v/%d, want SCHED_FIFO/%d", policy, priority, DefaultPriority)
		}
		return nil
	})
	if err != nil {
		skipIfUnprivileged(t, err)
		t.Fatalf("Start() error = %v", err)
	}
	if err := th.Wait(); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
}

func skipIfUnprivileged(t *testing.T, err error) {
	t.Helper()
	for _, errno := range []syscall.Errno{syscall.EPERM, syscall.ENOMEM, syscall.EAGAIN} {
		if stderrors.Is(err, errno) {
			t.Skipf("real-time setup not permitted here: %v", err)
		}
	}
}
