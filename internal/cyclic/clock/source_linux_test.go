//go:build linux

package clock_test

import (
	"runtime"
	"testing"
	"time"

	"rttester/internal/cyclic/clock"

	"golang.org/x/sys/unix"
)

// interruptedWait runs a 50ms absolute wait on a locked thread and sends it
// SIGURG 5ms in. It returns how late the wait returned relative to the
// deadline and the wait result.
func interruptedWait(t *testing.T, src clock.Source) (int64, error) {
	t.Helper()
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	tid := unix.Gettid()
	pid := unix.Getpid()
	deadline := src.Now().AddNanos(int64(50 * time.Millisecond))

	timer := time.AfterFunc(5*time.Millisecond, func() {
		_ = unix.Tgkill(pid, tid, unix.SIGURG)
	})
	defer timer.Stop()

	err := src.SleepUntil(deadline)
	return clock.Diff(src.Now(), deadline), err
}

func TestSleepUntilReturnsEarlyWakeByDefault(t *testing.T) {
	late, err := interruptedWait(t, clock.System())
	if err != unix.EINTR {
		t.Fatalf("SleepUntil() error = %v, want EINTR", err)
	}
	if late >= 0 {
		t.Errorf("returned %dns after the deadline, want before it", late)
	}
}

func TestStrictSleepUntilReachesDeadline(t *testing.T) {
	late, err := interruptedWait(t, clock.System(clock.WithStrictWait(true)))
	if err != nil {
		t.Fatalf("SleepUntil() error = %v, want nil", err)
	}
	if late < 0 {
		t.Errorf("returned %dns before the deadline, want at or after it", -late)
	}
}
