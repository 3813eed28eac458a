package rtsched

import (
	"context"
	stderrors "errors"
	"sync"
	"syscall"
	"testing"

	"rttester/pkg/errors"
	"rttester/pkg/utils/contextkey"
)

type fakeOps struct {
	mu           sync.Mutex
	caps         Capabilities
	basePolicy   Policy
	basePriority int
	lockErr      error
	schedErr     error
	applyErr     error
	calls        []string
	applied      []Spec
}

func newFakeOps() *fakeOps {
	return &fakeOps{caps: Capabilities{Policies: []Policy{PolicyFIFO, PolicyRoundRobin, PolicyOther}}}
}

func (f *fakeOps) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeOps) capabilities() Capabilities { return f.caps }

func (f *fakeOps) lockMemory() error {
	f.record("lock")
	return f.lockErr
}

func (f *fakeOps) currentSched() (Policy, int, error) {
	f.record("getsched")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.basePolicy, f.basePriority, f.schedErr
}

func (f *fakeOps) applySched(policy Policy, priority int) error {
	f.record("setsched")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, Spec{Policy: policy, Priority: priority})
	return f.applyErr
}

func (f *fakeOps) threadID() int { return 4242 }

func TestConfigureOrderAndValues(t *testing.T) {
	ops := newFakeOps()
	c := &Configurator{ops: ops}

	attr, err := c.Configure(context.Background(), DefaultSpec())
	if err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	if got := attr.Spec(); got != DefaultSpec() {
		t.Errorf("Spec() = %+v, want %+v", got, DefaultSpec())
	}
	want := []string{"lock", "getsched"}
	if len(ops.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", ops.calls, want)
	}
	for i := range want {
		if ops.calls[i] != want[i] {
			t.Errorf("call %d = %s, want %s", i, ops.calls[i], want[i])
		}
	}
}

func TestConfigureFailures(t *testing.T) {
	tests := []struct {
		name      string
		spec      Spec
		setup     func(*fakeOps)
		wantCode  errors.ErrorCode
		wantErrno syscall.Errno
		wantExit  int
	}{
		{
			name:      "memory_lock_denied",
			spec:      DefaultSpec(),
			setup:     func(f *fakeOps) { f.lockErr = syscall.EPERM },
			wantCode:  errors.MemoryLockFailed,
			wantErrno: syscall.EPERM,
			wantExit:  254,
		},
		{
			name:      "memory_lock_out_of_memory",
			spec:      DefaultSpec(),
			setup:     func(f *fakeOps) { f.lockErr = syscall.ENOMEM },
			wantCode:  errors.MemoryLockFailed,
			wantErrno: syscall.ENOMEM,
			wantExit:  254,
		},
		{
			name:      "attr_init",
			spec:      DefaultSpec(),
			setup:     func(f *fakeOps) { f.schedErr = syscall.ENOMEM },
			wantCode:  errors.AttrInitFailed,
			wantErrno: syscall.ENOMEM,
			wantExit:  int(syscall.ENOMEM),
		},
		{
			name:      "stack_too_small",
			spec:      Spec{Policy: PolicyFIFO, Priority: 80, StackSize: 1024},
			wantCode:  errors.StackSizeFailed,
			wantErrno: syscall.EINVAL,
			wantExit:  int(syscall.EINVAL),
		},
		{
			name:      "unknown_policy",
			spec:      Spec{Policy: Policy(9), Priority: 80, StackSize: MinStackSize},
			setup:     func(f *fakeOps) { f.caps.Policies = append(f.caps.Policies, Policy(9)) },
			wantCode:  errors.SchedPolicyFailed,
			wantErrno: syscall.EINVAL,
			wantExit:  int(syscall.EINVAL),
		},
		{
			name:      "priority_out_of_range",
			spec:      Spec{Policy: PolicyFIFO, Priority: 100, StackSize: MinStackSize},
			wantCode:  errors.SchedPriorityFailed,
			wantErrno: syscall.EINVAL,
			wantExit:  int(syscall.EINVAL),
		},
		{
			name:      "other_with_priority",
			spec:      Spec{Policy: PolicyOther, Priority: 80, StackSize: MinStackSize},
			wantCode:  errors.SchedPriorityFailed,
			wantErrno: syscall.EINVAL,
			wantExit:  int(syscall.EINVAL),
		},
		{
			name:      "bad_inherit",
			spec:      Spec{Policy: PolicyFIFO, Priority: 80, StackSize: MinStackSize, Inherit: InheritMode(7)},
			wantCode:  errors.InheritSchedFailed,
			wantErrno: syscall.EINVAL,
			wantExit:  int(syscall.EINVAL),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops := newFakeOps()
			if tt.setup != nil {
				tt.setup(ops)
			}
			c := &Configurator{ops: ops}

			attr, err := c.Configure(context.Background(), tt.spec)
			if err == nil {
				t.Fatalf("Configure() = %+v, want error", attr.Spec())
			}
			if got := errors.GetCode(err); got != tt.wantCode {
				t.Errorf("GetCode() = %v, want %v (%v)", got, tt.wantCode, err)
			}
			if !stderrors.Is(err, tt.wantErrno) {
				t.Errorf("error %v does not wrap %v", err, tt.wantErrno)
			}
			if got := errors.ExitCode(err); got != tt.wantExit {
				t.Errorf("ExitCode() = %d, want %d", got, tt.wantExit)
			}
		})
	}
}

func TestConfigureStopsAtMemoryLock(t *testing.T) {
	ops := newFakeOps()
	ops.lockErr = syscall.EPERM
	c := &Configurator{ops: ops}

	if _, err := c.Configure(context.Background(), DefaultSpec()); err == nil {
		t.Fatal("Configure() error = nil, want error")
	}
	if len(ops.calls) != 1 {
		t.Errorf("calls = %v, want only the memory lock", ops.calls)
	}
}

func TestConfigureFallsBackWithoutRealtimeClasses(t *testing.T) {
	ops := newFakeOps()
	ops.caps = Capabilities{Policies: []Policy{PolicyOther}}
	c := &Configurator{ops: ops}

	attr, err := c.Configure(context.Background(), DefaultSpec())
	if err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	spec := attr.Spec()
	if spec.Policy != PolicyOther || spec.Priority != 0 {
		t.Errorf("Spec() = %+v, want SCHED_OTHER priority 0", spec)
	}
}

func TestStartAppliesExplicitScheduling(t *testing.T) {
	ops := newFakeOps()
	c := &Configurator{ops: ops}
	attr, err := c.Configure(context.Background(), DefaultSpec())
	if err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	var gotTID interface{}
	th, err := c.Start(context.Background(), attr, func(ctx context.Context) error {
		gotTID = ctx.Value(contextkey.ThreadID)
		return nil
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	<-th.Done()
	if err := th.Wait(); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
	if th.TID() != 4242 || gotTID != 4242 {
		t.Errorf("TID() = %d, ctx tid = %v, want 4242", th.TID(), gotTID)
	}
	if th.Policy() != PolicyFIFO || th.Priority() != DefaultPriority {
		t.Errorf("thread runs %v/%d, want SCHED_FIFO/%d", th.Policy(), th.Priority(), DefaultPriority)
	}
	if len(ops.applied) != 1 || ops.applied[0].Policy != PolicyFIFO || ops.applied[0].Priority != DefaultPriority {
		t.Errorf("applied = %+v, want one SCHED_FIFO/80", ops.applied)
	}
}

func TestStartInheritedSkipsScheduling(t *testing.T) {
	ops := newFakeOps()
	c := &Configurator{ops: ops}
	spec := DefaultSpec()
	spec.Inherit = InheritInherited
	attr, err := c.Configure(context.Background(), spec)
	if err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	th, err := c.Start(context.Background(), attr, func(context.Context) error { return nil })
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	_ = th.Wait()
	if len(ops.applied) != 0 {
		t.Errorf("applied = %+v, want none", ops.applied)
	}
	if th.Policy() != PolicyOther {
		t.Errorf("Policy() = %v, want inherited SCHED_OTHER", th.Policy())
	}
}

func TestStartPermissionDenied(t *testing.T) {
	ops := newFakeOps()
	ops.applyErr = syscall.EPERM
	c := &Configurator{ops: ops}
	attr, err := c.Configure(context.Background(), DefaultSpec())
	if err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	ran := false
	th, err := c.Start(context.Background(), attr, func(context.Context) error {
		ran = true
		return nil
	})
	if err == nil {
		_ = th.Wait()
		t.Fatal("Start() error = nil, want EPERM")
	}
	if ran {
		t.Error("worker function ran despite failed scheduling setup")
	}
	if !errors.Is(err, errors.ThreadCreateFailed) {
		t.Errorf("error code = %v, want ThreadCreateFailed", errors.GetCode(err))
	}
	if got := errors.ExitCode(err); got != int(syscall.EPERM) {
		t.Errorf("ExitCode() = %d, want %d", got, int(syscall.EPERM))
	}
}

func TestWaitReportsWorkerPanic(t *testing.T) {
	c := &Configurator{ops: newFakeOps()}
	attr, err := c.Configure(context.Background(), DefaultSpec())
	if err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	th, err := c.Start(context.Background(), attr, func(context.Context) error {
		panic("boom")
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := th.Wait(); !errors.Is(err, errors.ThreadJoinFailed) {
		t.Errorf("Wait() error = %v, want ThreadJoinFailed", err)
	}
}

func TestStartRejectsMissingArguments(t *testing.T) {
	c := &Configurator{ops: newFakeOps()}
	if _, err := c.Start(context.Background(), nil, func(context.Context) error { return nil }); !errors.Is(err, errors.InvalidParams) {
		t.Errorf("Start(nil attr) error = %v, want InvalidParams", err)
	}
	if _, err := c.Start(context.Background(), NewAttr(PolicyOther, 0), nil); !errors.Is(err, errors.InvalidParams) {
		t.Errorf("Start(nil fn) error = %v, want InvalidParams", err)
	}
}

func TestCapabilitiesComeFromHost(t *testing.T) {
	ops := newFakeOps()
	ops.caps = Capabilities{Policies: []Policy{PolicyOther}}
	c := &Configurator{ops: ops}

	caps := c.Capabilities()
	if caps.Supports(PolicyFIFO) || !caps.Supports(PolicyOther) {
		t.Errorf("Capabilities() = %+v, want only SCHED_OTHER", caps)
	}
}

func TestStartInheritedReadsWorkerScheduling(t *testing.T) {
	ops := newFakeOps()
	c := &Configurator{ops: ops}
	spec := DefaultSpec()
	spec.Inherit = InheritInherited
	attr, err := c.Configure(context.Background(), spec)
	if err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	if p, prio := attr.Effective(); p != PolicyOther || prio != 0 {
		t.Fatalf("Effective() = %v/%d, want SCHED_OTHER/0", p, prio)
	}

	// The worker lands on a thread scheduled differently from the caller.
	ops.mu.Lock()
	ops.basePolicy, ops.basePriority = PolicyRoundRobin, 5
	ops.mu.Unlock()

	th, err := c.Start(context.Background(), attr, func(context.Context) error { return nil })
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	_ = th.Wait()
	if th.Policy() != PolicyRoundRobin || th.Priority() != 5 {
		t.Errorf("thread runs %v/%d, want SCHED_RR/5", th.Policy(), th.Priority())
	}
}

func TestStartInheritedSchedReadFailure(t *testing.T) {
	ops := newFakeOps()
	c := &Configurator{ops: ops}
	spec := DefaultSpec()
	spec.Inherit = InheritInherited
	attr, err := c.Configure(context.Background(), spec)
	if err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	ops.mu.Lock()
	ops.schedErr = syscall.ESRCH
	ops.mu.Unlock()

	th, err := c.Start(context.Background(), attr, func(context.Context) error { return nil })
	if err == nil {
		_ = th.Wait()
		t.Fatal("Start() error = nil, want ESRCH")
	}
	if !errors.Is(err, errors.ThreadCreateFailed) || !stderrors.Is(err, syscall.ESRCH) {
		t.Errorf("Start() error = %v, want ThreadCreateFailed wrapping ESRCH", err)
	}
}
