package rtsched

import (
	"context"

	"rttester/pkg/errors"
	"rttester/pkg/utils/logger"

	"go.uber.org/zap"
)

// Configurator performs the one-time real-time setup of the process and
// starts the worker thread.
type Configurator struct {
	ops sysOps
}

// NewConfigurator returns a configurator for the host platform.
func NewConfigurator() *Configurator {
	return &Configurator{ops: defaultOps()}
}

// Capabilities reports the scheduling classes available on the host.
func (c *Configurator) Capabilities() Capabilities {
	return c.ops.capabilities()
}

// LockMemory locks all current and future pages of the process. The lock
// is process wide and held until exit.
func (c *Configurator) LockMemory(ctx context.Context) error {
	if err := c.ops.lockMemory(); err != nil {
		return stepError(errors.MemoryLockFailed, err)
	}
	logger.Debug(ctx, "process memory locked")
	return nil
}

// Configure runs the setup steps in order: lock memory, init attributes,
// stack size, policy, priority, inheritance. The first failure aborts and
// nothing is rolled back; callers are expected to exit.
func (c *Configurator) Configure(ctx context.Context, spec Spec) (*Attr, error) {
	if err := c.LockMemory(ctx); err != nil {
		return nil, err
	}

	basePolicy, basePriority, err := c.ops.currentSched()
	if err != nil {
		return nil, stepError(errors.AttrInitFailed, err)
	}
	attr := NewAttr(basePolicy, basePriority)

	if err := attr.SetStackSize(spec.StackSize); err != nil {
		return nil, err
	}

	policy, fellBack := ResolvePolicy(spec.Policy, c.ops.capabilities())
	priority := spec.Priority
	if fellBack {
		logger.Warn(ctx, "scheduling policy unavailable, falling back",
			zap.Stringer("requested", spec.Policy),
			zap.Stringer("policy", policy),
		)
		if !policy.Realtime() {
			priority = 0
		}
	}
	if err := attr.SetPolicy(policy); err != nil {
		return nil, err
	}
	if err := attr.SetPriority(priority); err != nil {
		return nil, err
	}
	if err := attr.SetInherit(spec.Inherit); err != nil {
		return nil, err
	}

	logger.Debug(ctx, "thread attributes configured",
		zap.Stringer("policy", policy),
		zap.Int("priority", priority),
		zap.Int("stack_size", spec.StackSize),
		zap.Stringer("inherit", spec.Inherit),
	)
	return attr, nil
}

func stepError(code errors.ErrorCode, err error) *errors.Error {
	return errors.Wrapf(err, code, "%s", code.Message())
}
