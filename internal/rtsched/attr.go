package rtsched

import (
	"rttester/pkg/errors"
)

// MinStackSize is the smallest worker stack accepted, the PTHREAD_STACK_MIN
// of glibc on 64-bit Linux.
const MinStackSize = 16 * 1024

// DefaultPriority is the static priority given to the worker.
const DefaultPriority = 80

// Spec describes the scheduling setup of the worker thread. It is applied
// once, before the worker starts, and cannot change afterwards.
type Spec struct {
	Policy    Policy
	Priority  int
	StackSize int
	Inherit   InheritMode
}

// DefaultSpec returns FIFO at priority 80 with the minimum stack and
// explicit scheduling.
func DefaultSpec() Spec {
	return Spec{
		Policy:    PolicyFIFO,
		Priority:  DefaultPriority,
		StackSize: MinStackSize,
		Inherit:   InheritExplicit,
	}
}

// Attr is the attribute set a worker thread is created with. The zero
// value is not usable; obtain one from Configurator.Configure or NewAttr.
type Attr struct {
	spec Spec

	// scheduling of the thread that initialized the attributes
	basePolicy   Policy
	basePriority int
}

// NewAttr returns attributes initialized to the defaults of a plain thread:
// the given base scheduling, minimum stack, inherited scheduling.
func NewAttr(basePolicy Policy, basePriority int) *Attr {
	return &Attr{
		spec: Spec{
			Policy:    basePolicy,
			Priority:  basePriority,
			StackSize: MinStackSize,
			Inherit:   InheritInherited,
		},
		basePolicy:   basePolicy,
		basePriority: basePriority,
	}
}

// Spec returns the configured values.
func (a *Attr) Spec() Spec {
	return a.spec
}

// Effective returns the policy and priority the worker is expected to run
// with. In inherited mode this is the scheduling seen by Configure; the
// worker reports the one of its own thread once started.
func (a *Attr) Effective() (Policy, int) {
	if a.spec.Inherit == InheritInherited {
		return a.basePolicy, a.basePriority
	}
	return a.spec.Policy, a.spec.Priority
}

// SetStackSize sets the worker stack reservation in bytes.
func (a *Attr) SetStackSize(size int) error {
	if size < MinStackSize {
		return errors.Invalid(errors.StackSizeFailed, "stack size %d below minimum %d", size, MinStackSize)
	}
	a.spec.StackSize = size
	return nil
}

// SetPolicy sets the scheduling class.
func (a *Attr) SetPolicy(p Policy) error {
	switch p {
	case PolicyFIFO, PolicyRoundRobin, PolicyOther:
		a.spec.Policy = p
		return nil
	default:
		return errors.Invalid(errors.SchedPolicyFailed, "unknown scheduling policy %d", int(p))
	}
}

// SetPriority sets the static priority; it must lie in the range of the
// policy set before.
func (a *Attr) SetPriority(priority int) error {
	lo, hi := a.spec.Policy.PriorityRange()
	if priority < lo || priority > hi {
		return errors.Invalid(errors.SchedPriorityFailed, "priority %d outside [%d, %d] for %s", priority, lo, hi, a.spec.Policy)
	}
	a.spec.Priority = priority
	return nil
}

// SetInherit sets the scheduling inheritance mode.
func (a *Attr) SetInherit(mode InheritMode) error {
	switch mode {
	case InheritExplicit, InheritInherited:
		a.spec.Inherit = mode
		return nil
	default:
		return errors.Invalid(errors.InheritSchedFailed, "unknown inherit mode %d", int(mode))
	}
}
