//go:build linux

package rtsched

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Policy numbers from <linux/sched.h>.
const (
	schedNormal = 0
	schedFIFO   = 1
	schedRR     = 2
)

type linuxOps struct{}

func defaultOps() sysOps {
	return linuxOps{}
}

func (linuxOps) capabilities() Capabilities {
	return Capabilities{Policies: []Policy{PolicyFIFO, PolicyRoundRobin, PolicyOther}}
}

func (linuxOps) lockMemory() error {
	return unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE)
}

func (linuxOps) currentSched() (Policy, int, error) {
	attr, err := unix.SchedGetAttr(0, 0)
	if err != nil {
		return PolicyOther, 0, err
	}
	switch attr.Policy {
	case schedFIFO:
		return PolicyFIFO, int(attr.Priority), nil
	case schedRR:
		return PolicyRoundRobin, int(attr.Priority), nil
	default:
		return PolicyOther, 0, nil
	}
}

func (linuxOps) applySched(policy Policy, priority int) error {
	// SchedSetAttr fills in Size.
	attr := unix.SchedAttr{Priority: uint32(priority)}
	switch policy {
	case PolicyFIFO:
		attr.Policy = schedFIFO
	case PolicyRoundRobin:
		attr.Policy = schedRR
	case PolicyOther:
		attr.Policy = schedNormal
	default:
		return fmt.Errorf("policy %d: %w", int(policy), unix.EINVAL)
	}
	return unix.SchedSetAttr(0, &attr, 0)
}

func (linuxOps) threadID() int {
	return unix.Gettid()
}
