//go:build !linux

package rtsched

import (
	"os"

	"rttester/pkg/errors"
)

type unsupportedOps struct{}

func defaultOps() sysOps {
	return unsupportedOps{}
}

func (unsupportedOps) capabilities() Capabilities {
	return Capabilities{Policies: []Policy{PolicyOther}}
}

func (unsupportedOps) lockMemory() error {
	return errors.New(errors.UnsupportedPlatform)
}

func (unsupportedOps) currentSched() (Policy, int, error) {
	return PolicyOther, 0, nil
}

func (unsupportedOps) applySched(policy Policy, priority int) error {
	if policy == PolicyOther && priority == 0 {
		return nil
	}
	return errors.New(errors.UnsupportedPlatform)
}

func (unsupportedOps) threadID() int {
	return os.Getpid()
}
