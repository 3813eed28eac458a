// Package rtsched configures and starts the real-time worker thread: memory
// locking, scheduling policy and priority, stack reservation and the
// scheduling inheritance mode.
package rtsched

import (
	"fmt"
	"strings"
)

// Policy is a thread scheduling class.
type Policy int

const (
	PolicyOther Policy = iota
	PolicyFIFO
	PolicyRoundRobin
)

// Static priority bounds of the Linux real-time classes, see sched(7).
const (
	MinRealtimePriority = 1
	MaxRealtimePriority = 99
)

// ParsePolicy accepts fifo, rr and other, with or without the SCHED_ prefix.
func ParsePolicy(s string) (Policy, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "sched_") {
	case "fifo":
		return PolicyFIFO, nil
	case "rr", "round_robin", "roundrobin":
		return PolicyRoundRobin, nil
	case "other", "normal":
		return PolicyOther, nil
	default:
		return PolicyOther, fmt.Errorf("unknown scheduling policy %q", s)
	}
}

func (p Policy) String() string {
	switch p {
	case PolicyFIFO:
		return "SCHED_FIFO"
	case PolicyRoundRobin:
		return "SCHED_RR"
	case PolicyOther:
		return "SCHED_OTHER"
	default:
		return "Unknown..."
	}
}

// Realtime reports whether p is a fixed-priority real-time class.
func (p Policy) Realtime() bool {
	return p == PolicyFIFO || p == PolicyRoundRobin
}

// PriorityRange returns the valid static priorities for p.
func (p Policy) PriorityRange() (min, max int) {
	if p.Realtime() {
		return MinRealtimePriority, MaxRealtimePriority
	}
	return 0, 0
}

// InheritMode selects where the new thread takes its scheduling attributes from.
type InheritMode int

const (
	// InheritExplicit applies the configured policy and priority.
	InheritExplicit InheritMode = iota
	// InheritInherited keeps the scheduling of the creating thread.
	InheritInherited
)

// ParseInheritMode accepts explicit and inherit(ed).
func ParseInheritMode(s string) (InheritMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "explicit":
		return InheritExplicit, nil
	case "inherit", "inherited":
		return InheritInherited, nil
	default:
		return InheritExplicit, fmt.Errorf("unknown inherit mode %q", s)
	}
}

func (m InheritMode) String() string {
	if m == InheritInherited {
		return "inherited"
	}
	return "explicit"
}

// Capabilities lists the scheduling classes the host offers.
type Capabilities struct {
	Policies []Policy
}

// Supports reports whether p is available.
func (c Capabilities) Supports(p Policy) bool {
	for _, have := range c.Policies {
		if have == p {
			return true
		}
	}
	return false
}

// ResolvePolicy picks the policy to configure: the requested one when the
// host supports it, otherwise the first supported fallback in the order
// FIFO, round-robin, other.
func ResolvePolicy(requested Policy, caps Capabilities) (Policy, bool) {
	if caps.Supports(requested) {
		return requested, false
	}
	for _, p := range []Policy{PolicyFIFO, PolicyRoundRobin, PolicyOther} {
		if caps.Supports(p) {
			return p, true
		}
	}
	return PolicyOther, true
}
