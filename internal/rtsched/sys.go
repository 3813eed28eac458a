package rtsched

// sysOps is the operating system surface the configurator drives.
type sysOps interface {
	// capabilities reports the scheduling classes offered by the host.
	capabilities() Capabilities
	// lockMemory locks current and future pages of the process.
	lockMemory() error
	// currentSched returns the calling thread's policy and priority.
	currentSched() (Policy, int, error)
	// applySched sets policy and priority of the calling thread.
	applySched(policy Policy, priority int) error
	// threadID returns the kernel id of the calling thread.
	threadID() int
}
