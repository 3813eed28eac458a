package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & Common errors
// 20000-20999: Real-time setup errors
// 21000-21999: Worker lifecycle errors

const (
	// ========== System & Common Errors (10000-10999) ==========

	// Success
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	InternalError       ErrorCode = 10001
	InvalidParams       ErrorCode = 10002
	UnsupportedPlatform ErrorCode = 10003

	// Configuration errors (10100-10199)
	ConfigLoadFailed  ErrorCode = 10100
	ConfigParseFailed ErrorCode = 10101

	// ========== Real-time Setup Errors (20000-20999) ==========

	// Memory (20000-20099)
	MemoryLockFailed ErrorCode = 20000

	// Thread attributes (20100-20199)
	AttrInitFailed      ErrorCode = 20100
	StackSizeFailed     ErrorCode = 20101
	SchedPolicyFailed   ErrorCode = 20102
	SchedPriorityFailed ErrorCode = 20103
	InheritSchedFailed  ErrorCode = 20104

	// Thread creation (20200-20299)
	ThreadCreateFailed ErrorCode = 20200

	// ========== Worker Lifecycle Errors (21000-21999) ==========

	ThreadJoinFailed ErrorCode = 21000
)

// errorMessages maps error codes to their default English messages
var errorMessages = map[ErrorCode]string{
	// System & Common
	Success:             "Success",
	InternalError:       "Internal error",
	InvalidParams:       "Invalid parameters",
	UnsupportedPlatform: "Real-time scheduling is not supported on this platform",

	// Configuration
	ConfigLoadFailed:  "Failed to read config file",
	ConfigParseFailed: "Failed to parse config file",

	// Memory
	MemoryLockFailed: "mlockall failed",

	// Thread attributes
	AttrInitFailed:      "init thread attributes failed",
	StackSizeFailed:     "thread setstacksize failed",
	SchedPolicyFailed:   "thread setschedpolicy failed",
	SchedPriorityFailed: "thread setschedparam failed",
	InheritSchedFailed:  "thread setinheritsched failed",

	// Thread creation
	ThreadCreateFailed: "create thread failed",

	// Worker lifecycle
	ThreadJoinFailed: "join thread failed",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// IsSetup reports whether the code belongs to the thread setup range,
// where the process exit status mirrors the underlying errno.
func (c ErrorCode) IsSetup() bool {
	return c >= 20100 && c < 21000
}

// ExitStatus returns the default process exit status for the error code
func (c ErrorCode) ExitStatus() int {
	switch {
	case c == Success:
		return 0
	case c == MemoryLockFailed:
		// exit(-2) as seen by the parent shell
		return 254
	default:
		return 1
	}
}
