package clock

// Source reads the monotonic clock and blocks until absolute deadlines.
type Source interface {
	// Now returns the current monotonic time.
	Now() Timespec
	// SleepUntil blocks until the clock reaches deadline. It returns
	// immediately when the deadline already passed.
	SleepUntil(deadline Timespec) error
}

// Option configures the system source.
type Option func(*options)

type options struct {
	strict bool
}

// WithStrictWait makes SleepUntil re-issue the wait after an early wake
// until the deadline has actually been reached. Off by default: a signal
// interrupting the wait ends it early and is returned to the caller.
func WithStrictWait(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// System returns the platform monotonic source.
func System(opts ...Option) Source {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return newSystemSource(o)
}
