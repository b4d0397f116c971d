package debounce

import (
	"time"

	"k8s.io/utils/clock"
)

// Option is a function that can be used to configure a Debouncer.
type Option func(*config)

type config struct {
	leading    bool
	trailing   bool
	maxWait    time.Duration
	hasMaxWait bool
	clock      clock.WithDelayedExecution
	onError    func(error)
	metrics    *Metrics
	name       string
}

func defaultConfig() *config {
	return &config{
		trailing: true,
		clock:    clock.RealClock{},
	}
}

func (c *config) apply(opts []Option) {
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
}

// WithLeading controls whether the first call of a burst invokes the function
// immediately. Leading is disabled by default.
//
// When only leading is used, a burst of calls immediately invokes the function,
// any subsequent calls will be ignored until the wait duration has passed.
func WithLeading(enabled bool) Option {
	return func(c *config) {
		c.leading = enabled
	}
}

// WithTrailing controls whether the function is invoked once a burst of calls
// has gone quiet for the wait duration. Trailing is enabled by default.
//
// If both leading and trailing are enabled, a burst of calls immediately
// invokes the function, followed by another invocation after the wait duration
// has passed since the last call. If only a single call is made, only one
// invocation will occur.
//
// With both leading and trailing disabled the function is never invoked.
func WithTrailing(enabled bool) Option {
	return func(c *config) {
		c.trailing = enabled
	}
}

// WithMaxWait bounds how long a continuously renewed burst can delay an
// invocation. The function is invoked at least once every maxWait, even if it
// is called non-stop more often than the wait duration.
//
// For example, if the wait duration is 100ms and the max wait duration is
// 500ms, the function will be invoked every 500ms, even if the debouncer is
// called every 10ms.
//
// maxWait must not be negative nor smaller than the wait duration.
func WithMaxWait(maxWait time.Duration) Option {
	return func(c *config) {
		c.maxWait = maxWait
		c.hasMaxWait = true
	}
}

// WithClock replaces the clock used to read the current time and to schedule
// timers. Defaults to clock.RealClock.
func WithClock(clk clock.WithDelayedExecution) Option {
	return func(c *config) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// WithErrorHandler sets the function receiving errors returned by trailing
// invocations, which run on a timer and have no caller to return to. Panics
// raised by the function on that path are delivered as a *PanicError.
//
// Without a handler, such errors are written to the standard logger.
func WithErrorHandler(fn func(error)) Option {
	return func(c *config) {
		c.onError = fn
	}
}

// WithMetrics records calls, invocations, errors and cancellations into m.
func WithMetrics(m *Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithName sets the name used in log messages and as the "name" metric label.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}
