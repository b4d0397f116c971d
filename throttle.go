package debounce

import (
	"time"
)

// NewThrottler creates a Debouncer that invokes fn at most once per wait, even
// under continuous calls. It is a Debouncer whose max wait equals wait, with
// both leading and trailing edges enabled unless opts disable them.
//
// WithMaxWait passed in opts is ignored.
func NewThrottler[A, R any](
	wait time.Duration,
	fn func(A) (R, error),
	opts ...Option,
) (*Debouncer[A, R], error) {
	c := defaultConfig()
	c.leading = true
	c.apply(opts)
	c.maxWait, c.hasMaxWait = wait, true

	return newDebouncer(wait, fn, c)
}

// Throttle returns a throttled function that invokes f at most once per wait.
// The first call invokes f immediately, and the last call of a sustained burst
// invokes it once more after wait has passed.
//
// Throttle panics if wait is negative.
func Throttle(
	wait time.Duration,
	f func(),
	opts ...Option,
) (throttled func(), cancel func()) {
	d, err := NewThrottler(wait, wrapFunc(f), opts...)
	if err != nil {
		panic(err)
	}

	return func() { _, _ = d.Invoke(struct{}{}) }, d.Cancel
}
