// Package debounce provides rate control for function calls: debouncing, which
// delays invoking a function until calls to it have stopped for a given wait
// duration, and throttling, which invokes it at most once per wait duration.
//
// Debouncing can be useful in scenarios where function calls may be triggered
// rapidly, such as in response to user input or file system events, but the
// underlying operation is expensive and only needs to be performed once per
// batch of calls.
//
// The Debouncer type implements both, with leading and trailing edges, a max
// wait bound, flushing, cancellation and cached results. New, NewMutable and
// Throttle wrap it for plain func() callbacks.
package debounce

import (
	"time"
)

// New returns a debounced function that delays invoking f until after wait time
// has elapsed since the last time the debounced function was called.
//
// The returned cancel function can be used to cancel any pending invocation of
// f, but is not required to be called, so can be ignored if not needed.
//
// Both debounced and cancel functions are safe for concurrent use in
// goroutines, and can both be called multiple times.
//
// Trailing invocations of f run on a timer goroutine. New panics if the given
// options are invalid, such as a negative wait or max wait.
func New(
	wait time.Duration,
	f func(),
	opts ...Option,
) (debounced func(), cancel func()) {
	d, err := NewDebouncer(wait, wrapFunc(f), opts...)
	if err != nil {
		panic(err)
	}

	return func() { _, _ = d.Invoke(struct{}{}) }, d.Cancel
}

func wrapFunc(f func()) func(struct{}) (struct{}, error) {
	if f == nil {
		return nil
	}

	return func(struct{}) (struct{}, error) {
		f()

		return struct{}{}, nil
	}
}
