package debounce

import (
	"time"
)

// NewMutable returns a debounced function like New, but it allows callback
// function f to be changed, as a new callback function is passed to each
// call of the debounced function.
//
// The returned cancel function can be used to cancel any pending invocation of
// f, but is not required to be called, so can be ignored if not needed.
//
// Only the very last f passed to the debounced function is called when the
// delay expires and the callback function is invoked. Previous f values are
// discarded. With WithLeading, the f passed to the call opening a burst is
// called immediately.
//
// Both debounced and cancel functions are safe for concurrent use in
// goroutines, and can both be called multiple times.
func NewMutable(
	wait time.Duration,
	opts ...Option,
) (debounced func(f func()), cancel func()) {
	d, err := NewDebouncer(wait, callFunc, opts...)
	if err != nil {
		panic(err)
	}

	return func(f func()) { _, _ = d.Invoke(f) }, d.Cancel
}

func callFunc(f func()) (struct{}, error) {
	if f != nil {
		f()
	}

	return struct{}{}, nil
}
