package debounce

import (
	"log"
	"runtime/debug"
	"sync"
	"time"

	"k8s.io/utils/clock"
)

// Debouncer coalesces bursts of calls to a function into a bounded number of
// invocations. Each call to Invoke passes an argument of type A; the function
// is invoked with the most recent argument and returns an R, which is cached
// and handed back to calls that did not themselves cause an invocation.
//
// All methods are safe for concurrent use. Invocations run one at a time, in
// the order they were decided, but outside the lock guarding the call state,
// so calls arriving while the function runs are recorded without waiting for
// it. The function may call Invoke on the same Debouncer only if that call
// cannot itself invoke, and must not call Flush on it.
type Debouncer[A, R any] struct {
	// Configuration
	fn       func(A) (R, error)
	wait     time.Duration
	maxWait  time.Duration
	maxing   bool
	leading  bool
	trailing bool
	clock    clock.WithDelayedExecution
	onError  func(error)
	metrics  *Metrics
	name     string

	// State
	mux        sync.Mutex
	lastArg    A
	hasArg     bool
	lastCall   time.Time
	called     bool
	lastInvoke time.Time
	timer      clock.Timer
	gen        uint64
	tickets    uint64

	// Invocation order and the cached result
	runMux  sync.Mutex
	runCond *sync.Cond
	serving uint64
	result  Result[R]
}

// call is an invocation decided while holding mux, and run once it is
// released.
type call[A any] struct {
	arg    A
	edge   string
	ticket uint64
}

// NewDebouncer creates a Debouncer invoking fn according to wait and opts.
//
// By default only the trailing edge is enabled: fn is invoked once a burst of
// calls has gone quiet for wait. An error wrapping ErrInvalidConfig is returned
// if fn is nil, wait or maxWait is negative, or maxWait is smaller than wait.
func NewDebouncer[A, R any](
	wait time.Duration,
	fn func(A) (R, error),
	opts ...Option,
) (*Debouncer[A, R], error) {
	c := defaultConfig()
	c.apply(opts)

	return newDebouncer(wait, fn, c)
}

func newDebouncer[A, R any](
	wait time.Duration,
	fn func(A) (R, error),
	c *config,
) (*Debouncer[A, R], error) {
	switch {
	case fn == nil:
		return nil, invalidConfig("function is nil")
	case wait < 0:
		return nil, invalidConfig("negative wait %s", wait)
	case c.hasMaxWait && c.maxWait < 0:
		return nil, invalidConfig("negative max wait %s", c.maxWait)
	case c.hasMaxWait && c.maxWait < wait:
		return nil, invalidConfig(
			"max wait %s is less than wait %s", c.maxWait, wait,
		)
	}

	d := &Debouncer[A, R]{
		fn:       fn,
		wait:     wait,
		maxWait:  c.maxWait,
		maxing:   c.hasMaxWait,
		leading:  c.leading,
		trailing: c.trailing,
		clock:    c.clock,
		onError:  c.onError,
		metrics:  c.metrics,
		name:     c.name,
	}
	d.runCond = sync.NewCond(&d.runMux)

	return d, nil
}

// Invoke records a call with arg and decides whether to invoke the function
// now, schedule a trailing invocation, or do nothing.
//
// If this call invokes the function (leading edge, or the max wait bound was
// reached) its result and error are returned. Otherwise the result of the
// most recent invocation is returned with a nil error.
func (d *Debouncer[A, R]) Invoke(arg A) (Result[R], error) {
	return d.run(d.record(arg))
}

func (d *Debouncer[A, R]) record(arg A) *call[A] {
	d.mux.Lock()
	defer d.mux.Unlock()

	now := d.clock.Now()
	invoking := d.shouldInvoke(now)

	d.lastArg, d.hasArg = arg, true
	d.lastCall, d.called = now, true
	d.metrics.call(d.name)

	if invoking {
		if d.timer == nil {
			return d.leadingEdge(now)
		}

		if d.maxing {
			// Calls keep arriving inside the wait window; force progress.
			d.schedule(d.wait)

			return d.prepare(now, EdgeMaxWait)
		}
	}

	if d.timer == nil {
		d.schedule(d.remainingWait(now))
	}

	return nil
}

// Cancel discards any pending invocation and resets the Debouncer, so that the
// next call to Invoke starts a fresh burst. The cached result is kept.
func (d *Debouncer[A, R]) Cancel() {
	d.mux.Lock()
	defer d.mux.Unlock()

	if d.timer != nil {
		d.metrics.cancel(d.name)
	}

	d.stopTimer()
	d.clearArg()
	d.lastCall, d.called = time.Time{}, false
	d.lastInvoke = time.Time{}
}

// Flush immediately runs a pending trailing invocation, as if its timer had
// just expired, and returns the resulting result. If nothing is pending, the
// cached result is returned and nothing else happens.
func (d *Debouncer[A, R]) Flush() (Result[R], error) {
	d.mux.Lock()
	var c *call[A]
	if d.timer != nil {
		c = d.trailingEdge(d.clock.Now(), EdgeFlush)
	}
	d.mux.Unlock()

	return d.run(c)
}

// Pending reports whether a timer is outstanding.
func (d *Debouncer[A, R]) Pending() bool {
	d.mux.Lock()
	defer d.mux.Unlock()

	return d.timer != nil
}

// Result returns the result of the most recent successful invocation. It does
// not wait for an invocation in progress.
func (d *Debouncer[A, R]) Result() Result[R] {
	d.runMux.Lock()
	defer d.runMux.Unlock()

	return d.result
}

// shouldInvoke reports whether the current burst has settled at now. It should
// only be called while the mutex is already locked.
func (d *Debouncer[A, R]) shouldInvoke(now time.Time) bool {
	if !d.called {
		return true
	}

	sinceCall := now.Sub(d.lastCall)

	return sinceCall >= d.wait || sinceCall < 0 ||
		(d.maxing && now.Sub(d.lastInvoke) >= d.maxWait)
}

// remainingWait returns how long until the current burst could settle.
func (d *Debouncer[A, R]) remainingWait(now time.Time) time.Duration {
	remaining := d.wait - now.Sub(d.lastCall)

	if d.maxing {
		if r := d.maxWait - now.Sub(d.lastInvoke); r < remaining {
			remaining = r
		}
	}

	return remaining
}

func (d *Debouncer[A, R]) leadingEdge(now time.Time) *call[A] {
	d.lastInvoke = now
	d.schedule(d.wait)

	if d.leading {
		return d.prepare(now, EdgeLeading)
	}

	return nil
}

// trailingEdge clears the timer and returns the invocation owed for the burst,
// if any. It should only be called while the mutex is already locked.
func (d *Debouncer[A, R]) trailingEdge(now time.Time, edge string) *call[A] {
	d.stopTimer()

	if d.trailing && d.hasArg {
		return d.prepare(now, edge)
	}
	d.clearArg()

	return nil
}

// prepare takes the last argument and a ticket for an invocation. It should
// only be called while the mutex is already locked.
func (d *Debouncer[A, R]) prepare(now time.Time, edge string) *call[A] {
	c := &call[A]{arg: d.lastArg, edge: edge, ticket: d.tickets}
	d.tickets++
	d.clearArg()
	d.lastInvoke = now
	d.metrics.invoke(d.name, edge)

	return c
}

// run waits for the turn of c, then executes the function and caches its
// result. A nil c returns the cached result. The mutex must not be held.
func (d *Debouncer[A, R]) run(c *call[A]) (Result[R], error) {
	if c == nil {
		return d.Result(), nil
	}

	d.runMux.Lock()
	for d.serving != c.ticket {
		d.runCond.Wait()
	}
	d.runMux.Unlock()
	defer d.done()

	v, err := d.fn(c.arg)

	d.runMux.Lock()
	defer d.runMux.Unlock()

	if err != nil {
		d.metrics.fail(d.name, c.edge)

		return d.result, err
	}
	d.result = Result[R]{Value: v, Valid: true}

	return d.result, nil
}

// done passes the turn to the next invocation, also when the function panics.
func (d *Debouncer[A, R]) done() {
	d.runMux.Lock()
	d.serving++
	d.runMux.Unlock()
	d.runCond.Broadcast()
}

// expire is the timer callback. gen identifies the timer that fired; if it is
// no longer the current one, the Debouncer has been re-armed, flushed or
// cancelled since, and the expiry is ignored.
func (d *Debouncer[A, R]) expire(gen uint64) {
	if err := d.runTrailing(d.expireLocked(gen)); err != nil {
		d.report(err)
	}
}

func (d *Debouncer[A, R]) expireLocked(gen uint64) *call[A] {
	d.mux.Lock()
	defer d.mux.Unlock()

	if d.timer == nil || gen != d.gen {
		return nil
	}

	now := d.clock.Now()
	if !d.shouldInvoke(now) {
		d.schedule(d.remainingWait(now))

		return nil
	}

	return d.trailingEdge(now, EdgeTrailing)
}

func (d *Debouncer[A, R]) runTrailing(c *call[A]) (err error) {
	if c == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			d.metrics.fail(d.name, c.edge)
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()

	_, err = d.run(c)

	return err
}

func (d *Debouncer[A, R]) report(err error) {
	if d.onError != nil {
		d.onError(err)

		return
	}

	if d.name != "" {
		log.Printf("debounce: %s: trailing invocation failed: %v", d.name, err)
	} else {
		log.Printf("debounce: trailing invocation failed: %v", err)
	}
}

func (d *Debouncer[A, R]) clearArg() {
	var zero A
	d.lastArg, d.hasArg = zero, false
}
