// Package debounce coalesces bursts of calls into a single trailing
// invocation. A Debouncer owns its timer handle, so callers can flush the
// pending invocation synchronously or cancel it outright.
package debounce

import (
	"sync"
	"time"
)

// Timer is the handle returned by a Scheduler.
type Timer interface {
	Stop() bool
}

// Scheduler runs fn once after d on its own goroutine.
type Scheduler func(d time.Duration, fn func()) Timer

// Option configures a Debouncer.
type Option func(*config)

type config struct {
	schedule Scheduler
	observer func(Outcome)
}

// Outcome reports how a pending invocation ended.
type Outcome string

const (
	OutcomeFired     Outcome = "fired"
	OutcomeFlushed   Outcome = "flushed"
	OutcomeCancelled Outcome = "cancelled"
)

// WithScheduler replaces time.AfterFunc, mostly for deterministic tests.
func WithScheduler(schedule Scheduler) Option {
	return func(cfg *config) {
		if schedule != nil {
			cfg.schedule = schedule
		}
	}
}

// WithObserver registers a callback invoked whenever a pending invocation
// fires, is flushed, or is cancelled.
func WithObserver(observer func(Outcome)) Option {
	return func(cfg *config) {
		cfg.observer = observer
	}
}

func systemScheduler(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Debouncer delays fn until wait has elapsed without another Call, then runs
// it with the most recent argument. Invocations never overlap and always run
// in the order their arguments were captured.
type Debouncer[T any] struct {
	wait time.Duration
	fn   func(T)
	cfg  config

	// runMu is held while an argument is taken and fn runs, so a newer value
	// can never be overwritten by an older one.
	runMu sync.Mutex

	mu         sync.Mutex
	timer      Timer
	value      T
	pending    bool
	generation uint64
	stopped    bool
}

// New returns a Debouncer invoking fn after wait of call silence.
func New[T any](wait time.Duration, fn func(T), opts ...Option) *Debouncer[T] {
	cfg := config{schedule: systemScheduler}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if wait < 0 {
		wait = 0
	}
	return &Debouncer[T]{wait: wait, fn: fn, cfg: cfg}
}

// Func wraps fn so that only the last call of each burst runs. It is the
// plain-function form of New; use New directly when Flush or Cancel is needed.
func Func[T any](wait time.Duration, fn func(T)) func(T) {
	return New(wait, fn).Call
}

// Call records value and restarts the wait. Any earlier pending value is
// superseded. Calls after Stop are ignored.
func (d *Debouncer[T]) Call(value T) {
	if d == nil || d.fn == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.generation++
	gen := d.generation
	d.value = value
	d.pending = true
	d.timer = d.cfg.schedule(d.wait, func() { d.fire(gen) })
}

// Flush runs the pending invocation immediately on the calling goroutine and
// reports whether there was one.
func (d *Debouncer[T]) Flush() bool {
	if d == nil {
		return false
	}
	d.runMu.Lock()
	defer d.runMu.Unlock()

	value, ok := d.take(0, false)
	if !ok {
		return false
	}
	d.fn(value)
	d.observe(OutcomeFlushed)
	return true
}

// Cancel drops the pending invocation and reports whether there was one.
func (d *Debouncer[T]) Cancel() bool {
	if d == nil {
		return false
	}
	_, ok := d.take(0, false)
	if ok {
		d.observe(OutcomeCancelled)
	}
	return ok
}

// Exclusive drops the pending invocation, waits for a running one to
// finish and calls fn before any further invocation can start. It reports
// whether an invocation was dropped.
func (d *Debouncer[T]) Exclusive(fn func()) bool {
	if d == nil {
		if fn != nil {
			fn()
		}
		return false
	}
	d.runMu.Lock()
	defer d.runMu.Unlock()

	_, dropped := d.take(0, false)
	if dropped {
		d.observe(OutcomeCancelled)
	}
	if fn != nil {
		fn()
	}
	return dropped
}

// Stop cancels the pending invocation and ignores all future calls. Callers
// that must not lose the last value should Flush first.
func (d *Debouncer[T]) Stop() {
	if d == nil {
		return
	}
	d.Cancel()
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}

// Pending reports whether an invocation is scheduled.
func (d *Debouncer[T]) Pending() bool {
	if d == nil {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.runMu.Lock()
	defer d.runMu.Unlock()

	value, ok := d.take(gen, true)
	if !ok {
		return
	}
	d.fn(value)
	d.observe(OutcomeFired)
}

// take clears the pending slot. When matchGen is set the slot is only taken
// if it still belongs to generation gen, which discards superseded timers.
func (d *Debouncer[T]) take(gen uint64, matchGen bool) (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var zero T
	if !d.pending {
		return zero, false
	}
	if matchGen && gen != d.generation {
		return zero, false
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	value := d.value
	d.value = zero
	d.pending = false
	d.generation++
	return value, true
}

func (d *Debouncer[T]) observe(outcome Outcome) {
	if d.cfg.observer != nil {
		d.cfg.observer(outcome)
	}
}
