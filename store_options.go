package booster

import (
	"time"

	"github.com/goliatone/go-booster/pkg/activity"
	"github.com/goliatone/go-booster/pkg/debounce"
)

// DefaultDebounce is the write delay applied after the last mutation.
const DefaultDebounce = 500 * time.Millisecond

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithDebounce sets the write delay. Zero writes on the next scheduler tick.
func WithDebounce(wait time.Duration) StoreOption {
	return func(s *Store) {
		if wait >= 0 {
			s.wait = wait
		}
	}
}

// WithScheduler replaces the timer used for debounced writes.
func WithScheduler(schedule debounce.Scheduler) StoreOption {
	return func(s *Store) {
		s.schedule = schedule
	}
}

// WithIDGenerator overrides the product and lever id source.
func WithIDGenerator(newID func() string) StoreOption {
	return func(s *Store) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithLogger attaches a Logger for store events.
func WithLogger(logger Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithActivity forwards mutation events to emitter.
func WithActivity(emitter *activity.Emitter) StoreOption {
	return func(s *Store) {
		s.emitter = emitter
	}
}

// WithActivityHooks is shorthand for WithActivity(activity.NewEmitter(hooks, cfg))
// with emission enabled.
func WithActivityHooks(hooks activity.Hooks, cfg activity.Config) StoreOption {
	cfg.Enabled = true
	return WithActivity(activity.NewEmitter(hooks, cfg))
}

// WithStoreClock overrides the time source stamped on activity events.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}
