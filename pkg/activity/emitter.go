package activity

import (
	"context"
	"strings"

	"github.com/samber/lo"
)

// DefaultChannel marks worksheet events whose surface did not name itself.
const DefaultChannel = "booster"

// Config describes who is editing the worksheet and from where.
type Config struct {
	Enabled bool
	// Channel names the editing surface, such as "cli" or "watch".
	Channel string
	// ActorID identifies the worksheet owner.
	ActorID string
}

// Emitter stamps store mutations with the editing surface and owner before
// handing them to hooks.
type Emitter struct {
	hooks    Hooks
	enabled  bool
	defaults Event
}

func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	hooks = lo.Filter(hooks, func(hook ActivityHook, _ int) bool { return hook != nil })
	channel, _ := lo.Coalesce(strings.TrimSpace(cfg.Channel), DefaultChannel)
	return &Emitter{
		hooks:   hooks,
		enabled: cfg.Enabled && len(hooks) > 0,
		defaults: Event{
			Channel: channel,
			ActorID: strings.TrimSpace(cfg.ActorID),
		},
	}
}

// Enabled reports whether a mutation would reach any hook.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled
}

// Emit delivers event. The channel and actor fall back to the emitter's own
// when the store left them blank.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	return e.hooks.Notify(ctx, e.stamp(event))
}

func (e *Emitter) stamp(event Event) Event {
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.defaults.Channel
	}
	if strings.TrimSpace(event.ActorID) == "" {
		event.ActorID = e.defaults.ActorID
	}
	return event
}
