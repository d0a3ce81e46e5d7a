package booster

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-booster/internal/telemetry"
	"github.com/goliatone/go-booster/layering"
	"github.com/goliatone/go-booster/pkg/state"
)

// Persistence is what the Store needs from durable storage. Implementations
// never fail loudly; a lost write leaves the in-memory state authoritative.
type Persistence interface {
	Load(ctx context.Context) (BoosterState, bool)
	Save(ctx context.Context, s BoosterState)
	Clear(ctx context.Context)
}

// NewCodec returns the envelope codec for BoosterState. Legacy documents
// (bare v1 payloads) are upgraded by assigning ids from newID, fitting the
// lists to their allowed lengths, dropping unknown lever areas and clamping
// scores. Decoding starts from DefaultState and the result must pass
// BoosterState.Validate.
func NewCodec(newID func() string) *state.Codec[BoosterState] {
	if newID == nil {
		newID = uuid.NewString
	}
	return state.NewCodec(SchemaVersion,
		state.WithBase(DefaultState),
		state.WithMigration[BoosterState](1, migrateV1(newID)),
		state.WithValidator(func(s *BoosterState) error {
			return s.Validate()
		}),
	)
}

// NewBlobPersister wires backend behind the envelope codec.
func NewBlobPersister(backend state.Backend, opts ...PersisterOption) *Persister {
	return NewPersister(state.NewBlobStore(backend, NewCodec(nil)), opts...)
}

// PersisterOption configures a Persister.
type PersisterOption func(*Persister)

// WithStorageKey overrides StorageKey.
func WithStorageKey(key string) PersisterOption {
	return func(p *Persister) {
		if key != "" {
			p.key = key
		}
	}
}

// WithPersistenceLogger attaches a Logger.
func WithPersistenceLogger(logger Logger) PersisterOption {
	return func(p *Persister) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Persister keeps one snapshot under a fixed key. Errors are logged,
// counted and swallowed.
type Persister struct {
	store  state.Store[BoosterState]
	key    string
	logger Logger
	now    func() time.Time
}

func NewPersister(store state.Store[BoosterState], opts ...PersisterOption) *Persister {
	p := &Persister{
		store:  store,
		key:    StorageKey,
		logger: noopLogger{},
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Key reports the storage key.
func (p *Persister) Key() string {
	return p.key
}

// Load returns the stored snapshot, or false when none exists or it cannot
// be decoded.
func (p *Persister) Load(ctx context.Context) (BoosterState, bool) {
	start := p.now()
	snapshot, meta, ok, err := p.loadSnapshot(ctx)
	elapsed := p.now().Sub(start)

	result := telemetry.ResultOK
	switch {
	case err != nil:
		result = telemetry.ResultError
	case !ok:
		result = telemetry.ResultMissing
	}
	telemetry.ObservePersistence(telemetry.OpLoad, result, elapsed.Seconds())
	p.logger.LogPersistence(PersistenceEvent{
		Operation:  telemetry.OpLoad,
		Key:        p.key,
		SnapshotID: meta.SnapshotID,
		Found:      ok,
		Duration:   elapsed,
		Err:        err,
	})
	if err != nil || !ok {
		return BoosterState{}, false
	}
	return layering.Clone(snapshot), true
}

func (p *Persister) loadSnapshot(ctx context.Context) (BoosterState, state.Meta, bool, error) {
	if p.store == nil {
		return BoosterState{}, state.Meta{}, false, errors.New("booster: persister has no store")
	}
	return p.store.Load(ctx, p.key)
}

// Save overwrites the stored snapshot with s.
func (p *Persister) Save(ctx context.Context, s BoosterState) {
	start := p.now()
	var (
		meta state.Meta
		err  error
	)
	if p.store == nil {
		err = errors.New("booster: persister has no store")
	} else {
		meta, err = p.store.Save(ctx, p.key, layering.Clone(s), state.Meta{})
	}
	elapsed := p.now().Sub(start)

	result := telemetry.ResultOK
	if err != nil {
		result = telemetry.ResultError
	}
	telemetry.ObservePersistence(telemetry.OpSave, result, elapsed.Seconds())
	p.logger.LogPersistence(PersistenceEvent{
		Operation:  telemetry.OpSave,
		Key:        p.key,
		SnapshotID: meta.SnapshotID,
		Duration:   elapsed,
		Err:        err,
	})
}

// Clear removes the stored snapshot.
func (p *Persister) Clear(ctx context.Context) {
	start := p.now()
	var err error
	if p.store == nil {
		err = errors.New("booster: persister has no store")
	} else {
		err = p.store.Delete(ctx, p.key)
	}
	elapsed := p.now().Sub(start)

	result := telemetry.ResultOK
	if err != nil {
		result = telemetry.ResultError
	}
	telemetry.ObservePersistence(telemetry.OpClear, result, elapsed.Seconds())
	p.logger.LogPersistence(PersistenceEvent{
		Operation: telemetry.OpClear,
		Key:       p.key,
		Duration:  elapsed,
		Err:       err,
	})
}

func migrateV1(newID func() string) state.Migration {
	return func(payload map[string]any) (map[string]any, error) {
		if product, ok := payload["product"].(map[string]any); ok {
			if items, ok := listField(product, "products"); ok {
				product["products"] = fitList(items, MinProducts, MaxProducts, func(item map[string]any) {
					stampID(item, newID)
				})
			}
		}
		if economy, ok := payload["economy"].(map[string]any); ok {
			if levers, ok := listField(economy, "mainLevers"); ok {
				economy["mainLevers"] = fitList(levers, LeverCount, LeverCount, func(lever map[string]any) {
					stampID(lever, newID)
					area, _ := lever["area"].(string)
					if !LeverArea(area).Valid() {
						lever["area"] = string(AreaNone)
					}
				})
			}
		}
		if strategy, ok := payload["strategy"].(map[string]any); ok {
			for _, key := range []string{"scoreSales", "scoreMarketing", "scoreProduct", "scoreTeam", "scoreFinance", "scoreOps"} {
				if score, ok := strategy[key].(float64); ok {
					strategy[key] = math.Min(MaxScore, math.Max(MinScore, math.Round(score)))
				}
			}
		}
		return payload, nil
	}
}

// listField returns the list under key. A present non-list value is
// removed so decoding keeps the default.
func listField(section map[string]any, key string) ([]any, bool) {
	raw, present := section[key]
	if !present {
		return nil, false
	}
	items, ok := raw.([]any)
	if !ok {
		delete(section, key)
		return nil, false
	}
	return items, true
}

// fitList pads items with empty objects up to minLen, truncates to maxLen
// and runs fix on every object entry. Non-object entries become empty
// objects.
func fitList(items []any, minLen, maxLen int, fix func(map[string]any)) []any {
	if len(items) > maxLen {
		items = items[:maxLen]
	}
	out := make([]any, 0, maxLen)
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			entry = map[string]any{}
		}
		fix(entry)
		out = append(out, entry)
	}
	for len(out) < minLen {
		entry := map[string]any{}
		fix(entry)
		out = append(out, entry)
	}
	return out
}

func stampID(entry map[string]any, newID func() string) {
	if id, ok := entry["id"].(string); !ok || id == "" {
		entry["id"] = newID()
	}
}
