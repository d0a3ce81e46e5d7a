package booster

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-booster/internal/telemetry"
	"github.com/goliatone/go-booster/layering"
	"github.com/goliatone/go-booster/pkg/activity"
	"github.com/goliatone/go-booster/pkg/debounce"
)

type lifecycle int

const (
	lifecycleNew lifecycle = iota
	lifecycleReady
	lifecycleClosed
)

// Store owns the live worksheet. All mutation goes through its section
// operations; every mutation notifies subscribers and schedules a debounced
// write of the full snapshot. A Store is usable between Init and Teardown.
type Store struct {
	mu     sync.RWMutex
	status lifecycle
	state  BoosterState

	persistence Persistence
	writer      *debounce.Debouncer[BoosterState]
	wait        time.Duration
	schedule    debounce.Scheduler

	newID   func() string
	logger  Logger
	emitter *activity.Emitter
	now     func() time.Time

	subscribers map[uint64]func(BoosterState)
	nextSub     uint64
}

// NewStore returns a Store persisting through persistence. A nil persistence
// keeps the worksheet in memory only.
func NewStore(persistence Persistence, opts ...StoreOption) *Store {
	s := &Store{
		persistence: persistence,
		wait:        DefaultDebounce,
		newID:       uuid.NewString,
		logger:      noopLogger{},
		now:         time.Now,
		subscribers: map[uint64]func(BoosterState){},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Init loads the stored snapshot, falling back to the default, and starts
// the write scheduler. Debounced writes run with a context detached from
// ctx's cancellation.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	switch s.status {
	case lifecycleReady:
		s.mu.Unlock()
		return nil
	case lifecycleClosed:
		s.mu.Unlock()
		return ErrStoreClosed
	}

	loaded, found := BoosterState{}, false
	if s.persistence != nil {
		loaded, found = s.persistence.Load(ctx)
	}
	if !found {
		loaded = DefaultState()
	}
	s.state = normalizeState(loaded, s.newID)

	writeCtx := context.WithoutCancel(ctx)
	opts := []debounce.Option{
		debounce.WithObserver(func(outcome debounce.Outcome) {
			telemetry.DebounceTotal.WithLabelValues(string(outcome)).Inc()
		}),
	}
	if s.schedule != nil {
		opts = append(opts, debounce.WithScheduler(s.schedule))
	}
	s.writer = debounce.New(s.wait, func(snapshot BoosterState) {
		if s.persistence != nil {
			s.persistence.Save(writeCtx, snapshot)
		}
	}, opts...)
	s.status = lifecycleReady
	s.mu.Unlock()

	s.logger.LogStore(StoreEvent{Operation: "init"})
	s.emit(ctx, activity.BuildStateEvent(activity.VerbStateLoaded, activity.ChangeInput{
		Metadata:   map[string]any{"found": found},
		OccurredAt: s.now(),
	}))
	return nil
}

// Teardown flushes the pending write and stops the scheduler. The Store
// cannot be reused afterwards.
func (s *Store) Teardown(ctx context.Context) error {
	s.mu.Lock()
	if err := s.readyLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.status = lifecycleClosed
	writer := s.writer
	s.subscribers = map[uint64]func(BoosterState){}
	s.mu.Unlock()

	writer.Flush()
	writer.Stop()
	s.logger.LogStore(StoreEvent{Operation: "teardown"})
	return nil
}

// Flush writes the pending snapshot now, if any.
func (s *Store) Flush() error {
	s.mu.RLock()
	if err := s.readyLocked(); err != nil {
		s.mu.RUnlock()
		return err
	}
	writer := s.writer
	s.mu.RUnlock()

	writer.Flush()
	return nil
}

// Pending reports whether a debounced write is scheduled.
func (s *Store) Pending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writer.Pending()
}

// State returns a detached copy of the worksheet, or false outside the
// store's lifetime.
func (s *Store) State() (BoosterState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.status != lifecycleReady {
		return BoosterState{}, false
	}
	return layering.Clone(s.state), true
}

// Subscribe registers fn to receive a detached copy of the worksheet after
// every mutation. The returned function unsubscribes.
func (s *Store) Subscribe(fn func(BoosterState)) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

// UpdateProduct merges patch into the product section. A products list is
// fitted to [MinProducts, MaxProducts] and missing ids are assigned.
func (s *Store) UpdateProduct(ctx context.Context, patch ProductPatch) error {
	return s.mutate(ctx, "update_product", func(current *BoosterState) (activity.Event, error) {
		next, fields, err := layering.Apply(current.Product, patch)
		if err != nil {
			return activity.Event{}, fmt.Errorf("booster: update product: %w", err)
		}
		next.Products = normalizeProducts(next.Products, s.newID)
		current.Product = next
		return activity.BuildSectionUpdatedEvent(activity.ChangeInput{
			Section: string(SectionProduct),
			Fields:  fields,
		}), nil
	})
}

// UpdateEconomy merges patch into the economy section and rederives profit
// and margin.
func (s *Store) UpdateEconomy(ctx context.Context, patch EconomyPatch) error {
	return s.mutate(ctx, "update_economy", func(current *BoosterState) (activity.Event, error) {
		next, fields, err := layering.Apply(current.Economy, patch)
		if err != nil {
			return activity.Event{}, fmt.Errorf("booster: update economy: %w", err)
		}
		next.MainLevers = normalizeLevers(next.MainLevers, s.newID)
		current.Economy = RecomputeEconomy(next)
		return activity.BuildSectionUpdatedEvent(activity.ChangeInput{
			Section: string(SectionEconomy),
			Fields:  fields,
		}), nil
	})
}

// UpdateStrategy merges patch into the strategy section. Scores are clamped
// into [MinScore, MaxScore].
func (s *Store) UpdateStrategy(ctx context.Context, patch StrategyPatch) error {
	return s.mutate(ctx, "update_strategy", func(current *BoosterState) (activity.Event, error) {
		next, fields, err := layering.Apply(current.Strategy, patch)
		if err != nil {
			return activity.Event{}, fmt.Errorf("booster: update strategy: %w", err)
		}
		current.Strategy = clampScores(next)
		return activity.BuildSectionUpdatedEvent(activity.ChangeInput{
			Section: string(SectionStrategy),
			Fields:  fields,
		}), nil
	})
}

// AddProduct appends an empty product row and returns it.
func (s *Store) AddProduct(ctx context.Context) (ProductItem, error) {
	var added ProductItem
	err := s.mutate(ctx, "add_product", func(current *BoosterState) (activity.Event, error) {
		if len(current.Product.Products) >= MaxProducts {
			return activity.Event{}, ErrProductLimit
		}
		added = DefaultProductItem()
		added.ID = s.newID()
		current.Product.Products = append(current.Product.Products, added)
		return activity.BuildProductAddedEvent(activity.ChangeInput{
			Section:  string(SectionProduct),
			ObjectID: added.ID,
		}), nil
	})
	if err != nil {
		return ProductItem{}, err
	}
	return added, nil
}

// RemoveProduct deletes the row with id. Later rows move up one position.
func (s *Store) RemoveProduct(ctx context.Context, id string) error {
	return s.mutate(ctx, "remove_product", func(current *BoosterState) (activity.Event, error) {
		index := productIndex(current.Product.Products, id)
		if index < 0 {
			return activity.Event{}, fmt.Errorf("%w: %q", ErrUnknownProduct, id)
		}
		if len(current.Product.Products) <= MinProducts {
			return activity.Event{}, ErrProductMinimum
		}
		products := current.Product.Products
		current.Product.Products = append(products[:index:index], products[index+1:]...)
		return activity.BuildProductRemovedEvent(activity.ChangeInput{
			Section:  string(SectionProduct),
			ObjectID: id,
			Metadata: map[string]any{"index": index},
		}), nil
	})
}

// UpdateProductItem merges patch into the row with id.
func (s *Store) UpdateProductItem(ctx context.Context, id string, patch ProductItemPatch) error {
	return s.mutate(ctx, "update_product_item", func(current *BoosterState) (activity.Event, error) {
		index := productIndex(current.Product.Products, id)
		if index < 0 {
			return activity.Event{}, fmt.Errorf("%w: %q", ErrUnknownProduct, id)
		}
		next, fields, err := layering.Apply(current.Product.Products[index], patch)
		if err != nil {
			return activity.Event{}, fmt.Errorf("booster: update product %q: %w", id, err)
		}
		current.Product.Products[index] = next
		return activity.BuildProductUpdatedEvent(activity.ChangeInput{
			Section:  string(SectionProduct),
			ObjectID: id,
			Fields:   fields,
		}), nil
	})
}

// UpdateLever merges patch into the lever with id. Unknown areas are stored
// as AreaNone.
func (s *Store) UpdateLever(ctx context.Context, id string, patch LeverPatch) error {
	return s.mutate(ctx, "update_lever", func(current *BoosterState) (activity.Event, error) {
		index := leverIndex(current.Economy.MainLevers, id)
		if index < 0 {
			return activity.Event{}, fmt.Errorf("%w: %q", ErrUnknownLever, id)
		}
		next, fields, err := layering.Apply(current.Economy.MainLevers[index], patch)
		if err != nil {
			return activity.Event{}, fmt.Errorf("booster: update lever %q: %w", id, err)
		}
		if !next.Area.Valid() {
			next.Area = AreaNone
		}
		current.Economy.MainLevers[index] = next
		return activity.BuildLeverUpdatedEvent(activity.ChangeInput{
			Section:  string(SectionEconomy),
			ObjectID: id,
			Fields:   fields,
		}), nil
	})
}

// UpdateOffer merges patch into the premium or mass offer block.
func (s *Store) UpdateOffer(ctx context.Context, kind OfferKind, patch OfferPatch) error {
	return s.mutate(ctx, "update_offer", func(current *BoosterState) (activity.Event, error) {
		var block *OfferBlock
		switch kind {
		case OfferPremium:
			block = &current.Product.PremiumOffer
		case OfferMass:
			block = &current.Product.MassOffer
		default:
			return activity.Event{}, fmt.Errorf("%w: %q", ErrUnknownOffer, kind)
		}
		next, fields, err := layering.Apply(*block, patch)
		if err != nil {
			return activity.Event{}, fmt.Errorf("booster: update %s offer: %w", kind, err)
		}
		*block = next
		return activity.BuildOfferUpdatedEvent(activity.ChangeInput{
			Section:  string(SectionProduct),
			ObjectID: string(kind),
			Fields:   fields,
		}), nil
	})
}

// Reset replaces the worksheet with a fresh default, purges the stored
// snapshot and writes the default synchronously.
func (s *Store) Reset(ctx context.Context) error {
	return s.replace(ctx, "reset", activity.VerbStateReset, true)
}

// Purge replaces the worksheet with a fresh default and deletes the stored
// snapshot without writing a new one. The next mutation writes again.
func (s *Store) Purge(ctx context.Context) error {
	return s.replace(ctx, "purge", activity.VerbStatePurged, false)
}

func (s *Store) replace(ctx context.Context, operation, verb string, write bool) error {
	s.mu.Lock()
	if err := s.readyLocked(); err != nil {
		s.mu.Unlock()
		s.logger.LogStore(StoreEvent{Operation: operation, Err: err})
		return err
	}
	s.state = normalizeState(DefaultState(), s.newID)
	snapshot := layering.Clone(s.state)
	writer := s.writer
	subscribers := s.subscriberList()

	// A save already in flight must land before Clear, never after it.
	writer.Exclusive(func() {
		if s.persistence != nil {
			s.persistence.Clear(ctx)
		}
	})
	if write {
		writer.Call(snapshot)
		writer.Flush()
	}
	s.mu.Unlock()

	telemetry.MutationsTotal.WithLabelValues(operation).Inc()
	s.logger.LogStore(StoreEvent{Operation: operation})
	s.notify(subscribers, snapshot)
	s.emit(ctx, activity.BuildStateEvent(verb, activity.ChangeInput{OccurredAt: s.now()}))
	return nil
}

// mutate runs change against the live state under the write lock. On
// success the result replaces the live state, a write is scheduled and
// subscribers and activity hooks are notified. On error nothing changes.
func (s *Store) mutate(ctx context.Context, operation string, change func(*BoosterState) (activity.Event, error)) error {
	s.mu.Lock()
	if err := s.readyLocked(); err != nil {
		s.mu.Unlock()
		s.logger.LogStore(StoreEvent{Operation: operation, Err: err})
		return err
	}

	working := layering.Clone(s.state)
	event, err := change(&working)
	if err != nil {
		s.mu.Unlock()
		s.logger.LogStore(StoreEvent{Operation: operation, Err: err})
		return err
	}
	s.state = working
	snapshot := layering.Clone(working)
	s.writer.Call(snapshot)
	subscribers := s.subscriberList()
	s.mu.Unlock()

	telemetry.MutationsTotal.WithLabelValues(operation).Inc()
	s.logger.LogStore(StoreEvent{
		Operation: operation,
		Section:   Section(event.Section),
		ObjectID:  event.ObjectID,
		Fields:    event.Fields,
	})
	s.notify(subscribers, snapshot)
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}
	s.emit(ctx, event)
	return nil
}

func (s *Store) readyLocked() error {
	switch s.status {
	case lifecycleNew:
		return ErrStoreNotInitialized
	case lifecycleClosed:
		return ErrStoreClosed
	}
	return nil
}

func (s *Store) subscriberList() []func(BoosterState) {
	list := make([]func(BoosterState), 0, len(s.subscribers))
	for id := uint64(0); id < s.nextSub; id++ {
		if fn, ok := s.subscribers[id]; ok {
			list = append(list, fn)
		}
	}
	return list
}

func (s *Store) notify(subscribers []func(BoosterState), snapshot BoosterState) {
	for _, fn := range subscribers {
		fn(layering.Clone(snapshot))
	}
}

func (s *Store) emit(ctx context.Context, event activity.Event) {
	if !s.emitter.Enabled() {
		return
	}
	if err := s.emitter.Emit(ctx, event); err != nil {
		s.logger.LogStore(StoreEvent{Operation: "emit", ObjectID: event.ObjectID, Err: err})
	}
}

func productIndex(products []ProductItem, id string) int {
	if id == "" {
		return -1
	}
	for i, item := range products {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func leverIndex(levers []GrowthLever, id string) int {
	if id == "" {
		return -1
	}
	for i, lever := range levers {
		if lever.ID == id {
			return i
		}
	}
	return -1
}

// normalizeState fits the lists, assigns ids, drops unknown areas, clamps
// scores and rederives the economy cache.
func normalizeState(s BoosterState, newID func() string) BoosterState {
	out := layering.Clone(s)
	out.Product.Products = normalizeProducts(out.Product.Products, newID)
	out.Economy.MainLevers = normalizeLevers(out.Economy.MainLevers, newID)
	out.Economy = RecomputeEconomy(out.Economy)
	out.Strategy = clampScores(out.Strategy)
	return out
}

func normalizeProducts(items []ProductItem, newID func() string) []ProductItem {
	if len(items) > MaxProducts {
		items = items[:MaxProducts]
	}
	out := make([]ProductItem, 0, MinProducts)
	out = append(out, items...)
	for len(out) < MinProducts {
		out = append(out, DefaultProductItem())
	}
	seen := make(map[string]struct{}, len(out))
	for i := range out {
		if _, dup := seen[out[i].ID]; dup || out[i].ID == "" {
			out[i].ID = newID()
		}
		seen[out[i].ID] = struct{}{}
	}
	return out
}

func normalizeLevers(levers []GrowthLever, newID func() string) []GrowthLever {
	if len(levers) > LeverCount {
		levers = levers[:LeverCount]
	}
	out := make([]GrowthLever, 0, LeverCount)
	out = append(out, levers...)
	for len(out) < LeverCount {
		out = append(out, DefaultGrowthLever())
	}
	seen := make(map[string]struct{}, len(out))
	for i := range out {
		if _, dup := seen[out[i].ID]; dup || out[i].ID == "" {
			out[i].ID = newID()
		}
		seen[out[i].ID] = struct{}{}
		if !out[i].Area.Valid() {
			out[i].Area = AreaNone
		}
	}
	return out
}

func clampScores(s StrategyLab) StrategyLab {
	s.ScoreSales = ClampScore(s.ScoreSales)
	s.ScoreMarketing = ClampScore(s.ScoreMarketing)
	s.ScoreProduct = ClampScore(s.ScoreProduct)
	s.ScoreTeam = ClampScore(s.ScoreTeam)
	s.ScoreFinance = ClampScore(s.ScoreFinance)
	s.ScoreOps = ClampScore(s.ScoreOps)
	return s
}
