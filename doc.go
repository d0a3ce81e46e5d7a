// Package booster is the state and derivation engine behind the pre-session
// planning worksheet. It owns three independent sections (product clarity,
// unit economics and strategic scoring), the pure functions that turn raw
// entries into progress percentages and financial metrics, and the Store that
// mediates every change.
//
// Data flow:
//
//	consumer -> Store.UpdateX(patch) -> layering.Apply -> section rules
//	         -> subscribers + activity hooks
//	         -> debounced Persister.Save -> state.Codec envelope -> Backend
//
// Lifecycle:
//
//	store := booster.NewStore(booster.NewBlobPersister(state.NewFileBackend(dir)))
//	if err := store.Init(ctx); err != nil { ... }
//	defer store.Teardown(ctx)
//
// Derived values (ComputeProgress, ComputeProductMetrics, Champion,
// ComputeFinancials, WeakestZones) are computed on demand from a snapshot
// returned by Store.State and hold no state of their own.
package booster
