package booster

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/goliatone/go-booster/internal/telemetry"
	"github.com/goliatone/go-booster/pkg/state"
)

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func filledState() BoosterState {
	s := normalizeState(DefaultState(), sequentialIDs("id"))
	s.Product.RealValue = "clarity"
	s.Product.PremiumOffer.Audience = "founders"
	s.Product.Products[0].Name = "Audit"
	s.Product.Products[0].Price = Float(900)
	s.Product.Products[0].Cost = Float(0)
	s.Economy.Revenue = Float(100000)
	s.Economy.Cogs = Float(30000)
	s.Economy.Opex = Float(20000)
	s.Economy.Payroll = Float(20000)
	s.Economy = RecomputeEconomy(s.Economy)
	s.Economy.MainLevers[1].Area = AreaSales
	s.Strategy.ScoreFinance = Int(4)
	s.Strategy.TargetMoney = "2x revenue"
	return s
}

func TestPersisterRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := state.NewMemoryBackend()
	persister := NewBlobPersister(backend)

	want := filledState()
	persister.Save(ctx, want)

	got, ok := persister.Load(ctx)
	if !ok {
		t.Fatalf("expected stored snapshot")
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	raw, found, err := backend.Get(ctx, StorageKey)
	if err != nil || !found {
		t.Fatalf("expected raw document under %q: %v", StorageKey, err)
	}
	var envelope state.Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("envelope: %v", err)
	}
	if envelope.SchemaVersion != SchemaVersion || envelope.SnapshotID == "" {
		t.Fatalf("unexpected envelope header %+v", envelope)
	}
}

func TestPersisterMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	persister := NewPersister(state.NewMemoryStore[BoosterState](), WithStorageKey("custom"))
	want := filledState()
	persister.Save(ctx, want)

	want.Product.RealValue = "mutated after save"
	got, ok := persister.Load(ctx)
	if !ok {
		t.Fatalf("expected snapshot")
	}
	if got.Product.RealValue != "clarity" {
		t.Fatalf("saved snapshot must be detached, got %q", got.Product.RealValue)
	}
	if persister.Key() != "custom" {
		t.Fatalf("unexpected key %q", persister.Key())
	}
}

func TestPersisterLoadFailuresReturnAbsent(t *testing.T) {
	cases := map[string]string{
		"corrupt":       `{"product": `,
		"newer_version": `{"schemaVersion": 99, "payload": {}}`,
		"bad_payload":   `{"schemaVersion": 2, "payload": "text"}`,
		"too_few_items": `{"schemaVersion": 2, "payload": {"product": {"products": [{}, {}]}}}`,
		"bad_area":      `{"schemaVersion": 2, "payload": {"economy": {"mainLevers": [{"area": "legal"}, {}, {}]}}}`,
		"bad_score":     `{"schemaVersion": 2, "payload": {"strategy": {"scoreOps": 42}}}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			backend := state.NewMemoryBackend()
			if err := backend.Put(ctx, StorageKey, []byte(doc)); err != nil {
				t.Fatalf("seed: %v", err)
			}

			var failures int
			logger := LoggerFunc{Persistence: func(event PersistenceEvent) {
				if event.Err != nil {
					failures++
				}
			}}
			persister := NewBlobPersister(backend, WithPersistenceLogger(logger))
			if _, ok := persister.Load(ctx); ok {
				t.Fatalf("expected load to fall back")
			}
			if failures != 1 {
				t.Fatalf("expected one logged failure, got %d", failures)
			}
		})
	}
}

func TestPersisterMissingSnapshot(t *testing.T) {
	persister := NewBlobPersister(state.NewMemoryBackend())
	if _, ok := persister.Load(context.Background()); ok {
		t.Fatalf("expected no snapshot")
	}
}

func TestLegacyDocumentIsMigrated(t *testing.T) {
	legacy := `{
		"product": {
			"realValue": "speed",
			"products": [{"name": "Audit", "price": 300, "cost": 100}]
		},
		"economy": {
			"revenue": 5000,
			"mainLevers": [{"area": "sales", "problem": "p"}, {"area": "legal"}, {}, {}]
		},
		"strategy": {"scoreSales": 14, "scoreOps": 0.4}
	}`
	codec := NewCodec(sequentialIDs("legacy"))
	got, meta, err := codec.Decode(StorageKey, []byte(legacy))
	if err != nil {
		t.Fatalf("decode legacy: %v", err)
	}
	if meta.SchemaVersion != 1 {
		t.Fatalf("expected legacy version 1, got %d", meta.SchemaVersion)
	}

	if len(got.Product.Products) != MinProducts {
		t.Fatalf("expected products padded to %d, got %d", MinProducts, len(got.Product.Products))
	}
	for i, item := range got.Product.Products {
		if !strings.HasPrefix(item.ID, "legacy-") {
			t.Fatalf("product %d missing id: %+v", i, item)
		}
	}
	if got.Product.Products[0].Name != "Audit" || *got.Product.Products[0].Price != 300 {
		t.Fatalf("first product lost: %+v", got.Product.Products[0])
	}
	if got.Product.PremiumOffer != (OfferBlock{}) {
		t.Fatalf("missing keys must keep defaults, got %+v", got.Product.PremiumOffer)
	}

	if len(got.Economy.MainLevers) != LeverCount {
		t.Fatalf("expected %d levers, got %d", LeverCount, len(got.Economy.MainLevers))
	}
	if got.Economy.MainLevers[0].Area != AreaSales || got.Economy.MainLevers[1].Area != AreaNone {
		t.Fatalf("unexpected areas %+v", got.Economy.MainLevers)
	}
	if *got.Strategy.ScoreSales != MaxScore || *got.Strategy.ScoreOps != MinScore {
		t.Fatalf("expected clamped scores, got %d %d", *got.Strategy.ScoreSales, *got.Strategy.ScoreOps)
	}
	if got.Strategy.ScoreTeam != nil {
		t.Fatalf("absent score must stay nil")
	}
}

func TestPersisterClear(t *testing.T) {
	ctx := context.Background()
	persister := NewBlobPersister(state.NewMemoryBackend())
	persister.Save(ctx, filledState())
	persister.Clear(ctx)
	if _, ok := persister.Load(ctx); ok {
		t.Fatalf("expected snapshot to be cleared")
	}
	// clearing twice is harmless
	persister.Clear(ctx)
}

func TestPersisterWithoutStoreSwallowsErrors(t *testing.T) {
	var failures []string
	persister := NewPersister(nil, WithPersistenceLogger(LoggerFunc{Persistence: func(event PersistenceEvent) {
		if event.Err != nil {
			failures = append(failures, event.Operation)
		}
	}}))
	ctx := context.Background()
	persister.Save(ctx, DefaultState())
	persister.Clear(ctx)
	if _, ok := persister.Load(ctx); ok {
		t.Fatalf("expected no snapshot")
	}
	if diff := cmp.Diff([]string{"save", "clear", "load"}, failures); diff != "" {
		t.Fatalf("failures mismatch (-want +got):\n%s", diff)
	}
}

func TestPersisterRecordsTelemetry(t *testing.T) {
	ctx := context.Background()
	missing := telemetry.PersistenceTotal.WithLabelValues(telemetry.OpLoad, telemetry.ResultMissing)
	saved := telemetry.PersistenceTotal.WithLabelValues(telemetry.OpSave, telemetry.ResultOK)
	missingBefore := testutil.ToFloat64(missing)
	savedBefore := testutil.ToFloat64(saved)

	persister := NewBlobPersister(state.NewMemoryBackend())
	persister.Load(ctx)
	persister.Save(ctx, DefaultState())

	if got := testutil.ToFloat64(missing) - missingBefore; got != 1 {
		t.Fatalf("expected one missing load, got %v", got)
	}
	if got := testutil.ToFloat64(saved) - savedBefore; got != 1 {
		t.Fatalf("expected one save, got %v", got)
	}
}
