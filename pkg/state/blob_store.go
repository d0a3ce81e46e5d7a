package state

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BlobStore is a Store that encodes snapshots with a Codec and keeps the
// bytes in a Backend.
type BlobStore[T any] struct {
	backend Backend
	codec   *Codec[T]
	now     func() time.Time
	newID   func() string
}

// BlobStoreOption configures a BlobStore.
type BlobStoreOption[T any] func(*BlobStore[T])

// WithClock overrides the time source used to stamp Meta.UpdatedAt.
func WithClock[T any](now func() time.Time) BlobStoreOption[T] {
	return func(s *BlobStore[T]) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSnapshotIDs overrides the generator used for Meta.SnapshotID.
func WithSnapshotIDs[T any](newID func() string) BlobStoreOption[T] {
	return func(s *BlobStore[T]) {
		if newID != nil {
			s.newID = newID
		}
	}
}

func NewBlobStore[T any](backend Backend, codec *Codec[T], opts ...BlobStoreOption[T]) *BlobStore[T] {
	if codec == nil {
		codec = NewCodec[T](1)
	}
	s := &BlobStore[T]{
		backend: backend,
		codec:   codec,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *BlobStore[T]) Load(ctx context.Context, key string) (T, Meta, bool, error) {
	var zero T
	if key == "" {
		return zero, Meta{}, false, ErrKeyRequired
	}
	if s.backend == nil {
		return zero, Meta{}, false, fmt.Errorf("state: backend is required")
	}

	data, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		return zero, Meta{}, false, fmt.Errorf("state: read %q: %w", key, err)
	}
	if !ok {
		return zero, Meta{}, false, nil
	}

	snapshot, meta, err := s.codec.Decode(key, data)
	if err != nil {
		return zero, Meta{}, false, err
	}
	return snapshot, meta, true, nil
}

// Save stamps a fresh snapshot id, the codec version and the save time
// unless meta already carries them.
func (s *BlobStore[T]) Save(ctx context.Context, key string, snapshot T, meta Meta) (Meta, error) {
	if key == "" {
		return Meta{}, ErrKeyRequired
	}
	if s.backend == nil {
		return Meta{}, fmt.Errorf("state: backend is required")
	}

	stamped := mergeMeta(Meta{
		SnapshotID: s.newID(),
		UpdatedAt:  s.now(),
	}, meta)
	stamped.SchemaVersion = s.codec.Version()

	data, err := s.codec.Encode(snapshot, stamped)
	if err != nil {
		return Meta{}, err
	}
	if err := s.backend.Put(ctx, key, data); err != nil {
		return Meta{}, fmt.Errorf("state: write %q: %w", key, err)
	}
	return cloneMeta(stamped), nil
}

func (s *BlobStore[T]) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	if s.backend == nil {
		return fmt.Errorf("state: backend is required")
	}
	if err := s.backend.Delete(ctx, key); err != nil {
		return fmt.Errorf("state: delete %q: %w", key, err)
	}
	return nil
}
