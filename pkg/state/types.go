package state

import (
	"context"
	"errors"
	"time"
)

var (
	ErrKeyRequired        = errors.New("state: key is required")
	ErrInvalidEnvelope    = errors.New("state: invalid envelope")
	ErrUnsupportedVersion = errors.New("state: unsupported schema version")
	ErrMissingMigration   = errors.New("state: missing migration")
)

// Meta is storage-owned metadata stamped on every saved snapshot.
type Meta struct {
	SnapshotID    string            `json:"snapshotId,omitempty"`
	SchemaVersion int               `json:"schemaVersion,omitempty"`
	UpdatedAt     time.Time         `json:"savedAt,omitempty"`
	Extra         map[string]string `json:"extra,omitempty"`
}

// Store loads, saves and deletes one snapshot per key.
type Store[T any] interface {
	Load(ctx context.Context, key string) (snapshot T, meta Meta, ok bool, err error)
	Save(ctx context.Context, key string, snapshot T, meta Meta) (Meta, error)
	Delete(ctx context.Context, key string) error
}

// Backend persists opaque encoded documents by key. Implementations live in
// this package (memory, file) and in the badgerstore and sqlstore packages.
type Backend interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}

func mergeMeta(base, override Meta) Meta {
	out := base
	if override.SnapshotID != "" {
		out.SnapshotID = override.SnapshotID
	}
	if override.SchemaVersion != 0 {
		out.SchemaVersion = override.SchemaVersion
	}
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	if override.Extra != nil {
		out.Extra = override.Extra
	}
	return out
}
