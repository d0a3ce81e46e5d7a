package state

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/goliatone/go-booster/internal/hydrate"
)

// Envelope is the on-disk shape of every snapshot.
type Envelope struct {
	SchemaVersion int             `json:"schemaVersion"`
	SnapshotID    string          `json:"snapshotId,omitempty"`
	SavedAt       time.Time       `json:"savedAt"`
	Payload       json.RawMessage `json:"payload"`
}

// Migration rewrites a payload from one schema version to the next.
type Migration func(payload map[string]any) (map[string]any, error)

// CodecOption configures a Codec.
type CodecOption[T any] func(*Codec[T])

// Codec encodes snapshots into envelopes and decodes them back, migrating
// and validating along the way.
type Codec[T any] struct {
	version       int
	legacyVersion int
	migrations    map[int]Migration
	base          func() T
	validators    []func(*T) error
	strict        bool

	decoder *hydrate.Decoder[T]
}

// WithMigration registers the step that upgrades payloads from version from
// to version from+1.
func WithMigration[T any](from int, migration Migration) CodecOption[T] {
	return func(c *Codec[T]) {
		if migration != nil {
			c.migrations[from] = migration
		}
	}
}

// WithBase makes decoding start from base() so keys a payload omits keep
// their base values.
func WithBase[T any](base func() T) CodecOption[T] {
	return func(c *Codec[T]) {
		c.base = base
	}
}

// WithValidator rejects decoded snapshots for which validate returns an
// error.
func WithValidator[T any](validate func(*T) error) CodecOption[T] {
	return func(c *Codec[T]) {
		if validate != nil {
			c.validators = append(c.validators, validate)
		}
	}
}

// WithLegacyVersion sets the version assumed for documents that carry no
// envelope. Defaults to 1.
func WithLegacyVersion[T any](version int) CodecOption[T] {
	return func(c *Codec[T]) {
		if version > 0 {
			c.legacyVersion = version
		}
	}
}

// WithStrictDecoding rejects payload keys unknown to T.
func WithStrictDecoding[T any]() CodecOption[T] {
	return func(c *Codec[T]) {
		c.strict = true
	}
}

// NewCodec returns a codec writing schema version version.
func NewCodec[T any](version int, opts ...CodecOption[T]) *Codec[T] {
	if version < 1 {
		version = 1
	}
	c := &Codec[T]{
		version:       version,
		legacyVersion: 1,
		migrations:    map[int]Migration{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	decoderOpts := []hydrate.DecoderOption[T]{
		hydrate.WithPreHook[T](c.migrate),
	}
	if c.base != nil {
		decoderOpts = append(decoderOpts, hydrate.WithBase(c.base))
	}
	if c.strict {
		decoderOpts = append(decoderOpts, hydrate.WithDisallowUnknownFields[T]())
	}
	for _, validate := range c.validators {
		validate := validate
		decoderOpts = append(decoderOpts, hydrate.WithPostHook(func(_ hydrate.Context, snapshot *T) error {
			return validate(snapshot)
		}))
	}
	c.decoder = hydrate.NewDecoder(decoderOpts...)
	return c
}

// Version reports the schema version the codec writes.
func (c *Codec[T]) Version() int {
	return c.version
}

// Encode wraps snapshot in an envelope stamped with meta.
func (c *Codec[T]) Encode(snapshot T, meta Meta) ([]byte, error) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("state: encode payload: %w", err)
	}
	envelope := Envelope{
		SchemaVersion: c.version,
		SnapshotID:    meta.SnapshotID,
		SavedAt:       meta.UpdatedAt.UTC(),
		Payload:       payload,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("state: encode envelope: %w", err)
	}
	return data, nil
}

// Decode unwraps data, migrates the payload to the current version and
// hydrates it. key only labels errors.
func (c *Codec[T]) Decode(key string, data []byte) (T, Meta, error) {
	var zero T

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return zero, Meta{}, fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}
	if raw == nil {
		return zero, Meta{}, fmt.Errorf("%w: empty document", ErrInvalidEnvelope)
	}

	payload, meta, err := c.unwrap(raw)
	if err != nil {
		return zero, Meta{}, err
	}
	if meta.SchemaVersion > c.version {
		return zero, Meta{}, fmt.Errorf("%w: %d (current %d)", ErrUnsupportedVersion, meta.SchemaVersion, c.version)
	}

	snapshot, err := c.decoder.Decode(hydrate.Context{Key: key, Version: meta.SchemaVersion}, payload)
	if err != nil {
		return zero, Meta{}, err
	}
	return snapshot, meta, nil
}

func (c *Codec[T]) unwrap(raw map[string]any) (map[string]any, Meta, error) {
	rawVersion, enveloped := raw["schemaVersion"]
	if !enveloped {
		return raw, Meta{SchemaVersion: c.legacyVersion}, nil
	}

	number, ok := rawVersion.(float64)
	if !ok || number < 1 || number != math.Trunc(number) {
		return nil, Meta{}, fmt.Errorf("%w: schemaVersion %v", ErrInvalidEnvelope, rawVersion)
	}
	payload, ok := raw["payload"].(map[string]any)
	if !ok {
		return nil, Meta{}, fmt.Errorf("%w: payload must be an object", ErrInvalidEnvelope)
	}

	meta := Meta{SchemaVersion: int(number)}
	if id, ok := raw["snapshotId"].(string); ok {
		meta.SnapshotID = id
	}
	if savedAt, ok := raw["savedAt"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, savedAt); err == nil {
			meta.UpdatedAt = parsed
		}
	}
	return payload, meta, nil
}

func (c *Codec[T]) migrate(ctx hydrate.Context, payload map[string]any) (map[string]any, error) {
	current := payload
	for version := ctx.Version; version < c.version; version++ {
		migration, ok := c.migrations[version]
		if !ok {
			return nil, fmt.Errorf("%w: v%d to v%d", ErrMissingMigration, version, version+1)
		}
		next, err := migration(current)
		if err != nil {
			return nil, fmt.Errorf("state: migrate v%d to v%d: %w", version, version+1, err)
		}
		if next != nil {
			current = next
		}
	}
	return current, nil
}
