package state_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-booster/pkg/state"
)

type profile struct {
	Name   string   `json:"name"`
	Labels []string `json:"labels"`
	Tier   string   `json:"tier"`
}

func labelsMigration(payload map[string]any) (map[string]any, error) {
	if tag, ok := payload["tag"].(string); ok {
		payload["labels"] = []any{tag}
		delete(payload, "tag")
	}
	return payload, nil
}

func newProfileCodec(opts ...state.CodecOption[profile]) *state.Codec[profile] {
	base := []state.CodecOption[profile]{
		state.WithMigration[profile](1, labelsMigration),
		state.WithBase(func() profile { return profile{Tier: "solo"} }),
		state.WithValidator(func(p *profile) error {
			if p.Name == "" {
				return fmt.Errorf("name required")
			}
			return nil
		}),
	}
	return state.NewCodec[profile](2, append(base, opts...)...)
}

func TestCodecRoundTrip(t *testing.T) {
	codec := newProfileCodec()
	savedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	want := profile{Name: "ana", Labels: []string{"x"}, Tier: "team"}

	data, err := codec.Encode(want, state.Meta{SnapshotID: "s1", UpdatedAt: savedAt})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var envelope state.Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		t.Fatalf("envelope: %v", err)
	}
	if envelope.SchemaVersion != 2 || envelope.SnapshotID != "s1" {
		t.Fatalf("unexpected envelope header %+v", envelope)
	}

	got, meta, err := codec.Decode("profile", data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	if meta.SchemaVersion != 2 || !meta.UpdatedAt.Equal(savedAt) {
		t.Fatalf("unexpected meta %#v", meta)
	}
}

func TestCodecDecodesLegacyDocument(t *testing.T) {
	codec := newProfileCodec()
	got, meta, err := codec.Decode("profile", []byte(`{"name":"ana","tag":"vip"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := profile{Name: "ana", Labels: []string{"vip"}, Tier: "solo"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("legacy decode mismatch (-want +got):\n%s", diff)
	}
	if meta.SchemaVersion != 1 {
		t.Fatalf("expected legacy version 1, got %d", meta.SchemaVersion)
	}
}

func TestCodecMigratesOlderEnvelope(t *testing.T) {
	codec := newProfileCodec()
	got, _, err := codec.Decode("profile", []byte(`{"schemaVersion":1,"payload":{"name":"bo","tag":"new"}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff([]string{"new"}, got.Labels); diff != "" {
		t.Fatalf("migration not applied (-want +got):\n%s", diff)
	}
}

func TestCodecRejections(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		target error
		substr string
	}{
		{name: "not_json", input: `{oops`, target: state.ErrInvalidEnvelope},
		{name: "null_document", input: `null`, target: state.ErrInvalidEnvelope},
		{name: "newer_version", input: `{"schemaVersion":3,"payload":{"name":"x"}}`, target: state.ErrUnsupportedVersion},
		{name: "fractional_version", input: `{"schemaVersion":1.5,"payload":{}}`, target: state.ErrInvalidEnvelope},
		{name: "payload_not_object", input: `{"schemaVersion":2,"payload":[1]}`, target: state.ErrInvalidEnvelope},
		{name: "validation_failure", input: `{"schemaVersion":2,"payload":{"name":""}}`, substr: "name required"},
	}

	codec := newProfileCodec()
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := codec.Decode("profile", []byte(tc.input))
			if err == nil {
				t.Fatalf("expected error")
			}
			if tc.target != nil && !errors.Is(err, tc.target) {
				t.Fatalf("expected %v, got %v", tc.target, err)
			}
			if tc.substr != "" && !strings.Contains(err.Error(), tc.substr) {
				t.Fatalf("expected error containing %q, got %v", tc.substr, err)
			}
		})
	}
}

func TestCodecMissingMigration(t *testing.T) {
	codec := state.NewCodec[profile](3, state.WithMigration[profile](1, labelsMigration))
	_, _, err := codec.Decode("profile", []byte(`{"name":"x"}`))
	if !errors.Is(err, state.ErrMissingMigration) {
		t.Fatalf("expected ErrMissingMigration, got %v", err)
	}
}

func TestCodecStrictDecoding(t *testing.T) {
	codec := state.NewCodec[profile](1, state.WithStrictDecoding[profile]())
	_, _, err := codec.Decode("profile", []byte(`{"schemaVersion":1,"payload":{"name":"x","unknown":1}}`))
	if err == nil {
		t.Fatalf("expected unknown field error")
	}
}
