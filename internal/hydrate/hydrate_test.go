package hydrate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

type worksheet struct {
	Title  string   `json:"title"`
	Labels []string `json:"labels"`
	Score  *int     `json:"score"`
	Owner  string   `json:"owner"`
}

func TestDecoderCases(t *testing.T) {
	seven := 7

	cases := []struct {
		name      string
		input     map[string]any
		options   []DecoderOption[worksheet]
		expect    worksheet
		expectErr string
	}{
		{
			name:   "plain_decode",
			input:  map[string]any{"title": "plan", "score": 7},
			expect: worksheet{Title: "plan", Score: &seven},
		},
		{
			name:  "base_fills_missing_keys",
			input: map[string]any{"title": "plan"},
			options: []DecoderOption[worksheet]{
				WithBase(func() worksheet { return worksheet{Owner: "default", Labels: []string{"x"}} }),
			},
			expect: worksheet{Title: "plan", Owner: "default", Labels: []string{"x"}},
		},
		{
			name:  "pre_hook_renames_legacy_key",
			input: map[string]any{"name": "legacy"},
			options: []DecoderOption[worksheet]{
				WithPreHook[worksheet](renameHook("name", "title")),
			},
			expect: worksheet{Title: "legacy"},
		},
		{
			name:  "post_hook_rejects",
			input: map[string]any{"title": ""},
			options: []DecoderOption[worksheet]{
				WithPostHook[worksheet](requireTitle),
			},
			expectErr: "title required",
		},
		{
			name:  "unknown_fields_rejected_when_strict",
			input: map[string]any{"title": "x", "extra": true},
			options: []DecoderOption[worksheet]{
				WithDisallowUnknownFields[worksheet](),
			},
			expectErr: "unknown field",
		},
		{
			name:      "nil_payload",
			input:     nil,
			expectErr: "payload is nil",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			decoder := NewDecoder[worksheet](tc.options...)
			result, err := decoder.Decode(Context{Key: "sheet", Version: 1}, tc.input)

			if tc.expectErr != "" {
				if err == nil {
					t.Fatalf("expected error %q, got nil", tc.expectErr)
				}
				if !strings.Contains(err.Error(), tc.expectErr) {
					t.Fatalf("expected error containing %q, got %v", tc.expectErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}
			if !reflect.DeepEqual(tc.expect, result) {
				t.Fatalf("decoded snapshot mismatch:\nwant: %#v\n got: %#v", tc.expect, result)
			}
		})
	}
}

func TestDecoderDoesNotMutateInput(t *testing.T) {
	input := map[string]any{"name": "legacy"}
	decoder := NewDecoder[worksheet](WithPreHook[worksheet](renameHook("name", "title")))

	if _, err := decoder.Decode(Context{Key: "sheet"}, input); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := input["name"]; !ok {
		t.Fatalf("pre-hook mutated caller payload: %v", input)
	}
}

func TestPreHookSeesVersion(t *testing.T) {
	var seen int
	hook := func(ctx Context, payload map[string]any) (map[string]any, error) {
		seen = ctx.Version
		return payload, nil
	}
	decoder := NewDecoder[worksheet](WithPreHook[worksheet](hook))
	if _, err := decoder.Decode(Context{Key: "sheet", Version: 3}, map[string]any{}); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if seen != 3 {
		t.Fatalf("expected version 3, got %d", seen)
	}
}

func renameHook(from, to string) PreHook {
	return func(_ Context, payload map[string]any) (map[string]any, error) {
		value, ok := payload[from]
		if !ok {
			return payload, nil
		}
		delete(payload, from)
		payload[to] = value
		return payload, nil
	}
}

func requireTitle(ctx Context, snapshot *worksheet) error {
	if snapshot == nil {
		return errors.New("snapshot is nil")
	}
	if snapshot.Title == "" {
		return fmt.Errorf("title required for %s", ctx.Key)
	}
	return nil
}
