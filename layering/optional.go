package layering

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// Optional marks a patch field that may or may not be provided. A provided
// field may carry the zero value of T, which is how callers clear a numeric
// input back to absent (Some[*float64](nil)).
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns a provided Optional holding value.
func Some[T any](value T) Optional[T] {
	return Optional[T]{value: value, set: true}
}

// None returns an Optional that was not provided.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the held value and whether it was provided.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether the field was provided.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// OrElse returns the held value or fallback when not provided.
func (o Optional[T]) OrElse(fallback T) T {
	if !o.set {
		return fallback
	}
	return o.value
}

// ValueType reports the reflected type of T.
func (o Optional[T]) ValueType() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// SetAny stores value after checking it is assignable to T. A nil value
// stores the zero value of T.
func (o *Optional[T]) SetAny(value any) error {
	if value == nil {
		var zero T
		o.value = zero
		o.set = true
		return nil
	}
	typed, ok := value.(T)
	if !ok {
		return fmt.Errorf("layering: cannot assign %T to %s", value, o.ValueType())
	}
	o.value = typed
	o.set = true
	return nil
}

// MarshalJSON encodes the held value, or null when not provided.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON marks the field as provided whenever its key is present,
// including an explicit null.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	var value T
	if !bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
	}
	o.value = value
	o.set = true
	return nil
}

func (o Optional[T]) anyValue() any {
	return o.value
}

type optionalField interface {
	IsSet() bool
	ValueType() reflect.Type
	anyValue() any
}
