package booster

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/goliatone/go-booster/layering"
)

type settableField interface {
	SetAny(any) error
	ValueType() reflect.Type
}

var (
	stringType    = reflect.TypeOf("")
	floatPtrType  = reflect.TypeOf((*float64)(nil))
	intPtrType    = reflect.TypeOf((*int)(nil))
	leverAreaType = reflect.TypeOf(AreaNone)
)

// ParseInput builds a patch of type P from raw field=value input keyed by
// JSON field name. Numbers go through ParseNumber, scores through
// ParseScore, so bad numeric text clears the field instead of failing.
// Unknown keys and unknown lever areas are errors.
func ParseInput[P any](values map[string]string) (P, error) {
	var patch P
	target := reflect.ValueOf(&patch).Elem()
	if target.Kind() != reflect.Struct {
		return patch, fmt.Errorf("booster: patch must be a struct, got %s", target.Kind())
	}

	fields := patchFields(target.Type())
	for key, raw := range values {
		index, ok := fields[strings.ToLower(strings.TrimSpace(key))]
		if !ok {
			return patch, fmt.Errorf("%w: %q", ErrUnknownField, key)
		}
		field, ok := target.Field(index).Addr().Interface().(settableField)
		if !ok {
			return patch, fmt.Errorf("%w: %q is not settable from text", ErrUnknownField, key)
		}
		value, err := parseFieldValue(field.ValueType(), raw)
		if err != nil {
			return patch, fmt.Errorf("booster: field %q: %w", key, err)
		}
		if err := field.SetAny(value); err != nil {
			return patch, fmt.Errorf("booster: field %q: %w", key, err)
		}
	}
	return patch, nil
}

// FieldNames lists the JSON names of the text-settable fields of patch type
// P, sorted.
func FieldNames[P any]() []string {
	var patch P
	typ := reflect.TypeOf(patch)
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil
	}
	names := make([]string, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		meta := typ.Field(i)
		if !meta.IsExported() {
			continue
		}
		setter, ok := reflect.New(meta.Type).Interface().(settableField)
		if !ok || !textSettable(setter.ValueType()) {
			continue
		}
		names = append(names, layering.FieldName(meta))
	}
	sort.Strings(names)
	return names
}

func patchFields(typ reflect.Type) map[string]int {
	fields := make(map[string]int, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		meta := typ.Field(i)
		if !meta.IsExported() {
			continue
		}
		fields[strings.ToLower(layering.FieldName(meta))] = i
	}
	return fields
}

func textSettable(typ reflect.Type) bool {
	switch typ {
	case stringType, floatPtrType, intPtrType, leverAreaType:
		return true
	}
	return false
}

func parseFieldValue(typ reflect.Type, raw string) (any, error) {
	switch typ {
	case stringType:
		return raw, nil
	case floatPtrType:
		return ParseNumber(raw), nil
	case intPtrType:
		return ParseScore(raw), nil
	case leverAreaType:
		area, ok := ParseLeverArea(raw)
		if !ok {
			return nil, fmt.Errorf("unknown lever area %q", raw)
		}
		return area, nil
	}
	return nil, fmt.Errorf("%s cannot be parsed from text", typ)
}
