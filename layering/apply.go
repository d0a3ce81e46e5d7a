package layering

import (
	"fmt"
	"reflect"
	"strings"
)

// Apply returns a copy of base with every provided Optional field of patch
// assigned to the base field of the same name. Fields the patch leaves unset
// keep their base value. The returned slice lists the applied fields by their
// JSON name, in patch declaration order.
//
// Both T and P must be structs; a patch field without a matching base field,
// or with a mismatched value type, is an error.
func Apply[T any, P any](base T, patch P) (T, []string, error) {
	result := Clone(base)
	target := reflect.ValueOf(&result).Elem()
	if target.Kind() != reflect.Struct {
		return base, nil, fmt.Errorf("layering: apply target must be a struct, got %s", target.Kind())
	}

	source := reflect.ValueOf(patch)
	if source.Kind() == reflect.Pointer {
		if source.IsNil() {
			return result, nil, nil
		}
		source = source.Elem()
	}
	if source.Kind() != reflect.Struct {
		return base, nil, fmt.Errorf("layering: patch must be a struct, got %s", source.Kind())
	}

	var applied []string
	patchType := source.Type()
	for i := 0; i < source.NumField(); i++ {
		meta := patchType.Field(i)
		if !meta.IsExported() {
			continue
		}
		field, ok := source.Field(i).Interface().(optionalField)
		if !ok || !field.IsSet() {
			continue
		}

		dest := target.FieldByName(meta.Name)
		if !dest.IsValid() || !dest.CanSet() {
			return base, nil, fmt.Errorf("layering: patch field %q has no target in %s", meta.Name, target.Type())
		}
		if field.ValueType() != dest.Type() {
			return base, nil, fmt.Errorf("layering: patch field %q is %s, target is %s", meta.Name, field.ValueType(), dest.Type())
		}

		value := reflect.ValueOf(field.anyValue())
		if !value.IsValid() {
			dest.Set(reflect.Zero(dest.Type()))
		} else {
			dest.Set(cloneValue(value))
		}
		applied = append(applied, FieldName(meta))
	}
	return result, applied, nil
}

// FieldName returns the JSON name of a struct field, falling back to the Go
// field name when no tag is present.
func FieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" || tag == "-" {
		return field.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return field.Name
	}
	return name
}
