package model

import (
	"math"
	"reflect"
)

// Data is the JSON-serializable property bag backing every model. Values use
// the encoding/json vocabulary: nil, bool, string, float64, nested bags
// (Data or map[string]any) and []any. Go callers may also store ints and
// other scalars; accessors normalize where they can.
type Data map[string]any

// Clone returns a deep copy of the bag. Nested bags and slices are copied
// recursively; scalar values are shared as-is.
func (d Data) Clone() Data {
	if d == nil {
		return nil
	}
	out := make(Data, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

// cloneValue deep-copies containers and passes everything else through,
// preserving the dynamic type of the input.
func cloneValue(v any) any {
	switch t := v.(type) {
	case Data:
		return t.Clone()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	}
	return v
}

// unsetValue is the type of the Unset sentinel.
type unsetValue struct{}

// Unset removes a property when passed to Set or AssignData. It also marks
// "property was absent" in previous-value records and event payloads.
var Unset unsetValue

func isUnset(v any) bool {
	_, ok := v.(unsetValue)
	return ok
}

// isFalsy reports whether v is falsy: nil, false, empty string, numeric zero
// or NaN. Empty bags and slices are not falsy.
func isFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return t == ""
	case float64:
		return t == 0 || math.IsNaN(t)
	case int:
		return t == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f == 0 || math.IsNaN(f)
	}
	return false
}

// sameValue reports whether two property values are the same under identity
// semantics: comparable values compare with ==, reference values (bags,
// slices, funcs, pointers, channels) compare by referent. Never a deep
// comparison; two distinct bags with equal contents are different values.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra := reflect.ValueOf(a)
	rb := reflect.ValueOf(b)
	switch ra.Kind() {
	case reflect.Map, reflect.Func, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		if rb.Kind() != ra.Kind() {
			return false
		}
		return ra.Pointer() == rb.Pointer()
	case reflect.Slice:
		if rb.Kind() != reflect.Slice {
			return false
		}
		return ra.Pointer() == rb.Pointer() && ra.Len() == rb.Len()
	}
	switch rb.Kind() {
	case reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return false
	}
	if !ra.Type().Comparable() {
		return false
	}
	return a == b
}
