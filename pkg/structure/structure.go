// Package structure contains type-related operations, such as iterating over a
// value of type any and converting numbers.
package structure

import (
	"cmp"
	"encoding/json"
	"errors"
	"iter"
	"maps"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-reflect"
)

// TagName is the struct tag used to rename or omit fields.
const TagName = "criterium"

var (
	// ErrNilObj may be returned by [Seq] or [Seq2] when a nil value is
	// passed as argument.
	ErrNilObj = errors.New("nil object")
)

// ErrorNonObject is returned by [Seq2] when a value that is neither a struct
// nor a map with string keys is passed as argument.
type ErrorNonObject struct {
	Type reflect.Type
}

func (e ErrorNonObject) Error() string {
	return "expected object, got " + typeName(e.Type)
}

// ErrorNonList is returned by [Seq] when a value that is neither a slice
// nor a array is passed as argument.
type ErrorNonList struct {
	Type reflect.Type
}

func (e ErrorNonList) Error() string {
	return "expected list, got " + typeName(e.Type)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "nil"
	}
	return t.String()
}

// IsObject reports whether [Seq2] can iterate over obj.
func IsObject(obj any) bool {
	if obj == nil || isPrimitive(obj) {
		return false
	}
	v := indirect(reflect.ValueNoEscapeOf(obj))
	if !v.IsValid() {
		return false
	}
	switch v.Kind() {
	case reflect.Struct:
		return true
	case reflect.Map:
		return v.Type().Key().Kind() == reflect.String
	default:
		return false
	}
}

// IsList reports whether [Seq] can iterate over obj. Byte slices are treated
// as scalars.
func IsList(obj any) bool {
	if obj == nil || isPrimitive(obj) {
		return false
	}
	v := indirect(reflect.ValueNoEscapeOf(obj))
	if !v.IsValid() {
		return false
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return true
	default:
		return false
	}
}

// Seq2 returns an iterator over the fields of a struct or the entries of a map
// with string keys. Struct fields are yielded in declaration order and map
// entries in key order, so iterating twice yields the same sequence.
func Seq2(obj any) (iter.Seq2[string, any], int, error) {
	if obj == nil {
		return nil, 0, ErrNilObj
	}
	if isPrimitive(obj) {
		return nil, 0, ErrorNonObject{Type: reflect.TypeOf(obj)}
	}
	if i, length := checkMaps(obj); i != nil {
		return i, length, nil
	}
	return iterReflect(obj)
}

func isPrimitive(obj any) bool {
	switch obj.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number,
		time.Time, *regexp.Regexp, []byte:
		return true
	default:
		return false
	}
}

func checkMaps(obj any) (iter.Seq2[string, any], int) {
	switch t := obj.(type) {
	case map[string]any:
		return iterMap(t), len(t)
	case map[string]string:
		return iterMap(t), len(t)
	case map[string]bool:
		return iterMap(t), len(t)
	case map[string]int:
		return iterMap(t), len(t)
	case map[string]int64:
		return iterMap(t), len(t)
	case map[string]float64:
		return iterMap(t), len(t)
	case map[string]time.Time:
		return iterMap(t), len(t)
	}
	return nil, 0
}

func iterReflect(obj any) (iter.Seq2[string, any], int, error) {
	v := reflect.ValueNoEscapeOf(obj)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, 0, ErrNilObj
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() == reflect.String {
			i, l := iterReflectMap(v)
			return i, l, nil
		}
	case reflect.Struct:
		i, l := iterReflectStruct(v)
		return i, l, nil
	}
	return nil, 0, ErrorNonObject{Type: v.Type()}
}

func iterReflectMap(v reflect.Value) (iter.Seq2[string, any], int) {
	keys := v.MapKeys()
	slices.SortFunc(keys, func(a, b reflect.Value) int {
		return cmp.Compare(a.String(), b.String())
	})
	return func(yield func(string, any) bool) {
		for _, k := range keys {
			if !yield(k.String(), v.MapIndex(k).Interface()) {
				return
			}
		}
	}, len(keys)
}

func iterReflectStruct(v reflect.Value) (iter.Seq2[string, any], int) {
	type field struct {
		Key   string
		Value any
	}
	fields := make([]field, 0, v.NumField())
	for k, v := range listStructFields(v) {
		fields = append(fields, field{Key: k, Value: v})
	}
	return func(yield func(string, any) bool) {
		for _, f := range fields {
			if !yield(f.Key, f.Value) {
				return
			}
		}
	}, len(fields)
}

// FieldName returns the name a struct field is known by, and whether it should
// be skipped for the given value.
func FieldName(field reflect.StructField, value reflect.Value) (string, bool) {
	if field.PkgPath != "" {
		return "", false
	}
	tag, ok := field.Tag.Lookup(TagName)
	if !ok {
		return field.Name, true
	}
	if tag == "-" {
		return "", false
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = field.Name
	}
	for sub := range strings.SplitSeq(opts, ",") {
		switch sub {
		case "omitzero":
			if value.IsValid() && value.IsZero() {
				return "", false
			}
		case "omitempty":
			if value.IsValid() && isEmpty(value) {
				return "", false
			}
		}
	}
	return name, true
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Ptr, reflect.UnsafePointer,
		reflect.Interface:
		return v.IsNil()
	case reflect.Map, reflect.Slice, reflect.String, reflect.Array:
		return v.Len() == 0
	default:
		return false
	}
}

func listStructFields(v reflect.Value) iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		typ := v.Type()
		for n := range typ.NumField() {
			name, ok := FieldName(typ.Field(n), v.Field(n))
			if !ok {
				continue
			}
			if !yield(name, v.Field(n).Interface()) {
				return
			}
		}
	}
}

func iterMap[T any](m map[string]T) iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, k := range slices.Sorted(maps.Keys(m)) {
			if !yield(k, m[k]) {
				return
			}
		}
	}
}

// Seq returns an iterator over a slice or array of any type.
func Seq(obj any) (iter.Seq[any], int, error) {
	if obj == nil {
		return nil, 0, ErrNilObj
	}
	if isPrimitive(obj) {
		return nil, 0, ErrorNonList{Type: reflect.TypeOf(obj)}
	}
	if i, length := checkLists(obj); i != nil {
		return i, length, nil
	}
	v := indirect(reflect.ValueNoEscapeOf(obj))
	if !v.IsValid() {
		return nil, 0, ErrNilObj
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return func(yield func(any) bool) {
			for n := range v.Len() {
				if !yield(v.Index(n).Interface()) {
					return
				}
			}
		}, v.Len(), nil
	}
	return nil, 0, ErrorNonList{Type: v.Type()}
}

func checkLists(obj any) (iter.Seq[any], int) {
	switch t := obj.(type) {
	case []any:
		return iterSlice(t), len(t)
	case []string:
		return iterSlice(t), len(t)
	case []bool:
		return iterSlice(t), len(t)
	case []int:
		return iterSlice(t), len(t)
	case []int64:
		return iterSlice(t), len(t)
	case []float64:
		return iterSlice(t), len(t)
	case []time.Time:
		return iterSlice(t), len(t)
	}
	return nil, 0
}

func iterSlice[T any](m []T) iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, v := range m {
			if !yield(v) {
				return
			}
		}
	}
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// AsInteger converts any built-in number to int and returns a flag that informs
// if the argument is a valid integer.
func AsInteger(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int8:
		return int(t), true
	case int16:
		return int(t), true
	case int32:
		return int(t), true
	case int64:
		return int(t), true
	case uint:
		return int(t), true
	case uint8:
		return int(t), true
	case uint16:
		return int(t), true
	case uint32:
		return int(t), true
	case uint64:
		return int(t), true
	case float32:
		if trunc := math.Trunc(float64(t)); trunc == float64(t) {
			return int(trunc), true
		}
		return 0, false
	case float64:
		if trunc := math.Trunc(t); trunc == t {
			return int(trunc), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// AsFloat converts any built-in number to float64. Strings and other types are
// not converted.
func AsFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}

// ToNumber coerces v to a number. Besides built-in numbers, it accepts
// [json.Number], [time.Time] (as unix milliseconds) and strings holding a
// number. Booleans and nil are never coerced.
func ToNumber(v any) (float64, bool) {
	if f, ok := AsFloat(v); ok {
		return f, true
	}
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case time.Time:
		return float64(t.UnixMilli()), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// IsNumeric reports whether v can be coerced to a finite number.
func IsNumeric(v any) bool {
	f, ok := ToNumber(v)
	return ok && !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Contains checks if the given value is present in the slice.
func Contains[T any, S ~[]T](s S, t T, fn func(a T, b T) (bool, error)) (bool, error) {
	var ok bool
	var err error
	for _, i := range s {
		if ok, err = fn(i, t); err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}
