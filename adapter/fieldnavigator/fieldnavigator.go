// Package fieldnavigator contains the default [domain.FieldNavigator]
// implementation.
package fieldnavigator

import (
	"strconv"

	"github.com/vinicius-lino-figueiredo/criterium/domain"
	"github.com/vinicius-lino-figueiredo/criterium/pkg/structure"
)

// FieldNavigator implements [domain.FieldNavigator]. It reads maps with string
// keys, structs (honoring the criterium tag), slices and arrays.
type FieldNavigator struct{}

// NewFieldNavigator returns a new instance of [domain.FieldNavigator].
func NewFieldNavigator() domain.FieldNavigator {
	return &FieldNavigator{}
}

type value struct {
	v          any
	defined    bool
	expandable bool
}

var undefined = value{}

// GetField implements [domain.FieldNavigator]. A key that is not a number
// applied to a list is applied to each of its items instead, which is reported
// as an expansion. Lists are only expanded once per level.
func (fn *FieldNavigator) GetField(obj any, path domain.Path) ([]domain.Getter, bool, error) {
	if obj == nil || len(path) == 0 {
		return []domain.Getter{NewUndefined()}, false, nil
	}

	curr := []value{{v: obj, defined: true, expandable: true}}
	expanded := false

	for _, seg := range path {
		next := make([]value, 0, len(curr))
		for _, item := range curr {
			res, exp := fn.step(item, seg)
			expanded = expanded || exp
			next = append(next, res...)
		}
		curr = next
	}

	res := make([]domain.Getter, len(curr))
	for n, v := range curr {
		if v.defined {
			res[n] = NewField(v.v)
		} else {
			res[n] = NewUndefined()
		}
	}
	return res, expanded, nil
}

func (fn *FieldNavigator) step(item value, seg domain.Segment) ([]value, bool) {
	if !item.defined || item.v == nil {
		return []value{undefined}, false
	}

	if structure.IsList(item.v) {
		i, isIndex := seg.Index, seg.IsIndex
		if !isIndex {
			if n, err := strconv.Atoi(seg.Key); err == nil {
				i, isIndex = n, true
			}
		}
		if isIndex {
			return []value{index(item.v, i)}, false
		}
		if !item.expandable {
			return []value{undefined}, false
		}
		seq, l, err := structure.Seq(item.v)
		if err != nil {
			return []value{undefined}, false
		}
		res := make([]value, 0, l)
		for elem := range seq {
			sub, _ := fn.step(value{v: elem, defined: true}, seg)
			res = append(res, sub...)
		}
		return res, true
	}

	if structure.IsObject(item.v) {
		return []value{lookup(item.v, seg.String())}, false
	}

	return []value{undefined}, false
}

func index(list any, i int) value {
	if i < 0 {
		return undefined
	}
	seq, l, err := structure.Seq(list)
	if err != nil || i >= l {
		return undefined
	}
	n := 0
	for v := range seq {
		if n == i {
			return value{v: v, defined: true, expandable: true}
		}
		n++
	}
	return undefined
}

func lookup(obj any, key string) value {
	if m, ok := obj.(map[string]any); ok {
		v, found := m[key]
		return value{v: v, defined: found, expandable: true}
	}
	seq, _, err := structure.Seq2(obj)
	if err != nil {
		return undefined
	}
	for k, v := range seq {
		if k == key {
			return value{v: v, defined: true, expandable: true}
		}
	}
	return undefined
}
