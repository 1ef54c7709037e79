// Package docparser turns query documents written as JSON, YAML or plain go
// values into [domain.Node] trees.
package docparser

import (
	"encoding/json"
	"regexp"
	"time"

	"github.com/goccy/go-reflect"
	"github.com/vinicius-lino-figueiredo/criterium/domain"
	"github.com/vinicius-lino-figueiredo/criterium/pkg/structure"
)

// FromValue converts a go value into a query node. Structs keep the field
// declaration order, while go maps are read in key order, since they carry no
// insertion order. Nodes found anywhere in v are used as they are.
func FromValue(v any) domain.Node {
	switch t := v.(type) {
	case domain.Node:
		return t
	case nil:
		return domain.Scalar{}
	case time.Time, *regexp.Regexp, []byte, json.Number:
		return domain.Scalar{Value: t}
	}

	r := reflect.ValueNoEscapeOf(v)
	if r.Kind() == reflect.Ptr {
		if r.IsNil() {
			return domain.Scalar{}
		}
		return FromValue(r.Elem().Interface())
	}

	if structure.IsObject(v) {
		seq, l, err := structure.Seq2(v)
		if err == nil {
			m := make(domain.Mapping, 0, l)
			for k, item := range seq {
				m = append(m, domain.Entry{Key: k, Value: FromValue(item)})
			}
			return m
		}
	}

	if structure.IsList(v) {
		seq, l, err := structure.Seq(v)
		if err == nil {
			s := make(domain.Sequence, 0, l)
			for item := range seq {
				s = append(s, FromValue(item))
			}
			return s
		}
	}

	return domain.Scalar{Value: v}
}
