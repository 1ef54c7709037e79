// Package decoder contains the default [domain.Decoder] implementation.
package decoder

import (
	"fmt"

	"github.com/goccy/go-reflect"
	"github.com/mitchellh/mapstructure"
	"github.com/vinicius-lino-figueiredo/criterium/domain"
	"github.com/vinicius-lino-figueiredo/criterium/pkg/structure"
)

// Decoder implements domain.Decoder.
type Decoder struct{}

// NewDecoder returns a new implementation of domain.Decoder.
func NewDecoder() domain.Decoder {
	return &Decoder{}
}

// Decode implements domain.Decoder. Query nodes found in source are decoded as
// plain go values.
func (d *Decoder) Decode(source any, target any) error {
	if target == nil {
		return domain.ErrTargetNil
	}

	value := reflect.ValueNoEscapeOf(target)
	if value.Kind() != reflect.Ptr {
		return domain.ErrNonPointer
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: structure.TagName,
		Result:  target,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(d.adjust(source)); err != nil {
		errDec := domain.ErrDecode{Source: source, Target: target}
		return fmt.Errorf("%w: %w", errDec, err)
	}
	return nil
}

func (d *Decoder) adjust(value any) any {
	switch t := value.(type) {
	case domain.Node:
		return t.Interface()
	case []any:
		lst := make([]any, len(t))
		for n, v := range t {
			lst[n] = d.adjust(v)
		}
		return lst
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, v := range t {
			m[k] = d.adjust(v)
		}
		return m
	default:
		return value
	}
}
