package fieldnavigator

import "github.com/vinicius-lino-figueiredo/criterium/domain"

// Field implements [domain.Getter].
type Field struct {
	value   any
	defined bool
}

// NewField returns a defined [domain.Getter] holding v.
func NewField(v any) domain.Getter {
	return &Field{value: v, defined: true}
}

// NewUndefined returns a [domain.Getter] of an undefined value.
func NewUndefined() domain.Getter {
	return &Field{}
}

// Get implements [domain.Getter].
func (f *Field) Get() (any, bool) {
	return f.value, f.defined
}
