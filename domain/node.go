package domain

import "iter"

// Kind identifies the shape of a [Node].
type Kind uint8

// Node kinds.
const (
	KindScalar Kind = iota
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Node is a value in a query document. It is one of [Scalar], [Sequence] or
// [Mapping].
type Node interface {
	Kind() Kind
	// Interface returns the node as plain go values: the scalar value,
	// []any for sequences and map[string]any for mappings.
	Interface() any
}

// Scalar holds a leaf value: nil, bool, string, a number, [time.Time] or a
// [*regexp.Regexp].
type Scalar struct {
	Value any
}

// Kind implements [Node].
func (Scalar) Kind() Kind { return KindScalar }

// Interface implements [Node].
func (s Scalar) Interface() any { return s.Value }

// Sequence is an ordered list of nodes.
type Sequence []Node

// Kind implements [Node].
func (Sequence) Kind() Kind { return KindSequence }

// Interface implements [Node].
func (s Sequence) Interface() any {
	res := make([]any, len(s))
	for n, v := range s {
		res[n] = v.Interface()
	}
	return res
}

// Entry is a key-value pair of a [Mapping].
type Entry struct {
	Key   string
	Value Node
}

// Mapping is an object whose entries keep their insertion order.
type Mapping []Entry

// Kind implements [Node].
func (Mapping) Kind() Kind { return KindMapping }

// Interface implements [Node].
func (m Mapping) Interface() any {
	res := make(map[string]any, len(m))
	for _, e := range m {
		res[e.Key] = e.Value.Interface()
	}
	return res
}

// Get returns the value of the first entry with the given key.
func (m Mapping) Get(key string) (Node, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Keys iterates over the mapping keys in order.
func (m Mapping) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, e := range m {
			if !yield(e.Key) {
				return
			}
		}
	}
}

// Iter iterates over the mapping entries in order.
func (m Mapping) Iter() iter.Seq2[string, Node] {
	return func(yield func(string, Node) bool) {
		for _, e := range m {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}
