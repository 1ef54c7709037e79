package docparser

import (
	"errors"
	"fmt"
	"time"

	"github.com/vinicius-lino-figueiredo/criterium/domain"
	"gopkg.in/yaml.v3"
)

// ErrEmptyDocument is returned when the parsed content has no document.
var ErrEmptyDocument = errors.New("empty document")

// ErrYAMLNode is returned when a YAML node cannot be used in a query.
type ErrYAMLNode struct {
	Line   int
	Column int
	Reason string
}

// Error implements [error].
func (e ErrYAMLNode) Error() string {
	return fmt.Sprintf("yaml %d:%d: %s", e.Line, e.Column, e.Reason)
}

// ParseYAML reads a YAML document into a query node. Mapping keys keep their
// order. Integers are read as int64, floats as float64 and timestamps as
// [time.Time].
func ParseYAML(data []byte) (domain.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, ErrEmptyDocument
	}
	return fromYAML(&doc)
}

func fromYAML(n *yaml.Node) (domain.Node, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, ErrEmptyDocument
		}
		return fromYAML(n.Content[0])
	case yaml.AliasNode:
		return fromYAML(n.Alias)
	case yaml.SequenceNode:
		seq := make(domain.Sequence, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := fromYAML(item)
			if err != nil {
				return nil, err
			}
			seq = append(seq, v)
		}
		return seq, nil
	case yaml.MappingNode:
		return fromYAMLMapping(n)
	case yaml.ScalarNode:
		v, err := yamlScalar(n)
		if err != nil {
			return nil, err
		}
		return domain.Scalar{Value: v}, nil
	default:
		return nil, ErrYAMLNode{Line: n.Line, Column: n.Column, Reason: "unknown node kind"}
	}
}

func fromYAMLMapping(n *yaml.Node) (domain.Node, error) {
	m := newEntries(len(n.Content) / 2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind != yaml.ScalarNode {
			return nil, ErrYAMLNode{Line: k.Line, Column: k.Column, Reason: "mapping keys must be scalars"}
		}
		val, err := fromYAML(v)
		if err != nil {
			return nil, err
		}
		m.set(k.Value, val)
	}
	return extended(m.m)
}

func yamlScalar(n *yaml.Node) (any, error) {
	var target any
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		target = new(bool)
	case "!!int":
		target = new(int64)
	case "!!float":
		target = new(float64)
	case "!!timestamp":
		target = new(time.Time)
	default:
		return n.Value, nil
	}
	if err := n.Decode(target); err != nil {
		return nil, err
	}
	switch t := target.(type) {
	case *bool:
		return *t, nil
	case *int64:
		return *t, nil
	case *float64:
		return *t, nil
	default:
		return *target.(*time.Time), nil
	}
}
