// Package predicate compiles queries into go functions that test in-memory
// values, and runs them over slices the way a document store would.
package predicate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vinicius-lino-figueiredo/criterium/adapter/compiler"
	"github.com/vinicius-lino-figueiredo/criterium/domain"
	"github.com/vinicius-lino-figueiredo/criterium/pkg/structure"
)

// DialectName is the name reported by the predicate dialect.
const DialectName = "predicate"

// Predicate reports whether item matches a compiled query.
type Predicate func(item any) (bool, error)

type operators struct {
	cmpr domain.Comparer
	fn   domain.FieldNavigator
}

// NewDialect returns the predicate dialect. Fields are read with fn and values
// are compared with cmpr.
func NewDialect(cmpr domain.Comparer, fn domain.FieldNavigator) compiler.Dialect[Predicate, Predicate] {
	o := operators{cmpr: cmpr, fn: fn}
	return compiler.Dialect[Predicate, Predicate]{
		Name: DialectName,
		Operators: compiler.Operators[Predicate]{
			domain.OpAnd:    o.and,
			domain.OpOr:     o.or,
			domain.OpNor:    o.nor,
			domain.OpNot:    o.not,
			domain.OpEq:     o.eq,
			domain.OpNe:     o.ne,
			domain.OpGt:     o.compare(func(c int) bool { return c > 0 }),
			domain.OpGte:    o.compare(func(c int) bool { return c >= 0 }),
			domain.OpLt:     o.compare(func(c int) bool { return c < 0 }),
			domain.OpLte:    o.compare(func(c int) bool { return c <= 0 }),
			domain.OpIn:     o.in,
			domain.OpNin:    o.nin,
			domain.OpAll:    o.all,
			domain.OpLike:   o.like,
			domain.OpExists: o.exists,
		},
	}
}

func every(children []Predicate, item any) (bool, error) {
	for _, child := range children {
		if ok, err := child(item); err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func some(children []Predicate, item any) (bool, error) {
	for _, child := range children {
		if ok, err := child(item); err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

func (o operators) and(op compiler.Operation[Predicate]) (Predicate, error) {
	children := op.Children
	return func(item any) (bool, error) {
		return every(children, item)
	}, nil
}

func (o operators) or(op compiler.Operation[Predicate]) (Predicate, error) {
	children := op.Children
	return func(item any) (bool, error) {
		return some(children, item)
	}, nil
}

func (o operators) nor(op compiler.Operation[Predicate]) (Predicate, error) {
	children := op.Children
	return func(item any) (bool, error) {
		ok, err := some(children, item)
		return !ok && err == nil, err
	}, nil
}

func (o operators) not(op compiler.Operation[Predicate]) (Predicate, error) {
	children := op.Children
	return func(item any) (bool, error) {
		ok, err := every(children, item)
		return !ok && err == nil, err
	}, nil
}

// fieldPath splits dotted keys, so {"a.b": 1} and {"a": {"b": 1}} address
// the same field.
func fieldPath(dataPath domain.Path) domain.Path {
	res := make(domain.Path, 0, len(dataPath))
	for _, seg := range dataPath {
		if seg.IsIndex || !strings.Contains(seg.Key, ".") {
			res = append(res, seg)
			continue
		}
		res = append(res, domain.ParsePath(seg.Key)...)
	}
	return res
}

// values lists the defined values found at path. Lists are replaced by their
// elements, so operators match arrays when any element matches.
func (o operators) values(item any, path domain.Path) ([]any, error) {
	fields, _, err := o.fn.GetField(item, path)
	if err != nil {
		return nil, fmt.Errorf("getting field: %w", err)
	}
	res := make([]any, 0, len(fields))
	for _, f := range fields {
		v, ok := f.Get()
		if !ok {
			continue
		}
		if !structure.IsList(v) {
			res = append(res, v)
			continue
		}
		seq, _, err := structure.Seq(v)
		if err != nil {
			return nil, err
		}
		for e := range seq {
			res = append(res, e)
		}
	}
	return res, nil
}

// anyValue returns a predicate that matches when test passes for any value
// found at path.
func (o operators) anyValue(dataPath domain.Path, test func(v any) (bool, error)) Predicate {
	path := fieldPath(dataPath)
	return func(item any) (bool, error) {
		values, err := o.values(item, path)
		if err != nil {
			return false, err
		}
		return structure.Contains(values, nil, func(v, _ any) (bool, error) {
			return test(v)
		})
	}
}

// equal reports whether v equals want. Numeric strings on either side are
// compared as numbers.
func (o operators) equal(v, want any) (bool, error) {
	if re, ok := want.(*regexp.Regexp); ok {
		s, isStr := v.(string)
		return isStr && re.MatchString(s), nil
	}
	c, err := o.cmpr.Compare(numeric(v), numeric(want))
	if err != nil {
		return false, fmt.Errorf("comparing: %w", err)
	}
	return c == 0, nil
}

func (o operators) eq(op compiler.Operation[Predicate]) (Predicate, error) {
	want := op.Value.Interface()
	return o.anyValue(op.DataPath, func(v any) (bool, error) {
		return o.equal(v, want)
	}), nil
}

func (o operators) ne(op compiler.Operation[Predicate]) (Predicate, error) {
	eq, _ := o.eq(op)
	return negate(eq), nil
}

func negate(p Predicate) Predicate {
	return func(item any) (bool, error) {
		ok, err := p(item)
		return !ok && err == nil, err
	}
}

// numeric turns strings holding a finite number into numbers. Other values are
// returned as they are.
func numeric(v any) any {
	if s, ok := v.(string); ok && structure.IsNumeric(s) {
		f, _ := structure.ToNumber(s)
		return f
	}
	return v
}

func (o operators) compare(test func(int) bool) compiler.OperatorFunc[Predicate] {
	return func(op compiler.Operation[Predicate]) (Predicate, error) {
		want := numeric(op.Value.Interface())
		_, wantNumber := structure.AsFloat(want)
		return o.anyValue(op.DataPath, func(v any) (bool, error) {
			if wantNumber {
				v = numeric(v)
			}
			if !o.cmpr.Comparable(v, want) {
				return false, nil
			}
			c, err := o.cmpr.Compare(v, want)
			if err != nil {
				return false, fmt.Errorf("comparing: %w", err)
			}
			return test(c), nil
		}), nil
	}
}

func operands(n domain.Node) []any {
	seq, _ := n.(domain.Sequence)
	res := make([]any, len(seq))
	for i, e := range seq {
		res[i] = e.Interface()
	}
	return res
}

func (o operators) in(op compiler.Operation[Predicate]) (Predicate, error) {
	wants := operands(op.Value)
	return o.anyValue(op.DataPath, func(v any) (bool, error) {
		return structure.Contains(wants, v, func(want, v any) (bool, error) {
			return o.equal(v, want)
		})
	}), nil
}

func (o operators) nin(op compiler.Operation[Predicate]) (Predicate, error) {
	in, _ := o.in(op)
	return negate(in), nil
}

func (o operators) all(op compiler.Operation[Predicate]) (Predicate, error) {
	wants := operands(op.Value)
	path := fieldPath(op.DataPath)
	return func(item any) (bool, error) {
		values, err := o.values(item, path)
		if err != nil {
			return false, err
		}
		for _, want := range wants {
			found, err := structure.Contains(values, want, o.equal)
			if err != nil || !found {
				return false, err
			}
		}
		return true, nil
	}, nil
}

func (o operators) like(op compiler.Operation[Predicate]) (Predicate, error) {
	re, ok := op.Value.Interface().(*regexp.Regexp)
	if !ok {
		var err error
		pattern, _ := op.Value.Interface().(string)
		if re, err = regexp.Compile(pattern); err != nil {
			return nil, domain.NewValidationError(domain.UnexpectedValue, op.Value, op.Path)
		}
	}
	return o.anyValue(op.DataPath, func(v any) (bool, error) {
		s, ok := v.(string)
		return ok && re.MatchString(s), nil
	}), nil
}

func (o operators) exists(op compiler.Operation[Predicate]) (Predicate, error) {
	want, _ := op.Value.Interface().(bool)
	path := fieldPath(op.DataPath)
	return func(item any) (bool, error) {
		fields, _, err := o.fn.GetField(item, path)
		if err != nil {
			return false, fmt.Errorf("getting field: %w", err)
		}
		present := false
		for _, f := range fields {
			if v, defined := f.Get(); defined && v != nil {
				present = true
				break
			}
		}
		return present == want, nil
	}, nil
}
