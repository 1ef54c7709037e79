// Package redisearch compiles queries into RediSearch query strings. Values
// are never written in the query text, they are bound as query parameters and
// must be sent with the PARAMS argument of FT.SEARCH.
package redisearch

import (
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/vinicius-lino-figueiredo/criterium/adapter/compiler"
	"github.com/vinicius-lino-figueiredo/criterium/domain"
	"github.com/vinicius-lino-figueiredo/criterium/pkg/structure"
)

// DialectName is the name reported by the RediSearch dialect.
const DialectName = "redisearch"

// Param is a query parameter.
type Param struct {
	Name  string
	Value string
}

// Query is a compiled RediSearch query and the parameters it references, in
// the order they were bound.
type Query struct {
	Text   string
	Params []Param
}

// ParamMap returns the parameters keyed by name.
func (q Query) ParamMap() map[string]string {
	res := make(map[string]string, len(q.Params))
	for _, p := range q.Params {
		res[p.Name] = p.Value
	}
	return res
}

// fieldType is how RediSearch indexes a value.
type fieldType uint8

const (
	typeText fieldType = iota
	typeNumeric
	typeTag
)

func typeOf(v any) fieldType {
	if _, ok := v.(bool); ok {
		return typeTag
	}
	if structure.IsNumeric(v) {
		return typeNumeric
	}
	return typeText
}

// params binds values under names unique within a compilation.
type params struct {
	used map[string]bool
	list []Param
}

func (p *params) bind(base string, value string) string {
	name := base
	for n := 1; p.used[name]; n++ {
		name = base + "_" + strconv.Itoa(n)
	}
	p.used[name] = true
	p.list = append(p.list, Param{Name: name, Value: value})
	return "$" + name
}

// Escape escapes every rune of a field name that is not a letter, digit or
// underscore.
func Escape(field string) string {
	var sb strings.Builder
	for _, r := range field {
		if !isWord(r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func isWord(r rune) bool {
	return r == '_' || r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

// paramName turns a field name into a valid parameter name.
func paramName(field string) string {
	return strings.Map(func(r rune) rune {
		if isWord(r) {
			return r
		}
		return '_'
	}, field)
}

type generator struct{}

// NewDialect returns the RediSearch dialect. Only top level fields can be
// queried, and $exists is not supported.
func NewDialect() compiler.Dialect[string, Query] {
	g := generator{}
	return compiler.Dialect[string, Query]{
		Name: DialectName,
		Operators: compiler.Operators[string]{
			domain.OpAnd:  g.and,
			domain.OpOr:   g.or,
			domain.OpNor:  g.nor,
			domain.OpNot:  g.not,
			domain.OpEq:   g.eq("@"),
			domain.OpNe:   g.eq("-@"),
			domain.OpGt:   g.rng("[(%s +inf]"),
			domain.OpGte:  g.rng("[%s +inf]"),
			domain.OpLt:   g.rng("[-inf (%s]"),
			domain.OpLte:  g.rng("[-inf %s]"),
			domain.OpIn:   g.in("("),
			domain.OpNin:  g.in("-("),
			domain.OpAll:  g.all,
			domain.OpLike: g.like,
		},
		DataDepth: 1,
		ExtendCtx: func() any { return &params{used: map[string]bool{}} },
		Resolve: func(text string, ctx *compiler.Context) (Query, error) {
			return Query{Text: text, Params: compiler.Ext[*params](ctx).list}, nil
		},
	}
}

func nonEmpty(children []string) []string {
	res := make([]string, 0, len(children))
	for _, c := range children {
		if c != "" {
			res = append(res, c)
		}
	}
	return res
}

func (g generator) and(op compiler.Operation[string]) (string, error) {
	return strings.Join(nonEmpty(op.Children), " "), nil
}

// or rejects combinators that can never match. An empty string matches
// everything, and no query text matches nothing.
func (g generator) or(op compiler.Operation[string]) (string, error) {
	if len(op.Children) == 0 {
		return "", domain.NewValidationError(domain.UnexpectedValue, op.Value, op.Path)
	}
	if slices.Contains(op.Children, "") {
		return "", domain.ErrSkip
	}
	return "(" + strings.Join(op.Children, "|") + ")", nil
}

func (g generator) nor(op compiler.Operation[string]) (string, error) {
	if len(op.Children) == 0 {
		return "", domain.ErrSkip
	}
	if slices.Contains(op.Children, "") {
		return "", domain.NewValidationError(domain.UnexpectedValue, op.Value, op.Path)
	}
	return "-(" + strings.Join(op.Children, "|") + ")", nil
}

func (g generator) not(op compiler.Operation[string]) (string, error) {
	parts := nonEmpty(op.Children)
	if len(parts) == 0 {
		return "", domain.NewValidationError(domain.UnexpectedValue, op.Value, op.Path)
	}
	return "-(" + strings.Join(parts, " ") + ")", nil
}

func field(op compiler.Operation[string]) string {
	return op.DataPath[0].String()
}

// text returns the string bound for a value. Objects, lists, nulls and regular
// expressions cannot be searched.
func text(n domain.Node, path domain.Path) (string, fieldType, error) {
	sc, ok := n.(domain.Scalar)
	if ok {
		switch typ := typeOf(sc.Value); typ {
		case typeTag:
			return strconv.FormatBool(sc.Value.(bool)), typ, nil
		case typeNumeric:
			f, _ := structure.ToNumber(sc.Value)
			return strconv.FormatFloat(f, 'f', -1, 64), typ, nil
		default:
			if s, isStr := sc.Value.(string); isStr {
				return s, typ, nil
			}
		}
	}
	return "", 0, domain.NewValidationError(domain.UnexpectedValue, n, path)
}

// placeholder binds value and formats it for its type. Text is bound one word
// at a time.
func placeholder(p *params, base string, value string, typ fieldType) string {
	switch typ {
	case typeNumeric:
		v := p.bind(base, value)
		return "[" + v + " " + v + "]"
	case typeTag:
		return "{" + p.bind(base, value) + "}"
	default:
		return `"` + words(p, base, value) + `"`
	}
}

func words(p *params, base string, value string) string {
	parts := make([]string, 0)
	for n, word := range strings.Split(value, " ") {
		if word != "" {
			parts = append(parts, p.bind(base+strconv.Itoa(n), word))
		}
	}
	return strings.Join(parts, " ")
}

func (g generator) eq(prefix string) compiler.OperatorFunc[string] {
	return func(op compiler.Operation[string]) (string, error) {
		val, typ, err := text(op.Value, op.Path)
		if err != nil {
			return "", err
		}
		name := field(op)
		p := compiler.Ext[*params](op.Ctx)
		return prefix + Escape(name) + ":" + placeholder(p, paramName(name), val, typ), nil
	}
}

func (g generator) rng(format string) compiler.OperatorFunc[string] {
	return func(op compiler.Operation[string]) (string, error) {
		f, _ := structure.ToNumber(op.Value.Interface())
		name := field(op)
		v := compiler.Ext[*params](op.Ctx).bind(paramName(name), strconv.FormatFloat(f, 'f', -1, 64))
		return "@" + Escape(name) + ":" + strings.Replace(format, "%s", v, 1), nil
	}
}

func (g generator) in(open string) compiler.OperatorFunc[string] {
	return func(op compiler.Operation[string]) (string, error) {
		seq, _ := op.Value.(domain.Sequence)
		if len(seq) == 0 {
			// nothing can match an empty $in, and RediSearch has no way to
			// say so
			if open == "(" {
				return "", domain.NewValidationError(domain.UnexpectedValue, op.Value, op.Path)
			}
			return "", domain.ErrSkip
		}
		name := field(op)
		p := compiler.Ext[*params](op.Ctx)
		parts := make([]string, len(seq))
		for n, elem := range seq {
			val, typ, err := text(elem, op.Path.Append(domain.Index(n)))
			if err != nil {
				return "", err
			}
			parts[n] = "@" + Escape(name) + ":" + placeholder(p, paramName(name)+strconv.Itoa(n), val, typ)
		}
		return open + strings.Join(parts, "|") + ")", nil
	}
}

func (g generator) all(op compiler.Operation[string]) (string, error) {
	seq, _ := op.Value.(domain.Sequence)
	if len(seq) == 0 {
		return "", domain.ErrSkip
	}
	name := field(op)
	p := compiler.Ext[*params](op.Ctx)
	parts := make([]string, len(seq))
	for n, elem := range seq {
		val, _, err := text(elem, op.Path.Append(domain.Index(n)))
		if err != nil {
			return "", err
		}
		parts[n] = "@" + Escape(name) + ":{" + p.bind(paramName(name)+strconv.Itoa(n), val) + "}"
	}
	return strings.Join(parts, " "), nil
}

// like binds every part of the pattern between wildcards, so "jo*" becomes
// "$name0*".
func (g generator) like(op compiler.Operation[string]) (string, error) {
	pattern, ok := op.Value.Interface().(string)
	if !ok {
		return "", domain.NewValidationError(domain.UnexpectedValue, op.Value, op.Path)
	}
	name := field(op)
	p := compiler.Ext[*params](op.Ctx)
	parts := strings.Split(pattern, "*")
	for n, part := range parts {
		if part != "" {
			parts[n] = words(p, paramName(name)+strconv.Itoa(n), part)
		}
	}
	return "@" + Escape(name) + ":" + strings.Join(parts, "*"), nil
}
