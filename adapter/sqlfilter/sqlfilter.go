// Package sqlfilter compiles queries into parameterized SQL boolean
// expressions, usable in the WHERE clause of SQLite and PostgreSQL
// statements.
package sqlfilter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/vinicius-lino-figueiredo/criterium/adapter/compiler"
	"github.com/vinicius-lino-figueiredo/criterium/domain"
	"github.com/vinicius-lino-figueiredo/criterium/pkg/structure"
)

// DataDepth is the maximum length of a column reference, as in
// "table"."column".
const DataDepth = 2

// Style selects how bound parameters are written.
type Style uint8

// Placeholder styles.
const (
	// Question writes every parameter as ?, as SQLite and MySQL expect.
	Question Style = iota
	// Dollar writes numbered PostgreSQL parameters: $1, $2...
	Dollar
	// Named writes @p1, @p2... to be used with [pgx.NamedArgs].
	Named
)

var styleNames = [...]string{Question: "question", Dollar: "dollar", Named: "named"}

func (s Style) String() string {
	if int(s) < len(styleNames) {
		return styleNames[s]
	}
	return "style(" + strconv.Itoa(int(s)) + ")"
}

// ParseStyle returns the style called name.
func ParseStyle(name string) (Style, error) {
	for n, s := range styleNames {
		if s == name {
			return Style(n), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown placeholder style %q", domain.ErrConfiguration, name)
}

// postgres reports whether the style targets PostgreSQL.
func (s Style) postgres() bool {
	return s == Dollar || s == Named
}

// Expr is a boolean SQL expression.
type Expr string

// Fragment is a compiled SQL expression and its bound arguments, in placeholder
// order.
type Fragment struct {
	SQL  string
	Args []any
}

// NamedArgs returns the arguments keyed as p1, p2..., matching the [Named]
// style.
func (f Fragment) NamedArgs() pgx.NamedArgs {
	args := make(pgx.NamedArgs, len(f.Args))
	for n, v := range f.Args {
		args["p"+strconv.Itoa(n+1)] = v
	}
	return args
}

// params accumulates the arguments bound during a single compilation.
type params struct {
	style Style
	args  []any
}

func (p *params) bind(v any) string {
	p.args = append(p.args, v)
	switch p.style {
	case Dollar:
		return "$" + strconv.Itoa(len(p.args))
	case Named:
		return "@p" + strconv.Itoa(len(p.args))
	default:
		return "?"
	}
}

type generator struct {
	style Style
}

// NewDialect returns the SQL dialect for style. $all is only available for
// PostgreSQL styles, and regular expressions are rejected by the [Question]
// style.
func NewDialect(style Style) compiler.Dialect[Expr, Fragment] {
	g := generator{style: style}
	ops := compiler.Operators[Expr]{
		domain.OpAnd:    g.and,
		domain.OpOr:     g.or,
		domain.OpNor:    g.nor,
		domain.OpNot:    g.not,
		domain.OpEq:     g.eq,
		domain.OpNe:     g.ne,
		domain.OpGt:     g.compare(">"),
		domain.OpGte:    g.compare(">="),
		domain.OpLt:     g.compare("<"),
		domain.OpLte:    g.compare("<="),
		domain.OpIn:     g.in("IN", "FALSE"),
		domain.OpNin:    g.in("NOT IN", "TRUE"),
		domain.OpLike:   g.like,
		domain.OpExists: g.exists,
	}
	if style.postgres() {
		ops[domain.OpAll] = g.all
	}
	return compiler.Dialect[Expr, Fragment]{
		Name:      "sql/" + style.String(),
		Operators: ops,
		DataDepth: DataDepth,
		ExtendCtx: func() any { return &params{style: style} },
		Resolve: func(e Expr, ctx *compiler.Context) (Fragment, error) {
			return Fragment{SQL: string(e), Args: compiler.Ext[*params](ctx).args}, nil
		},
	}
}

// Quote quotes an identifier, doubling inner quotes.
func Quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func column(dataPath domain.Path) string {
	parts := make([]string, len(dataPath))
	for n, seg := range dataPath {
		parts[n] = Quote(seg.String())
	}
	return strings.Join(parts, ".")
}

func join(children []Expr, sep string) string {
	parts := make([]string, len(children))
	for n, c := range children {
		parts[n] = string(c)
	}
	return strings.Join(parts, " "+sep+" ")
}

func (g generator) and(op compiler.Operation[Expr]) (Expr, error) {
	switch len(op.Children) {
	case 0:
		return "TRUE", nil
	case 1:
		return op.Children[0], nil
	default:
		return Expr("(" + join(op.Children, "AND") + ")"), nil
	}
}

func (g generator) or(op compiler.Operation[Expr]) (Expr, error) {
	switch len(op.Children) {
	case 0:
		return "FALSE", nil
	case 1:
		return op.Children[0], nil
	default:
		return Expr("(" + join(op.Children, "OR") + ")"), nil
	}
}

func (g generator) nor(op compiler.Operation[Expr]) (Expr, error) {
	if len(op.Children) == 0 {
		return "TRUE", nil
	}
	return Expr("NOT (" + join(op.Children, "OR") + ")"), nil
}

func (g generator) not(op compiler.Operation[Expr]) (Expr, error) {
	if len(op.Children) == 0 {
		return "FALSE", nil
	}
	return Expr("NOT (" + join(op.Children, "AND") + ")"), nil
}

// value returns the operand as a bindable argument. Objects and lists cannot
// be bound.
func value(n domain.Node, path domain.Path) (any, error) {
	sc, ok := n.(domain.Scalar)
	if !ok {
		return nil, domain.NewValidationError(domain.UnexpectedValue, n, path)
	}
	if _, isRe := sc.Value.(*regexp.Regexp); isRe {
		return nil, domain.NewValidationError(domain.UnexpectedValue, n, path)
	}
	return sc.Value, nil
}

func (g generator) eq(op compiler.Operation[Expr]) (Expr, error) {
	if re, ok := op.Value.Interface().(*regexp.Regexp); ok {
		return g.regex(op, re)
	}
	v, err := value(op.Value, op.Path)
	if err != nil {
		return "", err
	}
	col := column(op.DataPath)
	if v == nil {
		return Expr(col + " IS NULL"), nil
	}
	return Expr(col + " = " + compiler.Ext[*params](op.Ctx).bind(v)), nil
}

func (g generator) ne(op compiler.Operation[Expr]) (Expr, error) {
	v, err := value(op.Value, op.Path)
	if err != nil {
		return "", err
	}
	col := column(op.DataPath)
	if v == nil {
		return Expr(col + " IS NOT NULL"), nil
	}
	return Expr(col + " <> " + compiler.Ext[*params](op.Ctx).bind(v)), nil
}

func (g generator) compare(sign string) compiler.OperatorFunc[Expr] {
	return func(op compiler.Operation[Expr]) (Expr, error) {
		v := op.Value.Interface()
		if _, isTime := v.(time.Time); !isTime {
			v, _ = structure.ToNumber(v)
		}
		return Expr(column(op.DataPath) + " " + sign + " " + compiler.Ext[*params](op.Ctx).bind(v)), nil
	}
}

func (g generator) placeholders(op compiler.Operation[Expr]) ([]string, error) {
	p := compiler.Ext[*params](op.Ctx)
	seq, _ := op.Value.(domain.Sequence)
	res := make([]string, len(seq))
	for n, elem := range seq {
		v, err := value(elem, op.Path.Append(domain.Index(n)))
		if err != nil {
			return nil, err
		}
		res[n] = p.bind(v)
	}
	return res, nil
}

func (g generator) in(keyword, empty string) compiler.OperatorFunc[Expr] {
	return func(op compiler.Operation[Expr]) (Expr, error) {
		phs, err := g.placeholders(op)
		if err != nil {
			return "", err
		}
		if len(phs) == 0 {
			return Expr(empty), nil
		}
		return Expr(column(op.DataPath) + " " + keyword + " (" + strings.Join(phs, ", ") + ")"), nil
	}
}

func (g generator) all(op compiler.Operation[Expr]) (Expr, error) {
	phs, err := g.placeholders(op)
	if err != nil {
		return "", err
	}
	if len(phs) == 0 {
		return "TRUE", nil
	}
	return Expr(column(op.DataPath) + " @> ARRAY[" + strings.Join(phs, ", ") + "]"), nil
}

func (g generator) like(op compiler.Operation[Expr]) (Expr, error) {
	switch v := op.Value.Interface().(type) {
	case *regexp.Regexp:
		return g.regex(op, v)
	default:
		return Expr(column(op.DataPath) + " LIKE " + compiler.Ext[*params](op.Ctx).bind(v)), nil
	}
}

// regex matches with the PostgreSQL ~ operator. Other engines have no
// standard regular expression operator.
func (g generator) regex(op compiler.Operation[Expr], re *regexp.Regexp) (Expr, error) {
	if !g.style.postgres() {
		return "", domain.NewValidationError(domain.UnexpectedValue, op.Value, op.Path)
	}
	return Expr(column(op.DataPath) + " ~ " + compiler.Ext[*params](op.Ctx).bind(re.String())), nil
}

func (g generator) exists(op compiler.Operation[Expr]) (Expr, error) {
	col := column(op.DataPath)
	if want, _ := op.Value.Interface().(bool); want {
		return Expr(col + " IS NOT NULL"), nil
	}
	return Expr(col + " IS NULL"), nil
}
