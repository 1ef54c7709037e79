package sqlfilter

import (
	"strconv"
	"strings"

	"github.com/vinicius-lino-figueiredo/criterium/adapter/compiler"
	"github.com/vinicius-lino-figueiredo/criterium/adapter/docparser"
	"github.com/vinicius-lino-figueiredo/criterium/domain"
)

// Builder turns queries into WHERE clauses and complete SELECT statements.
type Builder struct {
	compiler     *compiler.Compiler[Expr, Fragment]
	style        Style
	compilerOpts []compiler.Option
}

// NewBuilder returns a Builder. The [Question] style is used by default.
func NewBuilder(opts ...Option) (*Builder, error) {
	b := Builder{}
	for _, opt := range opts {
		opt(&b)
	}
	c, err := compiler.New(NewDialect(b.style), b.compilerOpts...)
	if err != nil {
		return nil, err
	}
	b.compiler = c
	return &b, nil
}

// Style returns the placeholder style of the builder.
func (b *Builder) Style() Style {
	return b.style
}

// Where compiles query into a boolean expression.
func (b *Builder) Where(query any) (Fragment, error) {
	return b.compiler.Compile(query)
}

// Select appends to base the WHERE, ORDER BY, LIMIT and OFFSET clauses
// described by query. Root keys $sort, $skip and $limit are read as result
// modifiers, and opts override them.
func (b *Builder) Select(base string, query any, opts ...domain.QueryOption) (Fragment, error) {
	filter, options, err := docparser.Split(docparser.FromValue(query))
	if err != nil {
		return Fragment{}, err
	}
	options = options.Apply(opts...)

	where, err := b.Where(filter)
	if err != nil {
		return Fragment{}, err
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(base))
	if where.SQL != "TRUE" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where.SQL)
	}
	if len(options.Sort) > 0 {
		sb.WriteString(" ORDER BY ")
		for n, crit := range options.Sort {
			if n > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(column(domain.ParsePath(crit.Key)))
			if crit.Order < 0 {
				sb.WriteString(" DESC")
			} else {
				sb.WriteString(" ASC")
			}
		}
	}
	switch {
	case options.Limit > 0:
		sb.WriteString(" LIMIT " + strconv.FormatInt(options.Limit, 10))
	case options.Skip > 0 && !b.style.postgres():
		// SQLite only accepts OFFSET after a LIMIT
		sb.WriteString(" LIMIT -1")
	}
	if options.Skip > 0 {
		sb.WriteString(" OFFSET " + strconv.FormatInt(options.Skip, 10))
	}
	return Fragment{SQL: sb.String(), Args: where.Args}, nil
}
