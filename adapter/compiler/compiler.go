// Package compiler turns query documents into dialect artifacts. It walks the
// query bottom-up, classifies and validates every node and hands each operator
// to the code generator registered by the dialect.
package compiler

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/goccy/go-reflect"
	"github.com/google/uuid"
	"github.com/vinicius-lino-figueiredo/criterium/adapter/docparser"
	"github.com/vinicius-lino-figueiredo/criterium/adapter/validator"
	"github.com/vinicius-lino-figueiredo/criterium/domain"
	"github.com/vinicius-lino-figueiredo/criterium/pkg/fold"
)

// Compiler compiles queries for a single dialect. It is safe for concurrent
// use.
type Compiler[T, R any] struct {
	name      string
	table     [domain.OperatorCount]OperatorFunc[T]
	dataDepth int
	extendCtx func() any
	resolve   func(T, *Context) (R, error)
	reject    func(domain.ValidationError, *Context) error
	logger    *slog.Logger
	observer  domain.Observer
	newID     func() uuid.UUID
}

// New returns a compiler for dialect. It fails with an error wrapping
// [domain.ErrConfiguration] if the dialect lacks $and or $eq, or if it has no
// resolve function and T differs from R.
func New[T, R any](dialect Dialect[T, R], options ...Option) (*Compiler[T, R], error) {
	s := settings{
		logger: slog.New(slog.DiscardHandler),
		newID:  uuid.New,
	}
	for _, opt := range options {
		opt(&s)
	}

	for _, op := range [...]domain.Operator{domain.OpEq, domain.OpAnd} {
		if dialect.Operators[op] == nil {
			return nil, domain.ErrMissingOperator{Operator: op}
		}
	}

	resolve := dialect.Resolve
	if resolve == nil {
		var ok bool
		if resolve, ok = any(Identity[T]).(func(T, *Context) (R, error)); !ok {
			return nil, domain.ErrResolveType{
				Artifact: typeName[T](),
				Result:   typeName[R](),
			}
		}
	}

	c := &Compiler[T, R]{
		name:      dialect.Name,
		dataDepth: dialect.DataDepth,
		extendCtx: dialect.ExtendCtx,
		resolve:   resolve,
		reject:    dialect.Reject,
		logger:    s.logger,
		observer:  s.observer,
		newID:     s.newID,
	}
	if s.dataDepth != nil {
		c.dataDepth = *s.dataDepth
	}
	for op, fn := range dialect.Operators {
		if int(op) < domain.OperatorCount {
			c.table[op] = fn
		}
	}
	return c, nil
}

// Identity is the resolve function used when a dialect has none.
func Identity[T any](t T, _ *Context) (T, error) {
	return t, nil
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}

// Name returns the dialect name.
func (c *Compiler[T, R]) Name() string {
	return c.name
}

// Compile compiles query, which can be a [domain.Node] or any go value accepted
// by [docparser.FromValue]. Invalid queries return a [domain.ValidationError]
// describing the first problem found, unless the dialect rejects it with
// another error.
func (c *Compiler[T, R]) Compile(query any) (R, error) {
	start := time.Now()
	res, cause, err := c.compile(query)
	if c.observer != nil {
		c.observer.Observe(c.name, time.Since(start), cause)
	}
	return res, err
}

// compile returns the error found while compiling and the one returned to the
// caller, which differ when the dialect rejects the query with its own error.
func (c *Compiler[T, R]) compile(query any) (R, error, error) {
	var zero R
	ctx := &Context{ID: c.newID(), Logger: c.logger}
	if c.extendCtx != nil {
		ctx.Ext = c.extendCtx()
	}
	c.logger.Debug("compiling query", "dialect", c.name, "id", ctx.ID)

	node := docparser.FromValue(query)
	if node.Kind() != domain.KindMapping {
		err := domain.NewValidationError(domain.UnexpectedValue, node, domain.Path{})
		return zero, err, c.fail(err, ctx)
	}

	root, _, err := fold.Fold(c.reducer(ctx), node)
	if err != nil {
		return zero, err, c.fail(err, ctx)
	}
	res, err := c.resolve(root.artifact, ctx)
	return res, err, err
}

// fail passes validation errors to the dialect's Reject hook. The original
// error is kept when the hook returns nil.
func (c *Compiler[T, R]) fail(err error, ctx *Context) error {
	var verr domain.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	c.logger.Debug("query rejected",
		"dialect", c.name,
		"id", ctx.ID,
		"kind", verr.Kind.String(),
		"path", verr.Path.String(),
	)
	if c.reject != nil {
		if rerr := c.reject(verr, ctx); rerr != nil {
			return rerr
		}
	}
	return err
}

// part is the fold result of a node: either an artifact or a list item passed
// through untouched.
type part[T any] struct {
	artifact  T
	literal   domain.Node
	isLiteral bool
}

func (c *Compiler[T, R]) reducer(ctx *Context) fold.Reducer[part[T]] {
	return func(children []part[T], node domain.Node, path domain.Path, _ domain.Node) (part[T], bool, error) {
		dataPath := path.DataPath()
		seg, ok := path.Last()
		switch {
		case !ok:
			return c.root(children, node, path, ctx)
		case seg.IsIndex:
			return c.element(children, node, path, dataPath, ctx)
		case domain.IsOperator(seg.Key):
			op, _ := domain.ParseOperator(seg.Key)
			return c.operator(op, children, node, path, dataPath, ctx)
		case !strings.HasPrefix(seg.Key, "$"):
			return c.field(children, node, path, dataPath, ctx)
		default:
			return part[T]{}, false, domain.NewValidationError(domain.OperatorNotSupported, node, path)
		}
	}
}

func (c *Compiler[T, R]) root(children []part[T], node domain.Node, path domain.Path, ctx *Context) (part[T], bool, error) {
	return c.invoke(domain.OpAnd, children, node, path, domain.Path{}, ctx)
}

func (c *Compiler[T, R]) operator(op domain.Operator, children []part[T], node domain.Node, path, dataPath domain.Path, ctx *Context) (part[T], bool, error) {
	if c.table[op] == nil {
		return part[T]{}, false, domain.NewValidationError(domain.OperatorNotSupported, node, path)
	}
	if err := c.check(op, node, path, dataPath); err != nil {
		return part[T]{}, false, err
	}
	return c.invoke(op, children, node, path, dataPath, ctx)
}

func (c *Compiler[T, R]) field(children []part[T], node domain.Node, path, dataPath domain.Path, ctx *Context) (part[T], bool, error) {
	switch node.Kind() {
	case domain.KindMapping:
		return c.invoke(domain.OpAnd, children, node, path, dataPath, ctx)
	case domain.KindSequence:
		return part[T]{}, false, domain.NewValidationError(domain.OperatorNotSupported, node, path)
	default:
		if err := c.check(domain.OpEq, node, path, dataPath); err != nil {
			return part[T]{}, false, err
		}
		return c.invoke(domain.OpEq, children, node, path, dataPath, ctx)
	}
}

func (c *Compiler[T, R]) element(children []part[T], node domain.Node, path, dataPath domain.Path, ctx *Context) (part[T], bool, error) {
	if node.Kind() == domain.KindMapping {
		return c.invoke(domain.OpAnd, children, node, path, dataPath, ctx)
	}
	return part[T]{literal: node, isLiteral: true}, true, nil
}

// check runs the validator and then the data depth rule.
func (c *Compiler[T, R]) check(op domain.Operator, node domain.Node, path, dataPath domain.Path) error {
	if err := validator.Validate(op, path, node, dataPath); err != nil {
		return err
	}
	if c.dataDepth > 0 && len(dataPath) > c.dataDepth {
		return domain.NewValidationError(domain.MaxDataDepth, node, path)
	}
	return nil
}

func (c *Compiler[T, R]) invoke(op domain.Operator, children []part[T], node domain.Node, path, dataPath domain.Path, ctx *Context) (part[T], bool, error) {
	operation := Operation[T]{
		Operator: op,
		Path:     path,
		DataPath: dataPath,
		Value:    node,
		Ctx:      ctx,
	}
	for _, child := range children {
		if child.isLiteral {
			operation.Elements = append(operation.Elements, child.literal)
		} else {
			operation.Children = append(operation.Children, child.artifact)
		}
	}

	res, err := c.table[op](operation)
	if errors.Is(err, domain.ErrSkip) {
		return part[T]{}, false, nil
	}
	if err != nil {
		return part[T]{}, false, err
	}
	return part[T]{artifact: res}, true, nil
}
