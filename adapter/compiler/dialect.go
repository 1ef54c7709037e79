package compiler

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/vinicius-lino-figueiredo/criterium/domain"
)

// Operation is everything an [OperatorFunc] gets to build its artifact.
type Operation[T any] struct {
	// Operator being compiled. Fields holding scalars are compiled as
	// [domain.OpEq] and mappings without operator as [domain.OpAnd].
	Operator domain.Operator
	// Path of the node in the query document.
	Path domain.Path
	// DataPath is the part of Path that addresses the queried data.
	DataPath domain.Path
	// Value is the raw operand.
	Value domain.Node
	// Children holds the artifacts of the sub-queries, in document order.
	Children []T
	// Elements holds the list items that are not sub-queries, such as the
	// values of $in, in document order.
	Elements []domain.Node
	// Ctx is shared by every operator function of a single compilation.
	Ctx *Context
}

// OperatorFunc builds the artifact of a single operator node. Returning
// [domain.ErrSkip] drops the node from its parent. Any other error aborts the
// compilation.
type OperatorFunc[T any] func(op Operation[T]) (T, error)

// Operators maps each supported operator to its code generator.
type Operators[T any] map[domain.Operator]OperatorFunc[T]

// Dialect describes a compilation target. T is the artifact built for every
// node and R is what a compilation returns.
type Dialect[T, R any] struct {
	// Name identifies the dialect in logs and metrics.
	Name string
	// Operators must contain at least [domain.OpAnd] and [domain.OpEq].
	Operators Operators[T]
	// DataDepth is the maximum data path length. Zero means no limit.
	DataDepth int
	// ExtendCtx is called once per compilation, and its result is stored
	// in [Context.Ext].
	ExtendCtx func() any
	// Resolve turns the root artifact into the result. It can only be nil
	// when T and R are the same type.
	Resolve func(artifact T, ctx *Context) (R, error)
	// Reject, when set, replaces every validation error returned by
	// Compile. Returning nil keeps the validation error.
	Reject func(err domain.ValidationError, ctx *Context) error
}

// Context is created for every compilation and passed to every operator
// function of it. Operator functions may use Ext to accumulate state, such as
// bound parameters.
type Context struct {
	ID     uuid.UUID
	Ext    any
	Logger *slog.Logger
}

// Ext returns ctx.Ext as X, or the zero value of X when it has another type.
func Ext[X any](ctx *Context) X {
	x, _ := ctx.Ext.(X)
	return x
}
