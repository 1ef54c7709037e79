// Package criterium compiles MongoDB-like filter queries into other query
// languages.
//
// A query is a document such as {"name": "John", "age": {"$gt": 20}}. It is
// walked bottom-up, every node is validated, and the code generators of a
// [Dialect] build the result. Three dialects are available: an in-memory
// [Predicate], parameterized SQL and RediSearch queries. New dialects only have
// to provide an [OperatorFunc] for each operator they support, and are
// compiled with [NewCompiler].
package criterium

import (
	"github.com/vinicius-lino-figueiredo/criterium/adapter/compiler"
	"github.com/vinicius-lino-figueiredo/criterium/adapter/docparser"
	"github.com/vinicius-lino-figueiredo/criterium/adapter/predicate"
	"github.com/vinicius-lino-figueiredo/criterium/adapter/redisearch"
	"github.com/vinicius-lino-figueiredo/criterium/adapter/sqlfilter"
	"github.com/vinicius-lino-figueiredo/criterium/domain"
)

var (
	// ErrUnexpectedValue is wrapped by validation errors of operators given
	// an operand of the wrong shape.
	ErrUnexpectedValue = domain.ErrUnexpectedValue
	// ErrPropertyNotFound is wrapped by validation errors of field operators
	// used without a field.
	ErrPropertyNotFound = domain.ErrPropertyNotFound
	// ErrOperatorNotSupported is wrapped by validation errors of unknown
	// operators and operators not implemented by the dialect.
	ErrOperatorNotSupported = domain.ErrOperatorNotSupported
	// ErrSchemaValidation is wrapped by validation errors of queries on
	// fields that cannot be queried.
	ErrSchemaValidation = domain.ErrSchemaValidation
	// ErrMaxDataDepth is wrapped by validation errors of fields nested
	// deeper than the dialect allows.
	ErrMaxDataDepth = domain.ErrMaxDataDepth
	// ErrConfiguration is wrapped by the errors of invalid dialects, which
	// are returned by [NewCompiler].
	ErrConfiguration = domain.ErrConfiguration
	// ErrSkip can be returned by an [OperatorFunc] to drop its node from
	// the result.
	ErrSkip = domain.ErrSkip
)

// ValidationError describes why a query was rejected and where.
type ValidationError = domain.ValidationError

// ErrorKind classifies a [ValidationError].
type ErrorKind = domain.ErrorKind

// Query document nodes.
type (
	Node     = domain.Node
	Scalar   = domain.Scalar
	Sequence = domain.Sequence
	Mapping  = domain.Mapping
	Entry    = domain.Entry
	Path     = domain.Path
	Operator = domain.Operator
)

// Dialect describes a compilation target.
type Dialect[T, R any] = compiler.Dialect[T, R]

// Operation is the input of an [OperatorFunc].
type Operation[T any] = compiler.Operation[T]

// OperatorFunc builds the artifact of one operator.
type OperatorFunc[T any] = compiler.OperatorFunc[T]

// Operators maps operators to their code generators.
type Operators[T any] = compiler.Operators[T]

// Compiler compiles queries for a single dialect.
type Compiler[T, R any] = compiler.Compiler[T, R]

// Predicate is a compiled in-memory query.
type Predicate = predicate.Predicate

// Compiler options.
var (
	WithLogger      = compiler.WithLogger
	WithObserver    = compiler.WithObserver
	WithDataDepth   = compiler.WithDataDepth
	WithIDGenerator = compiler.WithIDGenerator
)

// NewCompiler returns a compiler for dialect. The following options are
// accepted:
//
// - [WithLogger]: sets the logger for debug messages.
//
// - [WithObserver]: sets an observer notified after every compilation.
//
// - [WithDataDepth]: overrides the data depth of the dialect.
//
// - [WithIDGenerator]: sets the function identifying each compilation.
func NewCompiler[T, R any](dialect Dialect[T, R], options ...compiler.Option) (*Compiler[T, R], error) {
	return compiler.New(dialect, options...)
}

// NewQuerier returns a querier that filters, sorts and pages slices in memory.
func NewQuerier(options ...predicate.Option) (*predicate.Querier, error) {
	return predicate.NewQuerier(options...)
}

// NewSQLBuilder returns a builder of SQL WHERE clauses and SELECT statements.
func NewSQLBuilder(options ...sqlfilter.Option) (*sqlfilter.Builder, error) {
	return sqlfilter.NewBuilder(options...)
}

// NewSearcher returns a builder of RediSearch FT.SEARCH commands.
func NewSearcher(options ...redisearch.Option) (*redisearch.Searcher, error) {
	return redisearch.NewSearcher(options...)
}

// ParseJSON parses a JSON query document, keeping the order of its keys.
func ParseJSON(data []byte) (Node, error) {
	return docparser.ParseJSON(data)
}

// ParseYAML parses a YAML query document, keeping the order of its keys.
func ParseYAML(data []byte) (Node, error) {
	return docparser.ParseYAML(data)
}
