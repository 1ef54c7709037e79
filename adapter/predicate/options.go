package predicate

import (
	"github.com/vinicius-lino-figueiredo/criterium/adapter/compiler"
	"github.com/vinicius-lino-figueiredo/criterium/domain"
)

// WithComparer sets the comparer used by operators and sorting.
func WithComparer(c domain.Comparer) Option {
	return func(q *Querier) {
		q.cmpr = c
	}
}

// WithFieldNavigator sets the field navigator used to read item fields.
func WithFieldNavigator(f domain.FieldNavigator) Option {
	return func(q *Querier) {
		q.fn = f
	}
}

// WithDecoder sets the decoder used by [Querier.Find].
func WithDecoder(d domain.Decoder) Option {
	return func(q *Querier) {
		q.dec = d
	}
}

// WithCompilerOptions sets options passed to the underlying compiler.
func WithCompilerOptions(opts ...compiler.Option) Option {
	return func(q *Querier) {
		q.compilerOpts = append(q.compilerOpts, opts...)
	}
}

// Option configures querier behavior through the functional options
// pattern.
type Option func(*Querier)
