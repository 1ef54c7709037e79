package redisearch

import "github.com/vinicius-lino-figueiredo/criterium/adapter/compiler"

// WithCompilerOptions sets options passed to the underlying compiler.
func WithCompilerOptions(opts ...compiler.Option) Option {
	return func(s *Searcher) {
		s.compilerOpts = append(s.compilerOpts, opts...)
	}
}

// Option configures searcher behavior through the functional options
// pattern.
type Option func(*Searcher)
