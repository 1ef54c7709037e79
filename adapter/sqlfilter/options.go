package sqlfilter

import "github.com/vinicius-lino-figueiredo/criterium/adapter/compiler"

// WithStyle sets the placeholder style.
func WithStyle(s Style) Option {
	return func(b *Builder) {
		b.style = s
	}
}

// WithCompilerOptions sets options passed to the underlying compiler.
func WithCompilerOptions(opts ...compiler.Option) Option {
	return func(b *Builder) {
		b.compilerOpts = append(b.compilerOpts, opts...)
	}
}

// Option configures builder behavior through the functional options
// pattern.
type Option func(*Builder)
