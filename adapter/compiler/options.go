package compiler

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/vinicius-lino-figueiredo/criterium/domain"
)

// Option configures a [Compiler].
type Option func(*settings)

type settings struct {
	logger    *slog.Logger
	observer  domain.Observer
	dataDepth *int
	newID     func() uuid.UUID
}

// WithLogger sets the logger used for debug messages. Messages are discarded
// by default.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver sets an observer notified after every compilation.
func WithObserver(o domain.Observer) Option {
	return func(s *settings) {
		s.observer = o
	}
}

// WithDataDepth overrides the data depth of the dialect.
func WithDataDepth(d int) Option {
	return func(s *settings) {
		s.dataDepth = &d
	}
}

// WithIDGenerator sets the function used to identify each compilation. Random
// UUIDs are used by default.
func WithIDGenerator(f func() uuid.UUID) Option {
	return func(s *settings) {
		if f != nil {
			s.newID = f
		}
	}
}
