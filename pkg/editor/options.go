package editor

import (
	"io"
	"log/slog"

	"github.com/goliatone/go-formlayout/pkg/layout"
	"github.com/goliatone/go-formlayout/pkg/layoutset"
)

// Option customises a Service.
type Option func(*Service)

// WithLogger sets the service logger. Nil keeps the discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxDepth overrides the nesting limit enforced after every mutation.
func WithMaxDepth(depth int) Option {
	return func(s *Service) {
		if depth > 0 {
			s.maxDepth = depth
		}
	}
}

// WithLayoutOptions forwards options to the converters and mutations.
func WithLayoutOptions(opts ...layout.Option) Option {
	return func(s *Service) {
		s.layoutOptions = append(s.layoutOptions, opts...)
	}
}

// WithIDGenerator overrides how navigation button ids are chosen.
func WithIDGenerator(generate func(typeName string, taken func(string) bool) string) Option {
	return func(s *Service) {
		if generate != nil {
			s.setOptions = append(s.setOptions, layoutset.WithIDGenerator(generate))
		}
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
