package layoutset

import (
	"io"
	"log/slog"

	"github.com/goliatone/go-formlayout/pkg/components"
	"github.com/goliatone/go-formlayout/pkg/layout"
)

// Option customises collection operations.
type Option func(*config)

// Check inspects a persisted layout before conversion. Returning an error
// marks the layout invalid.
type Check func(name string, external *layout.ExternalFormLayout) error

type config struct {
	logger        *slog.Logger
	layoutOptions []layout.Option
	checks        []Check
	generateID    func(typeName string, taken func(string) bool) string
}

// WithLogger sets the logger used to report invalid layouts.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLayoutOptions forwards options to the layout converters and mutations.
func WithLayoutOptions(opts ...layout.Option) Option {
	return func(c *config) {
		c.layoutOptions = append(c.layoutOptions, opts...)
	}
}

// WithCheck registers an additional check run before each conversion.
func WithCheck(check Check) Option {
	return func(c *config) {
		if check != nil {
			c.checks = append(c.checks, check)
		}
	}
}

// WithIDGenerator overrides how navigation button ids are generated.
func WithIDGenerator(generate func(typeName string, taken func(string) bool) string) Option {
	return func(c *config) {
		if generate != nil {
			c.generateID = generate
		}
	}
}

func resolve(opts []Option) config {
	cfg := config{
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		generateID: components.GenerateID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
