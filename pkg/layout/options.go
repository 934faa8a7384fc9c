package layout

import "github.com/goliatone/go-formlayout/pkg/components"

// Option customises conversion and item construction.
type Option func(*settings)

type settings struct {
	registry *components.Registry
}

// WithRegistry overrides the component type registry. The shared
// components.Default registry is used otherwise.
func WithRegistry(registry *components.Registry) Option {
	return func(s *settings) {
		if registry != nil {
			s.registry = registry
		}
	}
}

func resolveSettings(opts []Option) settings {
	s := settings{registry: components.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}
