// Package store persists external layouts and layout-set settings. A layout
// set belongs to an app, which belongs to an org; every layout in a set is
// addressed by name.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/goliatone/go-formlayout/pkg/layout"
	"github.com/goliatone/go-formlayout/pkg/layoutset"
)

var (
	// ErrNotFound is returned when a layout or settings document is missing.
	ErrNotFound = errors.New("store: not found")
	// ErrInvalidRef is returned for empty or unsafe org, app, set or layout
	// names.
	ErrInvalidRef = errors.New("store: invalid reference")
)

// Ref addresses a layout set.
type Ref struct {
	Org       string
	App       string
	LayoutSet string
}

// String renders the ref as org/app/set.
func (r Ref) String() string {
	return r.Org + "/" + r.App + "/" + r.LayoutSet
}

// Validate reports whether every segment is a safe, non-empty name.
func (r Ref) Validate() error {
	segments := []struct{ label, value string }{
		{"org", r.Org}, {"app", r.App}, {"layout set", r.LayoutSet},
	}
	for _, segment := range segments {
		if err := ValidateName(segment.value); err != nil {
			return fmt.Errorf("%s: %w", segment.label, err)
		}
	}
	return nil
}

// ValidateName rejects empty names and names that could escape a directory.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		return fmt.Errorf("%w: empty name", ErrInvalidRef)
	case trimmed != name:
		return fmt.Errorf("%w: %q has surrounding whitespace", ErrInvalidRef, name)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidRef, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidRef, name)
	}
	return nil
}

// Store loads and saves the layouts of a layout set.
type Store interface {
	LoadLayout(ctx context.Context, ref Ref, name string) (*layout.ExternalFormLayout, error)
	SaveLayout(ctx context.Context, ref Ref, name string, external *layout.ExternalFormLayout) error
	DeleteLayout(ctx context.Context, ref Ref, name string) error
	ListLayouts(ctx context.Context, ref Ref) ([]string, error)
	// LoadRaw returns the undecoded documents of every layout in the set.
	LoadRaw(ctx context.Context, ref Ref) (map[string][]byte, error)
	LoadSettings(ctx context.Context, ref Ref) (layoutset.Settings, error)
	SaveSettings(ctx context.Context, ref Ref, settings layoutset.Settings) error
}

// Option customises a store.
type Option func(*options)

type options struct {
	logger *slog.Logger
	now    func() time.Time
}

// WithLogger routes store diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock overrides the timestamp source used for updated_at columns.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func resolve(opts []Option) options {
	o := options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func checkLayoutRef(ref Ref, name string) error {
	if err := ref.Validate(); err != nil {
		return err
	}
	if err := ValidateName(name); err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	return nil
}
