// Package editor applies layout mutations against a store. Writes to the
// same layout are serialised, every mutation is checked against the nesting
// limit before it is saved, and page add/delete keep the settings and the
// navigation buttons of the set in step.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/goliatone/go-formlayout/pkg/layout"
	"github.com/goliatone/go-formlayout/pkg/layoutset"
	"github.com/goliatone/go-formlayout/pkg/store"
)

// ErrDepthExceeded is returned when a mutation would nest containers deeper
// than the configured limit. Nothing is saved in that case.
var ErrDepthExceeded = errors.New("editor: maximum nesting depth exceeded")

// Mutation transforms a layout. Functions from the layout package adapt to
// it with a closure.
type Mutation func(layout.Layout) (layout.Layout, error)

// Set is an opened layout set.
type Set struct {
	Layouts  map[string]layout.Layout
	Invalid  []string
	Errors   map[string]error
	Settings layoutset.Settings
}

// Service coordinates mutations and persistence.
type Service struct {
	store         store.Store
	logger        *slog.Logger
	maxDepth      int
	layoutOptions []layout.Option
	setOptions    []layoutset.Option

	mu    sync.Mutex
	sets  map[string]*sync.RWMutex
	pages map[string]*sync.Mutex
}

// New constructs a Service on top of s.
func New(s store.Store, opts ...Option) *Service {
	svc := &Service{
		store:    s,
		logger:   discardLogger(),
		maxDepth: layout.MaxNestedGroupLevel,
		sets:     map[string]*sync.RWMutex{},
		pages:    map[string]*sync.Mutex{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

func (s *Service) collectionOptions() []layoutset.Option {
	out := []layoutset.Option{
		layoutset.WithLogger(s.logger),
		layoutset.WithLayoutOptions(s.layoutOptions...),
	}
	return append(out, s.setOptions...)
}

func (s *Service) setLock(ref store.Ref) *sync.RWMutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ref.String()
	lock, ok := s.sets[key]
	if !ok {
		lock = &sync.RWMutex{}
		s.sets[key] = lock
	}
	return lock
}

func (s *Service) pageLock(ref store.Ref, name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ref.String() + "#" + name
	lock, ok := s.pages[key]
	if !ok {
		lock = &sync.Mutex{}
		s.pages[key] = lock
	}
	return lock
}

// Open loads every layout of the set. Layouts that fail to decode or
// convert are reported in Invalid instead of failing the whole set. A set
// without settings gets settings listing its layouts in name order.
func (s *Service) Open(ctx context.Context, ref store.Ref) (Set, error) {
	lock := s.setLock(ref)
	lock.RLock()
	defer lock.RUnlock()
	return s.open(ctx, ref)
}

func (s *Service) open(ctx context.Context, ref store.Ref) (Set, error) {
	raw, err := s.store.LoadRaw(ctx, ref)
	if err != nil {
		return Set{}, fmt.Errorf("editor: open %s: %w", ref, err)
	}
	conversion := layoutset.DecodeAndConvert(raw, s.collectionOptions()...)
	settings, err := s.settings(ctx, ref)
	if err != nil {
		return Set{}, err
	}
	if len(conversion.Invalid) > 0 {
		s.logger.Warn("layout set has invalid layouts",
			slog.String("ref", ref.String()),
			slog.Any("invalid", conversion.Invalid),
		)
	}
	return Set{
		Layouts:  conversion.Converted,
		Invalid:  conversion.Invalid,
		Errors:   conversion.Errors,
		Settings: settings,
	}, nil
}

func (s *Service) settings(ctx context.Context, ref store.Ref) (layoutset.Settings, error) {
	settings, err := s.store.LoadSettings(ctx, ref)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return layoutset.Settings{}, fmt.Errorf("editor: settings %s: %w", ref, err)
	}
	names, err := s.store.ListLayouts(ctx, ref)
	if err != nil {
		return layoutset.Settings{}, fmt.Errorf("editor: settings %s: %w", ref, err)
	}
	return layoutset.NewSettings(names...), nil
}

// Load returns the internal form of a single layout.
func (s *Service) Load(ctx context.Context, ref store.Ref, name string) (layout.Layout, error) {
	external, err := s.store.LoadLayout(ctx, ref, name)
	if err != nil {
		return layout.Layout{}, fmt.Errorf("editor: %w", err)
	}
	internal, err := layout.ToInternal(external, s.layoutOptions...)
	if err != nil {
		return layout.Layout{}, fmt.Errorf("editor: layout %q: %w", name, err)
	}
	return internal, nil
}

// Apply loads the layout, runs mutation, checks the nesting limit and saves
// the result. Concurrent Apply calls on the same layout run one at a time.
func (s *Service) Apply(ctx context.Context, ref store.Ref, name string, mutation Mutation) (layout.Layout, error) {
	if mutation == nil {
		return layout.Layout{}, errors.New("editor: mutation is nil")
	}
	setLock := s.setLock(ref)
	setLock.RLock()
	defer setLock.RUnlock()
	pageLock := s.pageLock(ref, name)
	pageLock.Lock()
	defer pageLock.Unlock()

	current, err := s.Load(ctx, ref, name)
	if err != nil {
		return layout.Layout{}, err
	}
	updated, err := mutation(current)
	if err != nil {
		return layout.Layout{}, fmt.Errorf("editor: layout %q: %w", name, err)
	}
	if depth := layout.GetDepth(updated); depth > s.maxDepth {
		return layout.Layout{}, fmt.Errorf("%w: layout %q would reach depth %d (limit %d)", ErrDepthExceeded, name, depth, s.maxDepth)
	}
	if err := s.store.SaveLayout(ctx, ref, name, layout.ToExternal(updated)); err != nil {
		return layout.Layout{}, fmt.Errorf("editor: %w", err)
	}
	s.logger.Debug("layout updated", slog.String("ref", ref.String()), slog.String("layout", name))
	return updated, nil
}

// AddLayout creates an empty layout, appends it to the page order and
// brings navigation buttons in line with the new page count.
func (s *Service) AddLayout(ctx context.Context, ref store.Ref, name string) (layoutset.Settings, error) {
	lock := s.setLock(ref)
	lock.Lock()
	defer lock.Unlock()

	if err := store.ValidateName(name); err != nil {
		return layoutset.Settings{}, fmt.Errorf("editor: %w", err)
	}
	settings, err := s.settings(ctx, ref)
	if err != nil {
		return layoutset.Settings{}, err
	}
	updated, err := settings.AddPage(name)
	if err != nil {
		return layoutset.Settings{}, fmt.Errorf("editor: %w", err)
	}
	empty := layout.ToExternal(layout.CreateEmptyLayout())
	if err := s.store.SaveLayout(ctx, ref, name, empty); err != nil {
		return layoutset.Settings{}, fmt.Errorf("editor: %w", err)
	}
	if err := s.store.SaveSettings(ctx, ref, updated); err != nil {
		return layoutset.Settings{}, fmt.Errorf("editor: %w", err)
	}
	if err := s.syncNavigation(ctx, ref, name, updated.Pages.ReceiptLayoutName); err != nil {
		return layoutset.Settings{}, err
	}
	s.logger.Info("layout added", slog.String("ref", ref.String()), slog.String("layout", name))
	return updated, nil
}

// DeleteLayout removes a layout, drops it from the settings and returns the
// layout to select next.
func (s *Service) DeleteLayout(ctx context.Context, ref store.Ref, name, currentLayoutName string) (string, error) {
	lock := s.setLock(ref)
	lock.Lock()
	defer lock.Unlock()

	settings, err := s.settings(ctx, ref)
	if err != nil {
		return "", err
	}
	updated, next := settings, currentLayoutName
	if settings.HasPage(name) {
		var fallback string
		if updated, fallback, err = settings.RemovePage(name); err != nil {
			return "", fmt.Errorf("editor: %w", err)
		}
		if next == name || !updated.HasPage(next) {
			next = fallback
		}
	}
	if next == name {
		next = layoutset.FirstAvailableLayout(name, updated.Pages.Order)
	}
	if err := s.store.DeleteLayout(ctx, ref, name); err != nil {
		return "", fmt.Errorf("editor: %w", err)
	}
	if err := s.store.SaveSettings(ctx, ref, updated); err != nil {
		return "", fmt.Errorf("editor: %w", err)
	}
	if err := s.syncNavigation(ctx, ref, next, updated.Pages.ReceiptLayoutName); err != nil {
		return "", err
	}
	s.logger.Info("layout deleted",
		slog.String("ref", ref.String()),
		slog.String("layout", name),
		slog.String("next", next),
	)
	return next, nil
}

// RenameLayout moves a layout to a new name and updates the settings.
func (s *Service) RenameLayout(ctx context.Context, ref store.Ref, oldName, newName string) (layoutset.Settings, error) {
	lock := s.setLock(ref)
	lock.Lock()
	defer lock.Unlock()

	if err := store.ValidateName(newName); err != nil {
		return layoutset.Settings{}, fmt.Errorf("editor: %w", err)
	}
	settings, err := s.settings(ctx, ref)
	if err != nil {
		return layoutset.Settings{}, err
	}
	updated, err := settings.RenamePage(oldName, newName)
	if err != nil {
		return layoutset.Settings{}, fmt.Errorf("editor: %w", err)
	}
	if oldName == newName {
		return updated, nil
	}
	external, err := s.store.LoadLayout(ctx, ref, oldName)
	if err != nil {
		return layoutset.Settings{}, fmt.Errorf("editor: %w", err)
	}
	if err := s.store.SaveLayout(ctx, ref, newName, external); err != nil {
		return layoutset.Settings{}, fmt.Errorf("editor: %w", err)
	}
	if err := s.store.DeleteLayout(ctx, ref, oldName); err != nil {
		return layoutset.Settings{}, fmt.Errorf("editor: %w", err)
	}
	if err := s.store.SaveSettings(ctx, ref, updated); err != nil {
		return layoutset.Settings{}, fmt.Errorf("editor: %w", err)
	}
	return updated, nil
}

// SyncNavigation adds or removes navigation buttons across the set.
func (s *Service) SyncNavigation(ctx context.Context, ref store.Ref, currentLayoutName string) error {
	lock := s.setLock(ref)
	lock.Lock()
	defer lock.Unlock()

	settings, err := s.settings(ctx, ref)
	if err != nil {
		return err
	}
	return s.syncNavigation(ctx, ref, currentLayoutName, settings.Pages.ReceiptLayoutName)
}

func (s *Service) syncNavigation(ctx context.Context, ref store.Ref, currentLayoutName, receiptLayoutName string) error {
	set, err := s.open(ctx, ref)
	if err != nil {
		return err
	}
	save := func(name string, updated layout.Layout) error {
		return s.store.SaveLayout(ctx, ref, name, layout.ToExternal(updated))
	}
	if _, err := layoutset.AddOrRemoveNavigationButtons(set.Layouts, save, currentLayoutName, receiptLayoutName, s.collectionOptions()...); err != nil {
		return fmt.Errorf("editor: sync navigation %s: %w", ref, err)
	}
	return nil
}
