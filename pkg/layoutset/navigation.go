package layoutset

import (
	"fmt"
	"log/slog"

	"github.com/goliatone/go-formlayout/pkg/components"
	"github.com/goliatone/go-formlayout/pkg/layout"
)

// ChangeFunc receives every layout changed by a collection operation.
type ChangeFunc func(name string, updated layout.Layout) error

// AddOrRemoveNavigationButtons keeps navigation buttons on every non-receipt
// layout when the set has two or more of them, and removes them when only
// one is left. onChanged runs once per changed layout, the current layout
// first and the rest in name order. The returned map holds every layout,
// changed or not.
func AddOrRemoveNavigationButtons(layouts map[string]layout.Layout, onChanged ChangeFunc, currentLayoutName, receiptLayoutName string, opts ...Option) (map[string]layout.Layout, error) {
	cfg := resolve(opts)
	out := make(map[string]layout.Layout, len(layouts))
	for name, l := range layouts {
		out[name] = l
	}

	names := make([]string, 0, len(layouts))
	if _, ok := layouts[currentLayoutName]; ok && currentLayoutName != receiptLayoutName {
		names = append(names, currentLayoutName)
	}
	for _, name := range sortedNames(layouts) {
		if name == receiptLayoutName || name == currentLayoutName {
			continue
		}
		names = append(names, name)
	}

	taken := func(id string) bool {
		all := make([]layout.Layout, 0, len(out))
		for _, l := range out {
			all = append(all, l)
		}
		return layout.IDExists(id, all...)
	}

	apply := func(name string, updated layout.Layout) error {
		out[name] = updated
		if onChanged == nil {
			return nil
		}
		if err := onChanged(name, updated); err != nil {
			return fmt.Errorf("layoutset: update %q: %w", name, err)
		}
		return nil
	}

	switch {
	case len(names) == 1:
		name := names[0]
		current := out[name]
		if !layout.HasComponentOfType(current, components.TypeNavigationButtons) {
			return out, nil
		}
		updated, err := layout.RemoveComponentsByType(current, components.TypeNavigationButtons)
		if err != nil {
			return nil, fmt.Errorf("layoutset: remove navigation buttons from %q: %w", name, err)
		}
		cfg.logger.Debug("removed navigation buttons", slog.String("layout", name))
		if err := apply(name, updated); err != nil {
			return nil, err
		}
	case len(names) > 1:
		for _, name := range names {
			current := out[name]
			if layout.HasComponentOfType(current, components.TypeNavigationButtons) {
				continue
			}
			id := cfg.generateID(components.TypeNavigationButtons, taken)
			updated, err := layout.AddNavigationButtons(current, id, cfg.layoutOptions...)
			if err != nil {
				return nil, fmt.Errorf("layoutset: add navigation buttons to %q: %w", name, err)
			}
			cfg.logger.Debug("added navigation buttons", slog.String("layout", name), slog.String("id", id))
			if err := apply(name, updated); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// DefaultLayoutName is returned by FirstAvailableLayout when no page is left.
const DefaultLayoutName = "default"

// FirstAvailableLayout picks the page to show after currentLayoutName is
// deleted: the next page in order, else the previous one, else
// DefaultLayoutName. A name missing from order yields the first page.
func FirstAvailableLayout(currentLayoutName string, layoutOrder []string) string {
	if len(layoutOrder) == 0 {
		return DefaultLayoutName
	}
	idx := -1
	for i, name := range layoutOrder {
		if name == currentLayoutName {
			idx = i
			break
		}
	}
	if idx+1 < len(layoutOrder) {
		return layoutOrder[idx+1]
	}
	if idx-1 >= 0 {
		return layoutOrder[idx-1]
	}
	return DefaultLayoutName
}
