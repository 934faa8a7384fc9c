package layoutset

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/goliatone/go-formlayout/pkg/layout"
)

// Conversion is the outcome of converting a whole layout set.
type Conversion struct {
	Converted map[string]layout.Layout
	// Invalid lists, in lexical order, the layouts that failed to convert.
	Invalid []string
	// Errors holds the failure for each invalid layout.
	Errors map[string]error
}

// ConvertExternalLayouts converts every layout of the set. A layout that
// fails to convert is recorded in Invalid and left out of Converted; the rest
// of the set is unaffected.
func ConvertExternalLayouts(externals map[string]*layout.ExternalFormLayout, opts ...Option) Conversion {
	cfg := resolve(opts)
	result := newConversion(len(externals))
	for _, name := range sortedNames(externals) {
		converted, err := convertOne(cfg, name, externals[name])
		if err != nil {
			result.fail(cfg, name, err)
			continue
		}
		result.Converted[name] = converted
	}
	return result
}

// DecodeAndConvert parses raw layout documents and converts them. Decoding
// failures are isolated the same way as conversion failures.
func DecodeAndConvert(raw map[string][]byte, opts ...Option) Conversion {
	cfg := resolve(opts)
	result := newConversion(len(raw))
	for _, name := range sortedNames(raw) {
		external, err := layout.ParseExternal(raw[name])
		if err != nil {
			result.fail(cfg, name, fmt.Errorf("decode: %w", err))
			continue
		}
		converted, err := convertOne(cfg, name, external)
		if err != nil {
			result.fail(cfg, name, err)
			continue
		}
		result.Converted[name] = converted
	}
	return result
}

func newConversion(size int) Conversion {
	return Conversion{
		Converted: make(map[string]layout.Layout, size),
		Errors:    map[string]error{},
	}
}

func (c *Conversion) fail(cfg config, name string, err error) {
	cfg.logger.Warn("layout conversion failed", slog.String("layout", name), slog.Any("err", err))
	c.Invalid = append(c.Invalid, name)
	c.Errors[name] = err
}

func convertOne(cfg config, name string, external *layout.ExternalFormLayout) (converted layout.Layout, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("layoutset: converting %q panicked: %v", name, recovered)
		}
	}()
	for _, check := range cfg.checks {
		if err := check(name, external); err != nil {
			return layout.Layout{}, err
		}
	}
	return layout.ToInternal(external, cfg.layoutOptions...)
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
