package layoutset

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// SettingsSchemaURL is written to new settings documents.
const SettingsSchemaURL = "https://formlayout.goliat.one/schemas/json/layout/layoutSettings.schema.v1.json"

var (
	// ErrPageExists is returned when adding or renaming onto a taken page name.
	ErrPageExists = errors.New("layoutset: page already exists")
	// ErrPageNotFound is returned for unknown page names.
	ErrPageNotFound = errors.New("layoutset: page not found")
)

// Settings is the per layout set settings document. Unknown top-level keys
// are kept in Extra and written back unchanged.
type Settings struct {
	Schema string
	Pages  Pages
	Extra  map[string]json.RawMessage
}

// Pages configures page order and the receipt page.
type Pages struct {
	Order             []string `json:"order"`
	ReceiptLayoutName string   `json:"receiptLayoutName,omitempty"`
	ExcludeFromPdf    []string `json:"excludeFromPdf,omitempty"`
}

// NewSettings returns settings with the given page order.
func NewSettings(order ...string) Settings {
	return Settings{Schema: SettingsSchemaURL, Pages: Pages{Order: append([]string{}, order...)}}
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Settings) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("layoutset: decode settings: %w", err)
	}
	out := Settings{}
	for key, value := range raw {
		switch key {
		case "$schema":
			if err := json.Unmarshal(value, &out.Schema); err != nil {
				return fmt.Errorf("layoutset: decode $schema: %w", err)
			}
		case "pages":
			if err := json.Unmarshal(value, &out.Pages); err != nil {
				return fmt.Errorf("layoutset: decode pages: %w", err)
			}
		default:
			if out.Extra == nil {
				out.Extra = map[string]json.RawMessage{}
			}
			out.Extra[key] = append(json.RawMessage(nil), value...)
		}
	}
	*s = out
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s Settings) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Extra)+2)
	for key, value := range s.Extra {
		out[key] = value
	}
	if s.Schema != "" {
		out["$schema"] = s.Schema
	}
	pages := s.Pages
	if pages.Order == nil {
		pages.Order = []string{}
	}
	out["pages"] = pages
	return json.Marshal(out)
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	out := s
	out.Pages.Order = append([]string{}, s.Pages.Order...)
	if s.Pages.ExcludeFromPdf != nil {
		out.Pages.ExcludeFromPdf = append([]string{}, s.Pages.ExcludeFromPdf...)
	}
	if s.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(s.Extra))
		for key, value := range s.Extra {
			out.Extra[key] = append(json.RawMessage(nil), value...)
		}
	}
	return out
}

// HasPage reports whether name is part of the page order.
func (s Settings) HasPage(name string) bool {
	return indexOf(s.Pages.Order, name) >= 0
}

// AddPage appends name to the page order.
func (s Settings) AddPage(name string) (Settings, error) {
	if strings.TrimSpace(name) == "" {
		return Settings{}, fmt.Errorf("%w: empty name", ErrPageNotFound)
	}
	if s.HasPage(name) {
		return Settings{}, fmt.Errorf("%w: %q", ErrPageExists, name)
	}
	out := s.Clone()
	out.Pages.Order = append(out.Pages.Order, name)
	return out, nil
}

// RemovePage drops name from the page order and returns the page to select
// next, chosen by FirstAvailableLayout against the order before removal.
func (s Settings) RemovePage(name string) (Settings, string, error) {
	idx := indexOf(s.Pages.Order, name)
	if idx < 0 {
		return Settings{}, "", fmt.Errorf("%w: %q", ErrPageNotFound, name)
	}
	next := FirstAvailableLayout(name, s.Pages.Order)
	out := s.Clone()
	out.Pages.Order = append(out.Pages.Order[:idx:idx], out.Pages.Order[idx+1:]...)
	out.Pages.ExcludeFromPdf = removeName(out.Pages.ExcludeFromPdf, name)
	if out.Pages.ReceiptLayoutName == name {
		out.Pages.ReceiptLayoutName = ""
	}
	return out, next, nil
}

// RenamePage replaces oldName with newName everywhere in the settings.
func (s Settings) RenamePage(oldName, newName string) (Settings, error) {
	idx := indexOf(s.Pages.Order, oldName)
	if idx < 0 {
		return Settings{}, fmt.Errorf("%w: %q", ErrPageNotFound, oldName)
	}
	if oldName == newName {
		return s.Clone(), nil
	}
	if strings.TrimSpace(newName) == "" {
		return Settings{}, fmt.Errorf("%w: empty name", ErrPageNotFound)
	}
	if s.HasPage(newName) {
		return Settings{}, fmt.Errorf("%w: %q", ErrPageExists, newName)
	}
	out := s.Clone()
	out.Pages.Order[idx] = newName
	for i, excluded := range out.Pages.ExcludeFromPdf {
		if excluded == oldName {
			out.Pages.ExcludeFromPdf[i] = newName
		}
	}
	if out.Pages.ReceiptLayoutName == oldName {
		out.Pages.ReceiptLayoutName = newName
	}
	return out, nil
}

func indexOf(list []string, name string) int {
	for idx, entry := range list {
		if entry == name {
			return idx
		}
	}
	return -1
}

func removeName(list []string, name string) []string {
	if list == nil {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, entry := range list {
		if entry != name {
			out = append(out, entry)
		}
	}
	return out
}
