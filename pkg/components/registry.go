package components

import (
	"sort"
	"strings"
	"sync"
)

// Definition describes a component type.
type Definition struct {
	Type string
	// IsContainer marks types whose items hold children (groups).
	IsContainer bool
	// PropertyPath points the property editor at the schema definition for
	// the type. Empty when the type has no dedicated definition.
	PropertyPath string
	// DefaultProperties are copied onto new items of this type. Keys id,
	// type and children are ignored.
	DefaultProperties map[string]any
}

// Registry maps type names to definitions. Lookups are case-sensitive, the
// same way the persisted layout files spell type names. The zero value is an
// empty registry; use NewRegistry for one seeded with the built-in types.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]Definition
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// NewRegistry constructs a registry with the built-in definitions registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Default returns the shared registry seeded with the built-in types.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Register adds or replaces a definition. Definitions with an empty type name
// are ignored.
func (r *Registry) Register(def Definition) {
	if r == nil {
		return
	}
	name := strings.TrimSpace(def.Type)
	if name == "" {
		return
	}
	def.Type = name
	def.DefaultProperties = cloneProperties(def.DefaultProperties)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.definitions == nil {
		r.definitions = make(map[string]Definition)
	}
	r.definitions[name] = def
}

// Lookup returns the definition for the supplied type name. The returned
// DefaultProperties map is a copy and safe to modify.
func (r *Registry) Lookup(typeName string) (Definition, bool) {
	if r == nil {
		return Definition{}, false
	}
	r.mu.RLock()
	def, ok := r.definitions[typeName]
	r.mu.RUnlock()
	if !ok {
		return Definition{}, false
	}
	def.DefaultProperties = cloneProperties(def.DefaultProperties)
	return def, true
}

// IsContainerType reports whether items of the given type nest other items.
// Unknown types are components.
func (r *Registry) IsContainerType(typeName string) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.definitions[typeName].IsContainer
}

// PropertyPath returns the default property path for the type, if any.
func (r *Registry) PropertyPath(typeName string) string {
	if r == nil {
		return ""
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.definitions[typeName].PropertyPath
}

// Types lists registered type names in lexical order.
func (r *Registry) Types() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	out := make([]string, 0, len(r.definitions))
	for name := range r.definitions {
		out = append(out, name)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

func (r *Registry) registerBuiltins() {
	r.Register(Definition{Type: TypeGroup, IsContainer: true, PropertyPath: "definitions/groupComponent", DefaultProperties: map[string]any{"maxCount": 0.0}})

	r.Register(Definition{Type: TypeInput, PropertyPath: "definitions/inputComponent", DefaultProperties: map[string]any{"required": false, "readOnly": false}})
	r.Register(Definition{Type: TypeTextArea, PropertyPath: "definitions/textAreaComponent", DefaultProperties: map[string]any{"required": false, "readOnly": false}})
	r.Register(Definition{Type: TypeDatepicker, PropertyPath: "definitions/datepickerComponent", DefaultProperties: map[string]any{"timeStamp": true, "required": false, "readOnly": false}})
	r.Register(Definition{Type: TypeCheckboxes, PropertyPath: "definitions/radioAndCheckboxComponents", DefaultProperties: map[string]any{"required": false, "readOnly": false}})
	r.Register(Definition{Type: TypeRadioButtons, PropertyPath: "definitions/radioAndCheckboxComponents", DefaultProperties: map[string]any{"required": false, "readOnly": false}})
	r.Register(Definition{Type: TypeDropdown, PropertyPath: "definitions/selectionComponents", DefaultProperties: map[string]any{"required": false}})
	r.Register(Definition{Type: TypeMultipleSelect, PropertyPath: "definitions/selectionComponents", DefaultProperties: map[string]any{"required": false}})
	r.Register(Definition{Type: TypeFileUpload, PropertyPath: "definitions/fileUploadComponent", DefaultProperties: map[string]any{"displayMode": "list", "maxFileSizeInMB": 25.0, "maxNumberOfAttachments": 1.0, "minNumberOfAttachments": 0.0}})
	r.Register(Definition{Type: TypeFileUploadWithTag, PropertyPath: "definitions/fileUploadWithTagComponent", DefaultProperties: map[string]any{"maxFileSizeInMB": 25.0, "maxNumberOfAttachments": 1.0, "minNumberOfAttachments": 0.0}})
	r.Register(Definition{Type: TypeAddress, PropertyPath: "definitions/addressComponent", DefaultProperties: map[string]any{"simplified": true}})
	r.Register(Definition{Type: TypeImage, PropertyPath: "definitions/imageComponent", DefaultProperties: map[string]any{"image": map[string]any{"width": "100%", "align": "center"}}})
	r.Register(Definition{Type: TypeHeader, DefaultProperties: map[string]any{"size": "L"}})
	r.Register(Definition{Type: TypeParagraph})
	r.Register(Definition{Type: TypeAlert, DefaultProperties: map[string]any{"severity": "info"}})
	r.Register(Definition{Type: TypePanel, DefaultProperties: map[string]any{"variant": "info", "showIcon": true}})
	r.Register(Definition{Type: TypeAccordion})
	r.Register(Definition{Type: TypeButton, PropertyPath: "definitions/buttonComponent"})
	r.Register(Definition{Type: TypeActionButton, DefaultProperties: map[string]any{"action": "instantiate", "buttonStyle": "primary"}})
	r.Register(Definition{Type: TypePrintButton})
	r.Register(Definition{Type: TypeLink, DefaultProperties: map[string]any{"style": "link"}})
	r.Register(Definition{Type: TypeAttachmentList})
	r.Register(Definition{Type: TypeNavigationBar})
	r.Register(Definition{Type: TypeNavigationButtons, DefaultProperties: map[string]any{"showBackButton": true}})
	r.Register(Definition{Type: TypeSummary})
	r.Register(Definition{Type: TypeCustom, DefaultProperties: map[string]any{"tagName": ""}})
	r.Register(Definition{Type: TypeInstanceInformation})
}

func cloneProperties(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = CloneValue(value)
	}
	return out
}

// CloneValue deep-copies the JSON-shaped values (maps, slices, scalars) used
// for component properties.
func CloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, nested := range typed {
			out[key] = CloneValue(nested)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, nested := range typed {
			out[idx] = CloneValue(nested)
		}
		return out
	case []string:
		return append([]string(nil), typed...)
	default:
		return value
	}
}
