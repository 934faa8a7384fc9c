package layout

import (
	"encoding/json"
	"sort"

	"github.com/goliatone/go-formlayout/pkg/components"
)

const (
	// BaseContainerID identifies the synthetic top-level container.
	BaseContainerID = "__base__"
	// MaxNestedGroupLevel is the deepest allowed chain of nested groups.
	MaxNestedGroupLevel = 3
	// Append inserts at the end of a container's order list.
	Append = -1
	// SchemaURL is written to the $schema key of every serialized layout.
	SchemaURL = "https://formlayout.goliat.one/schemas/json/layout/layout.schema.v1.json"
)

// ItemType discriminates components from containers.
type ItemType string

const (
	ItemTypeComponent ItemType = "COMPONENT"
	ItemTypeContainer ItemType = "CONTAINER"
)

// Item is implemented by FormComponent and FormContainer only.
type Item interface {
	ItemID() string
	ItemType() ItemType
	ItemComponentType() string
	ItemPageIndex() *int
	isItem()
}

// FormComponent is a leaf item in the internal layout.
type FormComponent struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	PageIndex    *int           `json:"pageIndex"`
	PropertyPath string         `json:"propertyPath,omitempty"`
	Properties   map[string]any `json:"properties,omitempty"`
}

func (c FormComponent) ItemID() string            { return c.ID }
func (c FormComponent) ItemType() ItemType        { return ItemTypeComponent }
func (c FormComponent) ItemComponentType() string { return c.Type }
func (c FormComponent) ItemPageIndex() *int       { return c.PageIndex }
func (FormComponent) isItem()                     {}

// MarshalJSON adds the itemType discriminator.
func (c FormComponent) MarshalJSON() ([]byte, error) {
	type alias FormComponent
	return json.Marshal(struct {
		alias
		ItemType ItemType `json:"itemType"`
	}{alias(c), ItemTypeComponent})
}

// FormContainer is an item holding other items. Properties carry the group
// configuration, including the "edit" object.
type FormContainer struct {
	ID           string         `json:"id"`
	Type         string         `json:"type,omitempty"`
	Index        int            `json:"index"`
	PageIndex    *int           `json:"pageIndex"`
	PropertyPath string         `json:"propertyPath,omitempty"`
	Properties   map[string]any `json:"properties,omitempty"`
}

func (c FormContainer) ItemID() string            { return c.ID }
func (c FormContainer) ItemType() ItemType        { return ItemTypeContainer }
func (c FormContainer) ItemComponentType() string { return c.Type }
func (c FormContainer) ItemPageIndex() *int       { return c.PageIndex }
func (FormContainer) isItem()                     {}

// MarshalJSON adds the itemType discriminator.
func (c FormContainer) MarshalJSON() ([]byte, error) {
	type alias FormContainer
	return json.Marshal(struct {
		alias
		ItemType ItemType `json:"itemType"`
	}{alias(c), ItemTypeContainer})
}

// MultiPage reports whether edit.multiPage is true.
func (c FormContainer) MultiPage() bool {
	return isMultiPage(c.Properties)
}

// Layout is the internal, normalized representation of a single form page.
type Layout struct {
	Components           map[string]FormComponent `json:"components"`
	Containers           map[string]FormContainer `json:"containers"`
	Order                map[string][]string      `json:"order"`
	CustomRootProperties map[string]any           `json:"customRootProperties"`
	CustomDataProperties map[string]any           `json:"customDataProperties"`
}

// CreateEmptyLayout returns a layout holding only the base container.
func CreateEmptyLayout() Layout {
	return Layout{
		Components: map[string]FormComponent{},
		Containers: map[string]FormContainer{
			BaseContainerID: {ID: BaseContainerID, Index: 0},
		},
		Order:                map[string][]string{BaseContainerID: {}},
		CustomRootProperties: map[string]any{},
		CustomDataProperties: map[string]any{},
	}
}

// Clone returns a deep copy of the layout.
func (l Layout) Clone() Layout {
	out := Layout{
		Components:           make(map[string]FormComponent, len(l.Components)),
		Containers:           make(map[string]FormContainer, len(l.Containers)),
		Order:                make(map[string][]string, len(l.Order)),
		CustomRootProperties: cloneMap(l.CustomRootProperties),
		CustomDataProperties: cloneMap(l.CustomDataProperties),
	}
	for id, component := range l.Components {
		out.Components[id] = component.clone()
	}
	for id, container := range l.Containers {
		out.Containers[id] = container.clone()
	}
	for id, children := range l.Order {
		out.Order[id] = append([]string{}, children...)
	}
	if out.CustomRootProperties == nil {
		out.CustomRootProperties = map[string]any{}
	}
	if out.CustomDataProperties == nil {
		out.CustomDataProperties = map[string]any{}
	}
	return out
}

func (c FormComponent) clone() FormComponent {
	c.PageIndex = clonePageIndex(c.PageIndex)
	c.Properties = cloneProps(c.Properties)
	return c
}

func (c FormContainer) clone() FormContainer {
	c.PageIndex = clonePageIndex(c.PageIndex)
	c.Properties = cloneProps(c.Properties)
	return c
}

func clonePageIndex(idx *int) *int {
	if idx == nil {
		return nil
	}
	v := *idx
	return &v
}

func intPtr(v int) *int {
	return &v
}

// cloneProps deep-copies a property map, collapsing empty maps to nil so
// converted layouts compare equal regardless of how they were built.
func cloneProps(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	return cloneMap(src)
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = components.CloneValue(value)
	}
	return out
}

func isMultiPage(props map[string]any) bool {
	edit, ok := props["edit"].(map[string]any)
	if !ok {
		return false
	}
	multiPage, _ := edit["multiPage"].(bool)
	return multiPage
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
