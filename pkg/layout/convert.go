package layout

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const keyPropertyPath = "propertyPath"

type parentRef struct {
	id        string
	pageIndex *int
}

// ToInternal converts a persisted layout into its internal form. A nil input
// yields CreateEmptyLayout(). Custom root and data properties are preserved
// even when data or data.layout is null.
func ToInternal(external *ExternalFormLayout, opts ...Option) (Layout, error) {
	out := CreateEmptyLayout()
	if external == nil {
		return out, nil
	}
	cfg := resolveSettings(opts)

	if props := cloneMap(external.CustomRootProperties); props != nil {
		out.CustomRootProperties = props
	}
	if external.Data == nil {
		return out, nil
	}
	if props := cloneMap(external.Data.CustomDataProperties); props != nil {
		out.CustomDataProperties = props
	}
	if external.Data.Layout == nil {
		return out, nil
	}

	list := external.Data.Layout
	seen := make(map[string]struct{}, len(list))
	for _, item := range list {
		if strings.TrimSpace(item.ID) == "" {
			return Layout{}, fmt.Errorf("%w: component of type %q has an empty id", ErrInvalidID, item.Type)
		}
		if item.ID == BaseContainerID {
			return Layout{}, fmt.Errorf("%w: %q is reserved", ErrDuplicateID, item.ID)
		}
		if _, dup := seen[item.ID]; dup {
			return Layout{}, fmt.Errorf("%w: %q", ErrDuplicateID, item.ID)
		}
		seen[item.ID] = struct{}{}
	}

	parents := make(map[string]parentRef)
	for _, item := range list {
		if !cfg.registry.IsContainerType(item.Type) {
			continue
		}
		multiPage := isMultiPage(item.Properties)
		children := make([]string, 0, len(item.Children))
		for _, raw := range item.Children {
			childID, idx, err := splitChildRef(raw, multiPage)
			if err != nil {
				return Layout{}, fmt.Errorf("group %q: %w", item.ID, err)
			}
			if existing, claimed := parents[childID]; claimed {
				return Layout{}, fmt.Errorf("%w: %q is listed by %q and %q", ErrMultipleParents, childID, existing.id, item.ID)
			}
			parents[childID] = parentRef{id: item.ID, pageIndex: idx}
			children = append(children, childID)
		}
		out.Order[item.ID] = children
	}

	for _, item := range list {
		parent := parents[item.ID]
		props := cloneProps(item.Properties)
		propertyPath := cfg.registry.PropertyPath(item.Type)
		if explicit, ok := props[keyPropertyPath].(string); ok {
			propertyPath = explicit
			delete(props, keyPropertyPath)
			props = cloneProps(props)
		}

		if cfg.registry.IsContainerType(item.Type) {
			out.Containers[item.ID] = FormContainer{
				ID:           item.ID,
				Type:         item.Type,
				PageIndex:    parent.pageIndex,
				PropertyPath: propertyPath,
				Properties:   props,
			}
			continue
		}
		if item.Children != nil {
			if props == nil {
				props = map[string]any{}
			}
			props[keyChildren] = childrenProperty(item.Children)
		}
		out.Components[item.ID] = FormComponent{
			ID:           item.ID,
			Type:         item.Type,
			PageIndex:    parent.pageIndex,
			PropertyPath: propertyPath,
			Properties:   props,
		}
	}

	topLevel := make([]string, 0, len(list))
	for _, item := range list {
		if _, nested := parents[item.ID]; !nested {
			topLevel = append(topLevel, item.ID)
		}
	}
	out.Order[BaseContainerID] = topLevel

	if err := detectCycle(parents); err != nil {
		return Layout{}, err
	}
	return out, nil
}

// childrenProperty stores the children of a non-container item as a plain
// property, shaped like decoded JSON.
func childrenProperty(children []string) []any {
	out := make([]any, len(children))
	for i, id := range children {
		out[i] = id
	}
	return out
}

// liftChildren moves a list-of-ids "children" property back into the
// dedicated field. Any other shape stays a property.
func liftChildren(src map[string]any) ([]string, map[string]any) {
	props := cloneProps(src)
	raw, ok := props[keyChildren]
	if !ok {
		return nil, props
	}
	var children []string
	switch list := raw.(type) {
	case []string:
		children = append([]string{}, list...)
	case []any:
		children = make([]string, 0, len(list))
		for _, entry := range list {
			id, isString := entry.(string)
			if !isString {
				return nil, props
			}
			children = append(children, id)
		}
	default:
		return nil, props
	}
	delete(props, keyChildren)
	return children, cloneProps(props)
}

// splitChildRef strips the "<n>:" page prefix of a child reference when the
// owning group is multi-page. References without a prefix get no page index.
func splitChildRef(raw string, multiPage bool) (string, *int, error) {
	if !multiPage {
		return raw, nil, nil
	}
	prefix, id, found := strings.Cut(raw, ":")
	if !found {
		return raw, nil, nil
	}
	idx, err := strconv.Atoi(prefix)
	if err != nil || idx < 0 {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidPageIndex, raw)
	}
	return id, intPtr(idx), nil
}

func detectCycle(parents map[string]parentRef) error {
	for _, start := range sortedKeys(parents) {
		current := start
		for steps := 0; steps <= len(parents); steps++ {
			ref, ok := parents[current]
			if !ok {
				break
			}
			if ref.id == start {
				return fmt.Errorf("%w: %q contains itself", ErrCycle, start)
			}
			current = ref.id
		}
	}
	return nil
}

// ToExternal converts an internal layout into its persisted form. Group
// children are rebuilt from Order and, inside multi-page groups, prefixed
// with their page index. Ids referenced from Order that have no item are passed through
// unchanged.
func ToExternal(internal Layout) *ExternalFormLayout {
	containerIDs := sortedKeys(internal.Containers)
	componentIDs := sortedKeys(internal.Components)

	list := make([]ExternalComponent, 0, len(containerIDs)+len(componentIDs))
	for _, id := range containerIDs {
		if id == BaseContainerID {
			continue
		}
		container := internal.Containers[id]
		list = append(list, ExternalComponent{
			ID:         container.ID,
			Type:       container.Type,
			Children:   externalChildren(internal, id),
			Properties: cloneProps(container.Properties),
		})
	}
	for _, id := range componentIDs {
		component := internal.Components[id]
		children, props := liftChildren(component.Properties)
		list = append(list, ExternalComponent{
			ID:         component.ID,
			Type:       component.Type,
			Children:   children,
			Properties: props,
		})
	}

	positions := flattenOrder(internal)
	sort.SliceStable(list, func(i, j int) bool {
		pi, iok := positions[list[i].ID]
		pj, jok := positions[list[j].ID]
		switch {
		case iok && jok:
			return pi < pj
		case iok != jok:
			return iok
		default:
			return false
		}
	})

	root := cloneMap(internal.CustomRootProperties)
	if root == nil {
		root = map[string]any{}
	}
	data := cloneMap(internal.CustomDataProperties)
	if data == nil {
		data = map[string]any{}
	}
	return &ExternalFormLayout{
		Schema: SchemaURL,
		Data: &ExternalData{
			Layout:               list,
			CustomDataProperties: data,
		},
		CustomRootProperties: root,
	}
}

func externalChildren(internal Layout, containerID string) []string {
	children := internal.Order[containerID]
	multiPage := internal.Containers[containerID].MultiPage()
	out := make([]string, 0, len(children))
	for _, childID := range children {
		item, ok := GetItem(internal, childID)
		if !multiPage || !ok || item.ItemPageIndex() == nil {
			out = append(out, childID)
			continue
		}
		out = append(out, strconv.Itoa(*item.ItemPageIndex())+":"+childID)
	}
	return out
}

// flattenOrder assigns every id reachable from the base container its
// depth-first position. Containers that cannot be reached from the base are
// walked afterwards in id order. The first occurrence of an id wins.
func flattenOrder(internal Layout) map[string]int {
	positions := make(map[string]int)
	visited := make(map[string]struct{})
	var walk func(containerID string)
	walk = func(containerID string) {
		if _, done := visited[containerID]; done {
			return
		}
		visited[containerID] = struct{}{}
		for _, childID := range internal.Order[containerID] {
			if _, exists := positions[childID]; !exists {
				positions[childID] = len(positions)
			}
			if _, isContainer := internal.Order[childID]; isContainer {
				walk(childID)
			}
		}
	}
	walk(BaseContainerID)
	for _, id := range sortedKeys(internal.Order) {
		walk(id)
	}
	return positions
}
