package layout

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-formlayout/pkg/components"
)

// AddComponent inserts component into containerID at position (negative
// appends). The page index is recomputed from the target container and an
// empty PropertyPath is filled from the registry.
func AddComponent(l Layout, component FormComponent, containerID string, position int, opts ...Option) (Layout, error) {
	if err := checkInsert(l, component.ID, containerID); err != nil {
		return Layout{}, err
	}
	cfg := resolveSettings(opts)

	out := l.Clone()
	component = component.clone()
	if component.PropertyPath == "" {
		component.PropertyPath = cfg.registry.PropertyPath(component.Type)
	}
	component.PageIndex = computePageIndex(out, containerID, position)
	out.Components[component.ID] = component
	out.Order[containerID] = insertAt(out.Order[containerID], component.ID, position)
	return out, nil
}

// AddContainer inserts container under id into parentID at position and
// gives it an empty order list.
func AddContainer(l Layout, container FormContainer, id, parentID string, position int, opts ...Option) (Layout, error) {
	if err := checkInsert(l, id, parentID); err != nil {
		return Layout{}, err
	}
	cfg := resolveSettings(opts)

	out := l.Clone()
	container = container.clone()
	container.ID = id
	if container.PropertyPath == "" {
		container.PropertyPath = cfg.registry.PropertyPath(container.Type)
	}
	container.PageIndex = computePageIndex(out, parentID, position)
	out.Containers[id] = container
	out.Order[id] = []string{}
	out.Order[parentID] = insertAt(out.Order[parentID], id, position)
	return out, nil
}

func checkInsert(l Layout, id, parentID string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidID
	}
	if _, ok := GetItem(l, id); ok {
		return fmt.Errorf("%w: %q", ErrDuplicateID, id)
	}
	if _, referenced := FindParentID(l, id); referenced {
		return fmt.Errorf("%w: %q is already referenced", ErrDuplicateID, id)
	}
	if !IsContainer(l, parentID) {
		return fmt.Errorf("%w: %q", ErrContainerNotFound, parentID)
	}
	return nil
}

// computePageIndex implements the page rule shared by add and move: outside
// a multi-page container the index is nil; inserting first yields page 0;
// appending inherits the last child's page; anything else inherits the page
// of the item right before the insertion point.
func computePageIndex(l Layout, parentID string, position int) *int {
	parent, ok := l.Containers[parentID]
	if !ok || !parent.MultiPage() {
		return nil
	}
	children := l.Order[parentID]
	if position == 0 {
		return intPtr(0)
	}
	var previousID string
	switch {
	case len(children) == 0:
		return intPtr(0)
	case position < 0 || position > len(children):
		previousID = children[len(children)-1]
	default:
		previousID = children[position-1]
	}
	if item, ok := GetItem(l, previousID); ok && item.ItemPageIndex() != nil {
		return intPtr(*item.ItemPageIndex())
	}
	return intPtr(0)
}

// UpdateContainer replaces the container stored at containerID. When the
// updated container carries a different id, the container and its order
// list are re-keyed and the parent's reference is rewritten. The page index
// is structural and always carried over from the stored container.
func UpdateContainer(l Layout, updated FormContainer, containerID string) (Layout, error) {
	if containerID == BaseContainerID {
		return Layout{}, fmt.Errorf("%w: the base container cannot be updated", ErrInvalidID)
	}
	existing, ok := l.Containers[containerID]
	if !ok {
		return Layout{}, fmt.Errorf("%w: %q", ErrContainerNotFound, containerID)
	}
	newID := updated.ID
	if newID == "" {
		newID = containerID
	}
	if err := checkRename(l, containerID, newID); err != nil {
		return Layout{}, err
	}

	out := l.Clone()
	updated = updated.clone()
	updated.ID = newID
	updated.PageIndex = clonePageIndex(existing.PageIndex)
	delete(out.Containers, containerID)
	out.Containers[newID] = updated
	if newID != containerID {
		out.Order[newID] = out.Order[containerID]
		delete(out.Order, containerID)
		renameReference(out, containerID, newID)
	}
	if existing.MultiPage() != updated.MultiPage() {
		resetChildPages(out, newID, updated.MultiPage())
	}
	return out, nil
}

// resetChildPages puts every child on page 0 when a container becomes
// multi-page and clears the page index when it stops being one.
func resetChildPages(out Layout, containerID string, multiPage bool) {
	var idx *int
	for _, childID := range out.Order[containerID] {
		if multiPage {
			idx = intPtr(0)
		}
		if component, ok := out.Components[childID]; ok {
			component.PageIndex = idx
			out.Components[childID] = component
		}
		if container, ok := out.Containers[childID]; ok {
			container.PageIndex = idx
			out.Containers[childID] = container
		}
	}
}

// UpdateComponent replaces the component stored at componentID, renaming
// its reference in the parent's order list when the id changes.
func UpdateComponent(l Layout, updated FormComponent, componentID string) (Layout, error) {
	existing, ok := l.Components[componentID]
	if !ok {
		return Layout{}, fmt.Errorf("%w: %q", ErrItemNotFound, componentID)
	}
	newID := updated.ID
	if newID == "" {
		newID = componentID
	}
	if err := checkRename(l, componentID, newID); err != nil {
		return Layout{}, err
	}

	out := l.Clone()
	updated = updated.clone()
	updated.ID = newID
	updated.PageIndex = clonePageIndex(existing.PageIndex)
	delete(out.Components, componentID)
	out.Components[newID] = updated
	if newID != componentID {
		renameReference(out, componentID, newID)
	}
	return out, nil
}

func checkRename(l Layout, oldID, newID string) error {
	if strings.TrimSpace(newID) == "" {
		return ErrInvalidID
	}
	if newID == oldID {
		return nil
	}
	if _, taken := GetItem(l, newID); taken {
		return fmt.Errorf("%w: %q", ErrDuplicateID, newID)
	}
	if _, referenced := FindParentID(l, newID); referenced {
		return fmt.Errorf("%w: %q is already referenced", ErrDuplicateID, newID)
	}
	if _, _, err := uniqueParent(l, oldID); err != nil {
		return err
	}
	return nil
}

// renameReference rewrites oldID in its parent's order list. out must be a
// private copy.
func renameReference(out Layout, oldID, newID string) {
	parentID, ok := FindParentID(out, oldID)
	if !ok {
		return
	}
	children := out.Order[parentID]
	for idx, childID := range children {
		if childID == oldID {
			children[idx] = newID
		}
	}
}

// RemoveComponent deletes the component and its reference in the parent's
// order list. An id without a parent leaves the layout unchanged.
func RemoveComponent(l Layout, componentID string) (Layout, error) {
	parentID, found, err := uniqueParent(l, componentID)
	if err != nil {
		return Layout{}, err
	}
	out := l.Clone()
	if !found {
		return out, nil
	}
	out.Order[parentID] = removeValue(out.Order[parentID], componentID)
	delete(out.Components, componentID)
	return out, nil
}

// RemoveItem deletes a component, or a container together with everything
// nested inside it. Unknown ids leave the layout unchanged.
func RemoveItem(l Layout, id string) (Layout, error) {
	if id == BaseContainerID {
		return Layout{}, fmt.Errorf("%w: the base container cannot be removed", ErrInvalidID)
	}
	if !IsContainer(l, id) {
		return RemoveComponent(l, id)
	}
	parentID, found, err := uniqueParent(l, id)
	if err != nil {
		return Layout{}, err
	}
	out := l.Clone()
	if found {
		out.Order[parentID] = removeValue(out.Order[parentID], id)
	}
	removeSubtree(out, id, map[string]struct{}{})
	return out, nil
}

func removeSubtree(out Layout, id string, visited map[string]struct{}) {
	if _, done := visited[id]; done {
		return
	}
	visited[id] = struct{}{}
	for _, childID := range out.Order[id] {
		removeSubtree(out, childID, visited)
	}
	delete(out.Order, id)
	delete(out.Containers, id)
	delete(out.Components, id)
}

// RemoveComponentsByType removes every component of the given type, one
// after the other.
func RemoveComponentsByType(l Layout, componentType string) (Layout, error) {
	ids := make([]string, 0)
	for id, component := range l.Components {
		if component.Type == componentType {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	out := l
	for _, id := range ids {
		next, err := RemoveComponent(out, id)
		if err != nil {
			return Layout{}, err
		}
		out = next
	}
	if len(ids) == 0 {
		out = l.Clone()
	}
	return out, nil
}

// NewNavigationButtons returns the component used for page navigation.
func NewNavigationButtons(id string) FormComponent {
	return FormComponent{
		ID:         id,
		Type:       components.TypeNavigationButtons,
		Properties: map[string]any{"showBackButton": true},
	}
}

// AddNavigationButtons appends a navigation buttons component to the base
// container.
func AddNavigationButtons(l Layout, id string, opts ...Option) (Layout, error) {
	return AddComponent(l, NewNavigationButtons(id), BaseContainerID, Append, opts...)
}

// HasComponentOfType reports whether any component has the given type.
func HasComponentOfType(l Layout, componentType string) bool {
	for _, component := range l.Components {
		if component.Type == componentType {
			return true
		}
	}
	return false
}

// MoveLayoutItem detaches id from its current parent and inserts it into
// newContainerID at newPosition. The page index is computed against the
// target order list after the item has been detached.
func MoveLayoutItem(l Layout, id, newContainerID string, newPosition int) (Layout, error) {
	item, ok := GetItem(l, id)
	if !ok {
		return Layout{}, fmt.Errorf("%w: %q", ErrItemNotFound, id)
	}
	if !IsContainer(l, newContainerID) {
		return Layout{}, fmt.Errorf("%w: %q", ErrContainerNotFound, newContainerID)
	}
	if item.ItemType() == ItemTypeContainer && (id == newContainerID || isDescendant(l, id, newContainerID)) {
		return Layout{}, fmt.Errorf("%w: %q cannot be moved into %q", ErrInvalidMove, id, newContainerID)
	}
	oldParentID, found, err := uniqueParent(l, id)
	if err != nil {
		return Layout{}, err
	}

	out := l.Clone()
	if found {
		out.Order[oldParentID] = removeValue(out.Order[oldParentID], id)
	}
	idx := computePageIndex(out, newContainerID, newPosition)
	switch typed := item.(type) {
	case FormComponent:
		component := out.Components[typed.ID]
		component.PageIndex = idx
		out.Components[typed.ID] = component
	case FormContainer:
		container := out.Containers[typed.ID]
		container.PageIndex = idx
		out.Containers[typed.ID] = container
	}
	out.Order[newContainerID] = insertAt(out.Order[newContainerID], id, newPosition)
	return out, nil
}

func isDescendant(l Layout, ancestorID, id string) bool {
	visited := map[string]struct{}{}
	var walk func(string) bool
	walk = func(current string) bool {
		if _, done := visited[current]; done {
			return false
		}
		visited[current] = struct{}{}
		for _, childID := range l.Order[current] {
			if childID == id || walk(childID) {
				return true
			}
		}
		return false
	}
	return walk(ancestorID)
}

// AddItemOfType builds a default item for componentType from the registry
// and adds it as a container or component depending on the type. Types
// missing from the registry fail with ErrUnknownType.
func AddItemOfType(l Layout, componentType, id, parentID string, position int, opts ...Option) (Layout, error) {
	cfg := resolveSettings(opts)
	def, ok := cfg.registry.Lookup(componentType)
	if !ok {
		return Layout{}, fmt.Errorf("%w: %q", ErrUnknownType, componentType)
	}
	props := cloneProps(def.DefaultProperties)
	for _, reserved := range []string{keyID, keyType, keyChildren} {
		delete(props, reserved)
	}
	props = cloneProps(props)

	if cfg.registry.IsContainerType(componentType) {
		container := FormContainer{
			Type:         componentType,
			PropertyPath: def.PropertyPath,
			Properties:   props,
		}
		return AddContainer(l, container, id, parentID, position, opts...)
	}
	component := FormComponent{
		ID:           id,
		Type:         componentType,
		PropertyPath: def.PropertyPath,
		Properties:   props,
	}
	return AddComponent(l, component, parentID, position, opts...)
}

func insertAt(list []string, id string, position int) []string {
	out := make([]string, 0, len(list)+1)
	if position < 0 || position >= len(list) {
		out = append(out, list...)
		return append(out, id)
	}
	out = append(out, list[:position]...)
	out = append(out, id)
	return append(out, list[position:]...)
}

func removeValue(list []string, id string) []string {
	out := make([]string, 0, len(list))
	for _, entry := range list {
		if entry != id {
			out = append(out, entry)
		}
	}
	return out
}
