package layout

import (
	"fmt"
	"sort"
	"strings"
)

// GetItem returns the component or container with the given id.
func GetItem(l Layout, id string) (Item, bool) {
	if component, ok := l.Components[id]; ok {
		return component, true
	}
	if container, ok := l.Containers[id]; ok {
		return container, true
	}
	return nil, false
}

// GetChildIDs returns a copy of the container's order list.
func GetChildIDs(l Layout, parentID string) []string {
	return append([]string{}, l.Order[parentID]...)
}

// FindParentID returns the container whose order list holds id. When the id
// is erroneously listed by several containers the lexically first one is
// returned.
func FindParentID(l Layout, id string) (string, bool) {
	parents := parentsOf(l, id)
	if len(parents) == 0 {
		return "", false
	}
	return parents[0], true
}

func parentsOf(l Layout, id string) []string {
	var out []string
	for containerID, children := range l.Order {
		for _, childID := range children {
			if childID == id {
				out = append(out, containerID)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// uniqueParent is the strict variant used by mutations.
func uniqueParent(l Layout, id string) (string, bool, error) {
	parents := parentsOf(l, id)
	switch len(parents) {
	case 0:
		return "", false, nil
	case 1:
		return parents[0], true, nil
	default:
		return "", false, fmt.Errorf("%w: %q is listed by %s", ErrMultipleParents, id, strings.Join(parents, ", "))
	}
}

// IsContainer reports whether id names a container.
func IsContainer(l Layout, id string) bool {
	_, ok := l.Containers[id]
	return ok
}

// HasSubContainers reports whether any direct child of id is a container.
func HasSubContainers(l Layout, id string) bool {
	for _, childID := range l.Order[id] {
		if IsContainer(l, childID) {
			return true
		}
	}
	return false
}

// AllItemIDs lists every component and container id except the base
// container, sorted.
func AllItemIDs(l Layout) []string {
	out := make([]string, 0, len(l.Components)+len(l.Containers))
	for id := range l.Components {
		out = append(out, id)
	}
	for id := range l.Containers {
		if id != BaseContainerID {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// UnknownReferences lists ids that appear in an order list without a
// matching component or container. Editors render these as explicit
// "unknown component" nodes.
func UnknownReferences(l Layout) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, children := range l.Order {
		for _, childID := range children {
			if _, ok := GetItem(l, childID); ok {
				continue
			}
			if _, dup := seen[childID]; dup {
				continue
			}
			seen[childID] = struct{}{}
			out = append(out, childID)
		}
	}
	sort.Strings(out)
	return out
}

// IDExists reports whether id is used by a component or container in any of
// the layouts. The comparison ignores case.
func IDExists(id string, layouts ...Layout) bool {
	for _, l := range layouts {
		for existing := range l.Components {
			if strings.EqualFold(existing, id) {
				return true
			}
		}
		for existing := range l.Containers {
			if strings.EqualFold(existing, id) {
				return true
			}
		}
	}
	return false
}

// IsContainerType classifies a type name using the configured registry.
func IsContainerType(typeName string, opts ...Option) bool {
	return resolveSettings(opts).registry.IsContainerType(typeName)
}
