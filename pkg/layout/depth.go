package layout

// GetDepth returns the longest chain of nested containers. The base
// container is the starting point and not counted: a layout whose top level
// holds a group that holds another group has depth 2.
func GetDepth(l Layout) int {
	if len(l.Containers) <= 1 {
		return 0
	}
	depth := 0
	for id := range l.Containers {
		if levels := containerLevels(l, id, map[string]struct{}{}); levels > depth {
			depth = levels
		}
	}
	return depth
}

func containerLevels(l Layout, containerID string, path map[string]struct{}) int {
	if _, loop := path[containerID]; loop {
		return 0
	}
	path[containerID] = struct{}{}
	defer delete(path, containerID)

	deepest := -1
	for _, childID := range l.Order[containerID] {
		if !IsContainer(l, childID) {
			continue
		}
		if levels := containerLevels(l, childID, path); levels > deepest {
			deepest = levels
		}
	}
	return deepest + 1
}

// ValidateDepth reports whether the layout respects MaxNestedGroupLevel.
func ValidateDepth(l Layout) bool {
	return ValidateDepthLimit(l, MaxNestedGroupLevel)
}

// ValidateDepthLimit reports whether the layout depth is at most limit.
func ValidateDepthLimit(l Layout, limit int) bool {
	return GetDepth(l) <= limit
}
