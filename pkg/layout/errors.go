package layout

import "errors"

var (
	// ErrItemNotFound is returned when an operation references an id that is
	// neither a component nor a container.
	ErrItemNotFound = errors.New("layout: item not found")
	// ErrContainerNotFound is returned when a target parent does not exist.
	ErrContainerNotFound = errors.New("layout: container not found")
	// ErrDuplicateID is returned when inserting or renaming onto an id that is
	// already in use.
	ErrDuplicateID = errors.New("layout: duplicate id")
	// ErrMultipleParents is returned when an id appears in more than one
	// container's order list.
	ErrMultipleParents = errors.New("layout: item has more than one parent")
	// ErrInvalidID is returned for empty identifiers.
	ErrInvalidID = errors.New("layout: invalid id")
	// ErrInvalidMove is returned when a container would be moved into itself
	// or one of its descendants.
	ErrInvalidMove = errors.New("layout: invalid move")
	// ErrCycle is returned when group children form a containment cycle.
	ErrCycle = errors.New("layout: containment cycle")
	// ErrInvalidPageIndex is returned for malformed "<n>:" prefixes inside a
	// multi-page group.
	ErrInvalidPageIndex = errors.New("layout: invalid page index")
	// ErrUnknownType is returned when a default item is requested for a type
	// the registry does not know.
	ErrUnknownType = errors.New("layout: unknown component type")
)
