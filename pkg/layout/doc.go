// Package layout converts form layouts between the persisted ("external")
// representation, a flat list of components where groups reference their
// children by id, and the normalized ("internal") representation the editor
// works on: component and container maps plus one ordered child list per
// container.
//
// Every function in this package is pure. Inputs are never modified; a new
// Layout is returned from each mutation. Structural problems (unknown ids,
// duplicate ids, items claimed by more than one container) are reported as
// errors wrapping the sentinel values declared in errors.go. Nesting depth is
// not enforced by the mutation functions; callers check ValidateDepth before
// committing a change.
package layout
