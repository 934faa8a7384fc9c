// Package layoutset applies the single-layout operations of package layout
// across a layout set: bulk conversion with per-layout failure isolation, the
// navigation buttons policy, page ordering settings and the choice of a
// fallback page when the open one is deleted.
package layoutset
