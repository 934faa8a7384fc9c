// Package components holds the component type registry used by the layout
// converters and mutation engine. Every type name maps to a Definition that
// declares whether the type nests other items (containers), the default JSON
// schema property path used by the editor's property panel, and the default
// property shape applied when a new item of that type is created.
package components
