package validation

import (
	_ "embed"
)

//go:embed schema/layout.schema.v1.json
var layoutSchema []byte

// LayoutSchema returns a copy of the bundled JSON schema for external layouts.
func LayoutSchema() []byte {
	out := make([]byte, len(layoutSchema))
	copy(out, layoutSchema)
	return out
}
