package components

import (
	"strings"

	"github.com/google/uuid"
)

const generatedSuffixLength = 6

// GenerateID returns an identifier of the form "<Type>-<suffix>" that is not
// taken according to the taken callback. Callers typically pass a
// case-insensitive lookup over every layout in the set.
func GenerateID(typeName string, taken func(id string) bool) string {
	prefix := strings.TrimSpace(typeName)
	if prefix == "" {
		prefix = "component"
	}
	for {
		suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:generatedSuffixLength]
		candidate := prefix + "-" + suffix
		if taken == nil || !taken(candidate) {
			return candidate
		}
	}
}
