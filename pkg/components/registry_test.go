package components_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formlayout/pkg/components"
)

func TestRegistry_BuiltinClassification(t *testing.T) {
	reg := components.NewRegistry()

	if !reg.IsContainerType(components.TypeGroup) {
		t.Fatalf("expected %s to be a container type", components.TypeGroup)
	}
	for _, typeName := range []string{components.TypeInput, components.TypeParagraph, components.TypeNavigationButtons, "Unknown"} {
		if reg.IsContainerType(typeName) {
			t.Fatalf("expected %s to be a component type", typeName)
		}
	}
	if got := reg.PropertyPath(components.TypeInput); got != "definitions/inputComponent" {
		t.Fatalf("unexpected property path for Input: %q", got)
	}
	if got := reg.PropertyPath(components.TypeParagraph); got != "" {
		t.Fatalf("expected no property path for Paragraph, got %q", got)
	}
}

func TestRegistry_LookupReturnsCopies(t *testing.T) {
	reg := components.NewRegistry()

	def, ok := reg.Lookup(components.TypeImage)
	if !ok {
		t.Fatalf("expected Image definition")
	}
	def.DefaultProperties["image"].(map[string]any)["width"] = "50%"

	again, _ := reg.Lookup(components.TypeImage)
	want := map[string]any{"image": map[string]any{"width": "100%", "align": "center"}}
	if diff := cmp.Diff(want, again.DefaultProperties); diff != "" {
		t.Fatalf("registry definition mutated through lookup (-want +got):\n%s", diff)
	}
}

func TestRegistry_RegisterOverrides(t *testing.T) {
	reg := components.NewRegistry()
	reg.Register(components.Definition{Type: " RepeatingGroup ", IsContainer: true})
	reg.Register(components.Definition{Type: "  "})

	if !reg.IsContainerType("RepeatingGroup") {
		t.Fatalf("expected trimmed registration to be a container")
	}
	for _, name := range reg.Types() {
		if strings.TrimSpace(name) == "" {
			t.Fatalf("blank type registered: %v", reg.Types())
		}
	}

	var empty components.Registry
	if empty.IsContainerType(components.TypeGroup) {
		t.Fatalf("zero registry should not know any types")
	}
	empty.Register(components.Definition{Type: components.TypeGroup, IsContainer: true})
	if !empty.IsContainerType(components.TypeGroup) {
		t.Fatalf("zero registry should accept registrations")
	}
}

func TestGenerateID_SkipsTakenIDs(t *testing.T) {
	pattern := regexp.MustCompile(`^NavigationButtons-[0-9a-f]{6}$`)
	calls := 0
	id := components.GenerateID(components.TypeNavigationButtons, func(string) bool {
		calls++
		return calls < 3
	})
	if !pattern.MatchString(id) {
		t.Fatalf("unexpected id format: %q", id)
	}
	if calls != 3 {
		t.Fatalf("expected generator to retry until free, calls=%d", calls)
	}
	if got := components.GenerateID("", nil); !strings.HasPrefix(got, "component-") {
		t.Fatalf("expected fallback prefix, got %q", got)
	}
}
