package layout_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formlayout/pkg/layout"
)

func mustLayout(t *testing.T) func(layout.Layout, error) layout.Layout {
	t.Helper()
	return func(l layout.Layout, err error) layout.Layout {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return l
	}
}

// multiPageFixture returns a layout with a multi-page group "pages" holding
// a(0) b(0) c(1) d(1).
func multiPageFixture(t *testing.T) layout.Layout {
	t.Helper()

	l := layout.CreateEmptyLayout()
	l = mustLayout(t)(layout.AddContainer(l, layout.FormContainer{
		Type:       "Group",
		Properties: map[string]any{"edit": map[string]any{"multiPage": true}},
	}, "pages", layout.BaseContainerID, layout.Append))
	for _, entry := range []struct {
		id   string
		page int
	}{{"a", 0}, {"b", 0}, {"c", 1}, {"d", 1}} {
		l = mustLayout(t)(layout.AddComponent(l, layout.FormComponent{ID: entry.id, Type: "Input"}, "pages", layout.Append))
		component := l.Components[entry.id]
		component.PageIndex = intPtr(entry.page)
		l.Components[entry.id] = component
	}
	return l
}

func TestAddComponent_PageIndexRule(t *testing.T) {
	base := multiPageFixture(t)

	cases := []struct {
		name     string
		position int
		want     int
	}{
		{"first position", 0, 0},
		{"after second page start", 3, 1},
		{"append", layout.Append, 1},
		{"between first page items", 1, 0},
		{"past the end", 99, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mustLayout(t)(layout.AddComponent(base, layout.FormComponent{ID: "new", Type: "Input", PageIndex: intPtr(7)}, "pages", tc.position))
			if diff := cmp.Diff(intPtr(tc.want), got.Components["new"].PageIndex); diff != "" {
				t.Fatalf("page index mismatch (-want +got):\n%s", diff)
			}
		})
	}

	plain := mustLayout(t)(layout.AddComponent(base, layout.FormComponent{ID: "top", Type: "Input", PageIndex: intPtr(3)}, layout.BaseContainerID, 0))
	if plain.Components["top"].PageIndex != nil {
		t.Fatalf("items outside multi-page groups must not have a page index")
	}

	empty := mustLayout(t)(layout.AddContainer(base, layout.FormContainer{
		Type:       "Group",
		Properties: map[string]any{"edit": map[string]any{"multiPage": true}},
	}, "empty", layout.BaseContainerID, layout.Append))
	appended := mustLayout(t)(layout.AddComponent(empty, layout.FormComponent{ID: "solo", Type: "Input"}, "empty", layout.Append))
	if diff := cmp.Diff(intPtr(0), appended.Components["solo"].PageIndex); diff != "" {
		t.Fatalf("first child of an empty multi-page group (-want +got):\n%s", diff)
	}
}

func TestAddComponent_FillsPropertyPathAndPosition(t *testing.T) {
	l := layout.CreateEmptyLayout()
	l = mustLayout(t)(layout.AddComponent(l, layout.FormComponent{ID: "one", Type: "Input"}, layout.BaseContainerID, layout.Append))
	l = mustLayout(t)(layout.AddComponent(l, layout.FormComponent{ID: "zero", Type: "Paragraph"}, layout.BaseContainerID, 0))
	l = mustLayout(t)(layout.AddComponent(l, layout.FormComponent{ID: "mid", Type: "Paragraph"}, layout.BaseContainerID, 1))

	if diff := cmp.Diff([]string{"zero", "mid", "one"}, l.Order[layout.BaseContainerID]); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if got := l.Components["one"].PropertyPath; got != "definitions/inputComponent" {
		t.Fatalf("expected registry property path, got %q", got)
	}
}

func TestAddComponent_Errors(t *testing.T) {
	l := multiPageFixture(t)

	if _, err := layout.AddComponent(l, layout.FormComponent{ID: "a", Type: "Input"}, layout.BaseContainerID, layout.Append); !errors.Is(err, layout.ErrDuplicateID) {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
	if _, err := layout.AddComponent(l, layout.FormComponent{ID: "x", Type: "Input"}, "nope", layout.Append); !errors.Is(err, layout.ErrContainerNotFound) {
		t.Fatalf("expected container not found, got %v", err)
	}
	if _, err := layout.AddComponent(l, layout.FormComponent{ID: " ", Type: "Input"}, layout.BaseContainerID, layout.Append); !errors.Is(err, layout.ErrInvalidID) {
		t.Fatalf("expected invalid id, got %v", err)
	}
	if _, err := layout.AddContainer(l, layout.FormContainer{Type: "Group"}, "pages", layout.BaseContainerID, layout.Append); !errors.Is(err, layout.ErrDuplicateID) {
		t.Fatalf("expected duplicate container id, got %v", err)
	}

	withGhost := l.Clone()
	withGhost.Order[layout.BaseContainerID] = append(withGhost.Order[layout.BaseContainerID], "ghost")
	if _, err := layout.AddComponent(withGhost, layout.FormComponent{ID: "ghost", Type: "Input"}, "pages", layout.Append); !errors.Is(err, layout.ErrDuplicateID) {
		t.Fatalf("expected referenced id to be rejected, got %v", err)
	}
}

func TestAddThenRemoveComponentIsClean(t *testing.T) {
	base := multiPageFixture(t)

	for _, position := range []int{0, 2, layout.Append} {
		added := mustLayout(t)(layout.AddComponent(base, layout.FormComponent{ID: "tmp", Type: "Input"}, "pages", position))
		removed := mustLayout(t)(layout.RemoveComponent(added, "tmp"))
		if diff := cmp.Diff(base.Order["pages"], removed.Order["pages"]); diff != "" {
			t.Fatalf("position %d: order residue (-want +got):\n%s", position, diff)
		}
		if _, ok := removed.Components["tmp"]; ok {
			t.Fatalf("position %d: component not removed", position)
		}
	}
}

func TestMutationsDoNotModifyInput(t *testing.T) {
	base := multiPageFixture(t)
	snapshot := base.Clone()

	_ = mustLayout(t)(layout.AddComponent(base, layout.FormComponent{ID: "x", Type: "Input"}, "pages", 1))
	_ = mustLayout(t)(layout.RemoveComponent(base, "a"))
	_ = mustLayout(t)(layout.MoveLayoutItem(base, "d", layout.BaseContainerID, 0))
	renamed := base.Containers["pages"]
	renamed.ID = "renamed"
	_ = mustLayout(t)(layout.UpdateContainer(base, renamed, "pages"))
	_ = mustLayout(t)(layout.RemoveItem(base, "pages"))

	if diff := cmp.Diff(snapshot, base); diff != "" {
		t.Fatalf("input layout was modified (-before +after):\n%s", diff)
	}
}

func TestRemoveComponent_NoParentIsNoop(t *testing.T) {
	l := multiPageFixture(t)
	got := mustLayout(t)(layout.RemoveComponent(l, "does-not-exist"))
	if diff := cmp.Diff(l, got); diff != "" {
		t.Fatalf("expected unchanged layout (-want +got):\n%s", diff)
	}

	dup := l.Clone()
	dup.Order[layout.BaseContainerID] = append(dup.Order[layout.BaseContainerID], "a")
	if _, err := layout.RemoveComponent(dup, "a"); !errors.Is(err, layout.ErrMultipleParents) {
		t.Fatalf("expected multiple parents error, got %v", err)
	}
}

func TestRemoveComponentsByType(t *testing.T) {
	l := multiPageFixture(t)
	l = mustLayout(t)(layout.AddNavigationButtons(l, "nav-1"))
	l = mustLayout(t)(layout.AddNavigationButtons(l, "nav-2"))

	got := mustLayout(t)(layout.RemoveComponentsByType(l, "NavigationButtons"))
	if layout.HasComponentOfType(got, "NavigationButtons") {
		t.Fatalf("navigation buttons left behind")
	}
	if diff := cmp.Diff([]string{"pages"}, got.Order[layout.BaseContainerID]); diff != "" {
		t.Fatalf("base order mismatch (-want +got):\n%s", diff)
	}

	same := mustLayout(t)(layout.RemoveComponentsByType(got, "Datepicker"))
	if diff := cmp.Diff(got, same); diff != "" {
		t.Fatalf("expected no change (-want +got):\n%s", diff)
	}
}

func TestAddNavigationButtons_Shape(t *testing.T) {
	l := mustLayout(t)(layout.AddNavigationButtons(layout.CreateEmptyLayout(), "nav"))
	want := layout.FormComponent{
		ID:         "nav",
		Type:       "NavigationButtons",
		Properties: map[string]any{"showBackButton": true},
	}
	if diff := cmp.Diff(want, l.Components["nav"]); diff != "" {
		t.Fatalf("navigation buttons mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"nav"}, l.Order[layout.BaseContainerID]); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateContainer_Rename(t *testing.T) {
	l := multiPageFixture(t)
	updated := l.Containers["pages"]
	updated.ID = "wizard"

	got := mustLayout(t)(layout.UpdateContainer(l, updated, "pages"))
	if _, ok := got.Containers["pages"]; ok {
		t.Fatalf("old container key still present")
	}
	if _, ok := got.Order["pages"]; ok {
		t.Fatalf("old order key still present")
	}
	if diff := cmp.Diff([]string{"a", "b", "c", "d"}, got.Order["wizard"]); diff != "" {
		t.Fatalf("children mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"wizard"}, got.Order[layout.BaseContainerID]); diff != "" {
		t.Fatalf("parent reference mismatch (-want +got):\n%s", diff)
	}

	taken := l.Containers["pages"]
	taken.ID = "a"
	if _, err := layout.UpdateContainer(l, taken, "pages"); !errors.Is(err, layout.ErrDuplicateID) {
		t.Fatalf("expected duplicate id, got %v", err)
	}
	if _, err := layout.UpdateContainer(l, layout.FormContainer{}, layout.BaseContainerID); !errors.Is(err, layout.ErrInvalidID) {
		t.Fatalf("expected base container update to fail, got %v", err)
	}
	if _, err := layout.UpdateContainer(l, layout.FormContainer{}, "missing"); !errors.Is(err, layout.ErrContainerNotFound) {
		t.Fatalf("expected container not found, got %v", err)
	}
}

func TestUpdateContainer_TogglingMultiPageResetsChildren(t *testing.T) {
	l := multiPageFixture(t)
	updated := l.Containers["pages"]
	updated.Properties = nil

	flat := mustLayout(t)(layout.UpdateContainer(l, updated, "pages"))
	for _, id := range []string{"a", "b", "c", "d"} {
		if flat.Components[id].PageIndex != nil {
			t.Fatalf("%s should lose its page index", id)
		}
	}

	updated.Properties = map[string]any{"edit": map[string]any{"multiPage": true}}
	paged := mustLayout(t)(layout.UpdateContainer(flat, updated, "pages"))
	for _, id := range []string{"a", "b", "c", "d"} {
		if diff := cmp.Diff(intPtr(0), paged.Components[id].PageIndex); diff != "" {
			t.Fatalf("%s page index (-want +got):\n%s", id, diff)
		}
	}
}

func TestUpdateComponent_Rename(t *testing.T) {
	l := multiPageFixture(t)
	updated := l.Components["b"]
	updated.ID = "b2"
	updated.PageIndex = nil
	updated.Properties = map[string]any{"required": true}

	got := mustLayout(t)(layout.UpdateComponent(l, updated, "b"))
	if diff := cmp.Diff([]string{"a", "b2", "c", "d"}, got.Order["pages"]); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(intPtr(0), got.Components["b2"].PageIndex); diff != "" {
		t.Fatalf("page index should be kept (-want +got):\n%s", diff)
	}
	if _, err := layout.UpdateComponent(l, updated, "zzz"); !errors.Is(err, layout.ErrItemNotFound) {
		t.Fatalf("expected item not found, got %v", err)
	}
}

func TestMoveLayoutItem(t *testing.T) {
	l := multiPageFixture(t)
	l = mustLayout(t)(layout.AddComponent(l, layout.FormComponent{ID: "top", Type: "Input"}, layout.BaseContainerID, layout.Append))

	moved := mustLayout(t)(layout.MoveLayoutItem(l, "top", "pages", 2))
	if diff := cmp.Diff([]string{"a", "b", "top", "c", "d"}, moved.Order["pages"]); diff != "" {
		t.Fatalf("target order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"pages"}, moved.Order[layout.BaseContainerID]); diff != "" {
		t.Fatalf("source order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(intPtr(0), moved.Components["top"].PageIndex); diff != "" {
		t.Fatalf("page index mismatch (-want +got):\n%s", diff)
	}

	back := mustLayout(t)(layout.MoveLayoutItem(moved, "c", layout.BaseContainerID, 0))
	if back.Components["c"].PageIndex != nil {
		t.Fatalf("page index should be cleared when leaving a multi-page group")
	}
	if diff := cmp.Diff([]string{"c", "pages"}, back.Order[layout.BaseContainerID]); diff != "" {
		t.Fatalf("base order mismatch (-want +got):\n%s", diff)
	}

	within := mustLayout(t)(layout.MoveLayoutItem(l, "a", "pages", 3))
	if diff := cmp.Diff([]string{"b", "c", "d", "a"}, within.Order["pages"]); diff != "" {
		t.Fatalf("reorder mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(intPtr(1), within.Components["a"].PageIndex); diff != "" {
		t.Fatalf("reorder page index mismatch (-want +got):\n%s", diff)
	}
}

func TestMoveLayoutItem_Errors(t *testing.T) {
	l := multiPageFixture(t)
	l = mustLayout(t)(layout.AddItemOfType(l, "Group", "inner", "pages", layout.Append))

	if _, err := layout.MoveLayoutItem(l, "missing", layout.BaseContainerID, 0); !errors.Is(err, layout.ErrItemNotFound) {
		t.Fatalf("expected item not found, got %v", err)
	}
	if _, err := layout.MoveLayoutItem(l, "a", "missing", 0); !errors.Is(err, layout.ErrContainerNotFound) {
		t.Fatalf("expected container not found, got %v", err)
	}
	if _, err := layout.MoveLayoutItem(l, "pages", "inner", 0); !errors.Is(err, layout.ErrInvalidMove) {
		t.Fatalf("expected invalid move into descendant, got %v", err)
	}
	if _, err := layout.MoveLayoutItem(l, "pages", "pages", 0); !errors.Is(err, layout.ErrInvalidMove) {
		t.Fatalf("expected invalid move into itself, got %v", err)
	}
}

func TestAddItemOfType(t *testing.T) {
	l := layout.CreateEmptyLayout()
	l = mustLayout(t)(layout.AddItemOfType(l, "Group", "group", layout.BaseContainerID, layout.Append))
	l = mustLayout(t)(layout.AddItemOfType(l, "Datepicker", "date", "group", layout.Append))

	if !layout.IsContainer(l, "group") {
		t.Fatalf("group should be a container")
	}
	if got := l.Order["group"]; len(got) != 1 || got[0] != "date" {
		t.Fatalf("group children mismatch: %v", got)
	}
	wantDate := layout.FormComponent{
		ID:           "date",
		Type:         "Datepicker",
		PropertyPath: "definitions/datepickerComponent",
		Properties:   map[string]any{"timeStamp": true, "required": false, "readOnly": false},
	}
	if diff := cmp.Diff(wantDate, l.Components["date"]); diff != "" {
		t.Fatalf("datepicker mismatch (-want +got):\n%s", diff)
	}
	if _, err := layout.AddItemOfType(l, "SomethingCustom", "custom", layout.BaseContainerID, 0); !errors.Is(err, layout.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
	if layout.IDExists("custom", l) {
		t.Fatalf("unknown type must not be added")
	}
	if diff := cmp.Diff([]string{"group"}, l.Order[layout.BaseContainerID]); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoveItem_RemovesSubtree(t *testing.T) {
	l := multiPageFixture(t)
	l = mustLayout(t)(layout.AddItemOfType(l, "Group", "inner", "pages", layout.Append))
	l = mustLayout(t)(layout.AddItemOfType(l, "Input", "deep", "inner", layout.Append))
	l = mustLayout(t)(layout.AddItemOfType(l, "Header", "keep", layout.BaseContainerID, layout.Append))

	got := mustLayout(t)(layout.RemoveItem(l, "pages"))
	if diff := cmp.Diff([]string{"keep"}, layout.AllItemIDs(got)); diff != "" {
		t.Fatalf("remaining ids mismatch (-want +got):\n%s", diff)
	}
	want := map[string][]string{layout.BaseContainerID: {"keep"}}
	if diff := cmp.Diff(want, got.Order, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if _, err := layout.RemoveItem(l, layout.BaseContainerID); !errors.Is(err, layout.ErrInvalidID) {
		t.Fatalf("expected base removal to fail, got %v", err)
	}
}

func TestGetDepthAndValidateDepth(t *testing.T) {
	l := layout.CreateEmptyLayout()
	if got := layout.GetDepth(l); got != 0 {
		t.Fatalf("empty layout depth = %d", got)
	}

	parent := layout.BaseContainerID
	for idx, id := range []string{"groupA", "groupB", "groupC"} {
		l = mustLayout(t)(layout.AddItemOfType(l, "Group", id, parent, layout.Append))
		parent = id
		if got := layout.GetDepth(l); got != idx+1 {
			t.Fatalf("depth after %s = %d, want %d", id, got, idx+1)
		}
	}
	if !layout.ValidateDepth(l) {
		t.Fatalf("depth 3 should be valid with max %d", layout.MaxNestedGroupLevel)
	}

	l = mustLayout(t)(layout.AddItemOfType(l, "Group", "groupD", parent, layout.Append))
	if got := layout.GetDepth(l); got != 4 {
		t.Fatalf("depth = %d, want 4", got)
	}
	if layout.ValidateDepth(l) {
		t.Fatalf("depth 4 should exceed the limit")
	}
	if !layout.ValidateDepthLimit(l, 4) {
		t.Fatalf("custom limit should accept depth 4")
	}

	if !layout.HasSubContainers(l, "groupA") || layout.HasSubContainers(l, "groupD") {
		t.Fatalf("HasSubContainers mismatch")
	}
}

func TestLookups(t *testing.T) {
	l := multiPageFixture(t)

	if parent, ok := layout.FindParentID(l, "c"); !ok || parent != "pages" {
		t.Fatalf("FindParentID(c) = %q, %v", parent, ok)
	}
	if _, ok := layout.FindParentID(l, "zzz"); ok {
		t.Fatalf("unexpected parent for unknown id")
	}
	if got := layout.GetChildIDs(l, "nope"); len(got) != 0 {
		t.Fatalf("expected no children, got %v", got)
	}
	item, ok := layout.GetItem(l, "pages")
	if !ok || item.ItemType() != layout.ItemTypeContainer {
		t.Fatalf("expected container item, got %#v", item)
	}
	if !layout.IDExists("PAGES", l) || layout.IDExists("e", l) {
		t.Fatalf("IDExists should compare case-insensitively")
	}
	if !layout.IsContainerType("Group") || layout.IsContainerType("Input") {
		t.Fatalf("IsContainerType mismatch")
	}
}
