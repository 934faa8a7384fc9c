package editor

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formlayout/pkg/components"
	"github.com/goliatone/go-formlayout/pkg/layout"
	"github.com/goliatone/go-formlayout/pkg/layoutset"
	"github.com/goliatone/go-formlayout/pkg/store"
	"github.com/goliatone/go-formlayout/pkg/testsupport"
)

var ref = store.Ref{Org: "acme", App: "onboarding", LayoutSet: "form"}

func newService(t *testing.T) (*Service, *store.FileStore) {
	t.Helper()
	fs := store.NewFileStore(t.TempDir())
	return New(fs), fs
}

func addInput(id string) Mutation {
	return func(l layout.Layout) (layout.Layout, error) {
		return layout.AddComponent(l, layout.FormComponent{ID: id, Type: components.TypeInput}, layout.BaseContainerID, layout.Append)
	}
}

func addGroup(id, parent string) Mutation {
	return func(l layout.Layout) (layout.Layout, error) {
		return layout.AddContainer(l, layout.FormContainer{Type: components.TypeGroup}, id, parent, layout.Append)
	}
}

func hasNav(t *testing.T, svc *Service, name string) bool {
	t.Helper()
	l, err := svc.Load(testsupport.Context(), ref, name)
	require.NoError(t, err)
	return layout.HasComponentOfType(l, components.TypeNavigationButtons)
}

func TestAddLayout_SyncsNavigationButtons(t *testing.T) {
	ctx := testsupport.Context()
	svc, _ := newService(t)

	settings, err := svc.AddLayout(ctx, ref, "page1")
	require.NoError(t, err)
	assert.Equal(t, []string{"page1"}, settings.Pages.Order)
	assert.False(t, hasNav(t, svc, "page1"), "a single page needs no navigation")

	settings, err = svc.AddLayout(ctx, ref, "page2")
	require.NoError(t, err)
	assert.Equal(t, []string{"page1", "page2"}, settings.Pages.Order)
	assert.True(t, hasNav(t, svc, "page1"))
	assert.True(t, hasNav(t, svc, "page2"))

	_, err = svc.AddLayout(ctx, ref, "page2")
	assert.ErrorIs(t, err, layoutset.ErrPageExists)
	_, err = svc.AddLayout(ctx, ref, "../x")
	assert.ErrorIs(t, err, store.ErrInvalidRef)
}

func TestDeleteLayout_PicksNextAndRemovesNavigation(t *testing.T) {
	ctx := testsupport.Context()
	svc, fs := newService(t)
	for _, name := range []string{"page1", "page2", "page3"} {
		_, err := svc.AddLayout(ctx, ref, name)
		require.NoError(t, err)
	}

	next, err := svc.DeleteLayout(ctx, ref, "page2", "page2")
	require.NoError(t, err)
	assert.Equal(t, "page3", next)

	next, err = svc.DeleteLayout(ctx, ref, "page3", "page1")
	require.NoError(t, err)
	assert.Equal(t, "page1", next, "current page survives the deletion")
	assert.False(t, hasNav(t, svc, "page1"))

	settings, err := fs.LoadSettings(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, []string{"page1"}, settings.Pages.Order)

	next, err = svc.DeleteLayout(ctx, ref, "page1", "page1")
	require.NoError(t, err)
	assert.Equal(t, layoutset.DefaultLayoutName, next)

	_, err = svc.DeleteLayout(ctx, ref, "page1", "page1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestReceiptLayoutIsSkipped(t *testing.T) {
	ctx := testsupport.Context()
	svc, fs := newService(t)

	settings := layoutset.NewSettings()
	settings.Pages.ReceiptLayoutName = "receipt"
	require.NoError(t, fs.SaveSettings(ctx, ref, settings))

	for _, name := range []string{"page1", "page2", "receipt"} {
		_, err := svc.AddLayout(ctx, ref, name)
		require.NoError(t, err)
	}
	assert.True(t, hasNav(t, svc, "page1"))
	assert.True(t, hasNav(t, svc, "page2"))
	assert.False(t, hasNav(t, svc, "receipt"))
}

func TestApply_SavesAndEnforcesDepth(t *testing.T) {
	ctx := testsupport.Context()
	svc, fs := newService(t)
	_, err := svc.AddLayout(ctx, ref, "page1")
	require.NoError(t, err)

	updated, err := svc.Apply(ctx, ref, "page1", addInput("name"))
	require.NoError(t, err)
	assert.Contains(t, updated.Components, "name")

	parent := layout.BaseContainerID
	for _, id := range []string{"g1", "g2", "g3"} {
		_, err := svc.Apply(ctx, ref, "page1", addGroup(id, parent))
		require.NoError(t, err)
		parent = id
	}
	_, err = svc.Apply(ctx, ref, "page1", addGroup("g4", "g3"))
	assert.ErrorIs(t, err, ErrDepthExceeded)

	stored, err := fs.LoadLayout(ctx, ref, "page1")
	require.NoError(t, err)
	internal, err := layout.ToInternal(stored)
	require.NoError(t, err)
	assert.NotContains(t, internal.Containers, "g4")
	assert.Equal(t, 3, layout.GetDepth(internal))

	deeper := New(fs, WithMaxDepth(4))
	_, err = deeper.Apply(ctx, ref, "page1", addGroup("g4", "g3"))
	assert.NoError(t, err)

	_, err = svc.Apply(ctx, ref, "page1", addInput("name"))
	assert.ErrorIs(t, err, layout.ErrDuplicateID)
	_, err = svc.Apply(ctx, ref, "missing", addInput("x"))
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = svc.Apply(ctx, ref, "page1", nil)
	assert.Error(t, err)
}

func TestApply_SerialisesConcurrentWrites(t *testing.T) {
	ctx := testsupport.Context()
	svc, _ := newService(t)
	_, err := svc.AddLayout(ctx, ref, "page1")
	require.NoError(t, err)

	const writers = 16
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Apply(ctx, ref, "page1", addInput(fmt.Sprintf("field-%02d", i)))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	l, err := svc.Load(ctx, ref, "page1")
	require.NoError(t, err)
	assert.Len(t, l.Components, writers)
	assert.Len(t, l.Order[layout.BaseContainerID], writers)
}

func TestOpen_IsolatesInvalidLayouts(t *testing.T) {
	ctx := testsupport.Context()
	svc, fs := newService(t)
	for _, name := range []string{"page1", "page2"} {
		_, err := svc.AddLayout(ctx, ref, name)
		require.NoError(t, err)
	}
	broken := filepath.Join(fs.SetDir(ref), "layouts", "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"data":{"layout":[{"id":"a","type":"Input"},{"id":"a","type":"Input"}]}}`), 0o644))

	set, err := svc.Open(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, []string{"broken"}, set.Invalid)
	assert.ErrorIs(t, set.Errors["broken"], layout.ErrDuplicateID)
	assert.Len(t, set.Layouts, 2)
	assert.Equal(t, []string{"page1", "page2"}, set.Settings.Pages.Order)
}

func TestOpen_WithoutSettingsListsLayouts(t *testing.T) {
	ctx := testsupport.Context()
	svc, fs := newService(t)
	require.NoError(t, fs.SaveLayout(ctx, ref, "b", layout.ToExternal(layout.CreateEmptyLayout())))
	require.NoError(t, fs.SaveLayout(ctx, ref, "a", layout.ToExternal(layout.CreateEmptyLayout())))

	set, err := svc.Open(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, set.Settings.Pages.Order)

	require.NoError(t, svc.SyncNavigation(ctx, ref, "b"))
	assert.True(t, hasNav(t, svc, "a"))
	assert.True(t, hasNav(t, svc, "b"))
}

func TestRenameLayout(t *testing.T) {
	ctx := testsupport.Context()
	svc, fs := newService(t)
	_, err := svc.AddLayout(ctx, ref, "page1")
	require.NoError(t, err)
	_, err = svc.Apply(ctx, ref, "page1", addInput("name"))
	require.NoError(t, err)

	settings, err := svc.RenameLayout(ctx, ref, "page1", "intro")
	require.NoError(t, err)
	assert.Equal(t, []string{"intro"}, settings.Pages.Order)

	names, err := fs.ListLayouts(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, []string{"intro"}, names)

	l, err := svc.Load(ctx, ref, "intro")
	require.NoError(t, err)
	assert.Contains(t, l.Components, "name")

	_, err = svc.RenameLayout(ctx, ref, "page1", "other")
	assert.ErrorIs(t, err, layoutset.ErrPageNotFound)
}
