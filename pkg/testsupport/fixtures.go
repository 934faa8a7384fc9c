package testsupport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formlayout/pkg/layout"
)

// LoadExternal reads a layout fixture. Testing helpers fail the test on
// error to keep contract tests concise.
func LoadExternal(t *testing.T, path string) *layout.ExternalFormLayout {
	t.Helper()

	external, err := LoadExternalFromPath(path)
	if err != nil {
		t.Fatalf("load layout: %v", err)
	}
	return external
}

// LoadExternalFromPath returns a layout without requiring testing.T, allowing
// callers to wire fixtures in setup functions.
func LoadExternalFromPath(path string) (*layout.ExternalFormLayout, error) {
	if path == "" {
		return nil, errors.New("testsupport: layout path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read layout: %w", err)
	}
	external, err := layout.ParseExternal(data)
	if err != nil {
		return nil, fmt.Errorf("testsupport: parse layout: %w", err)
	}
	return external, nil
}

// MustLoadInternal reads a layout fixture and converts it.
func MustLoadInternal(t *testing.T, path string, opts ...layout.Option) layout.Layout {
	t.Helper()

	internal, err := layout.ToInternal(LoadExternal(t, path), opts...)
	if err != nil {
		t.Fatalf("convert layout: %v", err)
	}
	return internal
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set and
// reports whether it did.
func WriteGolden(t *testing.T, path string, value any) bool {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	return WriteMaybeGolden(t, path, append(payload, '\n'))
}

// CompareGolden returns a diff string if the values differ. Nil and empty
// maps and slices compare equal.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got, cmpopts.EquateEmpty())
}

// CompareJSON decodes both documents and diffs the generic values, so key
// order and whitespace do not matter.
func CompareJSON(t *testing.T, want, got []byte) string {
	t.Helper()

	var wantValue, gotValue any
	if err := json.Unmarshal(want, &wantValue); err != nil {
		t.Fatalf("decode want: %v", err)
	}
	if err := json.Unmarshal(got, &gotValue); err != nil {
		t.Fatalf("decode got: %v", err)
	}
	return cmp.Diff(wantValue, gotValue)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
