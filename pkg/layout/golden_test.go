package layout_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-formlayout/pkg/layout"
	"github.com/goliatone/go-formlayout/pkg/testsupport"
)

func TestToExternal_Golden(t *testing.T) {
	internal := testsupport.MustLoadInternal(t, filepath.Join("testdata", "multipage.json"))
	external := layout.ToExternal(internal)

	golden := filepath.Join("testdata", "multipage.external.golden.json")
	if testsupport.WriteGolden(t, golden, external) {
		return
	}
	got, err := json.MarshalIndent(external, "", "  ")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if diff := testsupport.CompareJSON(t, testsupport.MustReadGolden(t, golden), got); diff != "" {
		t.Fatalf("external layout mismatch (-want +got):\n%s", diff)
	}
}

func TestToExternal_GoldenRoundTrip(t *testing.T) {
	golden := filepath.Join("testdata", "multipage.external.golden.json")
	want := testsupport.LoadExternal(t, golden)

	internal, err := layout.ToInternal(want)
	if err != nil {
		t.Fatalf("to internal: %v", err)
	}
	if diff := testsupport.CompareGolden(want, layout.ToExternal(internal)); diff != "" {
		t.Fatalf("normalized layout changed on round trip (-want +got):\n%s", diff)
	}
}
