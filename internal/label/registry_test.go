package label

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bbox-annotator/internal/annotation"
	"bbox-annotator/pkg/geometry"
)

func box(l, t, r, b float64) geometry.BBox {
	return geometry.BBox{Left: l, Top: t, Right: r, Bottom: b}
}

func newFixture(t *testing.T) (*annotation.Store, *Registry) {
	t.Helper()
	store := annotation.NewStore(nil)
	return store, NewRegistry(store, nil)
}

func TestRegistry_SetCurrentRegisters(t *testing.T) {
	_, reg := newFixture(t)

	var currents []string
	reg.On(EventCurrentChanged, func(data interface{}) {
		currents = append(currents, data.(string))
	})

	reg.SetCurrent("cat")
	reg.SetCurrent("cat") // no change
	reg.SetCurrent("dog")

	if got := reg.Current(); got != "dog" {
		t.Errorf("Current() = %q, want dog", got)
	}
	if len(currents) != 2 {
		t.Errorf("expected 2 current-changed events, got %v", currents)
	}
	all := reg.All()
	if len(all) != 2 || all[0] != "cat" || all[1] != "dog" {
		t.Errorf("All() = %v, want [cat dog]", all)
	}
}

func TestRegistry_RenameCascadesAndRetainsOld(t *testing.T) {
	store, reg := newFixture(t)
	for i := 0; i < 3; i++ {
		store.Add(box(float64(i*20), 0, float64(i*20+10), 10), "cat")
	}
	store.Add(box(100, 0, 110, 10), "dog")
	reg.Register("cat", "dog")

	var renames []RenameData
	reg.On(EventLabelRenamed, func(data interface{}) {
		renames = append(renames, data.(RenameData))
	})

	if err := reg.Rename("cat", "feline"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}

	for _, a := range store.List() {
		if a.Label == "cat" {
			t.Errorf("annotation %d still labeled cat", a.ID)
		}
	}
	if !reg.Has("cat") {
		t.Error("old label should be retained in the registry after rename")
	}
	if !reg.Has("feline") {
		t.Error("new label should be registered")
	}
	if len(renames) != 1 || renames[0] != (RenameData{Old: "cat", New: "feline"}) {
		t.Errorf("unexpected rename events: %+v", renames)
	}
}

func TestRegistry_RenameRejectsEmptyAndSelf(t *testing.T) {
	_, reg := newFixture(t)
	reg.Register("cat")

	if err := reg.Rename("cat", "  "); !errors.Is(err, annotation.ErrInvalidLabel) {
		t.Errorf("Rename to blank = %v, want ErrInvalidLabel", err)
	}
	if err := reg.Rename("cat", "cat"); err != nil {
		t.Errorf("Rename to self = %v, want nil no-op", err)
	}
}

func TestRegistry_RemoveCascadesAndDropsLabel(t *testing.T) {
	store, reg := newFixture(t)
	store.Add(box(0, 0, 10, 10), "cat")
	store.Add(box(20, 0, 30, 10), "dog")
	store.Add(box(40, 0, 50, 10), "cat")
	reg.Register("cat", "dog")
	reg.SetCurrent("cat")

	n := reg.Remove("cat")
	if n != 2 {
		t.Fatalf("Remove deleted %d annotations, want 2", n)
	}
	if reg.Has("cat") {
		t.Error("removed label should not remain in the registry")
	}
	if reg.Current() != "" {
		t.Errorf("current label should be cleared, got %q", reg.Current())
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 surviving annotation, got %d", store.Len())
	}
}

func TestRegistry_SeedFromDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}
	write("a.json", `{"annotations": [{"label": "cat", "bbox": [0,0,1,1]}]}`)
	write("b.json", `[{"label": "dog", "bbox": [0,0,1,1]}, {"label": "cat", "bbox": [2,2,3,3]}]`)
	write("junk.json", `not json at all`)

	_, reg := newFixture(t)
	reg.SeedFromDir(dir)

	all := reg.All()
	if len(all) != 2 || all[0] != "cat" || all[1] != "dog" {
		t.Errorf("All() = %v, want [cat dog]", all)
	}
}
