package annotation

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadFile_SkipsCorruptRecords(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "img.json", `{
  "annotations": [
    {"label": "cat", "bbox": [10, 10, 50, 40]},
    {"label": "dog", "bbox": [1, 2, 3]},
    {"bbox": [0, 0, 5, 5]},
    {"label": "bird", "bbox": [50, 40, 10, 10]},
    {"label": "fish", "bbox": [0, 0, 20, 20]}
  ]
}`)

	anns, report, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if len(anns) != 2 {
		t.Fatalf("expected 2 loaded annotations, got %d", len(anns))
	}
	if anns[0].Label != "cat" || anns[1].Label != "fish" {
		t.Errorf("unexpected labels: %q, %q", anns[0].Label, anns[1].Label)
	}
	if len(report.Skipped) != 3 {
		t.Fatalf("expected 3 skipped records, got %d: %+v", len(report.Skipped), report.Skipped)
	}
	// Skip indices refer to positions in the file.
	want := []int{1, 2, 3}
	for i, sk := range report.Skipped {
		if sk.Index != want[i] {
			t.Errorf("skipped[%d].Index = %d, want %d", i, sk.Index, want[i])
		}
		if sk.Reason == "" {
			t.Errorf("skipped[%d] has empty reason", i)
		}
	}
}

func TestLoadFile_BareArrayFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "old.json", `[{"label": "cat", "bbox": [1, 2, 3, 4]}]`)

	anns, report, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if len(anns) != 1 || len(report.Skipped) != 0 {
		t.Fatalf("expected 1 annotation and no skips, got %d/%d", len(anns), len(report.Skipped))
	}
	if anns[0].BBox != box(1, 2, 3, 4) {
		t.Errorf("unexpected bbox: %+v", anns[0].BBox)
	}
}

func TestLoadFile_InvalidJSONFails(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.json", `{"annotations": [`)

	if _, _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestSaveLoad_RoundTripPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "img.json")

	in := []Annotation{
		{BBox: box(10, 10, 50, 40), Label: "cat"},
		{BBox: box(0.125, 1.5, 20.25, 30.75), Label: "dog"},
		{BBox: box(5, 5, 6, 6), Label: "cat"},
	}
	if err := SaveFile(path, in); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}

	out, report, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if len(report.Skipped) != 0 {
		t.Fatalf("round trip skipped records: %+v", report.Skipped)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d annotations, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i].Label != in[i].Label {
			t.Errorf("annotation %d label = %q, want %q", i, out[i].Label, in[i].Label)
		}
		// Coordinates in this fixture survive 2-decimal rounding exactly.
		if out[i].BBox != in[i].BBox {
			t.Errorf("annotation %d bbox = %+v, want %+v", i, out[i].BBox, in[i].BBox)
		}
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the saved file in the directory, found %d entries", len(entries))
	}
}
