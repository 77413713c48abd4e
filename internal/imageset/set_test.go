package imageset

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
}

func newFixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), 8, 6)
	writePNG(t, filepath.Join(dir, "a.png"), 4, 4)
	writePNG(t, filepath.Join(dir, "c.png"), 10, 10)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestSetDirectoryListsSortedImages(t *testing.T) {
	dir := newFixtureDir(t)
	s := NewSet(nil)
	if err := s.SetDirectory(dir); err != nil {
		t.Fatalf("SetDirectory failed: %v", err)
	}

	paths := s.Paths()
	if len(paths) != 3 {
		t.Fatalf("found %d images, want 3", len(paths))
	}
	want := []string{"a.png", "b.png", "c.png"}
	for i, p := range paths {
		if filepath.Base(p) != want[i] {
			t.Errorf("paths[%d] = %s, want %s", i, filepath.Base(p), want[i])
		}
	}
	if s.Index() != -1 {
		t.Errorf("fresh directory index = %d, want -1", s.Index())
	}
}

func TestSetDirectoryRejectsNonDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.png")
	writePNG(t, file, 2, 2)

	s := NewSet(nil)
	if err := s.SetDirectory(file); err == nil {
		t.Error("expected an error for a file path")
	}
	if err := s.SetDirectory(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected an error for a missing path")
	}
}

func TestSetIndexDecodesImage(t *testing.T) {
	dir := newFixtureDir(t)
	s := NewSet(nil)
	s.SetDirectory(dir)

	var events []int
	s.On(EventImageChanged, func(data interface{}) {
		events = append(events, data.(int))
	})

	if err := s.SetIndex(1); err != nil {
		t.Fatalf("SetIndex failed: %v", err)
	}
	img, ok := s.Current()
	if !ok {
		t.Fatal("expected a decoded image")
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 6 {
		t.Errorf("decoded b.png as %dx%d, want 8x6", b.Dx(), b.Dy())
	}
	if base := filepath.Base(s.CurrentPath()); base != "b.png" {
		t.Errorf("current path = %s, want b.png", base)
	}
	if len(events) != 1 || events[0] != 1 {
		t.Errorf("events = %v, want [1]", events)
	}

	if err := s.SetIndex(5); err == nil {
		t.Error("expected out-of-range error")
	}
}

func TestNavigation(t *testing.T) {
	dir := newFixtureDir(t)
	s := NewSet(nil)
	s.SetDirectory(dir)

	// Next with no selection lands on the first image.
	if err := s.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if s.Index() != 0 {
		t.Fatalf("index = %d, want 0", s.Index())
	}

	s.Next()
	s.Next()
	if s.Index() != 2 {
		t.Fatalf("index = %d, want 2", s.Index())
	}
	// Next at the end stays put.
	if err := s.Next(); err != nil || s.Index() != 2 {
		t.Errorf("Next at end: err=%v index=%d, want nil/2", err, s.Index())
	}

	s.Prev()
	if s.Index() != 1 {
		t.Errorf("index = %d, want 1", s.Index())
	}
	s.First()
	if s.Index() != 0 {
		t.Errorf("First: index = %d, want 0", s.Index())
	}
	// Prev at the start stays put.
	if err := s.Prev(); err != nil || s.Index() != 0 {
		t.Errorf("Prev at start: err=%v index=%d, want nil/0", err, s.Index())
	}
	s.Last()
	if s.Index() != 2 {
		t.Errorf("Last: index = %d, want 2", s.Index())
	}
}

func TestPrevWithNoSelectionStartsAtLast(t *testing.T) {
	dir := newFixtureDir(t)
	s := NewSet(nil)
	s.SetDirectory(dir)

	if err := s.Prev(); err != nil {
		t.Fatalf("Prev failed: %v", err)
	}
	if s.Index() != 2 {
		t.Errorf("index = %d, want last image", s.Index())
	}
}

func TestEmptyDirectory(t *testing.T) {
	s := NewSet(nil)
	if err := s.SetDirectory(t.TempDir()); err != nil {
		t.Fatalf("SetDirectory on empty dir failed: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("Len = %d, want 0", s.Len())
	}
	for _, err := range []error{s.Next(), s.Prev(), s.First(), s.Last()} {
		if !errors.Is(err, ErrNoImages) {
			t.Errorf("navigation on empty set = %v, want ErrNoImages", err)
		}
	}
}

func TestAnnotationPath(t *testing.T) {
	got := AnnotationPath("/out", "/images/photo_01.jpg")
	want := filepath.Join("/out", "photo_01.json")
	if got != want {
		t.Errorf("AnnotationPath = %s, want %s", got, want)
	}

	// Dotted stems keep everything before the final extension.
	got = AnnotationPath("/out", "scan.v2.png")
	want = filepath.Join("/out", "scan.v2.json")
	if got != want {
		t.Errorf("AnnotationPath = %s, want %s", got, want)
	}
}

func TestIsSupported(t *testing.T) {
	for _, p := range []string{"a.png", "B.JPG", "c.webp", "d.tiff", "e.bmp", "f.gif"} {
		if !IsSupported(p) {
			t.Errorf("%s should be supported", p)
		}
	}
	for _, p := range []string{"a.txt", "b.json", "noext"} {
		if IsSupported(p) {
			t.Errorf("%s should not be supported", p)
		}
	}
}
