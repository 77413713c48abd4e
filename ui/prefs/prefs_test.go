package prefs

import (
	"image/color"
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "preferences.json")

	p := LoadFrom(path)
	p.SetString(KeyLastDirectory, "/data/images")
	p.SetBool(KeyAutosave, true)
	p.SetFloat(KeyControlPointSize, 8)
	p.SetColor(KeyBoxColor, color.RGBA{R: 255, G: 64, B: 0, A: 255})
	if err := p.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	q := LoadFrom(path)
	if got := q.String(KeyLastDirectory, ""); got != "/data/images" {
		t.Errorf("lastDirectory = %q", got)
	}
	if !q.Bool(KeyAutosave, false) {
		t.Error("autosave lost")
	}
	if got := q.Float(KeyControlPointSize, 0); got != 8 {
		t.Errorf("controlPointSize = %v", got)
	}
	if got := q.Color(KeyBoxColor, color.RGBA{}); got != (color.RGBA{R: 255, G: 64, B: 0, A: 255}) {
		t.Errorf("boxColor = %+v", got)
	}
}

func TestMissingFileYieldsFallbacks(t *testing.T) {
	p := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if got := p.String(KeyOutputDirectory, "anns"); got != "anns" {
		t.Errorf("fallback string = %q", got)
	}
	if got := p.Float(KeyHitTolerance, 6); got != 6 {
		t.Errorf("fallback float = %v", got)
	}
	if !p.Bool(KeyShowLabels, true) {
		t.Error("fallback bool lost")
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#10ff0a")
	if err != nil || c != (color.RGBA{R: 0x10, G: 0xff, B: 0x0a, A: 255}) {
		t.Errorf("ParseColor = %+v, %v", c, err)
	}
	c, err = ParseColor("#10ff0a80")
	if err != nil || c.A != 0x80 {
		t.Errorf("ParseColor with alpha = %+v, %v", c, err)
	}
	if _, err := ParseColor("red"); err == nil {
		t.Error("expected an error for non-hex input")
	}
}
