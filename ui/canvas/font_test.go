package canvas

import (
	"image"
	"image/color"
	"testing"
)

func TestLabelSize(t *testing.T) {
	w, h := LabelSize("cat", 2)
	// 3 chars, 4 columns per char minus trailing gap, plus margins.
	if w != (3*4-1)*2+4 || h != 5*2+4 {
		t.Errorf("LabelSize = %dx%d", w, h)
	}
	if w, h := LabelSize("", 2); w != 0 || h != 0 {
		t.Errorf("empty label size = %dx%d, want 0x0", w, h)
	}
}

func TestDrawLabelPaintsWithinBacking(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 64, 32))
	col := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	DrawLabel(dst, "A1", 4, 4, col, 2)

	w, h := LabelSize("A1", 2)
	var glyph, outside int
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if dst.RGBAAt(x, y) != col {
				continue
			}
			if x >= 4 && x < 4+w && y >= 4 && y < 4+h {
				glyph++
			} else {
				outside++
			}
		}
	}
	if glyph == 0 {
		t.Error("no glyph pixels painted")
	}
	if outside != 0 {
		t.Errorf("%d glyph pixels escaped the backing rect", outside)
	}
}

func TestDrawLabelClipsAtEdges(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 8, 8))
	// Must not panic when the label extends past the image.
	DrawLabel(dst, "overflow", -4, -4, color.RGBA{R: 255, A: 255}, 3)
}

func TestDrawRectOutlineClips(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))
	col := color.RGBA{R: 255, A: 255}
	drawRectOutline(dst, -5, -5, 20, 20, 2, col)

	// Only the edges that cross the canvas get painted; corners are outside.
	if dst.RGBAAt(5, 5) == col {
		t.Error("interior pixel painted")
	}
}

func TestDrawHandleCentered(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 20, 20))
	col := color.RGBA{G: 255, A: 255}
	drawHandle(dst, 10, 10, 6, col)

	if dst.RGBAAt(10, 10) != col {
		t.Error("handle center not painted")
	}
	if dst.RGBAAt(10, 2) == col {
		t.Error("pixel far from handle painted")
	}
}
