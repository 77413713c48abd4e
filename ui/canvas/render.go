package canvas

import (
	"image"
	"image/color"
)

// drawRectOutline draws a rectangle outline of the given thickness,
// clipped to the output bounds.
func drawRectOutline(dst *image.RGBA, x1, y1, x2, y2, thickness int, col color.RGBA) {
	if x2 < x1 || y2 < y1 {
		return
	}
	for t := 0; t < thickness; t++ {
		hline(dst, x1, x2, y1+t, col)
		hline(dst, x1, x2, y2-t, col)
		vline(dst, x1+t, y1, y2, col)
		vline(dst, x2-t, y1, y2, col)
	}
}

// drawDashedRect draws a dashed rectangle outline for in-progress boxes.
func drawDashedRect(dst *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	if x2 < x1 || y2 < y1 {
		return
	}
	b := dst.Bounds()
	for x := x1; x <= x2; x++ {
		if (x+y1)%6 < 3 && inBounds(b, x, y1) {
			dst.SetRGBA(x, y1, col)
		}
		if (x+y2)%6 < 3 && inBounds(b, x, y2) {
			dst.SetRGBA(x, y2, col)
		}
	}
	for y := y1; y <= y2; y++ {
		if (x1+y)%6 < 3 && inBounds(b, x1, y) {
			dst.SetRGBA(x1, y, col)
		}
		if (x2+y)%6 < 3 && inBounds(b, x2, y) {
			dst.SetRGBA(x2, y, col)
		}
	}
}

// drawHandle draws a filled square handle centered at (cx, cy).
func drawHandle(dst *image.RGBA, cx, cy, size int, col color.RGBA) {
	half := size / 2
	fillRect(dst, cx-half, cy-half, cx-half+size, cy-half+size, col)
}

func hline(dst *image.RGBA, x1, x2, y int, col color.RGBA) {
	b := dst.Bounds()
	if y < b.Min.Y || y >= b.Max.Y {
		return
	}
	if x1 < b.Min.X {
		x1 = b.Min.X
	}
	if x2 >= b.Max.X {
		x2 = b.Max.X - 1
	}
	for x := x1; x <= x2; x++ {
		dst.SetRGBA(x, y, col)
	}
}

func vline(dst *image.RGBA, x, y1, y2 int, col color.RGBA) {
	b := dst.Bounds()
	if x < b.Min.X || x >= b.Max.X {
		return
	}
	if y1 < b.Min.Y {
		y1 = b.Min.Y
	}
	if y2 >= b.Max.Y {
		y2 = b.Max.Y - 1
	}
	for y := y1; y <= y2; y++ {
		dst.SetRGBA(x, y, col)
	}
}

func inBounds(b image.Rectangle, x, y int) bool {
	return x >= b.Min.X && x < b.Max.X && y >= b.Min.Y && y < b.Max.Y
}
