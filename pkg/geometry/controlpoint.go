package geometry

// ControlPoint identifies one of the five interactive handles on a box:
// the four corners plus the center. Corner handles resize the box with the
// diagonally opposite corner held fixed; the center handle translates it.
type ControlPoint int

const (
	CPTopLeft ControlPoint = iota
	CPTopRight
	CPBottomRight
	CPBottomLeft
	CPCenter
)

func (cp ControlPoint) String() string {
	switch cp {
	case CPTopLeft:
		return "top-left"
	case CPTopRight:
		return "top-right"
	case CPBottomRight:
		return "bottom-right"
	case CPBottomLeft:
		return "bottom-left"
	case CPCenter:
		return "center"
	default:
		return "unknown"
	}
}

// ControlPoints returns the positions of the five handles in handle order.
func (b BBox) ControlPoints() [5]Point2D {
	return [5]Point2D{
		{X: b.Left, Y: b.Top},
		{X: b.Right, Y: b.Top},
		{X: b.Right, Y: b.Bottom},
		{X: b.Left, Y: b.Bottom},
		b.Center(),
	}
}

// HitControlPoint tests the point against the box's handles, returning the
// first handle whose Chebyshev distance to p is within tol. All values are
// in the same coordinate space; callers working in display space must map
// handle positions accordingly before testing.
func HitControlPoint(b BBox, p Point2D, tol float64) (ControlPoint, bool) {
	for i, cp := range b.ControlPoints() {
		if abs(cp.X-p.X) <= tol && abs(cp.Y-p.Y) <= tol {
			return ControlPoint(i), true
		}
	}
	return 0, false
}

// MoveCorner returns the box with the given corner handle moved to p, the
// opposite corner held fixed, and ordering re-normalized. Dragging a corner
// past its opposite corner therefore flips the box rather than inverting it.
// Passing CPCenter returns the box translated so its center lies at p.
func (b BBox) MoveCorner(cp ControlPoint, p Point2D) BBox {
	switch cp {
	case CPTopLeft:
		return BBox{Left: p.X, Top: p.Y, Right: b.Right, Bottom: b.Bottom}.Normalized()
	case CPTopRight:
		return BBox{Left: b.Left, Top: p.Y, Right: p.X, Bottom: b.Bottom}.Normalized()
	case CPBottomRight:
		return BBox{Left: b.Left, Top: b.Top, Right: p.X, Bottom: p.Y}.Normalized()
	case CPBottomLeft:
		return BBox{Left: p.X, Top: b.Top, Right: b.Right, Bottom: p.Y}.Normalized()
	case CPCenter:
		c := b.Center()
		return b.Translate(p.X-c.X, p.Y-c.Y)
	default:
		return b
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
