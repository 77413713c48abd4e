// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"math"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Add returns the sum of two points.
func (p Point2D) Add(other Point2D) Point2D {
	return Point2D{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the difference of two points.
func (p Point2D) Sub(other Point2D) Point2D {
	return Point2D{X: p.X - other.X, Y: p.Y - other.Y}
}

// Scale returns the point scaled by a factor.
func (p Point2D) Scale(factor float64) Point2D {
	return Point2D{X: p.X * factor, Y: p.Y * factor}
}

// Size represents a 2D size.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewSize creates a new Size.
func NewSize(width, height float64) Size {
	return Size{Width: width, Height: height}
}

// BBox is an axis-aligned bounding box in image-pixel coordinates.
// A well-formed BBox has Left < Right and Top < Bottom; use Normalized
// to restore ordering after constructing one from arbitrary corners.
type BBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// NewBBox creates a normalized BBox spanning the two given corner points.
func NewBBox(p0, p1 Point2D) BBox {
	return BBox{
		Left:   math.Min(p0.X, p1.X),
		Top:    math.Min(p0.Y, p1.Y),
		Right:  math.Max(p0.X, p1.X),
		Bottom: math.Max(p0.Y, p1.Y),
	}
}

// Width returns the box width.
func (b BBox) Width() float64 {
	return b.Right - b.Left
}

// Height returns the box height.
func (b BBox) Height() float64 {
	return b.Bottom - b.Top
}

// Center returns the center point of the box.
func (b BBox) Center() Point2D {
	return Point2D{X: (b.Left + b.Right) / 2, Y: (b.Top + b.Bottom) / 2}
}

// Normalized returns the box with left/right and top/bottom reordered
// so that Left < Right and Top < Bottom.
func (b BBox) Normalized() BBox {
	return BBox{
		Left:   math.Min(b.Left, b.Right),
		Top:    math.Min(b.Top, b.Bottom),
		Right:  math.Max(b.Left, b.Right),
		Bottom: math.Max(b.Top, b.Bottom),
	}
}

// IsValid reports whether the box is ordered and at least minSize wide and tall.
func (b BBox) IsValid(minSize float64) bool {
	return b.Right-b.Left >= minSize && b.Bottom-b.Top >= minSize
}

// Contains returns true if the point is inside the box.
func (b BBox) Contains(p Point2D) bool {
	return p.X >= b.Left && p.X <= b.Right && p.Y >= b.Top && p.Y <= b.Bottom
}

// Intersects returns true if this box intersects with another.
func (b BBox) Intersects(other BBox) bool {
	return b.Left < other.Right && b.Right > other.Left &&
		b.Top < other.Bottom && b.Bottom > other.Top
}

// Translate returns the box shifted by (dx, dy).
func (b BBox) Translate(dx, dy float64) BBox {
	return BBox{Left: b.Left + dx, Top: b.Top + dy, Right: b.Right + dx, Bottom: b.Bottom + dy}
}

// Clamp returns the box limited to the rectangle [0,w] x [0,h].
func (b BBox) Clamp(w, h float64) BBox {
	return BBox{
		Left:   math.Max(0, math.Min(b.Left, w)),
		Top:    math.Max(0, math.Min(b.Top, h)),
		Right:  math.Max(0, math.Min(b.Right, w)),
		Bottom: math.Max(0, math.Min(b.Bottom, h)),
	}
}
