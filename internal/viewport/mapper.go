// Package viewport maps between display coordinates on the annotation canvas
// and image-pixel coordinates, under the current zoom, pan, and aspect-fit
// state. Annotations are always stored in image space; this mapping is the
// only place display geometry exists.
package viewport

import (
	"math"

	"bbox-annotator/pkg/geometry"
)

const (
	// MinZoom and MaxZoom bound the user zoom factor on top of the
	// aspect-fit base scale.
	MinZoom = 0.1
	MaxZoom = 10.0

	// ZoomStep is the per-wheel-notch zoom multiplier.
	ZoomStep = 1.25
)

// Mapper converts between display and image coordinates. The image is always
// shown aspect-ratio preserved: the base scale is min(vw/iw, vh/ih), letterbox
// margins are centered, and user zoom/pan apply on top. The zero Mapper is
// unusable; configure it with SetImageSize and SetViewportSize first.
type Mapper struct {
	imageW, imageH float64 // natural image size, pixels
	viewW, viewH   float64 // viewport size, display pixels

	zoom       float64 // user zoom factor in [MinZoom, MaxZoom]
	panX, panY float64 // display-pixel offset from the centered position
}

// NewMapper creates a mapper at zoom 1 with no pan.
func NewMapper() *Mapper {
	return &Mapper{zoom: 1.0}
}

// SetImageSize sets the natural image size and resets zoom and pan,
// since they are meaningless across an image change.
func (m *Mapper) SetImageSize(w, h float64) {
	m.imageW, m.imageH = w, h
	m.zoom = 1.0
	m.panX, m.panY = 0, 0
}

// SetViewportSize sets the display viewport size. Pan is re-clamped so the
// image never drifts out of view on a resize.
func (m *Mapper) SetViewportSize(w, h float64) {
	m.viewW, m.viewH = w, h
	m.clampPan()
}

// ImageSize returns the natural image size.
func (m *Mapper) ImageSize() geometry.Size {
	return geometry.Size{Width: m.imageW, Height: m.imageH}
}

// ViewportSize returns the viewport size.
func (m *Mapper) ViewportSize() geometry.Size {
	return geometry.Size{Width: m.viewW, Height: m.viewH}
}

// Zoom returns the current user zoom factor.
func (m *Mapper) Zoom() float64 {
	return m.zoom
}

// SetZoom sets the user zoom factor, clamped to [MinZoom, MaxZoom],
// zooming around the viewport center.
func (m *Mapper) SetZoom(zoom float64) {
	m.ZoomAt(zoom/m.zoom, geometry.Point2D{X: m.viewW / 2, Y: m.viewH / 2})
}

// ZoomAt multiplies the zoom factor, keeping the image point under the given
// display position fixed, so wheel zoom magnifies around the cursor.
func (m *Mapper) ZoomAt(factor float64, display geometry.Point2D) {
	if factor <= 0 || !m.ready() {
		return
	}
	focal := m.ToImage(display)

	zoom := m.zoom * factor
	if zoom < MinZoom {
		zoom = MinZoom
	}
	if zoom > MaxZoom {
		zoom = MaxZoom
	}
	m.zoom = zoom

	// Re-solve pan so the focal image point stays under the cursor.
	s := m.scale()
	m.panX = display.X - focal.X*s - m.baseOffsetX(s)
	m.panY = display.Y - focal.Y*s - m.baseOffsetY(s)
	m.clampPan()
}

// Pan shifts the view by the given display-pixel delta.
func (m *Mapper) Pan(dx, dy float64) {
	m.panX += dx
	m.panY += dy
	m.clampPan()
}

// Reset restores zoom 1 and centered pan.
func (m *Mapper) Reset() {
	m.zoom = 1.0
	m.panX, m.panY = 0, 0
}

// Scale returns the effective display pixels per image pixel.
func (m *Mapper) Scale() float64 {
	return m.scale()
}

// ToDisplay converts an image-space point to display space.
func (m *Mapper) ToDisplay(p geometry.Point2D) geometry.Point2D {
	s := m.scale()
	return geometry.Point2D{
		X: p.X*s + m.baseOffsetX(s) + m.panX,
		Y: p.Y*s + m.baseOffsetY(s) + m.panY,
	}
}

// ToImage converts a display-space point to image space. The result may lie
// outside the image bounds; callers clamp at commit time via ClampToImage.
func (m *Mapper) ToImage(p geometry.Point2D) geometry.Point2D {
	s := m.scale()
	if s == 0 {
		return geometry.Point2D{}
	}
	return geometry.Point2D{
		X: (p.X - m.baseOffsetX(s) - m.panX) / s,
		Y: (p.Y - m.baseOffsetY(s) - m.panY) / s,
	}
}

// ClampToImage limits an image-space point to [0, w-1] x [0, h-1].
func (m *Mapper) ClampToImage(p geometry.Point2D) geometry.Point2D {
	return geometry.Point2D{
		X: math.Max(0, math.Min(p.X, m.imageW-1)),
		Y: math.Max(0, math.Min(p.Y, m.imageH-1)),
	}
}

// VisibleRegion returns the image-space region currently shown, clamped to
// the image bounds. Renderers use it to skip fully off-screen annotations.
func (m *Mapper) VisibleRegion() geometry.BBox {
	tl := m.ToImage(geometry.Point2D{X: 0, Y: 0})
	br := m.ToImage(geometry.Point2D{X: m.viewW, Y: m.viewH})
	return geometry.NewBBox(tl, br).Clamp(m.imageW, m.imageH)
}

func (m *Mapper) ready() bool {
	return m.imageW > 0 && m.imageH > 0 && m.viewW > 0 && m.viewH > 0
}

// scale is the aspect-fit base scale times the user zoom.
func (m *Mapper) scale() float64 {
	if !m.ready() {
		return 0
	}
	base := math.Min(m.viewW/m.imageW, m.viewH/m.imageH)
	return base * m.zoom
}

// baseOffsetX/Y center the scaled image in the viewport, producing the
// letterbox margins when one axis does not fill it.
func (m *Mapper) baseOffsetX(s float64) float64 {
	return (m.viewW - m.imageW*s) / 2
}

func (m *Mapper) baseOffsetY(s float64) float64 {
	return (m.viewH - m.imageH*s) / 2
}

// clampPan keeps the image coupled to the viewport: when the scaled image
// fits on an axis it stays centered (pan 0); when it overflows, panning stops
// at the image edges.
func (m *Mapper) clampPan() {
	s := m.scale()
	if s == 0 {
		return
	}
	m.panX = clampAxis(m.panX, m.imageW*s, m.viewW)
	m.panY = clampAxis(m.panY, m.imageH*s, m.viewH)
}

func clampAxis(pan, scaled, view float64) float64 {
	if scaled <= view {
		return 0
	}
	limit := (scaled - view) / 2
	return math.Max(-limit, math.Min(pan, limit))
}
