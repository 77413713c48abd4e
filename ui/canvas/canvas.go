// Package canvas provides the annotation canvas widget with pan, zoom,
// and pointer-driven box drawing and editing.
package canvas

import (
	"image"
	"image/color"
	"math"

	"bbox-annotator/internal/annotation"
	"bbox-annotator/internal/controller"
	"bbox-annotator/internal/viewport"
	"bbox-annotator/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	xdraw "golang.org/x/image/draw"
)

// Style controls how annotations are painted.
type Style struct {
	BoxColor         color.RGBA
	SelectedBoxColor color.RGBA
	PreviewColor     color.RGBA
	LabelColor       color.RGBA
	ControlPointSize float64 // display px
	HitTolerance     float64 // display px
	ShowLabels       bool
}

// DefaultStyle returns the style used when preferences carry no overrides.
func DefaultStyle() Style {
	return Style{
		BoxColor:         color.RGBA{R: 0, G: 200, B: 0, A: 255},
		SelectedBoxColor: color.RGBA{R: 255, G: 160, B: 0, A: 255},
		PreviewColor:     color.RGBA{R: 255, G: 255, B: 0, A: 255},
		LabelColor:       color.RGBA{R: 255, G: 255, B: 255, A: 255},
		ControlPointSize: 8,
		HitTolerance:     6,
		ShowLabels:       true,
	}
}

// AnnotationCanvas displays the current image with its annotations drawn on
// top, and forwards pointer gestures to the interaction session in image
// coordinates.
type AnnotationCanvas struct {
	widget.BaseWidget

	mapper  *viewport.Mapper
	session *controller.Session
	store   *annotation.Store

	raster *fynecanvas.Raster
	style  Style
	img    image.Image

	dragging bool
	lastDrag geometry.Point2D

	onViewChange func(zoom float64)
}

// New creates the canvas and subscribes it to store and preview changes.
func New(store *annotation.Store, session *controller.Session, mapper *viewport.Mapper) *AnnotationCanvas {
	ac := &AnnotationCanvas{
		mapper:  mapper,
		session: session,
		store:   store,
		style:   DefaultStyle(),
	}

	ac.raster = fynecanvas.NewRaster(ac.draw)
	ac.raster.ScaleMode = fynecanvas.ImageScalePixels

	store.On(annotation.EventAnnotationsChanged, func(interface{}) { ac.Refresh() })
	store.On(annotation.EventSelectionChanged, func(interface{}) { ac.Refresh() })
	session.Drawing().OnPreview(func(geometry.BBox, bool) { ac.Refresh() })
	session.Editing().OnPreview(func(geometry.BBox, bool) { ac.Refresh() })

	ac.ExtendBaseWidget(ac)
	return ac
}

// SetImage replaces the displayed image, resetting the view. A nil image
// clears the canvas.
func (ac *AnnotationCanvas) SetImage(img image.Image) {
	ac.img = img
	if img != nil {
		b := img.Bounds()
		ac.mapper.SetImageSize(float64(b.Dx()), float64(b.Dy()))
		ac.session.SetImageSize(float64(b.Dx()), float64(b.Dy()))
	} else {
		ac.mapper.SetImageSize(0, 0)
	}
	ac.Refresh()
}

// SetStyle replaces the drawing style.
func (ac *AnnotationCanvas) SetStyle(s Style) {
	ac.style = s
	ac.Refresh()
}

// Style returns the current drawing style.
func (ac *AnnotationCanvas) Style() Style {
	return ac.style
}

// OnViewChange sets a callback invoked after zoom or pan changes.
func (ac *AnnotationCanvas) OnViewChange(fn func(zoom float64)) {
	ac.onViewChange = fn
}

// ZoomIn zooms in around the viewport center.
func (ac *AnnotationCanvas) ZoomIn() {
	ac.mapper.SetZoom(ac.mapper.Zoom() * viewport.ZoomStep)
	ac.viewChanged()
}

// ZoomOut zooms out around the viewport center.
func (ac *AnnotationCanvas) ZoomOut() {
	ac.mapper.SetZoom(ac.mapper.Zoom() / viewport.ZoomStep)
	ac.viewChanged()
}

// ResetView restores 1x zoom with the image centered.
func (ac *AnnotationCanvas) ResetView() {
	ac.mapper.Reset()
	ac.viewChanged()
}

// Pan shifts the view by a display-space delta.
func (ac *AnnotationCanvas) Pan(dx, dy float64) {
	ac.mapper.Pan(dx, dy)
	ac.viewChanged()
}

func (ac *AnnotationCanvas) viewChanged() {
	if ac.onViewChange != nil {
		ac.onViewChange(ac.mapper.Zoom())
	}
	ac.Refresh()
}

// Refresh repaints the raster.
func (ac *AnnotationCanvas) Refresh() {
	if ac.raster != nil {
		ac.raster.Refresh()
	}
	ac.BaseWidget.Refresh()
}

// CreateRenderer implements fyne.Widget.
func (ac *AnnotationCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(ac.raster)
}

// Scrolled zooms with the mouse wheel, keeping the point under the cursor
// fixed.
func (ac *AnnotationCanvas) Scrolled(ev *fyne.ScrollEvent) {
	if ac.img == nil {
		return
	}
	factor := viewport.ZoomStep
	if ev.Scrolled.DY < 0 {
		factor = 1 / viewport.ZoomStep
	}
	ac.mapper.ZoomAt(factor, eventPoint(ev.Position))
	ac.viewChanged()
}

// Dragged starts or continues a draw/edit gesture. The first event of a
// drag carries the press position in its delta.
func (ac *AnnotationCanvas) Dragged(ev *fyne.DragEvent) {
	if ac.img == nil {
		return
	}
	pos := eventPoint(ev.Position)
	if !ac.dragging {
		ac.dragging = true
		start := geometry.Point2D{
			X: pos.X - float64(ev.Dragged.DX),
			Y: pos.Y - float64(ev.Dragged.DY),
		}
		ac.session.PointerDown(ac.mapper.ToImage(start), ac.hitToleranceImage())
	}
	ac.lastDrag = pos
	ac.session.PointerMove(ac.mapper.ToImage(pos))
}

// DragEnd completes the gesture at the last dragged position.
func (ac *AnnotationCanvas) DragEnd() {
	if !ac.dragging {
		return
	}
	ac.dragging = false
	ac.session.PointerUp(ac.mapper.ToImage(ac.lastDrag))
}

// Tapped treats a click as a degenerate press-release pair, which selects
// or deselects in edit mode and is discarded as a stray click in draw mode.
func (ac *AnnotationCanvas) Tapped(ev *fyne.PointEvent) {
	if ac.img == nil {
		return
	}
	p := ac.mapper.ToImage(eventPoint(ev.Position))
	ac.session.PointerDown(p, ac.hitToleranceImage())
	ac.session.PointerUp(p)
}

// TappedSecondary cancels any in-flight gesture.
func (ac *AnnotationCanvas) TappedSecondary(*fyne.PointEvent) {
	ac.session.CancelActive()
	ac.Refresh()
}

// hitToleranceImage converts the display-space hit tolerance to image space.
func (ac *AnnotationCanvas) hitToleranceImage() float64 {
	s := ac.mapper.Scale()
	if s <= 0 {
		return ac.style.HitTolerance
	}
	return ac.style.HitTolerance / s
}

func eventPoint(p fyne.Position) geometry.Point2D {
	return geometry.Point2D{X: float64(p.X), Y: float64(p.Y)}
}

// draw is the raster paint function.
func (ac *AnnotationCanvas) draw(w, h int) image.Image {
	output := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(output.Pix); i += 4 {
		output.Pix[i] = 32
		output.Pix[i+1] = 32
		output.Pix[i+2] = 32
		output.Pix[i+3] = 255
	}
	if w <= 0 || h <= 0 {
		return output
	}

	ac.mapper.SetViewportSize(float64(w), float64(h))
	if ac.img == nil {
		return output
	}

	ac.drawImage(output)
	ac.drawAnnotations(output)
	ac.drawPreviews(output)
	return output
}

// drawImage scales the image into its display rectangle with bilinear
// filtering. The scaler clips against the output bounds.
func (ac *AnnotationCanvas) drawImage(output *image.RGBA) {
	b := ac.img.Bounds()
	tl := ac.mapper.ToDisplay(geometry.Point2D{X: 0, Y: 0})
	br := ac.mapper.ToDisplay(geometry.Point2D{X: float64(b.Dx()), Y: float64(b.Dy())})
	dr := image.Rect(
		int(math.Round(tl.X)), int(math.Round(tl.Y)),
		int(math.Round(br.X)), int(math.Round(br.Y)),
	)
	xdraw.ApproxBiLinear.Scale(output, dr, ac.img, b, xdraw.Src, nil)
}

func (ac *AnnotationCanvas) drawAnnotations(output *image.RGBA) {
	selected := ac.store.SelectedID()
	editID, _, editActive := ac.session.Editing().Preview()

	labelScale := int(ac.mapper.Scale() * 2)
	if labelScale < 2 {
		labelScale = 2
	}
	if labelScale > 4 {
		labelScale = 4
	}

	for _, ann := range ac.store.List() {
		// The dragged box is painted from the preview instead.
		if editActive && ann.ID == editID {
			continue
		}
		col := ac.style.BoxColor
		if ann.ID == selected {
			col = ac.style.SelectedBoxColor
		}
		x1, y1, x2, y2 := ac.displayRect(ann.BBox)
		drawRectOutline(output, x1, y1, x2, y2, 2, col)

		if ann.ID == selected {
			ac.drawHandles(output, ann.BBox, col)
		}
		if ac.style.ShowLabels {
			DrawLabel(output, ann.Label, x1, y1-5*labelScale-2*labelScale, ac.style.LabelColor, labelScale)
		}
	}
}

func (ac *AnnotationCanvas) drawPreviews(output *image.RGBA) {
	if bbox, ok := ac.session.Drawing().Preview(); ok {
		x1, y1, x2, y2 := ac.displayRect(bbox)
		drawDashedRect(output, x1, y1, x2, y2, ac.style.PreviewColor)
	}
	if _, bbox, ok := ac.session.Editing().Preview(); ok {
		x1, y1, x2, y2 := ac.displayRect(bbox)
		drawRectOutline(output, x1, y1, x2, y2, 2, ac.style.SelectedBoxColor)
		ac.drawHandles(output, bbox, ac.style.SelectedBoxColor)
	}
}

func (ac *AnnotationCanvas) drawHandles(output *image.RGBA, bbox geometry.BBox, col color.RGBA) {
	size := int(ac.style.ControlPointSize)
	if size < 4 {
		size = 4
	}
	for _, p := range bbox.ControlPoints() {
		d := ac.mapper.ToDisplay(p)
		drawHandle(output, int(math.Round(d.X)), int(math.Round(d.Y)), size, col)
	}
}

func (ac *AnnotationCanvas) displayRect(b geometry.BBox) (x1, y1, x2, y2 int) {
	tl := ac.mapper.ToDisplay(geometry.Point2D{X: b.Left, Y: b.Top})
	br := ac.mapper.ToDisplay(geometry.Point2D{X: b.Right, Y: b.Bottom})
	return int(math.Round(tl.X)), int(math.Round(tl.Y)),
		int(math.Round(br.X)), int(math.Round(br.Y))
}
