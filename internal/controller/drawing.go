// Package controller implements the interactive annotation state machines:
// drawing new boxes, editing existing ones through their control points, and
// the mode gate that keeps the two mutually exclusive.
package controller

import (
	"log/slog"

	"bbox-annotator/internal/annotation"
	"bbox-annotator/internal/label"
	"bbox-annotator/pkg/geometry"
)

// DrawState is the drawing controller's state.
type DrawState int

const (
	DrawIdle DrawState = iota
	DrawActive
)

func (s DrawState) String() string {
	if s == DrawActive {
		return "drawing"
	}
	return "idle"
}

// PreviewFunc receives the live preview box while an interaction is in
// progress, and active=false when the preview goes away.
type PreviewFunc func(bbox geometry.BBox, active bool)

// Drawing creates new annotations via click-drag-release. All points are in
// image space; the drag may wander outside the image and is only clamped at
// commit time.
type Drawing struct {
	state   DrawState
	anchor  geometry.Point2D
	current geometry.Point2D

	imageW, imageH float64

	store     *annotation.Store
	registry  *label.Registry
	logger    *slog.Logger
	onPreview PreviewFunc
}

// NewDrawing creates an idle drawing controller. The logger may be nil.
func NewDrawing(store *annotation.Store, registry *label.Registry, logger *slog.Logger) *Drawing {
	return &Drawing{store: store, registry: registry, logger: logger}
}

// OnPreview sets the preview notification callback.
func (d *Drawing) OnPreview(fn PreviewFunc) {
	d.onPreview = fn
}

// SetImageBounds sets the image size used to clamp boxes at commit time.
func (d *Drawing) SetImageBounds(w, h float64) {
	d.imageW, d.imageH = w, h
}

// State returns the current state.
func (d *Drawing) State() DrawState {
	return d.state
}

// Active reports whether a draw is in progress.
func (d *Drawing) Active() bool {
	return d.state == DrawActive
}

// Preview returns the in-progress box, normalized, if a draw is active.
func (d *Drawing) Preview() (geometry.BBox, bool) {
	if d.state != DrawActive {
		return geometry.BBox{}, false
	}
	return geometry.NewBBox(d.anchor, d.current), true
}

// Start records the anchor point and begins a draw. Ignored unless idle.
func (d *Drawing) Start(p geometry.Point2D) {
	if d.state != DrawIdle {
		return
	}
	d.state = DrawActive
	d.anchor = p
	d.current = p
	d.notifyPreview()
	if d.logger != nil {
		d.logger.Debug("draw started", "x", p.X, "y", p.Y)
	}
}

// Update moves the free corner of the preview box. The preview spans anchor
// and p regardless of drag direction. Ignored unless a draw is active.
func (d *Drawing) Update(p geometry.Point2D) {
	if d.state != DrawActive {
		return
	}
	d.current = p
	d.notifyPreview()
}

// Finish completes the draw at p. A drag below the minimum size is treated
// as a stray click: no annotation is created and the controller returns to
// idle with a (0, nil) result. An empty label is rejected with
// ErrInvalidLabel and the draw stays active so the caller can re-prompt.
// On success the new annotation is added, its label registered, and it
// becomes the selection.
func (d *Drawing) Finish(p geometry.Point2D, lbl string) (annotation.ID, error) {
	if d.state != DrawActive {
		return 0, nil
	}
	d.current = p

	bbox := geometry.NewBBox(d.anchor, d.current)
	if d.imageW > 0 && d.imageH > 0 {
		bbox = bbox.Clamp(d.imageW-1, d.imageH-1)
	}
	if !bbox.IsValid(annotation.MinBoxSize) {
		d.reset()
		if d.logger != nil {
			d.logger.Debug("draw discarded, box below minimum size",
				"width", bbox.Width(), "height", bbox.Height())
		}
		return 0, nil
	}

	id, err := d.store.Add(bbox, lbl)
	if err == annotation.ErrInvalidLabel {
		// Stay active; the caller re-prompts for a label and retries.
		return 0, err
	}
	d.reset()
	if err != nil {
		return 0, err
	}

	d.registry.Register(lbl)
	d.store.Select(id)
	if d.logger != nil {
		d.logger.Info("bbox created", "id", int64(id), "label", lbl,
			"left", bbox.Left, "top", bbox.Top, "right", bbox.Right, "bottom", bbox.Bottom)
	}
	return id, nil
}

// Cancel discards the in-progress draw.
func (d *Drawing) Cancel() {
	if d.state != DrawActive {
		return
	}
	d.reset()
	if d.logger != nil {
		d.logger.Debug("draw cancelled")
	}
}

func (d *Drawing) reset() {
	d.state = DrawIdle
	d.notifyPreview()
}

func (d *Drawing) notifyPreview() {
	if d.onPreview == nil {
		return
	}
	if bbox, ok := d.Preview(); ok {
		d.onPreview(bbox, true)
	} else {
		d.onPreview(geometry.BBox{}, false)
	}
}
