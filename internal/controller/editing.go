package controller

import (
	"errors"
	"log/slog"

	"bbox-annotator/internal/annotation"
	"bbox-annotator/pkg/geometry"
)

// EditState is the editing controller's state.
type EditState int

const (
	EditIdle EditState = iota
	EditDragging
)

func (s EditState) String() string {
	if s == EditDragging {
		return "dragging"
	}
	return "idle"
}

// Editing moves and resizes existing annotations by dragging their control
// points. The candidate box is held as a preview and only committed to the
// store on a successful FinishDrag; cancel or a degenerate result reverts to
// the original box with no store mutation.
type Editing struct {
	state EditState

	target    annotation.ID
	cp        geometry.ControlPoint
	original  geometry.BBox
	dragStart geometry.Point2D
	candidate geometry.BBox

	imageW, imageH float64

	store     *annotation.Store
	logger    *slog.Logger
	onPreview PreviewFunc
}

// NewEditing creates an idle editing controller. The logger may be nil.
func NewEditing(store *annotation.Store, logger *slog.Logger) *Editing {
	return &Editing{store: store, logger: logger}
}

// OnPreview sets the preview notification callback.
func (e *Editing) OnPreview(fn PreviewFunc) {
	e.onPreview = fn
}

// SetImageBounds sets the image size used to clamp boxes at commit time.
func (e *Editing) SetImageBounds(w, h float64) {
	e.imageW, e.imageH = w, h
}

// State returns the current state.
func (e *Editing) State() EditState {
	return e.state
}

// Active reports whether a drag is in progress.
func (e *Editing) Active() bool {
	return e.state == EditDragging
}

// Preview returns the dragged annotation's handle and candidate box while a
// drag is active.
func (e *Editing) Preview() (annotation.ID, geometry.BBox, bool) {
	if e.state != EditDragging {
		return 0, geometry.BBox{}, false
	}
	return e.target, e.candidate, true
}

// StartDrag begins dragging the given control point of an annotation, which
// becomes the selection. A stale handle is a benign no-op: the controller
// stays idle and ErrNotFound is returned for the caller to ignore or log.
func (e *Editing) StartDrag(p geometry.Point2D, id annotation.ID, cp geometry.ControlPoint) error {
	if e.state != EditIdle {
		return nil
	}
	ann, err := e.store.Get(id)
	if err != nil {
		return err
	}

	e.state = EditDragging
	e.target = id
	e.cp = cp
	e.original = ann.BBox
	e.candidate = ann.BBox
	e.dragStart = p
	e.store.Select(id)
	e.notifyPreview()
	if e.logger != nil {
		e.logger.Debug("drag started", "id", int64(id), "point", cp.String())
	}
	return nil
}

// UpdateDrag recomputes the candidate box for the pointer position. A center
// drag translates the original box by the total pointer delta; a corner drag
// moves that corner to p with the opposite corner fixed, normalizing so a
// corner dragged past its opposite flips the box instead of inverting it.
// The candidate is a preview only; the store is untouched.
func (e *Editing) UpdateDrag(p geometry.Point2D) {
	if e.state != EditDragging {
		return
	}
	if e.cp == geometry.CPCenter {
		delta := p.Sub(e.dragStart)
		e.candidate = e.original.Translate(delta.X, delta.Y)
	} else {
		e.candidate = e.original.MoveCorner(e.cp, p)
	}
	e.notifyPreview()
}

// FinishDrag commits the candidate box if it satisfies the minimum-size
// invariant, otherwise the edit is silently discarded and the annotation
// keeps its original box. Either way the controller returns to idle.
func (e *Editing) FinishDrag() error {
	if e.state != EditDragging {
		return nil
	}
	id, cp := e.target, e.cp
	bbox := e.candidate
	if e.imageW > 0 && e.imageH > 0 {
		bbox = bbox.Clamp(e.imageW-1, e.imageH-1)
	}
	e.reset()

	if !bbox.IsValid(annotation.MinBoxSize) {
		if e.logger != nil {
			e.logger.Debug("drag reverted, box below minimum size", "id", int64(id))
		}
		return nil
	}

	err := e.store.UpdateBBox(id, bbox)
	if errors.Is(err, annotation.ErrNotFound) {
		// Annotation was deleted out from under the drag.
		return nil
	}
	if err != nil {
		return err
	}
	if e.logger != nil {
		if cp == geometry.CPCenter {
			e.logger.Info("bbox moved", "id", int64(id))
		} else {
			e.logger.Info("bbox resized", "id", int64(id), "point", cp.String())
		}
	}
	return nil
}

// Cancel reverts to the original box without committing.
func (e *Editing) Cancel() {
	if e.state != EditDragging {
		return
	}
	e.reset()
	if e.logger != nil {
		e.logger.Debug("drag cancelled")
	}
}

func (e *Editing) reset() {
	e.state = EditIdle
	e.target = 0
	e.notifyPreview()
}

func (e *Editing) notifyPreview() {
	if e.onPreview == nil {
		return
	}
	if _, bbox, ok := e.Preview(); ok {
		e.onPreview(bbox, true)
	} else {
		e.onPreview(geometry.BBox{}, false)
	}
}
