package controller

import (
	"errors"
	"log/slog"

	"bbox-annotator/internal/annotation"
	"bbox-annotator/internal/label"
	"bbox-annotator/pkg/geometry"
)

// Mode selects which controller receives pointer events.
type Mode int

const (
	ModeDraw Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "draw"
}

// Hit identifies the control point found under the pointer.
type Hit struct {
	ID    annotation.ID
	Point geometry.ControlPoint
}

// Session is the coordinating layer that owns the interaction mode and
// routes image-space pointer events to exactly one of the two controllers.
// Switching modes cancels any in-flight interaction first, so the
// controllers are never active simultaneously.
type Session struct {
	mode    Mode
	drawing *Drawing
	editing *Editing

	store    *annotation.Store
	registry *label.Registry
	logger   *slog.Logger

	onModeChange func(Mode)
	onError      func(error)
}

// NewSession creates a session starting in draw mode. The logger may be nil.
func NewSession(store *annotation.Store, registry *label.Registry, logger *slog.Logger) *Session {
	return &Session{
		mode:     ModeDraw,
		drawing:  NewDrawing(store, registry, logger),
		editing:  NewEditing(store, logger),
		store:    store,
		registry: registry,
		logger:   logger,
	}
}

// Drawing returns the drawing controller, for preview subscription.
func (s *Session) Drawing() *Drawing {
	return s.drawing
}

// Editing returns the editing controller, for preview subscription.
func (s *Session) Editing() *Editing {
	return s.editing
}

// OnModeChange sets a callback invoked after the mode switches.
func (s *Session) OnModeChange(fn func(Mode)) {
	s.onModeChange = fn
}

// OnError sets a callback for recoverable interaction errors, such as a
// finished draw with no label set. These ask the user to fix something;
// nothing in the session is fatal.
func (s *Session) OnError(fn func(error)) {
	s.onError = fn
}

// Mode returns the current interaction mode.
func (s *Session) Mode() Mode {
	return s.mode
}

// SetMode switches modes, cancelling any in-flight draw or drag first.
func (s *Session) SetMode(mode Mode) {
	if mode == s.mode {
		return
	}
	s.CancelActive()
	s.mode = mode
	if s.logger != nil {
		s.logger.Debug("mode switched", "mode", mode.String())
	}
	if s.onModeChange != nil {
		s.onModeChange(mode)
	}
}

// Busy reports whether a draw or drag is in progress.
func (s *Session) Busy() bool {
	return s.drawing.Active() || s.editing.Active()
}

// CancelActive cancels whatever interaction is in flight. Bound to Escape.
func (s *Session) CancelActive() {
	s.drawing.Cancel()
	s.editing.Cancel()
}

// SetImageSize propagates the loaded image's natural size to both
// controllers for commit-time clamping.
func (s *Session) SetImageSize(w, h float64) {
	s.drawing.SetImageBounds(w, h)
	s.editing.SetImageBounds(w, h)
}

// HitTest scans annotations in creation order for a control point within tol
// of p. All values are in image space; callers derive tol from the display
// tolerance divided by the current scale.
func (s *Session) HitTest(p geometry.Point2D, tol float64) (Hit, bool) {
	for _, ann := range s.store.List() {
		if cp, ok := geometry.HitControlPoint(ann.BBox, p, tol); ok {
			return Hit{ID: ann.ID, Point: cp}, true
		}
	}
	return Hit{}, false
}

// PointerDown handles a press at an image-space point. In draw mode it
// anchors a new box, refusing to start when no current label is set. In edit
// mode it either starts a control-point drag or, on a miss, clears the
// selection.
func (s *Session) PointerDown(p geometry.Point2D, hitTol float64) {
	switch s.mode {
	case ModeDraw:
		if s.registry.Current() == "" {
			s.fail(annotation.ErrInvalidLabel)
			return
		}
		s.drawing.Start(p)
	case ModeEdit:
		hit, ok := s.HitTest(p, hitTol)
		if !ok {
			s.store.ClearSelection()
			return
		}
		if err := s.editing.StartDrag(p, hit.ID, hit.Point); err != nil && !errors.Is(err, annotation.ErrNotFound) {
			s.fail(err)
		}
	}
}

// PointerMove handles pointer motion during an interaction.
func (s *Session) PointerMove(p geometry.Point2D) {
	switch s.mode {
	case ModeDraw:
		s.drawing.Update(p)
	case ModeEdit:
		s.editing.UpdateDrag(p)
	}
}

// PointerUp completes the interaction at an image-space point.
func (s *Session) PointerUp(p geometry.Point2D) {
	switch s.mode {
	case ModeDraw:
		_, err := s.drawing.Finish(p, s.registry.Current())
		if errors.Is(err, annotation.ErrInvalidLabel) {
			// No label to apply; drop the box and ask the user to pick one.
			s.drawing.Cancel()
			s.fail(err)
		} else if err != nil {
			s.fail(err)
		}
	case ModeEdit:
		if err := s.editing.FinishDrag(); err != nil {
			s.fail(err)
		}
	}
}

// DeleteSelected removes the selected annotation, if any.
func (s *Session) DeleteSelected() {
	ann, ok := s.store.Selected()
	if !ok {
		return
	}
	if s.editing.Active() {
		s.editing.Cancel()
	}
	if err := s.store.Delete(ann.ID); err != nil && !errors.Is(err, annotation.ErrNotFound) {
		s.fail(err)
	}
}

func (s *Session) fail(err error) {
	if s.logger != nil {
		s.logger.Warn("interaction rejected", "error", err)
	}
	if s.onError != nil {
		s.onError(err)
	}
}
