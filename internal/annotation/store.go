package annotation

import (
	"log/slog"
	"strings"
	"sync"

	"bbox-annotator/pkg/geometry"
)

// EventType identifies store events.
type EventType int

const (
	// EventAnnotationsChanged fires after any successful mutation of the
	// annotation collection (add, update, delete, cascade, replace).
	EventAnnotationsChanged EventType = iota

	// EventSelectionChanged fires when the selected annotation changes.
	// Data is the selected ID, or ID(0) when selection was cleared.
	EventSelectionChanged

	// EventDirtyChanged fires when the unsaved-changes flag flips.
	// Data is the new bool value.
	EventDirtyChanged
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// Store owns the ordered annotation collection for the current image,
// the selection, and the dirty flag. All mutations validate the bounding-box
// invariant and emit change events.
type Store struct {
	mu sync.RWMutex

	annotations []Annotation
	nextID      ID
	selected    ID // 0 = no selection
	dirty       bool

	logger    *slog.Logger
	listeners map[EventType][]EventListener
}

// NewStore creates an empty store. The logger may be nil.
func NewStore(logger *slog.Logger) *Store {
	return &Store{
		nextID:    1,
		logger:    logger,
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *Store) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

func (s *Store) emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

func validateBBox(b geometry.BBox) error {
	if !(b.Left < b.Right && b.Top < b.Bottom) {
		return ErrInvalidBBox
	}
	return nil
}

func validateLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return ErrInvalidLabel
	}
	return nil
}

// Add appends a new annotation and returns its handle.
func (s *Store) Add(bbox geometry.BBox, label string) (ID, error) {
	if err := validateBBox(bbox); err != nil {
		return 0, err
	}
	if err := validateLabel(label); err != nil {
		return 0, err
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.annotations = append(s.annotations, Annotation{ID: id, BBox: bbox, Label: label})
	s.dirty = true
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Info("annotation added", "id", int64(id), "label", label)
	}
	s.emit(EventDirtyChanged, true)
	s.emit(EventAnnotationsChanged, nil)
	return id, nil
}

// UpdateBBox replaces the bounding box of an existing annotation.
func (s *Store) UpdateBBox(id ID, bbox geometry.BBox) error {
	if err := validateBBox(bbox); err != nil {
		return err
	}

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.annotations[idx].BBox = bbox
	wasDirty := s.dirty
	s.dirty = true
	s.mu.Unlock()

	if !wasDirty {
		s.emit(EventDirtyChanged, true)
	}
	s.emit(EventAnnotationsChanged, nil)
	return nil
}

// UpdateLabel replaces the label of an existing annotation.
func (s *Store) UpdateLabel(id ID, label string) error {
	if err := validateLabel(label); err != nil {
		return err
	}

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	old := s.annotations[idx].Label
	s.annotations[idx].Label = label
	wasDirty := s.dirty
	s.dirty = true
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Info("annotation relabeled", "id", int64(id), "from", old, "to", label)
	}
	if !wasDirty {
		s.emit(EventDirtyChanged, true)
	}
	s.emit(EventAnnotationsChanged, nil)
	return nil
}

// Delete removes an annotation. Deleting the selected annotation clears the
// selection as part of the same update, so listeners never observe a
// selection pointing at a dead annotation.
func (s *Store) Delete(id ID) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	label := s.annotations[idx].Label
	s.annotations = append(s.annotations[:idx], s.annotations[idx+1:]...)
	selectionCleared := s.selected == id
	if selectionCleared {
		s.selected = 0
	}
	wasDirty := s.dirty
	s.dirty = true
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Info("annotation deleted", "id", int64(id), "label", label)
	}
	if !wasDirty {
		s.emit(EventDirtyChanged, true)
	}
	if selectionCleared {
		s.emit(EventSelectionChanged, ID(0))
	}
	s.emit(EventAnnotationsChanged, nil)
	return nil
}

// Select marks the annotation as selected.
func (s *Store) Select(id ID) error {
	s.mu.Lock()
	if s.indexOf(id) < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	changed := s.selected != id
	s.selected = id
	s.mu.Unlock()

	if changed {
		s.emit(EventSelectionChanged, id)
	}
	return nil
}

// ClearSelection removes any selection.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	changed := s.selected != 0
	s.selected = 0
	s.mu.Unlock()

	if changed {
		s.emit(EventSelectionChanged, ID(0))
	}
}

// Selected returns the selected annotation, if any.
func (s *Store) Selected() (Annotation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(s.selected)
	if idx < 0 {
		return Annotation{}, false
	}
	return s.annotations[idx], true
}

// SelectedID returns the selected annotation's handle, or 0.
func (s *Store) SelectedID() ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Get returns a snapshot of the annotation with the given handle.
func (s *Store) Get(id ID) (Annotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return Annotation{}, ErrNotFound
	}
	return s.annotations[idx], nil
}

// List returns a snapshot of all annotations in creation order.
func (s *Store) List() []Annotation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Annotation, len(s.annotations))
	copy(out, s.annotations)
	return out
}

// Len returns the number of annotations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.annotations)
}

// Dirty reports whether there are unsaved changes.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// MarkSaved clears the dirty flag after a successful save.
func (s *Store) MarkSaved() {
	s.mu.Lock()
	wasDirty := s.dirty
	s.dirty = false
	s.mu.Unlock()

	if wasDirty {
		s.emit(EventDirtyChanged, false)
	}
}

// Replace swaps in a freshly loaded annotation collection, assigning new
// handles. Selection is cleared and the store starts clean; this is the
// image-load path, not a mutation of the previous image's data.
func (s *Store) Replace(anns []Annotation) {
	s.mu.Lock()
	s.annotations = make([]Annotation, 0, len(anns))
	for _, a := range anns {
		a.ID = s.nextID
		s.nextID++
		s.annotations = append(s.annotations, a)
	}
	selectionCleared := s.selected != 0
	s.selected = 0
	wasDirty := s.dirty
	s.dirty = false
	s.mu.Unlock()

	if selectionCleared {
		s.emit(EventSelectionChanged, ID(0))
	}
	if wasDirty {
		s.emit(EventDirtyChanged, false)
	}
	s.emit(EventAnnotationsChanged, nil)
}

// RenameLabel updates every annotation labeled old to new and returns the
// number updated. Used by the label registry's rename cascade.
func (s *Store) RenameLabel(old, new string) (int, error) {
	if err := validateLabel(new); err != nil {
		return 0, err
	}
	if old == new {
		return 0, nil
	}

	s.mu.Lock()
	n := 0
	for i := range s.annotations {
		if s.annotations[i].Label == old {
			s.annotations[i].Label = new
			n++
		}
	}
	wasDirty := s.dirty
	if n > 0 {
		s.dirty = true
	}
	s.mu.Unlock()

	if n > 0 {
		if s.logger != nil {
			s.logger.Info("label renamed across annotations", "from", old, "to", new, "count", n)
		}
		if !wasDirty {
			s.emit(EventDirtyChanged, true)
		}
		s.emit(EventAnnotationsChanged, nil)
	}
	return n, nil
}

// DeleteByLabel removes every annotation labeled label and returns the number
// removed. Clears selection if the selected annotation was among them.
func (s *Store) DeleteByLabel(label string) int {
	s.mu.Lock()
	kept := s.annotations[:0]
	n := 0
	selectionCleared := false
	for _, a := range s.annotations {
		if a.Label == label {
			n++
			if a.ID == s.selected {
				s.selected = 0
				selectionCleared = true
			}
			continue
		}
		kept = append(kept, a)
	}
	s.annotations = kept
	wasDirty := s.dirty
	if n > 0 {
		s.dirty = true
	}
	s.mu.Unlock()

	if n > 0 {
		if s.logger != nil {
			s.logger.Info("annotations deleted by label", "label", label, "count", n)
		}
		if !wasDirty {
			s.emit(EventDirtyChanged, true)
		}
		if selectionCleared {
			s.emit(EventSelectionChanged, ID(0))
		}
		s.emit(EventAnnotationsChanged, nil)
	}
	return n
}

// indexOf returns the slice index for a handle, or -1. Caller holds the lock.
func (s *Store) indexOf(id ID) int {
	if id == 0 {
		return -1
	}
	for i := range s.annotations {
		if s.annotations[i].ID == id {
			return i
		}
	}
	return -1
}
