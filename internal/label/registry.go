// Package label manages the set of labels used across the annotation session
// and the current label applied to newly drawn boxes.
package label

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"bbox-annotator/internal/annotation"
)

// EventType identifies registry events.
type EventType int

const (
	// EventCurrentChanged fires when the current label changes. Data is the
	// new label string.
	EventCurrentChanged EventType = iota

	// EventLabelsChanged fires when the label set changes.
	EventLabelsChanged

	// EventLabelRenamed fires after a rename cascade. Data is RenameData.
	EventLabelRenamed

	// EventLabelRemoved fires after a delete cascade. Data is the removed
	// label string.
	EventLabelRemoved
)

// RenameData carries the old and new names of a renamed label.
type RenameData struct {
	Old string
	New string
}

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// Registry owns the session-wide label set and the current label. The set is
// a superset of the labels in use: labels stay registered after their last
// annotation disappears so they can be reused quickly. Rename and Remove
// cascade into the annotation store.
type Registry struct {
	mu sync.RWMutex

	labels  map[string]struct{}
	current string

	store     *annotation.Store
	logger    *slog.Logger
	listeners map[EventType][]EventListener
}

// NewRegistry creates an empty registry bound to the given store.
// The logger may be nil.
func NewRegistry(store *annotation.Store, logger *slog.Logger) *Registry {
	return &Registry{
		labels:    make(map[string]struct{}),
		store:     store,
		logger:    logger,
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (r *Registry) On(event EventType, listener EventListener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners[event] = append(r.listeners[event], listener)
}

func (r *Registry) emit(event EventType, data interface{}) {
	r.mu.RLock()
	listeners := r.listeners[event]
	r.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Current returns the label applied to the next drawn box.
func (r *Registry) Current() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// SetCurrent changes the current label, registering it if new.
func (r *Registry) SetCurrent(label string) {
	r.mu.Lock()
	changed := r.current != label
	r.current = label
	added := false
	if label != "" {
		if _, ok := r.labels[label]; !ok {
			r.labels[label] = struct{}{}
			added = true
		}
	}
	r.mu.Unlock()

	if changed {
		r.emit(EventCurrentChanged, label)
	}
	if added {
		r.emit(EventLabelsChanged, nil)
	}
}

// Register adds labels to the set without touching the current label.
func (r *Registry) Register(labels ...string) {
	r.mu.Lock()
	added := false
	for _, l := range labels {
		if l == "" {
			continue
		}
		if _, ok := r.labels[l]; !ok {
			r.labels[l] = struct{}{}
			added = true
		}
	}
	r.mu.Unlock()

	if added {
		r.emit(EventLabelsChanged, nil)
	}
}

// All returns the registered labels, sorted.
func (r *Registry) All() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.labels))
	for l := range r.labels {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Has reports whether the label is registered.
func (r *Registry) Has(label string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.labels[label]
	return ok
}

// Rename updates every annotation labeled old to new and registers new.
// The old label stays in the set so it remains available for reuse.
// Renaming a label to itself is a no-op; an empty new label is rejected.
func (r *Registry) Rename(old, new string) error {
	if old == new {
		return nil
	}
	if strings.TrimSpace(new) == "" {
		return annotation.ErrInvalidLabel
	}

	n, err := r.store.RenameLabel(old, new)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.labels[new] = struct{}{}
	if r.current == old {
		r.current = new
	}
	r.mu.Unlock()

	if r.logger != nil {
		r.logger.Info("label renamed", "from", old, "to", new, "annotations", n)
	}
	r.emit(EventLabelsChanged, nil)
	r.emit(EventLabelRenamed, RenameData{Old: old, New: new})
	return nil
}

// Remove deletes every annotation labeled old and drops the label from the
// set. This is the destructive bulk path; confirmation is the UI's job.
// Returns the number of annotations deleted.
func (r *Registry) Remove(old string) int {
	n := r.store.DeleteByLabel(old)

	r.mu.Lock()
	delete(r.labels, old)
	if r.current == old {
		r.current = ""
	}
	r.mu.Unlock()

	if r.logger != nil {
		r.logger.Info("label removed", "label", old, "annotations", n)
	}
	r.emit(EventLabelsChanged, nil)
	r.emit(EventLabelRemoved, old)
	return n
}

// SeedFromDir scans existing annotation files in dir and registers every
// label they mention, so previously used labels are offered immediately.
// Unreadable or malformed files are skipped.
func (r *Registry) SeedFromDir(dir string) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return
	}

	var found []string
	for _, path := range matches {
		for _, l := range labelsInFile(path) {
			found = append(found, l)
		}
	}
	if len(found) > 0 {
		if r.logger != nil {
			r.logger.Debug("seeded labels from directory", "dir", dir, "count", len(found))
		}
		r.Register(found...)
	}
}

// labelsInFile extracts label strings from one annotation file, tolerating
// both the keyed and the bare-array formats.
func labelsInFile(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var records []struct {
		Label string `json:"label"`
	}
	if err := json.Unmarshal(data, &records); err != nil {
		var file struct {
			Annotations []struct {
				Label string `json:"label"`
			} `json:"annotations"`
		}
		if err := json.Unmarshal(data, &file); err != nil {
			return nil
		}
		records = file.Annotations
	}

	var out []string
	for _, rec := range records {
		if rec.Label != "" {
			out = append(out, rec.Label)
		}
	}
	return out
}
