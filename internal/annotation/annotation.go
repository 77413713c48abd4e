// Package annotation provides the bounding-box annotation model and the
// store that owns all annotations for the currently loaded image.
package annotation

import (
	"errors"

	"bbox-annotator/pkg/geometry"
)

// MinBoxSize is the smallest width/height, in image pixels, that a drawn or
// edited box may have. Drags that end up below this on either axis are
// treated as accidental clicks and discarded.
const MinBoxSize = 3.0

var (
	// ErrInvalidBBox indicates a mutation would produce a degenerate or
	// inverted bounding box.
	ErrInvalidBBox = errors.New("invalid bounding box")

	// ErrInvalidLabel indicates an empty or whitespace-only label.
	ErrInvalidLabel = errors.New("invalid label")

	// ErrNotFound indicates a stale annotation handle; the annotation was
	// deleted through another path. Callers treat this as a benign no-op.
	ErrNotFound = errors.New("annotation not found")
)

// ID is a stable handle to an annotation within an image session. Handles are
// never reused; a handle to a deleted annotation simply stops resolving.
type ID int64

// Annotation is a labeled bounding box. Annotations are owned exclusively by
// the Store; copies handed out by List/Get are snapshots.
type Annotation struct {
	ID    ID
	BBox  geometry.BBox
	Label string
}
