// Package imageset manages the image directory: discovering image files,
// navigating between them, and decoding the current one.
package imageset

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/disintegration/imaging"

	_ "github.com/chai2010/webp"
)

// ErrNoImages is returned by navigation when the directory holds no images.
var ErrNoImages = errors.New("no images in directory")

// EventType identifies image set events.
type EventType int

const (
	// EventDirectoryChanged fires after a new directory is opened. Data is
	// the directory path.
	EventDirectoryChanged EventType = iota
	// EventImageChanged fires after the current image changes. Data is the
	// new index, or -1 when cleared.
	EventImageChanged
)

// EventListener receives event notifications.
type EventListener func(data interface{})

var supportedExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// IsSupported reports whether the path has a recognized image extension.
func IsSupported(path string) bool {
	return supportedExts[strings.ToLower(filepath.Ext(path))]
}

// Set holds the images of one directory and a cursor into them. The decoded
// current image is cached until the cursor moves.
type Set struct {
	mu        sync.RWMutex
	dir       string
	paths     []string
	index     int // -1 when no image is selected
	current   image.Image
	logger    *slog.Logger
	listeners map[EventType][]EventListener
}

// NewSet creates an empty image set. The logger may be nil.
func NewSet(logger *slog.Logger) *Set {
	return &Set{
		index:     -1,
		logger:    logger,
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers a listener for the given event type.
func (s *Set) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

func (s *Set) emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := make([]EventListener, len(s.listeners[event]))
	copy(listeners, s.listeners[event])
	s.mu.RUnlock()
	for _, l := range listeners {
		l(data)
	}
}

// SetDirectory scans dir for image files and resets the cursor. The file
// list is sorted by name. An empty directory is not an error; navigation
// reports ErrNoImages until a populated directory is opened.
func (s *Set) SetDirectory(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("open image directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("open image directory: %s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read image directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !IsSupported(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	s.mu.Lock()
	s.dir = dir
	s.paths = paths
	s.index = -1
	s.current = nil
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Info("image directory opened", "dir", dir, "images", len(paths))
	}
	if len(paths) == 0 && s.logger != nil {
		s.logger.Warn("no images found in directory", "dir", dir)
	}
	s.emit(EventDirectoryChanged, dir)
	s.emit(EventImageChanged, -1)
	return nil
}

// Directory returns the current image directory, empty if none is open.
func (s *Set) Directory() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dir
}

// Paths returns a copy of the discovered image paths in display order.
func (s *Set) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.paths))
	copy(out, s.paths)
	return out
}

// Len returns the number of images in the set.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.paths)
}

// Index returns the cursor position, -1 when no image is selected.
func (s *Set) Index() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// CurrentPath returns the path of the current image, empty if none.
func (s *Set) CurrentPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index < 0 || s.index >= len(s.paths) {
		return ""
	}
	return s.paths[s.index]
}

// Current returns the decoded current image, or false if none is loaded.
func (s *Set) Current() (image.Image, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, false
	}
	return s.current, true
}

// SetIndex moves the cursor to i and decodes that image. EXIF orientation
// is applied during decode so the pixels match what a viewer shows.
func (s *Set) SetIndex(i int) error {
	s.mu.RLock()
	n := len(s.paths)
	s.mu.RUnlock()
	if n == 0 {
		return ErrNoImages
	}
	if i < 0 || i >= n {
		return fmt.Errorf("image index %d out of range [0,%d)", i, n)
	}

	s.mu.RLock()
	path := s.paths[i]
	s.mu.RUnlock()

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		if s.logger != nil {
			s.logger.Error("image decode failed", "path", path, "error", err)
		}
		return fmt.Errorf("decode %s: %w", path, err)
	}

	s.mu.Lock()
	s.index = i
	s.current = img
	s.mu.Unlock()

	if s.logger != nil {
		b := img.Bounds()
		s.logger.Debug("image loaded", "path", path, "width", b.Dx(), "height", b.Dy())
	}
	s.emit(EventImageChanged, i)
	return nil
}

// First moves to the first image.
func (s *Set) First() error {
	if s.Len() == 0 {
		return ErrNoImages
	}
	return s.SetIndex(0)
}

// Last moves to the last image.
func (s *Set) Last() error {
	n := s.Len()
	if n == 0 {
		return ErrNoImages
	}
	return s.SetIndex(n - 1)
}

// Next advances the cursor. With no selection it starts at the first image;
// at the end it stays put.
func (s *Set) Next() error {
	n := s.Len()
	if n == 0 {
		return ErrNoImages
	}
	i := s.Index()
	if i < 0 {
		return s.SetIndex(0)
	}
	if i >= n-1 {
		return nil
	}
	return s.SetIndex(i + 1)
}

// Prev moves the cursor back. With no selection it starts at the last image;
// at the start it stays put.
func (s *Set) Prev() error {
	n := s.Len()
	if n == 0 {
		return ErrNoImages
	}
	i := s.Index()
	if i < 0 {
		return s.SetIndex(n - 1)
	}
	if i <= 0 {
		return nil
	}
	return s.SetIndex(i - 1)
}

// AnnotationPath derives the annotation file path for an image: the image's
// base name with a .json extension, placed under outputDir.
func AnnotationPath(outputDir, imagePath string) string {
	base := filepath.Base(imagePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, stem+".json")
}
