package annotation

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"bbox-annotator/pkg/geometry"
)

// record is the on-disk representation of a single annotation:
// a label plus a [left, top, right, bottom] array in image pixels.
type record struct {
	Label string    `json:"label"`
	BBox  []float64 `json:"bbox"`
}

// annotationFile is the on-disk container. Older files written as a bare
// top-level array (no "annotations" key) are still accepted on load.
type annotationFile struct {
	Annotations []record `json:"annotations"`
}

// SkippedRecord describes a corrupt record that was skipped during load.
type SkippedRecord struct {
	Index  int
	Reason string
}

// LoadReport aggregates per-record load problems. A non-empty report does
// not mean the load failed; the remaining records loaded normally.
type LoadReport struct {
	Skipped []SkippedRecord
}

// LoadFile reads an annotation file. Corrupt records (missing label, bbox of
// the wrong length, non-finite or unordered coordinates) are skipped and
// reported; only an unreadable file or invalid JSON fails the load outright.
// Returned annotations carry no IDs; Store.Replace assigns them.
func LoadFile(path string) ([]Annotation, LoadReport, error) {
	var report LoadReport

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, report, fmt.Errorf("failed to read annotation file: %w", err)
	}

	var file annotationFile
	if err := json.Unmarshal(data, &file.Annotations); err != nil {
		// Not a bare array; try the keyed container format.
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, report, fmt.Errorf("failed to parse annotation file %s: %w", path, err)
		}
	}

	anns := make([]Annotation, 0, len(file.Annotations))
	for i, rec := range file.Annotations {
		if reason, ok := checkRecord(rec); !ok {
			report.Skipped = append(report.Skipped, SkippedRecord{Index: i, Reason: reason})
			continue
		}
		anns = append(anns, Annotation{
			Label: rec.Label,
			BBox: geometry.BBox{
				Left:   rec.BBox[0],
				Top:    rec.BBox[1],
				Right:  rec.BBox[2],
				Bottom: rec.BBox[3],
			},
		})
	}
	return anns, report, nil
}

// checkRecord validates one on-disk record, returning a skip reason when it
// is corrupt.
func checkRecord(rec record) (string, bool) {
	if rec.Label == "" {
		return "missing label", false
	}
	if len(rec.BBox) != 4 {
		return fmt.Sprintf("bbox has %d elements, want 4", len(rec.BBox)), false
	}
	for _, v := range rec.BBox {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "bbox contains non-finite coordinate", false
		}
	}
	if !(rec.BBox[0] < rec.BBox[2] && rec.BBox[1] < rec.BBox[3]) {
		return "bbox coordinates are not ordered", false
	}
	return "", true
}

// SaveFile writes the annotations to path, creating parent directories as
// needed. The write goes to a temp file in the same directory and is renamed
// into place so a crash never leaves a truncated file behind.
func SaveFile(path string, anns []Annotation) error {
	file := annotationFile{Annotations: make([]record, 0, len(anns))}
	for _, a := range anns {
		file.Annotations = append(file.Annotations, record{
			Label: a.Label,
			BBox: []float64{
				roundCoord(a.BBox.Left),
				roundCoord(a.BBox.Top),
				roundCoord(a.BBox.Right),
				roundCoord(a.BBox.Bottom),
			},
		})
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// roundCoord rounds to 2 decimal places so save/load cycles do not drift.
func roundCoord(v float64) float64 {
	return math.Round(v*100) / 100
}
