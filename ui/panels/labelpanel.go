// Package panels provides the side panel UI.
package panels

import (
	"fmt"
	"sort"

	"bbox-annotator/internal/annotation"
	"bbox-annotator/internal/label"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// ViewMode selects how the annotation list is presented.
type ViewMode int

const (
	// ViewFlat lists every annotation as "label #n".
	ViewFlat ViewMode = iota
	// ViewGrouped lists one row per label with its annotation count.
	ViewGrouped
)

// listRow is one rendered row of the annotation list.
type listRow struct {
	text  string
	id    annotation.ID // 0 for group rows
	label string
}

// LabelPanel shows the current-label selector and the annotation list with
// flat and grouped views, plus rename/remove actions that cascade to the
// annotations.
type LabelPanel struct {
	store    *annotation.Store
	registry *label.Registry
	window   fyne.Window

	mode        ViewMode
	rows        []listRow
	activeLabel string
	list        *widget.List
	current     *widget.SelectEntry
	root        fyne.CanvasObject
}

// NewLabelPanel builds the panel and subscribes it to store and registry
// changes.
func NewLabelPanel(store *annotation.Store, registry *label.Registry) *LabelPanel {
	lp := &LabelPanel{
		store:    store,
		registry: registry,
		mode:     ViewFlat,
	}

	lp.current = widget.NewSelectEntry(registry.All())
	lp.current.SetPlaceHolder("Current label")
	lp.current.OnChanged = func(s string) {
		if s != "" && s != lp.registry.Current() {
			lp.registry.SetCurrent(s)
		}
	}

	lp.list = widget.NewList(
		func() int { return len(lp.rows) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			if i < len(lp.rows) {
				o.(*widget.Label).SetText(lp.rows[i].text)
			}
		},
	)
	lp.list.OnSelected = func(i widget.ListItemID) {
		if i >= len(lp.rows) {
			return
		}
		row := lp.rows[i]
		lp.activeLabel = row.label
		if row.id != 0 {
			lp.store.Select(row.id)
		}
	}

	viewToggle := widget.NewRadioGroup([]string{"Flat", "Grouped"}, func(s string) {
		if s == "Grouped" {
			lp.mode = ViewGrouped
		} else {
			lp.mode = ViewFlat
		}
		lp.rebuild()
	})
	viewToggle.Horizontal = true
	viewToggle.SetSelected("Flat")

	renameBtn := widget.NewButton("Rename", lp.onRename)
	removeBtn := widget.NewButton("Remove", lp.onRemove)

	lp.root = container.NewBorder(
		container.NewVBox(lp.current, viewToggle),
		container.NewHBox(renameBtn, removeBtn),
		nil, nil,
		lp.list,
	)

	store.On(annotation.EventAnnotationsChanged, func(interface{}) { lp.rebuild() })
	store.On(annotation.EventSelectionChanged, func(interface{}) { lp.syncSelection() })
	registry.On(label.EventLabelsChanged, func(interface{}) { lp.refreshOptions() })
	registry.On(label.EventCurrentChanged, func(data interface{}) {
		if s, ok := data.(string); ok && lp.current.Text != s {
			lp.current.SetText(s)
		}
	})

	lp.rebuild()
	return lp
}

// SetWindow sets the parent window for dialogs.
func (lp *LabelPanel) SetWindow(w fyne.Window) {
	lp.window = w
}

// Container returns the panel's root object for embedding in layouts.
func (lp *LabelPanel) Container() fyne.CanvasObject {
	return lp.root
}

// selectedLabel returns the label the actions apply to: the selected
// annotation's label, or the highlighted group row's.
func (lp *LabelPanel) selectedLabel() string {
	if ann, ok := lp.store.Selected(); ok {
		return ann.Label
	}
	return lp.activeLabel
}

func (lp *LabelPanel) onRename() {
	old := lp.selectedLabel()
	if old == "" {
		return
	}
	d := dialog.NewEntryDialog("Rename label", fmt.Sprintf("New name for %q:", old), func(next string) {
		if next == "" || next == old {
			return
		}
		if err := lp.registry.Rename(old, next); err != nil && lp.window != nil {
			dialog.ShowError(err, lp.window)
		}
	}, lp.window)
	d.Show()
}

func (lp *LabelPanel) onRemove() {
	lbl := lp.selectedLabel()
	if lbl == "" {
		return
	}
	dialog.ShowConfirm("Remove label",
		fmt.Sprintf("Remove %q and all its annotations?", lbl),
		func(ok bool) {
			if ok {
				lp.registry.Remove(lbl)
			}
		}, lp.window)
}

// refreshOptions updates the current-label dropdown choices.
func (lp *LabelPanel) refreshOptions() {
	lp.current.SetOptions(lp.registry.All())
	lp.rebuild()
}

// rebuild regenerates the visible rows for the active view mode.
func (lp *LabelPanel) rebuild() {
	anns := lp.store.List()

	switch lp.mode {
	case ViewGrouped:
		counts := make(map[string]int)
		for _, a := range anns {
			counts[a.Label]++
		}
		labels := make([]string, 0, len(counts))
		for l := range counts {
			labels = append(labels, l)
		}
		sort.Strings(labels)
		lp.rows = lp.rows[:0]
		for _, l := range labels {
			lp.rows = append(lp.rows, listRow{
				text:  fmt.Sprintf("%s (%d)", l, counts[l]),
				label: l,
			})
		}
	default:
		seen := make(map[string]int)
		lp.rows = lp.rows[:0]
		for _, a := range anns {
			seen[a.Label]++
			lp.rows = append(lp.rows, listRow{
				text:  fmt.Sprintf("%s #%d", a.Label, seen[a.Label]),
				id:    a.ID,
				label: a.Label,
			})
		}
	}
	lp.list.Refresh()
	lp.syncSelection()
}

// syncSelection highlights the list row of the selected annotation.
func (lp *LabelPanel) syncSelection() {
	id := lp.store.SelectedID()
	if id == 0 || lp.mode != ViewFlat {
		lp.list.UnselectAll()
		return
	}
	for i, row := range lp.rows {
		if row.id == id {
			lp.list.Select(i)
			return
		}
	}
	lp.list.UnselectAll()
}
