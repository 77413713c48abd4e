// Package mainwindow provides the main application window.
package mainwindow

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"bbox-annotator/internal/annotation"
	"bbox-annotator/internal/controller"
	"bbox-annotator/internal/imageset"
	"bbox-annotator/internal/label"
	"bbox-annotator/internal/viewport"
	"bbox-annotator/ui/canvas"
	"bbox-annotator/ui/panels"
	"bbox-annotator/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const appVersion = "1.0.0"

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app    fyne.App
	logger *slog.Logger
	prefs  *prefs.Prefs

	store    *annotation.Store
	registry *label.Registry
	session  *controller.Session
	images   *imageset.Set
	mapper   *viewport.Mapper

	canvas     *canvas.AnnotationCanvas
	labelPanel *panels.LabelPanel
	statusBar  *widget.Label
	modeBtn    *widget.Button
}

// New creates the main window and wires all components together.
func New(fyneApp fyne.App, p *prefs.Prefs, logger *slog.Logger) *MainWindow {
	win := fyneApp.NewWindow("BBox Annotator")

	store := annotation.NewStore(logger)
	registry := label.NewRegistry(store, logger)
	mw := &MainWindow{
		Window:   win,
		app:      fyneApp,
		logger:   logger,
		prefs:    p,
		store:    store,
		registry: registry,
		session:  controller.NewSession(store, registry, logger),
		images:   imageset.NewSet(logger),
		mapper:   viewport.NewMapper(),
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.setupKeys()

	win.Resize(fyne.NewSize(1200, 800))
	return mw
}

// OpenDirectory opens the given image directory, as if chosen from the
// File menu.
func (mw *MainWindow) OpenDirectory(dir string) {
	mw.loadDirectory(dir)
}

// setupUI creates the main layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.New(mw.store, mw.session, mw.mapper)
	mw.canvas.SetStyle(mw.styleFromPrefs())

	mw.labelPanel = panels.NewLabelPanel(mw.store, mw.registry)
	mw.labelPanel.SetWindow(mw.Window)

	mw.statusBar = widget.NewLabel("Open an image directory to begin")

	canvasArea := container.NewBorder(
		mw.createToolbar(),
		nil, nil, nil,
		mw.canvas,
	)

	split := container.NewHSplit(mw.labelPanel.Container(), canvasArea)
	split.SetOffset(0.22)

	content := container.NewBorder(
		nil,
		container.NewPadded(mw.statusBar),
		nil, nil,
		split,
	)
	mw.SetContent(content)
}

// createToolbar creates the mode, navigation, and zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	mw.modeBtn = widget.NewButton("Mode: Draw", mw.onToggleMode)

	firstBtn := widget.NewButton("|<", func() { mw.navigate(mw.images.First) })
	prevBtn := widget.NewButton("<", func() { mw.navigate(mw.images.Prev) })
	nextBtn := widget.NewButton(">", func() { mw.navigate(mw.images.Next) })
	lastBtn := widget.NewButton(">|", func() { mw.navigate(mw.images.Last) })

	zoomOutBtn := widget.NewButton("-", mw.canvas.ZoomOut)
	zoomInBtn := widget.NewButton("+", mw.canvas.ZoomIn)
	resetBtn := widget.NewButton("1:1", mw.canvas.ResetView)

	saveBtn := widget.NewButton("Save", mw.onSave)

	return container.NewHBox(
		mw.modeBtn,
		widget.NewSeparator(),
		firstBtn, prevBtn, nextBtn, lastBtn,
		widget.NewSeparator(),
		widget.NewLabel("Zoom:"), zoomOutBtn, zoomInBtn, resetBtn,
		widget.NewSeparator(),
		saveBtn,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Directory...", mw.onOpenDirectory),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save Annotations", mw.onSave),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Delete Selected", mw.onDeleteSelected),
		fyne.NewMenuItem("Relabel Selected...", mw.onRelabelSelected),
		fyne.NewMenuItem("Cancel", mw.onCancel),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Toggle Mode", mw.onToggleMode),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.canvas.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.canvas.ZoomOut),
		fyne.NewMenuItem("Actual Size", mw.canvas.ResetView),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu, helpMenu))
}

// setupEventHandlers subscribes to model events.
func (mw *MainWindow) setupEventHandlers() {
	mw.images.On(imageset.EventImageChanged, func(data interface{}) {
		idx, _ := data.(int)
		mw.onImageChanged(idx)
	})

	mw.store.On(annotation.EventDirtyChanged, func(data interface{}) {
		mw.updateTitle()
	})

	mw.session.OnModeChange(func(m controller.Mode) {
		if m == controller.ModeEdit {
			mw.modeBtn.SetText("Mode: Edit")
		} else {
			mw.modeBtn.SetText("Mode: Draw")
		}
		mw.updateStatus("Mode: " + m.String())
	})

	mw.session.OnError(func(err error) {
		if errors.Is(err, annotation.ErrInvalidLabel) {
			mw.updateStatus("Set a current label before drawing")
			return
		}
		mw.updateStatus("Error: " + err.Error())
	})

	mw.canvas.OnViewChange(func(zoom float64) {
		mw.updateStatus(fmt.Sprintf("Zoom: %.0f%%", zoom*100))
	})
}

// setupKeys binds keyboard shortcuts.
func (mw *MainWindow) setupKeys() {
	mw.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyDelete, fyne.KeyBackspace:
			mw.onDeleteSelected()
		case fyne.KeyEscape:
			mw.onCancel()
		case fyne.KeyLeft:
			mw.navigate(mw.images.Prev)
		case fyne.KeyRight:
			mw.navigate(mw.images.Next)
		case fyne.KeyHome:
			mw.navigate(mw.images.First)
		case fyne.KeyEnd:
			mw.navigate(mw.images.Last)
		case fyne.KeyE:
			mw.session.SetMode(controller.ModeEdit)
		case fyne.KeyD:
			mw.session.SetMode(controller.ModeDraw)
		case fyne.KeyS:
			mw.onSave()
		}
	})
}

// styleFromPrefs builds the canvas style with preference overrides.
func (mw *MainWindow) styleFromPrefs() canvas.Style {
	s := canvas.DefaultStyle()
	s.BoxColor = mw.prefs.Color(prefs.KeyBoxColor, s.BoxColor)
	s.SelectedBoxColor = mw.prefs.Color(prefs.KeySelectedBoxColor, s.SelectedBoxColor)
	s.ControlPointSize = mw.prefs.Float(prefs.KeyControlPointSize, s.ControlPointSize)
	s.HitTolerance = mw.prefs.Float(prefs.KeyHitTolerance, s.HitTolerance)
	s.ShowLabels = mw.prefs.Bool(prefs.KeyShowLabels, s.ShowLabels)
	return s
}

// outputDir returns where annotation files live: the preference override,
// or the image directory itself.
func (mw *MainWindow) outputDir() string {
	if dir := mw.prefs.String(prefs.KeyOutputDirectory, ""); dir != "" {
		return dir
	}
	return mw.images.Directory()
}

func (mw *MainWindow) currentAnnotationPath() string {
	path := mw.images.CurrentPath()
	if path == "" {
		return ""
	}
	return imageset.AnnotationPath(mw.outputDir(), path)
}

// navigate runs a navigation step after the unsaved-changes guard.
func (mw *MainWindow) navigate(step func() error) {
	mw.guardUnsaved(func() {
		if err := step(); err != nil && !errors.Is(err, imageset.ErrNoImages) {
			dialog.ShowError(err, mw.Window)
		}
	})
}

// guardUnsaved runs next, first autosaving or asking about unsaved edits.
func (mw *MainWindow) guardUnsaved(next func()) {
	if !mw.store.Dirty() {
		next()
		return
	}
	if mw.prefs.Bool(prefs.KeyAutosave, false) {
		mw.onSave()
		next()
		return
	}
	dialog.ShowConfirm("Unsaved changes",
		"The current image has unsaved annotations. Discard them?",
		func(discard bool) {
			if discard {
				next()
			}
		}, mw.Window)
}

// onImageChanged loads the image and its annotation file after the cursor
// moves.
func (mw *MainWindow) onImageChanged(idx int) {
	mw.session.CancelActive()

	img, ok := mw.images.Current()
	if !ok {
		mw.canvas.SetImage(nil)
		mw.store.Replace(nil)
		mw.updateTitle()
		return
	}

	annPath := mw.currentAnnotationPath()
	anns, report, err := annotation.LoadFile(annPath)
	if err != nil {
		// A missing file just means a fresh image.
		anns = nil
		if !errors.Is(err, os.ErrNotExist) {
			mw.updateStatus("Annotation load failed: " + err.Error())
		}
	}
	mw.store.Replace(anns)
	for _, a := range anns {
		mw.registry.Register(a.Label)
	}
	if n := len(report.Skipped); n > 0 {
		mw.updateStatus(fmt.Sprintf("Loaded %d annotations, skipped %d corrupt records", len(anns), n))
	} else {
		mw.updateStatus(fmt.Sprintf("Image %d/%d: %s", idx+1, mw.images.Len(), filepath.Base(mw.images.CurrentPath())))
	}

	mw.canvas.SetImage(img)
	mw.updateTitle()
}

func (mw *MainWindow) updateTitle() {
	title := "BBox Annotator"
	if path := mw.images.CurrentPath(); path != "" {
		title += " - " + filepath.Base(path)
	}
	if mw.store.Dirty() {
		title += " *"
	}
	mw.SetTitle(title)
}

func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// Menu action handlers

func (mw *MainWindow) onOpenDirectory() {
	fd := dialog.NewFolderOpen(func(list fyne.ListableURI, err error) {
		if err != nil || list == nil {
			return
		}
		mw.guardUnsaved(func() {
			mw.loadDirectory(list.Path())
		})
	}, mw.Window)
	if last := mw.prefs.String(prefs.KeyLastDirectory, ""); last != "" {
		if loc, err := storage.ListerForURI(storage.NewFileURI(last)); err == nil {
			fd.SetLocation(loc)
		}
	}
	fd.Show()
}

func (mw *MainWindow) loadDirectory(dir string) {
	if err := mw.images.SetDirectory(dir); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.prefs.SetString(prefs.KeyLastDirectory, dir)
	if err := mw.prefs.Save(); err != nil && mw.logger != nil {
		mw.logger.Warn("preferences save failed", "error", err)
	}

	mw.registry.SeedFromDir(mw.outputDir())
	mw.labelPanel.Container().Refresh()

	if mw.images.Len() == 0 {
		mw.updateStatus("No images found in " + dir)
		mw.canvas.SetImage(nil)
		mw.store.Replace(nil)
		return
	}
	if err := mw.images.First(); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onSave() {
	path := mw.currentAnnotationPath()
	if path == "" {
		mw.updateStatus("Nothing to save")
		return
	}
	if err := annotation.SaveFile(path, mw.store.List()); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.store.MarkSaved()
	mw.updateStatus("Saved " + filepath.Base(path))
}

func (mw *MainWindow) onDeleteSelected() {
	mw.session.DeleteSelected()
}

// onRelabelSelected changes one annotation's label, unlike the panel's
// rename which cascades across every annotation with that label.
func (mw *MainWindow) onRelabelSelected() {
	ann, ok := mw.store.Selected()
	if !ok {
		mw.updateStatus("No annotation selected")
		return
	}
	d := dialog.NewEntryDialog("Relabel annotation",
		fmt.Sprintf("New label for this %q box:", ann.Label),
		func(next string) {
			if next == "" || next == ann.Label {
				return
			}
			if err := mw.store.UpdateLabel(ann.ID, next); err != nil {
				dialog.ShowError(err, mw.Window)
				return
			}
			mw.registry.Register(next)
		}, mw.Window)
	d.Show()
}

func (mw *MainWindow) onCancel() {
	mw.session.CancelActive()
	mw.canvas.Refresh()
}

func (mw *MainWindow) onToggleMode() {
	if mw.session.Mode() == controller.ModeDraw {
		mw.session.SetMode(controller.ModeEdit)
	} else {
		mw.session.SetMode(controller.ModeDraw)
	}
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About BBox Annotator",
		fmt.Sprintf("BBox Annotator v%s\n\n"+
			"A bounding-box image annotation tool.\n\n"+
			"Draw mode: drag to create a box with the current label.\n"+
			"Edit mode: drag corners or centers to adjust boxes.",
			appVersion),
		mw.Window)
}
