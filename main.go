// BBox Annotator is a desktop tool for drawing labeled bounding boxes on
// images and saving them as per-image JSON files.
package main

import (
	"flag"
	"log/slog"
	"os"

	"bbox-annotator/ui/mainwindow"
	"bbox-annotator/ui/prefs"

	"fyne.io/fyne/v2/app"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	dir := flag.String("dir", "", "image directory to open at startup")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	p := prefs.Load()

	fyneApp := app.NewWithID("io.github.bbox-annotator")
	win := mainwindow.New(fyneApp, p, logger)

	startDir := *dir
	if startDir == "" && flag.NArg() > 0 {
		startDir = flag.Arg(0)
	}
	if startDir == "" {
		startDir = p.String(prefs.KeyLastDirectory, "")
	}
	if startDir != "" {
		win.OpenDirectory(startDir)
	}

	logger.Info("starting", "dir", startDir)
	win.ShowAndRun()
}
