package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"github.com/philipparndt/gobbox/internal/config"
	"github.com/philipparndt/gobbox/internal/dataset"
	"github.com/philipparndt/gobbox/internal/session"
	"github.com/philipparndt/gobbox/pkg/analysis"
	"github.com/philipparndt/gobbox/pkg/annotation"
	"github.com/philipparndt/gobbox/pkg/detector"
	"github.com/philipparndt/gobbox/pkg/watcher"
)

const (
	appID          = "com.github.philipparndt.gobbox"
	prefLastFolder = "lastFolder"
	prefSplit      = "splitOffset"
)

// App is the annotation window. All fields are owned by the fyne UI
// thread; the watcher and the detector hand their results over with
// fyne.Do.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	fyneApp fyne.App
	window  fyne.Window
	split   *container.Split

	session *session.Session
	canvas  *AnnotationCanvas
	panel   *sidePanel
	names   []string

	watcher *watcher.FileWatcher
	// label files written by us, ignored by the watcher until the deadline
	ownWrites map[string]time.Time
	// unsaved edits since the labels were loaded
	dirty bool

	cancelPredict context.CancelFunc
}

// Run opens the window and blocks until it is closed. folder may be
// empty, the last opened folder is used then.
func Run(cfg *config.Config, folder string, logger *slog.Logger) error {
	a := &App{
		cfg:       cfg,
		logger:    logger,
		fyneApp:   fyneapp.NewWithID(appID),
		ownWrites: make(map[string]time.Time),
		session: session.New(logger, session.Options{
			ReviewDir: cfg.ReviewDir,
			TrashDir:  cfg.TrashDir,
		}),
	}
	a.window = a.fyneApp.NewWindow("gobbox")

	a.canvas = NewAnnotationCanvas(a.session, cfg)
	a.panel = newSidePanel(a)
	a.session.Store().AddListener(a.storeChanged)

	a.split = container.NewHSplit(a.canvas, a.panel.content())
	a.split.Offset = a.fyneApp.Preferences().FloatWithFallback(prefSplit, 0.8)
	a.window.SetContent(a.split)
	a.bindKeys()

	fw, err := watcher.NewFileWatcher(cfg.WatchDebounce())
	if err != nil {
		logger.Warn("file watching disabled", "error", err)
	} else {
		fw.OnError = func(err error) {
			logger.Warn("file watcher error", "error", err)
		}
		fw.Start()
		a.watcher = fw
		defer fw.Close()
	}

	if folder == "" {
		folder = a.fyneApp.Preferences().String(prefLastFolder)
	}
	if folder != "" {
		a.openFolder(folder)
	}

	a.window.SetCloseIntercept(a.close)
	a.window.Resize(fyne.NewSize(1400, 900))
	a.window.ShowAndRun()

	return nil
}

func (a *App) close() {
	a.stopPredict()
	a.fyneApp.Preferences().SetFloat(prefSplit, a.split.Offset)

	if err := a.session.Save(); err != nil {
		dialog.ShowConfirm("Save failed",
			fmt.Sprintf("%v\n\nClose anyway?", err),
			func(ok bool) {
				if ok {
					a.window.Close()
				}
			}, a.window)
		a.window.SetCloseIntercept(nil)
		return
	}
	a.window.Close()
}

func (a *App) showError(err error) {
	dialog.ShowError(err, a.window)
}

func (a *App) showFolderDialog() {
	d := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			a.showError(err)
			return
		}
		if uri == nil {
			return
		}
		a.openFolder(uri.Path())
	}, a.window)
	d.Resize(fyne.NewSize(900, 600))
	d.Show()
}

func (a *App) openFolder(dir string) {
	err := a.session.Open(dir)
	if a.session.Dir() != dir {
		a.logger.Error("failed to open folder", "dir", dir, "error", err)
		a.showError(fmt.Errorf("failed to open %s: %w", dir, err))
		return
	}
	a.fyneApp.Preferences().SetString(prefLastFolder, dir)
	a.window.SetTitle("gobbox - " + filepath.Base(dir))

	names, nerr := a.cfg.LabelNamesFor(dir)
	if nerr != nil {
		a.logger.Warn("failed to read label names", "dir", dir, "error", nerr)
	}
	a.names = names
	a.canvas.SetLabelNames(names)
	a.panel.setLabelNames(names)

	a.watchFolder(dir)
	a.imageChanged(err)
}

// watchFolder follows label file changes in the image folder and the
// prediction folder
func (a *App) watchFolder(dir string) {
	if a.watcher == nil {
		return
	}
	if err := a.watcher.RemoveAll(); err != nil {
		a.logger.Warn("failed to reset file watcher", "error", err)
	}

	dirs := append([]string{dir}, a.session.ReviewDirs()...)
	for _, d := range dirs {
		err := a.watcher.WatchDir(d, isLabelFile, func(path string) {
			fyne.Do(func() { a.labelFileChanged(path) })
		})
		if err != nil {
			a.logger.Warn("failed to watch folder", "dir", d, "error", err)
			continue
		}
		a.logger.Debug("watching folder", "dir", d)
	}
}

func isLabelFile(path string) bool {
	return filepath.Ext(path) == dataset.LabelExt
}

func (a *App) labelFileChanged(path string) {
	if !a.session.IsLabelFileOfCurrent(path) {
		return
	}
	if deadline, ok := a.ownWrites[path]; ok {
		delete(a.ownWrites, path)
		if time.Now().Before(deadline) {
			return
		}
	}
	if a.dirty {
		a.logger.Warn("label file changed on disk, keeping local edits", "file", path)
		a.panel.setStatus(filepath.Base(path) + " changed on disk, keeping local edits")
		return
	}

	a.logger.Info("reloading labels", "file", path)
	err := a.session.Reload()
	a.canvas.Refresh()
	a.panel.update()
	if err != nil {
		a.showError(err)
	}
}

func (a *App) storeChanged(c annotation.Change) {
	switch c {
	case annotation.ChangeBoxes:
		a.dirty = true
	case annotation.ChangeLoaded:
		a.dirty = false
	}
	a.canvas.Refresh()
	a.panel.storeChanged(c)
}

// imageChanged shows the current image of the session. err is the error
// of loading its labels.
func (a *App) imageChanged(err error) {
	img := a.session.Current()
	if img == "" {
		a.canvas.SetImage(nil, a.session.ImageSize())
	} else {
		picture, ierr := dataset.LoadImage(img, a.cfg.PreviewSize)
		if ierr != nil {
			a.logger.Error("failed to load image", "image", img, "error", ierr)
			err = errors.Join(err, ierr)
		}
		a.canvas.SetImage(picture, a.session.ImageSize())
	}
	a.panel.update()

	if err != nil {
		a.showError(err)
	}
}

func (a *App) markOwnWrite() {
	if path := a.session.Store().OutputPath(); path != "" {
		abs, err := filepath.Abs(path)
		if err == nil {
			path = abs
		}
		a.ownWrites[path] = time.Now().Add(2*a.cfg.WatchDebounce() + time.Second)
	}
}

func (a *App) show(i int) {
	if i == a.session.Index() {
		return
	}
	a.markOwnWrite()
	a.imageChanged(a.session.Show(i))
}

func (a *App) next() {
	a.markOwnWrite()
	a.imageChanged(a.session.Next())
}

func (a *App) prev() {
	a.markOwnWrite()
	a.imageChanged(a.session.Prev())
}

func (a *App) save() {
	a.markOwnWrite()
	if err := a.session.Save(); err != nil {
		a.showError(err)
		return
	}
	a.dirty = false
	a.panel.setStatus("saved " + filepath.Base(a.session.Store().OutputPath()))
}

func (a *App) moveToSplit(split string) {
	name := filepath.Base(a.session.Current())
	if err := a.session.MoveCurrentToSplit(split); err != nil {
		a.showError(err)
		return
	}
	a.panel.setStatus(fmt.Sprintf("moved %s to %s", name, split))
	a.imageChanged(a.session.LoadError())
}

func (a *App) trash() {
	name := filepath.Base(a.session.Current())
	if err := a.session.TrashCurrent(); err != nil {
		a.showError(err)
		return
	}
	a.panel.setStatus("trashed " + name)
	a.imageChanged(a.session.LoadError())
}

func (a *App) applyFilter(f *analysis.Filter) {
	err := a.session.ApplyFilter(f)
	a.panel.setStatus(fmt.Sprintf("%d images", a.session.Len()))
	a.imageChanged(err)
}

func (a *App) togglePredict() {
	if a.cancelPredict != nil {
		a.stopPredict()
		return
	}
	dir := a.session.Dir()
	if dir == "" {
		a.showError(errors.New("open a folder first"))
		return
	}

	output := a.cfg.Detector.OutputDir
	if !filepath.IsAbs(output) {
		output = filepath.Join(dir, output)
	}
	if err := os.MkdirAll(output, 0o755); err != nil {
		a.showError(fmt.Errorf("failed to create output directory: %w", err))
		return
	}
	// predictions appear while the detector runs
	a.watchFolder(dir)
	a.panel.update()

	ctx, cancel := context.WithCancel(context.Background())
	a.cancelPredict = cancel
	a.panel.setPredicting(true)
	a.panel.setStatus("running " + a.cfg.Detector.Command)

	runner := detector.NewRunner(a.cfg.Detector.Command, a.cfg.Detector.Args, dir)
	logger := a.logger.With("command", a.cfg.Detector.Command)
	logger.Info("starting prediction", "source", dir, "output", output)

	go func() {
		err := runner.Run(ctx, dir, output, func(line string) {
			logger.Debug(line)
			fyne.Do(func() { a.panel.setStatus(line) })
		})
		fyne.Do(func() { a.predictFinished(err) })
	}()
}

func (a *App) predictFinished(err error) {
	a.cancelPredict = nil
	a.panel.setPredicting(false)

	switch {
	case err == nil:
		a.logger.Info("prediction finished")
		a.panel.setStatus("prediction finished")
		// the detector may have created a labels subfolder
		a.watchFolder(a.session.Dir())
		if !a.dirty {
			a.imageChanged(a.session.Reload())
		}
	case errors.Is(err, context.Canceled):
		a.logger.Info("prediction stopped")
		a.panel.setStatus("prediction stopped")
	default:
		a.logger.Error("prediction failed", "error", err)
		a.panel.setStatus("prediction failed")
		a.showError(err)
	}
}

func (a *App) stopPredict() {
	if a.cancelPredict != nil {
		a.cancelPredict()
	}
}
