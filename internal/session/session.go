package session

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/philipparndt/gobbox/internal/dataset"
	"github.com/philipparndt/gobbox/pkg/analysis"
	"github.com/philipparndt/gobbox/pkg/annotation"
	"github.com/philipparndt/gobbox/pkg/editor"
	"github.com/philipparndt/gobbox/pkg/geometry"
)

// PredictionLabelsDir is the subfolder of a prediction folder label files
// may be written to
const PredictionLabelsDir = "labels"

// Options configures a session
type Options struct {
	// ReviewDir is a folder, relative to the image folder, holding
	// predicted label files. Empty disables review mode.
	ReviewDir string
	TrashDir  string
}

// Session walks through the images of a folder. It owns the annotation
// store and the editor of the current image and saves the store whenever
// the image changes.
type Session struct {
	logger *slog.Logger
	opts   Options

	dir     string
	all     []string
	images  []string // all images passing the filter
	filter  *analysis.Filter
	index   int
	size    geometry.Size
	source  string // label file the current annotations were loaded from
	loadErr error

	store  *annotation.Store
	editor *editor.Editor
}

// New creates a session without a folder
func New(logger *slog.Logger, opts Options) *Session {
	store := annotation.NewStore()
	return &Session{
		logger: logger,
		opts:   opts,
		index:  -1,
		store:  store,
		editor: editor.New(store),
	}
}

func (s *Session) Store() *annotation.Store { return s.store }
func (s *Session) Editor() *editor.Editor { return s.editor }
func (s *Session) Dir() string { return s.dir }
func (s *Session) Len() int { return len(s.images) }
func (s *Session) Index() int { return s.index }
func (s *Session) ImageSize() geometry.Size { return s.size }
func (s *Session) LabelSource() string { return s.source }
func (s *Session) Images() []string { return append([]string(nil), s.images...) }
func (s *Session) Filter() *analysis.Filter { return s.filter }

// LoadError returns the error of the last label load, if the label file
// of the current image could not be read
func (s *Session) LoadError() error {
	return s.loadErr
}

// Current returns the path of the current image, or "" without images
func (s *Session) Current() string {
	if s.index < 0 || s.index >= len(s.images) {
		return ""
	}
	return s.images[s.index]
}

// Open lists the images of dir and shows the first one
func (s *Session) Open(dir string) error {
	if err := s.Save(); err != nil {
		return err
	}

	images, err := dataset.ListImages(dir)
	if err != nil {
		return err
	}

	s.dir = dir
	s.all = images
	s.images = images
	s.filter = nil
	s.index = -1
	s.logger.Info("opened folder", "dir", dir, "images", len(images), "review", s.reviewDir() != "")

	return s.Show(0)
}

// Show saves the current annotations and switches to image i
func (s *Session) Show(i int) error {
	if i < 0 || i >= len(s.images) {
		return fmt.Errorf("image %d: %w", i, annotation.ErrIndexOutOfRange)
	}

	s.editor.Reset()
	if err := s.Save(); err != nil {
		return err
	}

	s.index = i
	return s.load()
}

// Next shows the following image, staying on the last one
func (s *Session) Next() error {
	if s.index+1 >= len(s.images) {
		return nil
	}
	return s.Show(s.index + 1)
}

// Prev shows the preceding image, staying on the first one
func (s *Session) Prev() error {
	if s.index <= 0 {
		return nil
	}
	return s.Show(s.index - 1)
}

// Save writes the annotations of the current image
func (s *Session) Save() error {
	if s.Current() == "" {
		return nil
	}
	if err := s.store.Save(); err != nil {
		s.logger.Error("failed to save annotations", "file", s.store.OutputPath(), "error", err)
		return err
	}
	return nil
}

// Reload reads the labels of the current image again, discarding
// unsaved edits
func (s *Session) Reload() error {
	if s.Current() == "" {
		return nil
	}
	s.editor.Reset()
	return s.load()
}

// IsLabelFileOfCurrent reports whether path is a label file the current
// image reads from or writes to
func (s *Session) IsLabelFileOfCurrent(path string) bool {
	img := s.Current()
	if img == "" {
		return false
	}
	candidates := []string{dataset.LabelPath(img)}
	for _, review := range s.ReviewDirs() {
		candidates = append(candidates, dataset.LabelPathIn(review, img))
	}
	for _, c := range candidates {
		if sameFile(c, path) {
			return true
		}
	}
	return false
}

func (s *Session) load() error {
	img := s.images[s.index]

	size, err := dataset.ImageSize(img)
	if err != nil {
		s.store.Reset(geometry.Size{})
		s.loadErr = err
		return err
	}
	s.size = size

	s.source = s.inputPath(img)
	s.store.SetOutputPath(dataset.LabelPath(img))

	s.loadErr = s.store.LoadFromFile(s.source, size)
	if s.loadErr != nil {
		s.logger.Warn("failed to load annotations", "file", s.source, "error", s.loadErr)
		return s.loadErr
	}

	s.logger.Debug("loaded annotations", "image", filepath.Base(img), "source", s.source, "boxes", s.store.Len())
	return nil
}

// inputPath picks the label file to load: the image's own label file,
// else a predicted one from the review folder
func (s *Session) inputPath(img string) string {
	primary := dataset.LabelPath(img)
	if dataset.FileExists(primary) {
		return primary
	}
	for _, review := range s.ReviewDirs() {
		if predicted := dataset.LabelPathIn(review, img); dataset.FileExists(predicted) {
			return predicted
		}
	}
	return primary
}

func (s *Session) reviewDir() string {
	if s.opts.ReviewDir == "" || s.dir == "" {
		return ""
	}
	dir := s.opts.ReviewDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(s.dir, dir)
	}
	if !dataset.DirExists(dir) {
		return ""
	}
	return dir
}

// ReviewDir returns the folder predicted labels are read from, or "" when
// review mode is off
func (s *Session) ReviewDir() string {
	return s.reviewDir()
}

// ReviewDirs returns the existing folders holding predicted label files:
// the review folder and its labels subfolder, where ultralytics writes
// with save_txt
func (s *Session) ReviewDirs() []string {
	review := s.reviewDir()
	if review == "" {
		return nil
	}
	dirs := []string{review}
	if labels := filepath.Join(review, PredictionLabelsDir); dataset.DirExists(labels) {
		dirs = append(dirs, labels)
	}
	return dirs
}

// MoveCurrentToSplit saves the current image and moves it with its label
// into the split folder. The next image is shown.
func (s *Session) MoveCurrentToSplit(split string) error {
	return s.moveCurrent(func(img string) (string, error) {
		return dataset.MoveToSplit(img, split)
	})
}

// TrashCurrent moves the current image and its label into the trash folder
func (s *Session) TrashCurrent() error {
	trash := s.opts.TrashDir
	if trash == "" {
		trash = "deleted"
	}
	return s.moveCurrent(func(img string) (string, error) {
		return dataset.Trash(img, trash)
	})
}

func (s *Session) moveCurrent(move func(string) (string, error)) error {
	img := s.Current()
	if img == "" {
		return errors.New("no image selected")
	}

	s.editor.Reset()
	if err := s.Save(); err != nil {
		return err
	}

	target, err := move(img)
	if err != nil {
		return fmt.Errorf("failed to move %s: %w", filepath.Base(img), err)
	}
	s.logger.Info("moved image", "from", img, "to", target)

	s.images = remove(s.images, img)
	s.all = remove(s.all, img)

	// the store still points at the old label path
	s.store.Reset(geometry.Size{})
	s.store.SetOutputPath("")

	if len(s.images) == 0 {
		s.index = -1
		return nil
	}
	if s.index >= len(s.images) {
		s.index = len(s.images) - 1
	}
	return s.load()
}

// Stats analyzes the label files of all images in the folder
func (s *Session) Stats() []analysis.ImageStats {
	stats := make([]analysis.ImageStats, len(s.all))
	for i, img := range s.all {
		stats[i] = analysis.AnalyzeFile(img, s.inputPath(img))
	}
	return stats
}

// ApplyFilter restricts the visible images. A nil filter shows all
// images. The current image stays selected when it passes the filter.
func (s *Session) ApplyFilter(f *analysis.Filter) error {
	current := s.Current()
	s.editor.Reset()
	if err := s.Save(); err != nil {
		return err
	}

	s.filter = f
	if f == nil {
		s.images = s.all
	} else {
		var images []string
		for _, st := range s.Stats() {
			if f.Match(st) {
				images = append(images, st.Image)
			}
		}
		s.images = images
	}
	s.logger.Info("filter applied", "visible", len(s.images), "total", len(s.all))

	if len(s.images) == 0 {
		s.index = -1
		s.store.Reset(geometry.Size{})
		s.store.SetOutputPath("")
		return nil
	}

	s.index = 0
	for i, img := range s.images {
		if img == current {
			s.index = i
			break
		}
	}
	return s.load()
}

func remove(list []string, item string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != item {
			out = append(out, v)
		}
	}
	return out
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
