package session

import (
	"errors"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/philipparndt/gobbox/pkg/analysis"
	"github.com/philipparndt/gobbox/pkg/annotation"
	"github.com/philipparndt/gobbox/pkg/editor"
	"github.com/philipparndt/gobbox/pkg/geometry"
	"github.com/philipparndt/gobbox/pkg/yolo"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// newFolder creates a.png, b.png and c.png (100x50); a has one box
func newFolder(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"a", "b", "c"} {
		writePNG(t, filepath.Join(dir, name+".png"), 100, 50)
	}
	writeFile(t, filepath.Join(dir, "a.txt"), "1 0.5 0.5 0.2 0.2\n")
	return dir
}

func openSession(t *testing.T, dir string, opts Options) *Session {
	t.Helper()
	s := New(discardLogger(), opts)
	if err := s.Open(dir); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s
}

func TestOpenShowsFirstImage(t *testing.T) {
	dir := newFolder(t)
	s := openSession(t, dir, Options{})

	if s.Len() != 3 || s.Index() != 0 {
		t.Fatalf("unexpected session state len=%d index=%d", s.Len(), s.Index())
	}
	if filepath.Base(s.Current()) != "a.png" {
		t.Errorf("expected a.png, got %s", s.Current())
	}
	if s.ImageSize() != geometry.NewSize(100, 50) {
		t.Errorf("unexpected image size %v", s.ImageSize())
	}
	if s.Store().Len() != 1 {
		t.Errorf("expected 1 box, got %d", s.Store().Len())
	}
}

func TestSwitchingSavesAnnotations(t *testing.T) {
	dir := newFolder(t)
	s := openSession(t, dir, Options{})

	if err := s.Next(); err != nil {
		t.Fatal(err)
	}
	ed := s.Editor()
	ed.PointerDown(editor.ButtonPrimary, geometry.NewPoint(10, 10))
	ed.PointerMove(geometry.NewPoint(30, 20))
	ed.PointerUp(editor.ButtonPrimary, geometry.NewPoint(30, 20))

	if err := s.Next(); err != nil {
		t.Fatal(err)
	}

	content := strings.TrimSpace(readFile(t, filepath.Join(dir, "b.txt")))
	if content != "0 0.2 0.3 0.2 0.2" {
		t.Errorf("unexpected label file %q", content)
	}
	if _, err := os.Stat(filepath.Join(dir, "c.txt")); !os.IsNotExist(err) {
		t.Error("expected no label file for an untouched image")
	}
}

func TestSwitchEndsGesture(t *testing.T) {
	dir := newFolder(t)
	s := openSession(t, dir, Options{})

	s.Editor().PointerDown(editor.ButtonPrimary, geometry.NewPoint(80, 40))
	if err := s.Next(); err != nil {
		t.Fatal(err)
	}

	if s.Editor().Mode() != editor.Idle {
		t.Errorf("expected editor to be idle after switching")
	}
	if got := strings.Count(readFile(t, filepath.Join(dir, "a.txt")), "\n"); got != 1 {
		t.Errorf("expected the unfinished box to be dropped, got %d lines", got)
	}
}

func TestNextPrevStayInRange(t *testing.T) {
	s := openSession(t, newFolder(t), Options{})

	if err := s.Prev(); err != nil || s.Index() != 0 {
		t.Errorf("expected to stay on the first image, index=%d err=%v", s.Index(), err)
	}
	_ = s.Show(2)
	if err := s.Next(); err != nil || s.Index() != 2 {
		t.Errorf("expected to stay on the last image, index=%d err=%v", s.Index(), err)
	}
	if err := s.Show(7); !errors.Is(err, annotation.ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestCorruptLabelFileIsReportedAndKept(t *testing.T) {
	dir := newFolder(t)
	writeFile(t, filepath.Join(dir, "b.txt"), "0 nan 0.5 0.1 0.1\n")
	s := openSession(t, dir, Options{})

	err := s.Next()
	if !errors.Is(err, yolo.ErrCorruptAnnotationFile) {
		t.Fatalf("expected ErrCorruptAnnotationFile, got %v", err)
	}
	if s.Index() != 1 || !errors.Is(s.LoadError(), yolo.ErrCorruptAnnotationFile) {
		t.Errorf("expected the corrupt image to be shown with its load error")
	}

	if err := s.Next(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(readFile(t, filepath.Join(dir, "b.txt")), "nan") {
		t.Error("corrupt file was overwritten")
	}
}

func TestReviewModeLoadsPredictions(t *testing.T) {
	dir := newFolder(t)
	pred := filepath.Join(dir, "pred")
	if err := os.Mkdir(pred, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(pred, "b.txt"), "2 0.5 0.5 0.4 0.4\n")
	writeFile(t, filepath.Join(pred, "a.txt"), "3 0.1 0.1 0.1 0.1\n")

	s := openSession(t, dir, Options{ReviewDir: "pred"})

	// a has its own label file which wins over the prediction
	if b, _ := s.Store().Box(0); b.LabelID() != 1 {
		t.Errorf("expected own label file to be preferred, got label %d", b.LabelID())
	}

	if err := s.Next(); err != nil {
		t.Fatal(err)
	}
	if s.LabelSource() != filepath.Join(pred, "b.txt") {
		t.Errorf("expected predictions as source, got %s", s.LabelSource())
	}
	if s.Store().OutputPath() != filepath.Join(dir, "b.txt") {
		t.Errorf("expected output to the image folder, got %s", s.Store().OutputPath())
	}
	if !s.IsLabelFileOfCurrent(filepath.Join(pred, "b.txt")) {
		t.Error("expected the prediction to belong to the current image")
	}

	// accepting the prediction writes it next to the image
	if err := s.Next(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(readFile(t, filepath.Join(dir, "b.txt")), "2 ") {
		t.Error("expected the reviewed prediction to be saved")
	}
}

func TestReviewModeLoadsPredictionsFromLabelsFolder(t *testing.T) {
	dir := newFolder(t)
	labels := filepath.Join(dir, "pred", PredictionLabelsDir)
	if err := os.MkdirAll(labels, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(labels, "b.txt"), "4 0.5 0.5 0.2 0.2\n")

	s := openSession(t, dir, Options{ReviewDir: "pred"})

	dirs := s.ReviewDirs()
	if len(dirs) != 2 || dirs[1] != labels {
		t.Errorf("expected the labels folder to be reviewed, got %v", dirs)
	}

	if err := s.Next(); err != nil {
		t.Fatal(err)
	}
	if s.LabelSource() != filepath.Join(labels, "b.txt") {
		t.Errorf("expected predictions as source, got %s", s.LabelSource())
	}
	if b, _ := s.Store().Box(0); b.LabelID() != 4 {
		t.Errorf("expected the predicted label, got %d", b.LabelID())
	}
	if !s.IsLabelFileOfCurrent(filepath.Join(labels, "b.txt")) {
		t.Error("expected the prediction to belong to the current image")
	}
	if s.Store().OutputPath() != filepath.Join(dir, "b.txt") {
		t.Errorf("expected output to the image folder, got %s", s.Store().OutputPath())
	}
}

func TestMoveCurrentToSplit(t *testing.T) {
	dir := newFolder(t)
	s := openSession(t, dir, Options{})

	if err := s.MoveCurrentToSplit("val"); err != nil {
		t.Fatalf("MoveCurrentToSplit failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "val", "a.png")); err != nil {
		t.Error("image not moved")
	}
	if _, err := os.Stat(filepath.Join(dir, "val", "a.txt")); err != nil {
		t.Error("label not moved")
	}
	if s.Len() != 2 || filepath.Base(s.Current()) != "b.png" {
		t.Errorf("expected b.png to be shown next, got %s (len %d)", s.Current(), s.Len())
	}
}

func TestTrashLastImage(t *testing.T) {
	dir := newFolder(t)
	s := openSession(t, dir, Options{TrashDir: "bin"})
	_ = s.Show(2)

	if err := s.TrashCurrent(); err != nil {
		t.Fatalf("TrashCurrent failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "bin", "c.png")); err != nil {
		t.Error("image not moved to trash")
	}
	if s.Index() != 1 {
		t.Errorf("expected to step back to index 1, got %d", s.Index())
	}
}

func TestApplyFilter(t *testing.T) {
	dir := newFolder(t)
	s := openSession(t, dir, Options{})
	_ = s.Show(2)

	f := &analysis.Filter{NumObjects: &analysis.Range[int]{Min: 0, Max: 0}}
	if err := s.ApplyFilter(f); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 2 || filepath.Base(s.Current()) != "c.png" {
		t.Errorf("expected b and c with c current, got %v current %s", s.Images(), s.Current())
	}

	if err := s.ApplyFilter(nil); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 3 || filepath.Base(s.Current()) != "c.png" {
		t.Errorf("expected all images with c current, got %v current %s", s.Images(), s.Current())
	}
}

func TestApplyFilterNoMatch(t *testing.T) {
	s := openSession(t, newFolder(t), Options{})

	if err := s.ApplyFilter(&analysis.Filter{NamePattern: "zebra"}); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 0 || s.Current() != "" {
		t.Errorf("expected no visible images")
	}
}

func TestReload(t *testing.T) {
	dir := newFolder(t)
	s := openSession(t, dir, Options{})

	writeFile(t, filepath.Join(dir, "a.txt"), "0 0.5 0.5 0.2 0.2\n0 0.2 0.2 0.1 0.1\n")
	if err := s.Reload(); err != nil {
		t.Fatal(err)
	}
	if s.Store().Len() != 2 {
		t.Errorf("expected 2 boxes after reload, got %d", s.Store().Len())
	}
}
