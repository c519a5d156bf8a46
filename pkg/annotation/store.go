package annotation

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/philipparndt/gobbox/pkg/geometry"
	"github.com/philipparndt/gobbox/pkg/yolo"
)

// ErrIndexOutOfRange is returned for operations on a box index that does not exist
var ErrIndexOutOfRange = errors.New("box index out of range")

// Change describes what part of the store was modified
type Change int

const (
	ChangeBoxes     Change = iota // boxes added, removed or reshaped
	ChangeSelection               // selection moved
	ChangeLabel                   // active or preferred label changed
	ChangeLoaded                  // store was reset or loaded from disk
)

func (c Change) String() string {
	switch c {
	case ChangeBoxes:
		return "boxes"
	case ChangeSelection:
		return "selection"
	case ChangeLabel:
		return "label"
	case ChangeLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// ChangeListener is invoked after every mutation of the store
type ChangeListener func(Change)

// Hit is the result of a hit-test against the store
type Hit struct {
	Index int
	Part  Part
}

// Store holds the boxes of the image currently being edited. It is the
// only owner of the boxes; views read them back through Boxes or Box.
// A Store is not safe for concurrent use.
type Store struct {
	boxes     []BoundingBox
	selected  int // -1 when nothing is selected
	imageSize geometry.Size

	activeLabel    int
	preferredLabel int // NoLabel when unset

	outputPath string
	loaded     bool

	listeners []ChangeListener
}

// NewStore creates an empty store with label 0 as the active label
func NewStore() *Store {
	return &Store{
		selected:       -1,
		preferredLabel: NoLabel,
	}
}

// AddListener registers a listener for store changes
func (s *Store) AddListener(l ChangeListener) {
	s.listeners = append(s.listeners, l)
}

func (s *Store) notify(c Change) {
	for _, l := range s.listeners {
		l(c)
	}
}

// Reset prepares the store for a new image. Boxes, selection and the
// loaded flag are cleared; the active and preferred labels are kept.
func (s *Store) Reset(imageSize geometry.Size) {
	s.boxes = nil
	s.selected = -1
	s.imageSize = imageSize
	s.loaded = false
	s.notify(ChangeLoaded)
}

// LoadFromFile replaces the content of the store with the boxes in
// filename. A missing file is an empty annotation set. A corrupt file
// leaves the store empty and not loaded, so a later Save cannot
// overwrite it.
func (s *Store) LoadFromFile(filename string, imageSize geometry.Size) error {
	s.Reset(imageSize)

	entries, err := yolo.ReadFile(filename)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	for _, e := range entries {
		s.boxes = append(s.boxes, FromEntry(e, imageSize))
	}
	s.loaded = true

	if len(s.boxes) > 0 {
		idx := 0
		if s.preferredLabel != NoLabel {
			if i := s.indexOfLabel(s.preferredLabel, 0); i >= 0 {
				idx = i
			}
		}
		s.setSelected(idx)
	}

	s.notify(ChangeLoaded)
	return nil
}

// SetOutputPath sets the file Save writes to
func (s *Store) SetOutputPath(path string) {
	s.outputPath = path
}

func (s *Store) OutputPath() string {
	return s.outputPath
}

// Save writes all boxes to the output path. Nothing is written when the
// store was never loaded, or when it is empty and no file exists yet.
func (s *Store) Save() error {
	if !s.loaded || s.outputPath == "" {
		return nil
	}

	if len(s.boxes) == 0 {
		if _, err := os.Stat(s.outputPath); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
	}

	entries := make([]yolo.Entry, len(s.boxes))
	for i, b := range s.boxes {
		entries[i] = b.Entry()
	}

	if err := yolo.WriteFile(s.outputPath, entries); err != nil {
		return fmt.Errorf("failed to save annotations: %w", err)
	}
	return nil
}

// Add appends a box and returns its index. An unlabeled box receives
// the active label.
func (s *Store) Add(b BoundingBox) int {
	if b.labelID == NoLabel {
		b.labelID = s.activeLabel
	}
	b.selected = false
	s.boxes = append(s.boxes, b)
	s.notify(ChangeBoxes)
	return len(s.boxes) - 1
}

// Remove deletes the box at index
func (s *Store) Remove(index int) error {
	if !s.valid(index) {
		return fmt.Errorf("remove %d: %w", index, ErrIndexOutOfRange)
	}

	s.boxes = append(s.boxes[:index], s.boxes[index+1:]...)
	switch {
	case s.selected == index:
		s.selected = -1
	case s.selected > index:
		s.selected--
	}

	s.notify(ChangeBoxes)
	return nil
}

// RemoveLatest deletes the most recently added box
func (s *Store) RemoveLatest() error {
	return s.Remove(len(s.boxes) - 1)
}

// RemoveSelected deletes the selected box, reporting whether one was removed
func (s *Store) RemoveSelected() bool {
	if s.selected < 0 {
		return false
	}
	return s.Remove(s.selected) == nil
}

// Select makes the box at index the only selected box
func (s *Store) Select(index int) error {
	if !s.valid(index) {
		return fmt.Errorf("select %d: %w", index, ErrIndexOutOfRange)
	}
	s.setSelected(index)
	s.notify(ChangeSelection)
	return nil
}

// Unselect clears the selection if it is the box at index
func (s *Store) Unselect(index int) error {
	if !s.valid(index) {
		return fmt.Errorf("unselect %d: %w", index, ErrIndexOutOfRange)
	}
	if s.selected == index {
		s.setSelected(-1)
		s.notify(ChangeSelection)
	}
	return nil
}

// UnselectAll clears the selection
func (s *Store) UnselectAll() {
	if s.selected < 0 {
		return
	}
	s.setSelected(-1)
	s.notify(ChangeSelection)
}

// SelectNext moves the selection forward, wrapping around. With a
// preferred label set, boxes carrying it are visited first.
func (s *Store) SelectNext() {
	s.step(1)
}

// SelectPrevious moves the selection backward, wrapping around
func (s *Store) SelectPrevious() {
	s.step(-1)
}

func (s *Store) step(dir int) {
	n := len(s.boxes)
	if n == 0 {
		return
	}

	if s.selected < 0 {
		idx := 0
		if s.preferredLabel != NoLabel {
			if i := s.indexOfLabel(s.preferredLabel, 0); i >= 0 {
				idx = i
			}
		}
		s.setSelected(idx)
		s.notify(ChangeSelection)
		return
	}

	next := wrap(s.selected+dir, n)
	if s.preferredLabel != NoLabel {
		for i := 1; i <= n; i++ {
			candidate := wrap(s.selected+dir*i, n)
			if s.boxes[candidate].labelID == s.preferredLabel {
				next = candidate
				break
			}
		}
	}

	s.setSelected(next)
	s.notify(ChangeSelection)
}

// ActivateLabel sets the label used for new boxes and relabels the
// selected box
func (s *Store) ActivateLabel(id int) {
	s.activeLabel = id
	relabeled := false
	if s.selected >= 0 && s.boxes[s.selected].labelID != id {
		s.boxes[s.selected].labelID = id
		relabeled = true
	}
	s.notify(ChangeLabel)
	if relabeled {
		s.notify(ChangeBoxes)
	}
}

func (s *Store) ActiveLabel() int {
	return s.activeLabel
}

// SetPreferredLabel sets the label favored by SelectNext, SelectPrevious
// and the selection made after loading
func (s *Store) SetPreferredLabel(id int) {
	s.preferredLabel = id
	s.notify(ChangeLabel)
}

func (s *Store) ClearPreferredLabel() {
	s.SetPreferredLabel(NoLabel)
}

// PreferredLabel returns the preferred label, if any
func (s *Store) PreferredLabel() (int, bool) {
	return s.preferredLabel, s.preferredLabel != NoLabel
}

// HitTest returns the first box, in insertion order, with a part under cursor
func (s *Store) HitTest(cursor geometry.Point, radius float64) (Hit, bool) {
	for i, b := range s.boxes {
		if part, ok := b.Part(cursor, radius); ok {
			return Hit{Index: i, Part: part}, true
		}
	}
	return Hit{}, false
}

// Update applies fn to the box at index in place
func (s *Store) Update(index int, fn func(*BoundingBox)) error {
	if !s.valid(index) {
		return fmt.Errorf("update %d: %w", index, ErrIndexOutOfRange)
	}
	fn(&s.boxes[index])
	s.notify(ChangeBoxes)
	return nil
}

func (s *Store) Len() int {
	return len(s.boxes)
}

// Box returns a copy of the box at index
func (s *Store) Box(index int) (BoundingBox, bool) {
	if !s.valid(index) {
		return BoundingBox{}, false
	}
	return s.boxes[index], true
}

// Boxes returns a copy of all boxes in display order
func (s *Store) Boxes() []BoundingBox {
	out := make([]BoundingBox, len(s.boxes))
	copy(out, s.boxes)
	return out
}

// Selected returns the index of the selected box, if any
func (s *Store) Selected() (int, bool) {
	return s.selected, s.selected >= 0
}

func (s *Store) Loaded() bool {
	return s.loaded
}

func (s *Store) ImageSize() geometry.Size {
	return s.imageSize
}

func (s *Store) setSelected(index int) {
	if s.selected >= 0 && s.selected < len(s.boxes) {
		s.boxes[s.selected].selected = false
	}
	s.selected = index
	if index >= 0 {
		s.boxes[index].selected = true
	}
}

func (s *Store) indexOfLabel(label, from int) int {
	for i := from; i < len(s.boxes); i++ {
		if s.boxes[i].labelID == label {
			return i
		}
	}
	return -1
}

func (s *Store) valid(index int) bool {
	return index >= 0 && index < len(s.boxes)
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}
