package editor

import (
	"github.com/philipparndt/gobbox/pkg/annotation"
	"github.com/philipparndt/gobbox/pkg/geometry"
)

// MinBoxSize is the width and height a newly drawn box must exceed to be kept
const MinBoxSize = 1.0

// Mode is the current gesture of the editor
type Mode int

const (
	Idle Mode = iota
	DrawingNew
	DraggingWholeBox
	DraggingCorner
	DraggingEdge
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case DrawingNew:
		return "drawing"
	case DraggingWholeBox:
		return "moving"
	case DraggingCorner:
		return "resizing-corner"
	case DraggingEdge:
		return "resizing-edge"
	default:
		return "unknown"
	}
}

// Button is a pointer button
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonTertiary
)

// Editor translates pointer and key events in image space into edits of
// an annotation store. It only remembers the index of the box being
// edited for the duration of a gesture.
type Editor struct {
	store  *annotation.Store
	radius float64

	mode   Mode
	index  int
	part   annotation.Part
	anchor geometry.Point // fixed corner while drawing or resizing from a corner
	offset geometry.Point // cursor minus box center while moving

	hover    annotation.Hit
	hasHover bool
}

// New creates an editor operating on store
func New(store *annotation.Store) *Editor {
	return &Editor{
		store:  store,
		radius: annotation.DefaultCatchRadius,
		index:  -1,
	}
}

// SetCatchRadius sets the hit-test tolerance in image pixels
func (e *Editor) SetCatchRadius(r float64) {
	if r > 0 {
		e.radius = r
	}
}

func (e *Editor) CatchRadius() float64 {
	return e.radius
}

func (e *Editor) Mode() Mode {
	return e.mode
}

// Hover returns the box part under the pointer after the last move
func (e *Editor) Hover() (annotation.Hit, bool) {
	return e.hover, e.hasHover
}

// PointerDown starts a gesture. It reports whether the event was consumed;
// only the primary button is handled, the others are left to the view.
func (e *Editor) PointerDown(button Button, p geometry.Point) bool {
	if button != ButtonPrimary {
		return false
	}
	if e.mode != Idle {
		return true
	}

	hit, ok := e.store.HitTest(p, e.radius)
	if !ok {
		e.store.UnselectAll()
		box := annotation.NewBoundingBox(e.store.ImageSize(), p, p)
		e.index = e.store.Add(box)
		e.anchor = p
		e.mode = DrawingNew
		return true
	}

	e.index = hit.Index
	e.part = hit.Part
	box, _ := e.store.Box(hit.Index)

	switch {
	case hit.Part == annotation.CentralArea:
		e.store.UnselectAll()
		_ = e.store.Select(hit.Index)
		e.offset = p.Sub(box.Center())
		e.mode = DraggingWholeBox

	case hit.Part.IsCorner():
		e.anchor = oppositeCorner(box.Rect(), hit.Part)
		e.mode = DraggingCorner

	default:
		e.mode = DraggingEdge
	}
	return true
}

// PointerMove updates the hover state and advances the current gesture
func (e *Editor) PointerMove(p geometry.Point) {
	switch e.mode {
	case Idle:
		e.hover, e.hasHover = e.store.HitTest(p, e.radius)
		return

	case DrawingNew, DraggingCorner:
		_ = e.store.Update(e.index, func(b *annotation.BoundingBox) {
			b.SetCornerPoints(e.anchor, p)
		})

	case DraggingWholeBox:
		_ = e.store.Update(e.index, func(b *annotation.BoundingBox) {
			b.SetCenter(p.Sub(e.offset))
		})

	case DraggingEdge:
		_ = e.store.Update(e.index, func(b *annotation.BoundingBox) {
			switch e.part {
			case annotation.EdgeLeft:
				b.SetXMin(p.X)
			case annotation.EdgeRight:
				b.SetXMax(p.X)
			case annotation.EdgeTop:
				b.SetYMin(p.Y)
			case annotation.EdgeBottom:
				b.SetYMax(p.Y)
			}
		})
	}
}

// PointerUp ends the current gesture. A newly drawn box that is too
// small is discarded.
func (e *Editor) PointerUp(button Button, p geometry.Point) bool {
	if button != ButtonPrimary {
		return false
	}
	e.finish()
	e.hover, e.hasHover = e.store.HitTest(p, e.radius)
	return true
}

// Reset abandons any gesture in progress. Called when the image changes.
func (e *Editor) Reset() {
	e.finish()
	e.hasHover = false
}

func (e *Editor) finish() {
	if e.mode == DrawingNew {
		if box, ok := e.store.Box(e.index); ok && (box.Width() <= MinBoxSize || box.Height() <= MinBoxSize) {
			_ = e.store.Remove(e.index)
		}
	}
	e.mode = Idle
	e.index = -1
}

func oppositeCorner(r geometry.Rect, corner annotation.Part) geometry.Point {
	switch corner {
	case annotation.CornerUpperLeft:
		return r.BottomRight()
	case annotation.CornerUpperRight:
		return r.BottomLeft()
	case annotation.CornerLowerLeft:
		return r.TopRight()
	default:
		return r.TopLeft()
	}
}
