package editor

import "github.com/philipparndt/gobbox/pkg/annotation"

// Key is a keyboard key understood by the editor
type Key int

const (
	KeyUnknown Key = iota
	KeyDelete
	KeyBackspace
	KeyBracketLeft
	KeyBracketRight
	KeyDigit1
	KeyDigit2
	KeyDigit3
	KeyDigit4
	KeyDigit5
	KeyDigit6
	KeyDigit7
	KeyDigit8
	KeyDigit9
)

// KeyPress applies a key to the store and reports whether it was handled.
// Digits 1-9 activate labels 0-8.
func (e *Editor) KeyPress(key Key) bool {
	switch {
	case key == KeyDelete || key == KeyBackspace:
		if e.mode != Idle {
			return false
		}
		e.store.RemoveSelected()
		return true

	case key >= KeyDigit1 && key <= KeyDigit9:
		e.store.ActivateLabel(int(key - KeyDigit1))
		return true

	case key == KeyBracketLeft:
		e.store.SelectPrevious()
		return true

	case key == KeyBracketRight:
		e.store.SelectNext()
		return true
	}
	return false
}

// Cursor is the pointer shape the view should show
type Cursor int

const (
	CursorCrosshair Cursor = iota
	CursorPointer
	CursorMove
	CursorResizeHorizontal
	CursorResizeVertical
	CursorResizeDiagonalMain // upper-left to lower-right
	CursorResizeDiagonalAnti // upper-right to lower-left
)

func (c Cursor) String() string {
	switch c {
	case CursorCrosshair:
		return "crosshair"
	case CursorPointer:
		return "pointer"
	case CursorMove:
		return "move"
	case CursorResizeHorizontal:
		return "resize-horizontal"
	case CursorResizeVertical:
		return "resize-vertical"
	case CursorResizeDiagonalMain:
		return "resize-diagonal-main"
	case CursorResizeDiagonalAnti:
		return "resize-diagonal-anti"
	default:
		return "unknown"
	}
}

// Cursor returns the pointer shape for the current gesture or hovered part
func (e *Editor) Cursor() Cursor {
	switch e.mode {
	case DrawingNew:
		return CursorCrosshair
	case DraggingWholeBox:
		return CursorMove
	case DraggingCorner, DraggingEdge:
		return CursorForPart(e.part)
	}
	if !e.hasHover {
		return CursorCrosshair
	}
	return CursorForPart(e.hover.Part)
}

// CursorForPart maps a box part to the matching pointer shape
func CursorForPart(p annotation.Part) Cursor {
	switch p {
	case annotation.CentralArea:
		return CursorPointer
	case annotation.EdgeLeft, annotation.EdgeRight:
		return CursorResizeHorizontal
	case annotation.EdgeTop, annotation.EdgeBottom:
		return CursorResizeVertical
	case annotation.CornerUpperLeft, annotation.CornerLowerRight:
		return CursorResizeDiagonalMain
	case annotation.CornerUpperRight, annotation.CornerLowerLeft:
		return CursorResizeDiagonalAnti
	default:
		return CursorCrosshair
	}
}
