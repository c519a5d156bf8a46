package app

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/philipparndt/gobbox/pkg/editor"
)

var editorKeys = map[fyne.KeyName]editor.Key{
	fyne.KeyDelete:       editor.KeyDelete,
	fyne.KeyBackspace:    editor.KeyBackspace,
	fyne.KeyLeftBracket:  editor.KeyBracketLeft,
	fyne.KeyRightBracket: editor.KeyBracketRight,
	fyne.Key1:            editor.KeyDigit1,
	fyne.Key2:            editor.KeyDigit2,
	fyne.Key3:            editor.KeyDigit3,
	fyne.Key4:            editor.KeyDigit4,
	fyne.Key5:            editor.KeyDigit5,
	fyne.Key6:            editor.KeyDigit6,
	fyne.Key7:            editor.KeyDigit7,
	fyne.Key8:            editor.KeyDigit8,
	fyne.Key9:            editor.KeyDigit9,
}

// editorKey translates a fyne key into the editor's key set
func editorKey(name fyne.KeyName) editor.Key {
	if key, ok := editorKeys[name]; ok {
		return key
	}
	return editor.KeyUnknown
}

func editorButton(b desktop.MouseButton) editor.Button {
	switch b {
	case desktop.MouseButtonSecondary:
		return editor.ButtonSecondary
	case desktop.MouseButtonTertiary:
		return editor.ButtonTertiary
	default:
		return editor.ButtonPrimary
	}
}

// desktopCursor maps editor cursors onto the standard cursors fyne offers.
// There are no move or diagonal resize cursors.
func desktopCursor(c editor.Cursor) desktop.Cursor {
	switch c {
	case editor.CursorPointer, editor.CursorMove:
		return desktop.PointerCursor
	case editor.CursorResizeHorizontal:
		return desktop.HResizeCursor
	case editor.CursorResizeVertical:
		return desktop.VResizeCursor
	case editor.CursorResizeDiagonalMain, editor.CursorResizeDiagonalAnti:
		return desktop.PointerCursor
	default:
		return desktop.CrosshairCursor
	}
}

// splitShortcutKeys are combined with the shortcut modifier to move the
// current image into the first, second and third split
var splitShortcutKeys = []fyne.KeyName{fyne.KeyReturn, fyne.KeyV, fyne.KeyT}

// bindKeys installs the window level key handling
func (a *App) bindKeys() {
	c := a.window.Canvas()

	c.SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyLeft, fyne.KeyPageUp:
			a.prev()
		case fyne.KeyRight, fyne.KeyPageDown:
			a.next()
		case fyne.KeyHome:
			a.canvas.ResetView()
		default:
			if key := editorKey(ev.Name); key != editor.KeyUnknown {
				a.session.Editor().KeyPress(key)
			}
		}
	})

	shortcut := func(key fyne.KeyName, fn func()) {
		c.AddShortcut(&desktop.CustomShortcut{KeyName: key, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) {
			fn()
		})
	}

	shortcut(fyne.KeyS, a.save)
	shortcut(fyne.KeyBackspace, a.trash)
	shortcut(fyne.KeyO, a.showFolderDialog)
	for i, key := range splitShortcutKeys {
		if i >= len(a.cfg.Splits) {
			break
		}
		split := a.cfg.Splits[i]
		shortcut(key, func() { a.moveToSplit(split) })
	}
}
