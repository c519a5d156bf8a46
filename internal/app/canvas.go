package app

import (
	"image"
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/philipparndt/gobbox/internal/config"
	"github.com/philipparndt/gobbox/internal/session"
	"github.com/philipparndt/gobbox/pkg/annotation"
	"github.com/philipparndt/gobbox/pkg/editor"
	"github.com/philipparndt/gobbox/pkg/geometry"
	"github.com/philipparndt/gobbox/pkg/yolo"
)

const (
	zoomStep   = 1.1
	handleSize = 8
	labelSize  = 12
)

// AnnotationCanvas shows the current image with its bounding boxes and
// forwards pointer input to the editor of the session
type AnnotationCanvas struct {
	widget.BaseWidget

	session     *session.Session
	radius      float64
	radiusSpace string
	names       []string

	view    viewport
	picture image.Image
	// fyne only drags with the primary button, other buttons pan from
	// MouseMoved
	pan panDrag
}

var (
	_ desktop.Mouseable  = (*AnnotationCanvas)(nil)
	_ desktop.Hoverable  = (*AnnotationCanvas)(nil)
	_ desktop.Cursorable = (*AnnotationCanvas)(nil)
	_ fyne.Draggable     = (*AnnotationCanvas)(nil)
	_ fyne.Scrollable    = (*AnnotationCanvas)(nil)
)

// NewAnnotationCanvas creates the canvas for a session
func NewAnnotationCanvas(s *session.Session, cfg *config.Config) *AnnotationCanvas {
	c := &AnnotationCanvas{
		session:     s,
		radius:      cfg.CatchRadius,
		radiusSpace: cfg.CatchRadiusSpace,
		view:        newViewport(),
	}
	c.ExtendBaseWidget(c)
	return c
}

// SetImage replaces the displayed picture. size is the size of the
// full image, the picture may be a downscaled preview.
func (c *AnnotationCanvas) SetImage(picture image.Image, size geometry.Size) {
	c.picture = picture
	if c.view.image != size {
		c.view.image = size
		c.view.Reset()
	}
	c.Refresh()
}

// SetLabelNames sets the names drawn next to the boxes
func (c *AnnotationCanvas) SetLabelNames(names []string) {
	c.names = names
	c.Refresh()
}

// ResetView fits the image into the canvas
func (c *AnnotationCanvas) ResetView() {
	c.view.Reset()
	c.Refresh()
}

func toPoint(pos fyne.Position) geometry.Point {
	return geometry.NewPoint(float64(pos.X), float64(pos.Y))
}

func (c *AnnotationCanvas) toImage(pos fyne.Position) geometry.Point {
	return c.view.ToImage(toPoint(pos))
}

// syncRadius hands the catch radius to the editor in image pixels
func (c *AnnotationCanvas) syncRadius() {
	r := c.radius
	if c.radiusSpace == config.SpaceView {
		r /= c.view.Scale()
	}
	c.session.Editor().SetCatchRadius(r)
}

func (c *AnnotationCanvas) hasImage() bool {
	return c.session.Current() != "" && !c.view.image.IsEmpty()
}

func (c *AnnotationCanvas) MouseDown(ev *desktop.MouseEvent) {
	// keep keys away from the side panel widgets
	if fa := fyne.CurrentApp(); fa != nil {
		if cv := fa.Driver().CanvasForObject(c); cv != nil {
			cv.Unfocus()
		}
	}
	if !c.hasImage() {
		return
	}

	c.syncRadius()
	if !c.session.Editor().PointerDown(editorButton(ev.Button), c.toImage(ev.Position)) {
		c.pan.Start(toPoint(ev.Position))
	}
	c.Refresh()
}

func (c *AnnotationCanvas) MouseUp(ev *desktop.MouseEvent) {
	if c.pan.active {
		c.pan.Stop()
		return
	}
	if !c.hasImage() {
		return
	}
	c.session.Editor().PointerUp(editorButton(ev.Button), c.toImage(ev.Position))
	c.Refresh()
}

func (c *AnnotationCanvas) Dragged(ev *fyne.DragEvent) {
	if c.pan.active {
		c.pan.Move(&c.view, toPoint(ev.Position))
		c.Refresh()
		return
	}
	if !c.hasImage() {
		return
	}
	c.session.Editor().PointerMove(c.toImage(ev.Position))
}

func (c *AnnotationCanvas) DragEnd() {
	c.pan.Stop()
}

func (c *AnnotationCanvas) MouseIn(ev *desktop.MouseEvent) {
	c.MouseMoved(ev)
}

func (c *AnnotationCanvas) MouseMoved(ev *desktop.MouseEvent) {
	if c.pan.active {
		c.pan.Move(&c.view, toPoint(ev.Position))
		c.Refresh()
		return
	}
	if !c.hasImage() {
		return
	}
	c.syncRadius()
	c.session.Editor().PointerMove(c.toImage(ev.Position))
	c.Refresh()
}

func (c *AnnotationCanvas) MouseOut() {}

// Scrolled zooms around the pointer
func (c *AnnotationCanvas) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY == 0 {
		return
	}
	factor := zoomStep
	if ev.Scrolled.DY < 0 {
		factor = 1 / zoomStep
	}
	c.view.ZoomAt(toPoint(ev.Position), factor)
	c.Refresh()
}

func (c *AnnotationCanvas) Cursor() desktop.Cursor {
	if c.pan.active {
		return desktop.DefaultCursor
	}
	return desktopCursor(c.session.Editor().Cursor())
}

func (c *AnnotationCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(theme.Color(theme.ColorNameBackground))
	img := canvas.NewImageFromImage(nil)
	img.FillMode = canvas.ImageFillStretch
	img.ScaleMode = canvas.ImageScaleFastest

	r := &canvasRenderer{c: c, background: bg, image: img}
	r.Refresh()
	return r
}

type canvasRenderer struct {
	c          *AnnotationCanvas
	background *canvas.Rectangle
	image      *canvas.Image
	boxes      []fyne.CanvasObject
}

func (r *canvasRenderer) Layout(size fyne.Size) {
	r.c.view.widget = geometry.NewSize(float64(size.Width), float64(size.Height))
	r.background.Resize(size)
	r.update()
}

func (r *canvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(200, 200)
}

func (r *canvasRenderer) Refresh() {
	r.background.FillColor = theme.Color(theme.ColorNameBackground)
	r.update()
	canvas.Refresh(r.c)
}

func (r *canvasRenderer) Objects() []fyne.CanvasObject {
	objects := make([]fyne.CanvasObject, 0, len(r.boxes)+2)
	objects = append(objects, r.background, r.image)
	return append(objects, r.boxes...)
}

func (r *canvasRenderer) Destroy() {}

func (r *canvasRenderer) update() {
	c := r.c
	if !c.hasImage() || c.picture == nil {
		r.image.Hide()
		r.boxes = nil
		return
	}

	area := c.view.ImageRect()
	r.image.Image = c.picture
	r.image.Move(fyne.NewPos(float32(area.Min.X), float32(area.Min.Y)))
	r.image.Resize(fyne.NewSize(float32(area.Width()), float32(area.Height())))
	r.image.Show()
	r.image.Refresh()

	hover, hovering := c.session.Editor().Hover()
	store := c.session.Store()

	var boxes []fyne.CanvasObject
	for i, b := range store.Boxes() {
		hovered := hovering && hover.Index == i
		boxes = append(boxes, r.boxObjects(b, hovered)...)
	}
	r.boxes = boxes
}

func (r *canvasRenderer) boxObjects(b annotation.BoundingBox, hovered bool) []fyne.CanvasObject {
	view := r.c.view
	stroke := LabelColor(b.LabelID())
	screen := geometry.Rect{Min: view.ToScreen(b.Rect().Min), Max: view.ToScreen(b.Rect().Max)}

	rect := canvas.NewRectangle(color.Transparent)
	rect.StrokeColor = stroke
	rect.StrokeWidth = 2
	if hovered {
		rect.FillColor = withAlpha(stroke, 0x20)
	}
	if b.Selected() {
		rect.StrokeWidth = 3
		rect.FillColor = withAlpha(stroke, 0x40)
	}
	rect.Move(fyne.NewPos(float32(screen.Min.X), float32(screen.Min.Y)))
	rect.Resize(fyne.NewSize(float32(screen.Width()), float32(screen.Height())))

	label := canvas.NewText(yolo.LabelName(r.c.names, b.LabelID()), stroke)
	label.TextSize = labelSize
	label.TextStyle = fyne.TextStyle{Bold: b.Selected()}
	labelHeight := label.MinSize().Height
	label.Move(fyne.NewPos(float32(screen.Min.X), float32(math.Max(0, screen.Min.Y-float64(labelHeight)))))

	objects := []fyne.CanvasObject{rect, label}
	if b.Selected() {
		for _, p := range []geometry.Point{screen.TopLeft(), screen.TopRight(), screen.BottomLeft(), screen.BottomRight()} {
			handle := canvas.NewRectangle(stroke)
			handle.Resize(fyne.NewSquareSize(handleSize))
			handle.Move(fyne.NewPos(float32(p.X)-handleSize/2, float32(p.Y)-handleSize/2))
			objects = append(objects, handle)
		}
	}
	return objects
}

// hoverPart is shown in the status line
func hoverPart(e *editor.Editor) string {
	hit, ok := e.Hover()
	if !ok {
		return ""
	}
	return hit.Part.String()
}
