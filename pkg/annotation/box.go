package annotation

import (
	"math"

	"github.com/philipparndt/gobbox/pkg/geometry"
	"github.com/philipparndt/gobbox/pkg/yolo"
)

// NoLabel marks a box whose label has not been assigned yet
const NoLabel = -1

// DefaultCatchRadius is the hit-test tolerance in image pixels
const DefaultCatchRadius = 20.0

// BoundingBox is a single labeled rectangle on an image. The rectangle is
// always clamped to the image bounds.
type BoundingBox struct {
	rect      geometry.Rect
	labelID   int
	selected  bool
	imageSize geometry.Size
}

// NewBoundingBox creates an unlabeled box spanning two points
func NewBoundingBox(imageSize geometry.Size, p1, p2 geometry.Point) BoundingBox {
	b := BoundingBox{labelID: NoLabel, imageSize: imageSize}
	b.SetCornerPoints(p1, p2)
	return b
}

// FromEntry converts a normalized label file entry into pixel space
func FromEntry(e yolo.Entry, imageSize geometry.Size) BoundingBox {
	r := geometry.DenormalizeRect(e.CX, e.CY, e.W, e.H, imageSize)
	b := BoundingBox{labelID: e.LabelID, imageSize: imageSize}
	b.SetRect(r)
	return b
}

// Entry converts the box into a normalized label file entry
func (b BoundingBox) Entry() yolo.Entry {
	cx, cy, w, h := b.rect.Normalize(b.imageSize)
	return yolo.Entry{LabelID: b.labelID, CX: cx, CY: cy, W: w, H: h}
}

// NormalizedString returns the box as a label file line
func (b BoundingBox) NormalizedString() string {
	return yolo.FormatEntry(b.Entry())
}

func (b BoundingBox) Rect() geometry.Rect { return b.rect }
func (b BoundingBox) LabelID() int { return b.labelID }
func (b BoundingBox) Selected() bool { return b.selected }
func (b BoundingBox) ImageSize() geometry.Size { return b.imageSize }
func (b BoundingBox) Center() geometry.Point { return b.rect.Center() }
func (b BoundingBox) Width() float64 { return b.rect.Width() }
func (b BoundingBox) Height() float64 { return b.rect.Height() }
func (b BoundingBox) XMin() float64 { return b.rect.Min.X }
func (b BoundingBox) XMax() float64 { return b.rect.Max.X }
func (b BoundingBox) YMin() float64 { return b.rect.Min.Y }
func (b BoundingBox) YMax() float64 { return b.rect.Max.Y }
func (b BoundingBox) TopLeft() geometry.Point { return b.rect.TopLeft() }
func (b BoundingBox) BottomRight() geometry.Point { return b.rect.BottomRight() }

// SetLabelID assigns the class label
func (b *BoundingBox) SetLabelID(id int) {
	b.labelID = id
}

// SetRect replaces the rectangle, clamped to the image
func (b *BoundingBox) SetRect(r geometry.Rect) {
	b.rect = r.Intersect(b.imageSize.Bounds())
}

// SetCornerPoints spans the box between two arbitrary points. Every other
// geometry setter goes through here.
func (b *BoundingBox) SetCornerPoints(p1, p2 geometry.Point) {
	b.SetRect(geometry.RectFromCorners(p1, p2))
}

// SetCenter moves the box keeping its width and height
func (b *BoundingBox) SetCenter(c geometry.Point) {
	b.SetRect(geometry.RectFromCenter(c, b.rect.Width(), b.rect.Height()))
}

// SetXMin moves the left edge. Moving it past the right edge swaps them.
func (b *BoundingBox) SetXMin(v float64) {
	tl, br := b.TopLeft(), b.BottomRight()
	tl.X = v
	b.SetCornerPoints(tl, br)
}

func (b *BoundingBox) SetXMax(v float64) {
	tl, br := b.TopLeft(), b.BottomRight()
	br.X = v
	b.SetCornerPoints(tl, br)
}

func (b *BoundingBox) SetYMin(v float64) {
	tl, br := b.TopLeft(), b.BottomRight()
	tl.Y = v
	b.SetCornerPoints(tl, br)
}

func (b *BoundingBox) SetYMax(v float64) {
	tl, br := b.TopLeft(), b.BottomRight()
	br.Y = v
	b.SetCornerPoints(tl, br)
}

// Part returns the region of the box under cursor, if any. Candidates are
// checked in order (inside, corners, edges) and a later candidate only
// wins with a strictly smaller distance, so the inside of the box always
// reports CentralArea.
func (b BoundingBox) Part(cursor geometry.Point, radius float64) (Part, bool) {
	r := b.rect
	best := math.Inf(1)
	found := false
	var part Part

	if r.Contains(cursor) {
		part, best, found = CentralArea, 0, true
	}

	corners := []struct {
		part Part
		at   geometry.Point
	}{
		{CornerUpperLeft, r.TopLeft()},
		{CornerUpperRight, r.TopRight()},
		{CornerLowerLeft, r.BottomLeft()},
		{CornerLowerRight, r.BottomRight()},
	}
	for _, c := range corners {
		d := cursor.Distance(c.at)
		if d < radius && d < best {
			part, best, found = c.part, d, true
		}
	}

	half := radius / 2
	inX := cursor.X >= r.Min.X && cursor.X <= r.Max.X
	inY := cursor.Y >= r.Min.Y && cursor.Y <= r.Max.Y

	edges := []struct {
		part   Part
		offset float64
		inSpan bool
		mid    geometry.Point
	}{
		{EdgeLeft, r.Min.X - cursor.X, inY, r.TopLeft().Midpoint(r.BottomLeft())},
		{EdgeRight, r.Max.X - cursor.X, inY, r.TopRight().Midpoint(r.BottomRight())},
		{EdgeTop, r.Min.Y - cursor.Y, inX, r.TopLeft().Midpoint(r.TopRight())},
		{EdgeBottom, r.Max.Y - cursor.Y, inX, r.BottomLeft().Midpoint(r.BottomRight())},
	}
	for _, e := range edges {
		if math.Abs(e.offset) >= half || !e.inSpan {
			continue
		}
		d := cursor.Distance(e.mid)
		if d < best {
			part, best, found = e.part, d, true
		}
	}

	return part, found
}
