package geometry

import (
	"fmt"
	"math"
)

// Rect is an axis-aligned rectangle with Min as the upper-left corner
// and Max as the lower-right corner
type Rect struct {
	Min Point
	Max Point
}

// RectFromCorners returns the axis-aligned bounding rectangle of two points.
// The points may be given in any order.
func RectFromCorners(p1, p2 Point) Rect {
	return Rect{Min: p1.Min(p2), Max: p1.Max(p2)}
}

// RectFromCenter creates a rectangle with the given center and dimensions
func RectFromCenter(center Point, width, height float64) Rect {
	half := Point{X: width / 2, Y: height / 2}
	return RectFromCorners(center.Sub(half), center.Add(half))
}

// Width returns the horizontal extent
func (r Rect) Width() float64 {
	return r.Max.X - r.Min.X
}

// Height returns the vertical extent
func (r Rect) Height() float64 {
	return r.Max.Y - r.Min.Y
}

// Center returns the center of the rectangle
func (r Rect) Center() Point {
	return r.Min.Midpoint(r.Max)
}

// IsEmpty reports whether the rectangle has no area
func (r Rect) IsEmpty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

func (r Rect) TopLeft() Point { return r.Min }
func (r Rect) TopRight() Point { return Point{X: r.Max.X, Y: r.Min.Y} }
func (r Rect) BottomLeft() Point { return Point{X: r.Min.X, Y: r.Max.Y} }
func (r Rect) BottomRight() Point { return r.Max }

// Contains reports whether p lies inside the rectangle, borders included
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Translate returns the rectangle moved by delta
func (r Rect) Translate(delta Point) Rect {
	return Rect{Min: r.Min.Add(delta), Max: r.Max.Add(delta)}
}

// Intersect clamps r into bounds. Overlapping rectangles yield their
// intersection; a disjoint r collapses onto the nearest border of bounds,
// so the result never has a negative width or height.
func (r Rect) Intersect(bounds Rect) Rect {
	return Rect{
		Min: clampPoint(r.Min, bounds),
		Max: clampPoint(r.Max, bounds),
	}
}

// Normalize converts the rectangle into YOLO fractions of the image size:
// center x, center y, width, height
func (r Rect) Normalize(size Size) (cx, cy, w, h float64) {
	c := r.Center()
	return c.X / size.Width, c.Y / size.Height, r.Width() / size.Width, r.Height() / size.Height
}

// DenormalizeRect is the inverse of Normalize
func DenormalizeRect(cx, cy, w, h float64, size Size) Rect {
	return RectFromCenter(
		Point{X: cx * size.Width, Y: cy * size.Height},
		w*size.Width,
		h*size.Height,
	)
}

func (r Rect) String() string {
	return fmt.Sprintf("[%s - %s]", r.Min, r.Max)
}

func clampPoint(p Point, bounds Rect) Point {
	return Point{
		X: clamp(p.X, bounds.Min.X, bounds.Max.X),
		Y: clamp(p.Y, bounds.Min.Y, bounds.Max.Y),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
