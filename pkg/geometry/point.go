package geometry

import (
	"fmt"
	"math"
)

// Point represents a position in image pixel space
type Point struct {
	X, Y float64
}

// NewPoint creates a new point
func NewPoint(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of two points
func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the difference of two points
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

// Mul returns the point scaled by a scalar
func (p Point) Mul(scalar float64) Point {
	return Point{X: p.X * scalar, Y: p.Y * scalar}
}

// Length returns the distance of the point from the origin
func (p Point) Length() float64 {
	return math.Hypot(p.X, p.Y)
}

// Distance returns the euclidean distance between two points
func (p Point) Distance(other Point) float64 {
	return p.Sub(other).Length()
}

// Min returns the component-wise minimum of two points
func (p Point) Min(other Point) Point {
	return Point{X: math.Min(p.X, other.X), Y: math.Min(p.Y, other.Y)}
}

// Max returns the component-wise maximum of two points
func (p Point) Max(other Point) Point {
	return Point{X: math.Max(p.X, other.X), Y: math.Max(p.Y, other.Y)}
}

// Midpoint returns the point halfway between p and other
func (p Point) Midpoint(other Point) Point {
	return Point{X: (p.X + other.X) / 2, Y: (p.Y + other.Y) / 2}
}

// String returns a string representation of the point
func (p Point) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y)
}

// Size is the pixel dimensions of an image
type Size struct {
	Width, Height float64
}

// NewSize creates a new size
func NewSize(width, height float64) Size {
	return Size{Width: width, Height: height}
}

// IsEmpty reports whether either dimension is zero or negative
func (s Size) IsEmpty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Bounds returns the image rectangle [0,W]x[0,H]
func (s Size) Bounds() Rect {
	return Rect{Max: Point{X: s.Width, Y: s.Height}}
}

func (s Size) String() string {
	return fmt.Sprintf("%gx%g", s.Width, s.Height)
}
