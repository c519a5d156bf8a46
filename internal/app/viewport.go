package app

import (
	"math"

	"github.com/philipparndt/gobbox/pkg/geometry"
)

const (
	minZoom = 0.1
	maxZoom = 50
)

// viewport maps between widget (screen) coordinates and image pixels.
// At zoom 1 the image is fitted into the widget and centered.
type viewport struct {
	widget geometry.Size
	image  geometry.Size
	zoom   float64
	pan    geometry.Point // screen offset added after centering
}

func newViewport() viewport {
	return viewport{zoom: 1}
}

// Scale returns screen pixels per image pixel
func (v viewport) Scale() float64 {
	if v.image.IsEmpty() || v.widget.IsEmpty() {
		return 1
	}
	fit := math.Min(v.widget.Width/v.image.Width, v.widget.Height/v.image.Height)
	return fit * v.zoom
}

func (v viewport) origin() geometry.Point {
	s := v.Scale()
	return geometry.Point{
		X: (v.widget.Width-v.image.Width*s)/2 + v.pan.X,
		Y: (v.widget.Height-v.image.Height*s)/2 + v.pan.Y,
	}
}

// ToImage converts a screen position into image pixels
func (v viewport) ToImage(p geometry.Point) geometry.Point {
	return p.Sub(v.origin()).Mul(1 / v.Scale())
}

// ToScreen converts image pixels into a screen position
func (v viewport) ToScreen(p geometry.Point) geometry.Point {
	return p.Mul(v.Scale()).Add(v.origin())
}

// ImageRect returns the screen rectangle covered by the image
func (v viewport) ImageRect() geometry.Rect {
	return geometry.Rect{Min: v.ToScreen(geometry.Point{}), Max: v.ToScreen(geometry.Point{X: v.image.Width, Y: v.image.Height})}
}

// ZoomAt multiplies the zoom by factor keeping the image point under
// the screen position at fixed
func (v *viewport) ZoomAt(at geometry.Point, factor float64) {
	anchor := v.ToImage(at)
	v.zoom = math.Max(minZoom, math.Min(maxZoom, v.zoom*factor))
	v.pan = v.pan.Add(at.Sub(v.ToScreen(anchor)))
}

// Pan moves the image by a screen delta
func (v *viewport) Pan(delta geometry.Point) {
	v.pan = v.pan.Add(delta)
}

// Reset fits the image into the widget again
func (v *viewport) Reset() {
	v.zoom = 1
	v.pan = geometry.Point{}
}

// panDrag follows the pointer while the view is dragged. Positions are
// absolute so repeated events for the same position do not move the view.
type panDrag struct {
	active bool
	last   geometry.Point
}

func (d *panDrag) Start(at geometry.Point) {
	d.active = true
	d.last = at
}

// Move pans v by the pointer movement since the last position
func (d *panDrag) Move(v *viewport, to geometry.Point) {
	if !d.active {
		return
	}
	v.Pan(to.Sub(d.last))
	d.last = to
}

func (d *panDrag) Stop() {
	d.active = false
}
