package app

import (
	"testing"

	"github.com/philipparndt/gobbox/pkg/geometry"
)

func testViewport() viewport {
	v := newViewport()
	v.widget = geometry.NewSize(800, 600)
	v.image = geometry.NewSize(400, 200)
	return v
}

func TestViewportFitsAndCenters(t *testing.T) {
	v := testViewport()

	if v.Scale() != 2 {
		t.Fatalf("expected scale 2, got %v", v.Scale())
	}
	r := v.ImageRect()
	if r.Min != geometry.NewPoint(0, 100) || r.Max != geometry.NewPoint(800, 500) {
		t.Errorf("unexpected image rect %v", r)
	}
}

func TestViewportRoundTrip(t *testing.T) {
	v := testViewport()
	v.Pan(geometry.NewPoint(13, -7))
	v.ZoomAt(geometry.NewPoint(300, 300), 1.5)

	p := geometry.NewPoint(123.5, 77.25)
	back := v.ToImage(v.ToScreen(p))
	if back.Distance(p) > 1e-9 {
		t.Errorf("round trip failed: expected %v, got %v", p, back)
	}
}

func TestViewportZoomKeepsAnchor(t *testing.T) {
	v := testViewport()
	at := geometry.NewPoint(200, 250)
	before := v.ToImage(at)

	v.ZoomAt(at, 3)

	if after := v.ToImage(at); after.Distance(before) > 1e-9 {
		t.Errorf("expected %v under the cursor, got %v", before, after)
	}
	if v.Scale() != 6 {
		t.Errorf("expected scale 6, got %v", v.Scale())
	}
}

func TestViewportZoomLimits(t *testing.T) {
	v := testViewport()
	v.ZoomAt(geometry.NewPoint(0, 0), 1e6)

	if v.zoom != maxZoom {
		t.Errorf("expected zoom clamped to %v, got %v", maxZoom, v.zoom)
	}

	v.Reset()
	if v.zoom != 1 || v.pan != (geometry.Point{}) {
		t.Errorf("expected reset view, got zoom %v pan %v", v.zoom, v.pan)
	}
}

func TestPanDragFollowsPointer(t *testing.T) {
	v := testViewport()
	var d panDrag

	d.Move(&v, geometry.NewPoint(50, 50))
	if v.pan != (geometry.Point{}) {
		t.Fatalf("expected no pan before start, got %v", v.pan)
	}

	d.Start(geometry.NewPoint(10, 20))
	d.Move(&v, geometry.NewPoint(15, 18))
	d.Move(&v, geometry.NewPoint(15, 18))
	d.Move(&v, geometry.NewPoint(30, 40))
	if v.pan != geometry.NewPoint(20, 20) {
		t.Errorf("expected pan 20,20, got %v", v.pan)
	}

	d.Stop()
	d.Move(&v, geometry.NewPoint(100, 100))
	if v.pan != geometry.NewPoint(20, 20) {
		t.Errorf("expected pan unchanged after stop, got %v", v.pan)
	}
}
