package annotation

import (
	"math"
	"testing"

	"github.com/philipparndt/gobbox/pkg/geometry"
	"github.com/philipparndt/gobbox/pkg/yolo"
)

var testImage = geometry.NewSize(1000, 800)

func newBox(x1, y1, x2, y2 float64) BoundingBox {
	return NewBoundingBox(testImage, geometry.NewPoint(x1, y1), geometry.NewPoint(x2, y2))
}

func TestNewBoundingBoxIsUnlabeled(t *testing.T) {
	b := newBox(10, 10, 20, 20)

	if b.LabelID() != NoLabel {
		t.Errorf("expected NoLabel, got %d", b.LabelID())
	}
}

func TestSetCornerPointsOrdersAndClamps(t *testing.T) {
	b := newBox(0, 0, 1, 1)
	b.SetCornerPoints(geometry.NewPoint(1200, 500), geometry.NewPoint(900, -50))

	expected := geometry.RectFromCorners(geometry.NewPoint(900, 0), geometry.NewPoint(1000, 500))
	if b.Rect() != expected {
		t.Errorf("expected %v, got %v", expected, b.Rect())
	}
}

func TestSetCenterKeepsSize(t *testing.T) {
	b := newBox(100, 100, 200, 150)
	b.SetCenter(geometry.NewPoint(500, 400))

	if b.Width() != 100 || b.Height() != 50 {
		t.Errorf("size changed: %vx%v", b.Width(), b.Height())
	}
	if b.Center() != geometry.NewPoint(500, 400) {
		t.Errorf("expected center (500,400), got %v", b.Center())
	}
}

func TestSetCenterClampsAtBorder(t *testing.T) {
	b := newBox(100, 100, 200, 200)
	b.SetCenter(geometry.NewPoint(980, 150))

	if b.XMax() != 1000 {
		t.Errorf("expected right edge clamped to 1000, got %v", b.XMax())
	}
	if b.XMin() != 930 {
		t.Errorf("expected left edge 930, got %v", b.XMin())
	}
}

func TestEdgeSettersFlip(t *testing.T) {
	b := newBox(100, 100, 200, 200)
	b.SetXMin(250)

	if b.XMin() != 200 || b.XMax() != 250 {
		t.Errorf("expected x range [200,250], got [%v,%v]", b.XMin(), b.XMax())
	}

	b.SetYMax(50)
	if b.YMin() != 50 || b.YMax() != 100 {
		t.Errorf("expected y range [50,100], got [%v,%v]", b.YMin(), b.YMax())
	}
}

func TestEdgeSetters(t *testing.T) {
	b := newBox(100, 100, 200, 200)
	b.SetXMax(300)
	b.SetYMin(20)

	expected := geometry.RectFromCorners(geometry.NewPoint(100, 20), geometry.NewPoint(300, 200))
	if b.Rect() != expected {
		t.Errorf("expected %v, got %v", expected, b.Rect())
	}
}

func TestPart(t *testing.T) {
	b := newBox(100, 100, 200, 200)

	tests := []struct {
		name   string
		cursor geometry.Point
		part   Part
		hit    bool
	}{
		{"inside", geometry.NewPoint(150, 150), CentralArea, true},
		{"inside near corner", geometry.NewPoint(102, 102), CentralArea, true},
		{"on border", geometry.NewPoint(100, 150), CentralArea, true},
		{"upper left", geometry.NewPoint(95, 95), CornerUpperLeft, true},
		{"upper right", geometry.NewPoint(205, 95), CornerUpperRight, true},
		{"lower left", geometry.NewPoint(95, 205), CornerLowerLeft, true},
		{"lower right", geometry.NewPoint(210, 210), CornerLowerRight, true},
		{"left edge", geometry.NewPoint(95, 150), EdgeLeft, true},
		{"right edge", geometry.NewPoint(205, 150), EdgeRight, true},
		{"top edge", geometry.NewPoint(150, 95), EdgeTop, true},
		{"bottom edge", geometry.NewPoint(150, 205), EdgeBottom, true},
		{"too far from edge", geometry.NewPoint(150, 215), 0, false},
		{"far away", geometry.NewPoint(500, 500), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			part, ok := b.Part(tt.cursor, DefaultCatchRadius)
			if ok != tt.hit {
				t.Fatalf("expected hit=%v, got %v", tt.hit, ok)
			}
			if ok && part != tt.part {
				t.Errorf("expected %v, got %v", tt.part, part)
			}
		})
	}
}

func TestPartCornerBeatsEdgeNearCorner(t *testing.T) {
	b := newBox(100, 100, 200, 200)

	// 5px left of the left edge, 3px below the top: within the corner
	// radius and the edge band, the corner is closer
	part, ok := b.Part(geometry.NewPoint(95, 103), DefaultCatchRadius)
	if !ok || part != CornerUpperLeft {
		t.Errorf("expected upper-left corner, got %v (hit=%v)", part, ok)
	}
}

func TestNormalizedString(t *testing.T) {
	b := newBox(100, 200, 300, 600)
	b.SetLabelID(2)

	if got := b.NormalizedString(); got != "2 0.2 0.5 0.2 0.5" {
		t.Errorf("unexpected line %q", got)
	}
}

func TestFromEntryRoundTrip(t *testing.T) {
	e := yolo.Entry{LabelID: 1, CX: 0.5, CY: 0.25, W: 0.2, H: 0.125}
	b := FromEntry(e, testImage)

	if b.XMin() != 400 || b.XMax() != 600 || b.YMin() != 150 || b.YMax() != 250 {
		t.Fatalf("unexpected rect %v", b.Rect())
	}

	back := b.Entry()
	if back.LabelID != 1 || math.Abs(back.CX-0.5) > 1e-9 || math.Abs(back.H-0.125) > 1e-9 {
		t.Errorf("round trip failed: %v", back)
	}
}

func TestFromEntryClamps(t *testing.T) {
	b := FromEntry(yolo.Entry{CX: 1, CY: 1, W: 0.25, H: 0.25}, testImage)

	if b.XMax() != 1000 || b.YMax() != 800 || b.XMin() != 875 || b.YMin() != 700 {
		t.Errorf("expected box clamped to the lower right, got %v", b.Rect())
	}
}
