package annotation

// Part identifies the region of a bounding box under the cursor
type Part int

const (
	CentralArea Part = iota
	CornerUpperLeft
	CornerUpperRight
	CornerLowerLeft
	CornerLowerRight
	EdgeLeft
	EdgeRight
	EdgeTop
	EdgeBottom
)

func (p Part) String() string {
	switch p {
	case CentralArea:
		return "central"
	case CornerUpperLeft:
		return "upper-left"
	case CornerUpperRight:
		return "upper-right"
	case CornerLowerLeft:
		return "lower-left"
	case CornerLowerRight:
		return "lower-right"
	case EdgeLeft:
		return "left"
	case EdgeRight:
		return "right"
	case EdgeTop:
		return "top"
	case EdgeBottom:
		return "bottom"
	default:
		return "unknown"
	}
}

// IsCorner reports whether p is one of the four corners
func (p Part) IsCorner() bool {
	return p >= CornerUpperLeft && p <= CornerLowerRight
}

// IsEdge reports whether p is one of the four edges
func (p Part) IsEdge() bool {
	return p >= EdgeLeft && p <= EdgeBottom
}
