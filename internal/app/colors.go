package app

import (
	"image/color"
	"math"
)

var labelPalette = []color.NRGBA{
	rgb(0.894, 0.102, 0.110),
	rgb(0.216, 0.494, 0.722),
	rgb(0.302, 0.686, 0.290),
	rgb(0.596, 0.306, 0.639),
	rgb(1.000, 0.498, 0.000),
	rgb(0.651, 0.337, 0.157),
	rgb(0.969, 0.506, 0.749),
	rgb(0.400, 0.761, 0.647),
}

var unlabeledColor = color.NRGBA{A: 0xff}

func rgb(r, g, b float64) color.NRGBA {
	return color.NRGBA{
		R: uint8(math.Round(r * 255)),
		G: uint8(math.Round(g * 255)),
		B: uint8(math.Round(b * 255)),
		A: 0xff,
	}
}

// LabelColor returns the stroke color for a label id. Ids beyond the
// palette reuse it from the start.
func LabelColor(id int) color.NRGBA {
	if id < 0 {
		return unlabeledColor
	}
	return labelPalette[id%len(labelPalette)]
}

// withAlpha returns c with a new alpha value
func withAlpha(c color.NRGBA, a uint8) color.NRGBA {
	c.A = a
	return c
}
