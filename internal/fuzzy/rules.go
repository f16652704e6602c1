package fuzzy

import (
	"github.com/anthonynsimon/bild/parallel"

	"github.com/ironsheep/xray-edge-tools/internal/imaging"
)

// DefaultRatio is the membership ratio: a neighbour is "on" when it is
// brighter than DefaultRatio times the centre pixel.
const DefaultRatio = 0.8

// Neighbour bits, clockwise from the top-left.
const (
	dirNW uint8 = 1 << iota // I1
	dirN                    // I2
	dirNE                   // I3
	dirE                    // I4
	dirSE                   // I5
	dirS                    // I6
	dirSW                   // I7
	dirW                    // I8
)

// neighbourOffsets lists (dx, dy) for I1..I8 in bit order.
var neighbourOffsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1}, {1, 0},
	{1, 1}, {0, 1}, {-1, 1}, {-1, 0},
}

// edgePatterns holds every neighbourhood that marks its centre as an edge:
// a single lit neighbour in any direction, or one of four lit corner triples
// with nothing else lit.
var edgePatterns = func() [256]bool {
	var t [256]bool
	for bit := 0; bit < 8; bit++ {
		t[1<<bit] = true
	}
	t[dirNE|dirE|dirSE] = true
	t[dirSE|dirS|dirSW] = true
	t[dirNW|dirSW|dirW] = true
	t[dirNW|dirN|dirNE] = true
	return t
}()

// IndicatorMap flags pixels whose 3x3 neighbourhood matches an edge rule.
// Flags holds one value per pixel, row-major, each exactly 0 or 1.
type IndicatorMap struct {
	Width  int
	Height int
	Flags  []uint8
}

// Count returns the number of flagged pixels.
func (m *IndicatorMap) Count() int {
	c := 0
	for _, f := range m.Flags {
		c += int(f)
	}
	return c
}

// At returns the flag at (x, y).
func (m *IndicatorMap) At(x, y int) uint8 {
	return m.Flags[y*m.Width+x]
}

// Scaled maps flags {0,1} to samples {0,255}.
func (m *IndicatorMap) Scaled() *imaging.Raster {
	r := imaging.NewRaster(m.Width, m.Height)
	for i, f := range m.Flags {
		r.Pix[i] = f * 255
	}
	return r
}

// NeighbourCode returns the 8-bit neighbourhood code of (x, y): bit i is set
// when neighbour I(i+1) is brighter than ratio times the centre. Borders are
// edge-replicated.
func NeighbourCode(r *imaging.Raster, x, y int, ratio float64) uint8 {
	thresh := ratio * float64(r.Pix[y*r.Width+x])
	var code uint8
	for bit, off := range neighbourOffsets {
		if float64(r.At(x+off[0], y+off[1])) > thresh {
			code |= 1 << bit
		}
	}
	return code
}

// IsEdgePattern reports whether a neighbourhood code satisfies an edge rule.
func IsEdgePattern(code uint8) bool {
	return edgePatterns[code]
}

// Edges evaluates the fuzzy edge rules for every pixel of r.
//
// For a centre value C each neighbour is binarized as on when it is strictly
// greater than ratio*C. The centre is flagged when exactly one neighbour is
// on, or when exactly one of the triples {NE,E,SE}, {SE,S,SW}, {NW,SW,W},
// {NW,N,NE} is on and the remaining five neighbours are off.
//
// A uniform region never matches: either no neighbour or all of them are on.
func Edges(r *imaging.Raster, ratio float64) *IndicatorMap {
	m := &IndicatorMap{
		Width:  r.Width,
		Height: r.Height,
		Flags:  make([]uint8, r.Width*r.Height),
	}
	if len(r.Pix) == 0 {
		return m
	}

	parallel.Line(r.Height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < r.Width; x++ {
				if edgePatterns[NeighbourCode(r, x, y, ratio)] {
					m.Flags[y*r.Width+x] = 1
				}
			}
		}
	})
	return m
}
