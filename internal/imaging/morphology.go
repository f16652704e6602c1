package imaging

import (
	"fmt"
	"math"

	"github.com/anthonynsimon/bild/parallel"
)

// StructuringElement is the neighbourhood shape used by morphological
// operations. The anchor is always the centre cell.
type StructuringElement struct {
	Width  int
	Height int
	// Mask marks the cells that belong to the element, row-major.
	Mask []bool
}

// RectElement returns a size x size square element.
func RectElement(size int) StructuringElement {
	se := StructuringElement{Width: size, Height: size, Mask: make([]bool, size*size)}
	for i := range se.Mask {
		se.Mask[i] = true
	}
	return se
}

// EllipseElement returns the ellipse inscribed in a size x size square,
// matching OpenCV's MORPH_ELLIPSE layout (a 7x7 element has full middle
// rows, five cells at distance two and one cell at the tips).
func EllipseElement(size int) StructuringElement {
	se := StructuringElement{Width: size, Height: size, Mask: make([]bool, size*size)}
	r := size / 2
	c := size / 2
	if r == 0 {
		for i := range se.Mask {
			se.Mask[i] = true
		}
		return se
	}
	inv := 1.0 / float64(r*r)
	for i := 0; i < size; i++ {
		dy := i - r
		if absInt(dy) > r {
			continue
		}
		dx := int(math.Round(float64(c) * math.Sqrt(float64(r*r-dy*dy)*inv)))
		j1 := c - dx
		if j1 < 0 {
			j1 = 0
		}
		j2 := c + dx + 1
		if j2 > size {
			j2 = size
		}
		for j := j1; j < j2; j++ {
			se.Mask[i*size+j] = true
		}
	}
	return se
}

// String renders the element as rows of '#' and '.' for debugging.
func (se StructuringElement) String() string {
	s := ""
	for y := 0; y < se.Height; y++ {
		for x := 0; x < se.Width; x++ {
			if se.Mask[y*se.Width+x] {
				s += "#"
			} else {
				s += "."
			}
		}
		s += "\n"
	}
	return s
}

// Validate checks the element dimensions.
func (se StructuringElement) Validate() error {
	if se.Width <= 0 || se.Height <= 0 || se.Width%2 == 0 || se.Height%2 == 0 {
		return fmt.Errorf("structuring element must have odd positive dimensions, got %dx%d", se.Width, se.Height)
	}
	if len(se.Mask) != se.Width*se.Height {
		return fmt.Errorf("structuring element mask has %d cells, want %d", len(se.Mask), se.Width*se.Height)
	}
	return nil
}

// offsets lists the (dx, dy) displacements of the element's cells.
func (se StructuringElement) offsets() []pointOffset {
	var offs []pointOffset
	for y := 0; y < se.Height; y++ {
		for x := 0; x < se.Width; x++ {
			if se.Mask[y*se.Width+x] {
				offs = append(offs, pointOffset{dx: x - se.Width/2, dy: y - se.Height/2})
			}
		}
	}
	return offs
}

type pointOffset struct {
	dx, dy int
}

// Dilate replaces every sample with the maximum over the element,
// repeated iterations times. Element cells that fall outside the raster
// are skipped.
func Dilate(r *Raster, se StructuringElement, iterations int) *Raster {
	return morph(r, se, iterations, true)
}

// Erode replaces every sample with the minimum over the element, repeated
// iterations times. Element cells that fall outside the raster are skipped.
func Erode(r *Raster, se StructuringElement, iterations int) *Raster {
	return morph(r, se, iterations, false)
}

// Close applies a morphological closing: iterations dilations followed by
// the same number of erosions. Closing bridges gaps narrower than the
// element and is idempotent for a fixed element.
func Close(r *Raster, se StructuringElement, iterations int) *Raster {
	return Erode(Dilate(r, se, iterations), se, iterations)
}

func morph(r *Raster, se StructuringElement, iterations int, dilate bool) *Raster {
	cur := r.Clone()
	if iterations <= 0 || len(r.Pix) == 0 {
		return cur
	}
	offs := se.offsets()
	width, height := r.Width, r.Height

	for n := 0; n < iterations; n++ {
		src := cur
		dst := NewRaster(width, height)
		parallel.Line(height, func(start, end int) {
			for y := start; y < end; y++ {
				for x := 0; x < width; x++ {
					var v uint8
					if !dilate {
						v = 255
					}
					for _, o := range offs {
						px, py := x+o.dx, y+o.dy
						if px < 0 || py < 0 || px >= width || py >= height {
							continue
						}
						s := src.Pix[py*width+px]
						if dilate && s > v {
							v = s
						} else if !dilate && s < v {
							v = s
						}
					}
					dst.Pix[y*width+x] = v
				}
			}
		})
		cur = dst
	}
	return cur
}
