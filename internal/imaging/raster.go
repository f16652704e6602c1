package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/stat"
)

// Raster is a single-channel 8-bit image stored row-major with the origin at
// the top-left corner.
//
// Pix holds Width*Height samples; the sample for (x, y) is Pix[y*Width+x].
// Every pipeline stage returns a fresh Raster of the same dimensions as its
// input and never mutates the input.
type Raster struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewRaster allocates a zero-filled raster of the given size.
func NewRaster(width, height int) *Raster {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Raster{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// NewFilledRaster allocates a raster with every sample set to v.
func NewFilledRaster(width, height int, v uint8) *Raster {
	r := NewRaster(width, height)
	for i := range r.Pix {
		r.Pix[i] = v
	}
	return r
}

// FromImage converts any image to a grayscale raster using ITU-R BT.601
// luminance weights (0.299*R + 0.587*G + 0.114*B).
func FromImage(img image.Image) *Raster {
	bounds := img.Bounds()
	r := NewRaster(bounds.Dx(), bounds.Dy())

	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < r.Height; y++ {
			off := g.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			src := g.Pix[off : off+r.Width]
			copy(r.Pix[y*r.Width:(y+1)*r.Width], src)
		}
		return r
	}

	// imaging.Grayscale keeps R=G=B, so the red channel is the luminance.
	gray := imaging.Grayscale(img)
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			r.Pix[y*r.Width+x] = gray.Pix[y*gray.Stride+x*4]
		}
	}
	return r
}

// Size reports the raster dimensions as an image.Point.
func (r *Raster) Size() image.Point {
	return image.Point{X: r.Width, Y: r.Height}
}

// SameSize reports whether two rasters share dimensions.
func (r *Raster) SameSize(o *Raster) bool {
	return r.Width == o.Width && r.Height == o.Height
}

// At returns the sample at (x, y). Coordinates outside the raster are
// clamped to the nearest edge sample (edge replication).
func (r *Raster) At(x, y int) uint8 {
	return r.Pix[clamp(y, 0, r.Height-1)*r.Width+clamp(x, 0, r.Width-1)]
}

// Set stores v at (x, y). Out-of-range coordinates are ignored.
func (r *Raster) Set(x, y int, v uint8) {
	if x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return
	}
	r.Pix[y*r.Width+x] = v
}

// Clone returns a deep copy of the raster.
func (r *Raster) Clone() *Raster {
	c := NewRaster(r.Width, r.Height)
	copy(c.Pix, r.Pix)
	return c
}

// Equal reports whether both rasters have identical dimensions and samples.
func (r *Raster) Equal(o *Raster) bool {
	if r == nil || o == nil {
		return r == o
	}
	if !r.SameSize(o) || len(r.Pix) != len(o.Pix) {
		return false
	}
	for i := range r.Pix {
		if r.Pix[i] != o.Pix[i] {
			return false
		}
	}
	return true
}

// Mean returns the mean sample value in [0,255]. An empty raster has mean 0.
func (r *Raster) Mean() float64 {
	if len(r.Pix) == 0 {
		return 0
	}
	return stat.Mean(r.Floats(), nil)
}

// Floats promotes the samples to float64 in raster order.
func (r *Raster) Floats() []float64 {
	f := make([]float64, len(r.Pix))
	for i, v := range r.Pix {
		f[i] = float64(v)
	}
	return f
}

// CountNonZero returns the number of samples that are not zero.
func (r *Raster) CountNonZero() int {
	n := 0
	for _, v := range r.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// Gray wraps the raster samples in an *image.Gray without copying.
func (r *Raster) Gray() *image.Gray {
	return &image.Gray{
		Pix:    r.Pix,
		Stride: r.Width,
		Rect:   image.Rect(0, 0, r.Width, r.Height),
	}
}

// String implements fmt.Stringer for log output.
func (r *Raster) String() string {
	return fmt.Sprintf("raster(%dx%d)", r.Width, r.Height)
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// clampUint8 rounds v and saturates it to the 8-bit range.
func clampUint8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
