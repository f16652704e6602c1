package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/convolution"
)

// SmoothParams configures the adaptive Gaussian smoother.
type SmoothParams struct {
	// KernelSize is the side of the square Gaussian kernel. Must be odd.
	KernelSize int `yaml:"kernelSize" json:"kernel_size"`

	// LowSpread is the spread assigned to pixels close to the global mean.
	LowSpread float64 `yaml:"lowSpread" json:"low_spread"`

	// HighSpread is the spread assigned to every other pixel.
	HighSpread float64 `yaml:"highSpread" json:"high_spread"`

	// DiffFactor scales the mean into the "close to the mean" cut-off:
	// |v - mean| < DiffFactor*mean selects LowSpread.
	DiffFactor float64 `yaml:"diffFactor" json:"diff_factor"`
}

// DefaultSmoothParams returns a 5x5 kernel with spreads 1.0 and 1.6 and a
// cut-off of half the mean.
func DefaultSmoothParams() SmoothParams {
	return SmoothParams{
		KernelSize: 5,
		LowSpread:  1.0,
		HighSpread: 1.6,
		DiffFactor: 0.5,
	}
}

// SmoothingSigma computes the single blur strength used by Smooth.
//
// Each pixel is tagged with LowSpread or HighSpread depending on its distance
// from the global mean, and the tags are averaged over the whole raster. The
// per-pixel map is collapsed into one scalar, so the blur is uniform across
// the image even though the tagging is per pixel.
func SmoothingSigma(r *Raster, p SmoothParams) float64 {
	if len(r.Pix) == 0 {
		return p.LowSpread
	}
	mean := r.Mean()
	cut := mean * p.DiffFactor

	var sum float64
	for _, v := range r.Pix {
		if math.Abs(float64(v)-mean) < cut {
			sum += p.LowSpread
		} else {
			sum += p.HighSpread
		}
	}
	return sum / float64(len(r.Pix))
}

// Smooth denoises a raster with a Gaussian blur whose standard deviation is
// derived from the raster's contrast statistics (see SmoothingSigma).
//
// Borders are mirrored as in GaussianBlur. Output is rounded and clamped to 8 bits and
// has the same dimensions as the input.
func Smooth(r *Raster, p SmoothParams) *Raster {
	sigma := SmoothingSigma(r, p)
	return GaussianBlur(r, p.KernelSize, sigma)
}

// GaussianBlur convolves r with a size x size Gaussian kernel of the given
// standard deviation. Borders are mirrored without repeating the edge sample
// (gfedcb|abcdefgh).
func GaussianBlur(r *Raster, size int, sigma float64) *Raster {
	if len(r.Pix) == 0 {
		return r.Clone()
	}
	kernel := GaussianKernel(size, sigma)
	half := kernel.Width / 2

	// Convolve truncates to uint8; the bias turns that into rounding.
	blurred := convolution.Convolve(padReflect101(r, half), kernel, &convolution.Options{
		Bias:      0.5,
		Wrap:      false,
		KeepAlpha: false,
	})

	out := NewRaster(r.Width, r.Height)
	for y := 0; y < r.Height; y++ {
		row := blurred.Pix[(y+half)*blurred.Stride:]
		for x := 0; x < r.Width; x++ {
			out.Pix[y*r.Width+x] = row[(x+half)*4]
		}
	}
	return out
}

// padReflect101 returns r grown by pad samples on every side, filled by
// mirroring around the edge sample.
func padReflect101(r *Raster, pad int) *image.Gray {
	w, h := r.Width+2*pad, r.Height+2*pad
	g := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		sy := reflect101(y-pad, r.Height)
		for x := 0; x < w; x++ {
			g.Pix[y*g.Stride+x] = r.Pix[sy*r.Width+reflect101(x-pad, r.Width)]
		}
	}
	return g
}

// reflect101 maps i into [0,n) by mirroring around 0 and n-1.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}

// GaussianKernel builds a normalized size x size Gaussian kernel as the outer
// product of two 1-D Gaussians. Even sizes are rounded up to the next odd
// size; a non-positive sigma falls back to 0.3*((size-1)*0.5-1)+0.8.
func GaussianKernel(size int, sigma float64) *convolution.Kernel {
	if size < 1 {
		size = 1
	}
	if size%2 == 0 {
		size++
	}
	if sigma <= 0 {
		sigma = 0.3*(float64(size-1)*0.5-1) + 0.8
	}

	half := size / 2
	weights := make([]float64, size)
	var total float64
	for i := range weights {
		d := float64(i - half)
		weights[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		total += weights[i]
	}
	for i := range weights {
		weights[i] /= total
	}

	k := convolution.NewKernel(size, size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			k.Matrix[y*size+x] = weights[y] * weights[x]
		}
	}
	return k
}
