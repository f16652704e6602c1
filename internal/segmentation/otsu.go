package segmentation

import (
	"math"

	"github.com/anthonynsimon/bild/histogram"

	"github.com/ironsheep/xray-edge-tools/internal/imaging"
)

// Histogram returns the 256-bin intensity histogram of r.
func Histogram(r *imaging.Raster) [256]int {
	var bins [256]int
	if len(r.Pix) == 0 {
		return bins
	}
	// Gray converts to RGBA with R=G=B, so the red histogram is exact.
	h := histogram.NewRGBAHistogram(r.Gray())
	copy(bins[:], h.R.Bins)
	return bins
}

// OtsuThreshold returns the threshold t that maximizes the between-class
// variance of the split {v <= t} / {v > t}. A raster with a single intensity
// has no valid split and yields 0.
func OtsuThreshold(r *imaging.Raster) uint8 {
	bins := Histogram(r)
	total := float64(len(r.Pix))
	if total == 0 {
		return 0
	}

	var mu float64
	for i, c := range bins {
		mu += float64(i) * float64(c)
	}
	mu /= total

	const eps = 1.19209290e-07 // float32 epsilon

	var (
		q1, sum1   float64
		best       float64
		bestThresh int
	)
	for i, c := range bins {
		p := float64(c) / total
		q1 += p
		sum1 += float64(i) * p
		q2 := 1 - q1

		if math.Min(q1, q2) < eps || math.Max(q1, q2) > 1-eps {
			continue
		}

		mu1 := sum1 / q1
		mu2 := (mu - sum1) / q2
		sigma := q1 * q2 * (mu1 - mu2) * (mu1 - mu2)
		if sigma > best {
			best = sigma
			bestThresh = i
		}
	}
	return uint8(bestThresh)
}

// Binarize returns 255 where r > t and 0 elsewhere.
func Binarize(r *imaging.Raster, t uint8) *imaging.Raster {
	out := imaging.NewRaster(r.Width, r.Height)
	for i, v := range r.Pix {
		if v > t {
			out.Pix[i] = 255
		}
	}
	return out
}
