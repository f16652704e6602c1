//go:build gocv

package imaging

import (
	"gocv.io/x/gocv"
)

// CannyBackend names the edge detector compiled into this binary.
const CannyBackend = "opencv"

// Canny runs OpenCV's Canny detector (3x3 Sobel aperture, L1 gradient) with
// the given hysteresis thresholds. Build with -tags gocv to select it.
//
// Falls back to the native detector if the raster cannot be wrapped in a Mat.
func Canny(r *Raster, low, high int) *Raster {
	src, err := gocv.NewMatFromBytes(r.Height, r.Width, gocv.MatTypeCV8U, r.Pix)
	if err != nil {
		return cannyNative(r, low, high)
	}
	defer src.Close()

	edges := gocv.NewMat()
	defer edges.Close()

	gocv.Canny(src, &edges, float32(low), float32(high))

	out := NewRaster(r.Width, r.Height)
	copy(out.Pix, edges.ToBytes())
	return out
}
