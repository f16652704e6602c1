//go:build !gocv

package imaging

// CannyBackend names the edge detector compiled into this binary.
const CannyBackend = "native"

// Canny runs hysteresis edge detection with the given low and high gradient
// thresholds. See cannyNative for the algorithm.
func Canny(r *Raster, low, high int) *Raster {
	return cannyNative(r, low, high)
}
