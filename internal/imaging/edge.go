package imaging

import (
	"math"
)

// Baseline thresholds used for the plain Canny output that is reported next
// to the fuzzy edge map.
const (
	BaselineLowThreshold  = 50
	BaselineHighThreshold = 150
)

// tan(22.5°) and tan(67.5°), used to quantize gradient directions.
const (
	tan22 = 0.41421356237309504880
	tan67 = 2.41421356237309504880
)

// cannyNative performs Canny edge detection on an already smoothed raster.
//
// Unlike a textbook Canny there is no built-in blur: callers smooth first.
//
// # Algorithm
//
//  1. Gradient computation: 3x3 Sobel operators with edge-replicated borders,
//     magnitude = |Gx| + |Gy| (L1 norm, in raw Sobel units)
//
//  2. Non-maximum suppression: the gradient direction is quantized into
//     horizontal, vertical and the two diagonals; a pixel survives when it
//     is a local maximum along that direction
//
//  3. Hysteresis thresholding:
//     - Pixels with magnitude above high are strong edges (always kept)
//     - Pixels with magnitude above low are weak edges, kept only if they
//     are 8-connected (directly or through other weak edges) to a strong edge
//     - Everything else is discarded
//
// The output is a {0,255} raster of the same size as the input.
func cannyNative(r *Raster, low, high int) *Raster {
	width, height := r.Width, r.Height
	out := NewRaster(width, height)
	if width == 0 || height == 0 {
		return out
	}

	gx, gy, mag := sobel(r)

	magAt := func(x, y int) int {
		if x < 0 || y < 0 || x >= width || y >= height {
			return 0
		}
		return mag[y*width+x]
	}

	const (
		none = iota
		weak
		strong
	)
	class := make([]uint8, width*height)
	var stack []int

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			m := mag[i]
			if m <= low {
				continue
			}

			ax := math.Abs(float64(gx[i]))
			ay := math.Abs(float64(gy[i]))

			var local bool
			switch {
			case ay < ax*tan22:
				local = m > magAt(x-1, y) && m >= magAt(x+1, y)
			case ay > ax*tan67:
				local = m > magAt(x, y-1) && m >= magAt(x, y+1)
			default:
				s := 1
				if (gx[i] < 0) != (gy[i] < 0) {
					s = -1
				}
				local = m > magAt(x-s, y-1) && m > magAt(x+s, y+1)
			}
			if !local {
				continue
			}

			if m > high {
				class[i] = strong
				stack = append(stack, i)
			} else {
				class[i] = weak
			}
		}
	}

	// Edge tracking: grow strong edges through 8-connected weak pixels.
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out.Pix[i] = 255

		x, y := i%width, i/width
		for ky := -1; ky <= 1; ky++ {
			for kx := -1; kx <= 1; kx++ {
				px, py := x+kx, y+ky
				if px < 0 || py < 0 || px >= width || py >= height {
					continue
				}
				j := py*width + px
				if class[j] == weak {
					class[j] = strong
					stack = append(stack, j)
				}
			}
		}
	}

	return out
}

// sobel computes the horizontal and vertical Sobel responses and their L1
// magnitude for every pixel, replicating border samples.
func sobel(r *Raster) (gx, gy, mag []int) {
	width, height := r.Width, r.Height
	gx = make([]int, width*height)
	gy = make([]int, width*height)
	mag = make([]int, width*height)

	sobelX := [3][3]int{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [3][3]int{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sx, sy int
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					v := int(r.At(x+kx, y+ky))
					sx += v * sobelX[ky+1][kx+1]
					sy += v * sobelY[ky+1][kx+1]
				}
			}
			i := y*width + x
			gx[i] = sx
			gy[i] = sy
			mag[i] = absInt(sx) + absInt(sy)
		}
	}
	return gx, gy, mag
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
