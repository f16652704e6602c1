package segmentation

import (
	"github.com/ironsheep/xray-edge-tools/internal/imaging"
)

// ConnectedComponents labels the 8-connected regions of non-zero samples.
//
// Zero samples get label 0; components are numbered 1..count in raster scan
// order of their first pixel. The second return value is the number of
// components found.
func ConnectedComponents(mask *imaging.Raster) ([]int32, int) {
	labels := make([]int32, mask.Width*mask.Height)

	var count int32
	var stack []point
	for y := 0; y < mask.Height; y++ {
		for x := 0; x < mask.Width; x++ {
			i := y*mask.Width + x
			if mask.Pix[i] != 0 && labels[i] == 0 {
				count++
				stack = floodFill(mask, labels, x, y, count, stack[:0])
			}
		}
	}
	return labels, int(count)
}

// point is a pixel coordinate on the flood-fill stack.
type point struct {
	X, Y int
}

// floodFill assigns label to every non-zero sample 8-connected to
// (startX, startY). It is iterative so large regions cannot overflow the
// goroutine stack; the returned slice is the emptied work stack for reuse.
func floodFill(mask *imaging.Raster, labels []int32, startX, startY int, label int32, stack []point) []point {
	stack = append(stack, point{X: startX, Y: startY})

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= mask.Width || p.Y < 0 || p.Y >= mask.Height {
			continue
		}
		i := p.Y*mask.Width + p.X
		if labels[i] != 0 || mask.Pix[i] == 0 {
			continue
		}
		labels[i] = label

		// 8-connected neighbors
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}
	return stack
}
