package segmentation

import (
	"github.com/ironsheep/xray-edge-tools/internal/imaging"
)

// labelInQueue marks pixels that are waiting in the flood queue.
const labelInQueue int32 = -2

// bucketQueue is a monotone priority queue over the 256 possible intensity
// differences; each level is FIFO.
type bucketQueue struct {
	levels [256][]int
	active int
}

func (q *bucketQueue) push(level int, pos int) {
	q.levels[level] = append(q.levels[level], pos)
	if level < q.active {
		q.active = level
	}
}

// pop returns the oldest entry of the lowest non-empty level.
func (q *bucketQueue) pop() (int, bool) {
	for q.active < len(q.levels) && len(q.levels[q.active]) == 0 {
		q.active++
	}
	if q.active == len(q.levels) {
		return 0, false
	}
	level := q.levels[q.active]
	pos := level[0]
	q.levels[q.active] = level[1:]
	return pos, true
}

// Watershed floods seed labels over r and returns the resulting label grid.
//
// markers must hold one label per pixel: 0 for unknown pixels, positive
// values for seeds. The returned grid is a new slice: every unknown pixel
// reachable from a seed takes the label of the basin that reaches it first,
// pixels where two different basins meet become LabelBoundary, and the
// one-pixel image border is always LabelBoundary.
//
// Flooding order follows the absolute intensity difference between a pixel
// and the labelled neighbour that enqueued it (4-neighbourhood), lowest
// first, FIFO within a level.
func Watershed(r *imaging.Raster, markers []int32) []int32 {
	width, height := r.Width, r.Height
	labels := make([]int32, len(markers))
	copy(labels, markers)
	if width == 0 || height == 0 {
		return labels
	}

	for x := 0; x < width; x++ {
		labels[x] = imaging.LabelBoundary
		labels[(height-1)*width+x] = imaging.LabelBoundary
	}
	for y := 0; y < height; y++ {
		labels[y*width] = imaging.LabelBoundary
		labels[y*width+width-1] = imaging.LabelBoundary
	}

	diff := func(a, b int) int {
		return absDiff(r.Pix[a], r.Pix[b])
	}
	neighbours := [4]int{-1, 1, -width, width}

	q := &bucketQueue{active: 256}

	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			i := y*width + x
			if labels[i] != imaging.LabelUnknown {
				continue
			}
			best := -1
			for _, d := range neighbours {
				if labels[i+d] > 0 {
					if t := diff(i, i+d); best < 0 || t < best {
						best = t
					}
				}
			}
			if best >= 0 {
				q.push(best, i)
				labels[i] = labelInQueue
			}
		}
	}

	for {
		i, ok := q.pop()
		if !ok {
			break
		}

		var lab int32
		for _, d := range neighbours {
			t := labels[i+d]
			if t <= 0 {
				continue
			}
			if lab == 0 {
				lab = t
			} else if t != lab {
				lab = imaging.LabelBoundary
			}
		}
		labels[i] = lab
		if lab == imaging.LabelBoundary {
			continue
		}

		for _, d := range neighbours {
			j := i + d
			if labels[j] == imaging.LabelUnknown {
				q.push(diff(j, i), j)
				labels[j] = labelInQueue
			}
		}
	}

	return labels
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
