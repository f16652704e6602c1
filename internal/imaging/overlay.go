package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Marker labels with a fixed meaning in a watershed label grid.
const (
	LabelBoundary   int32 = -1
	LabelUnknown    int32 = 0
	LabelBackground int32 = 1
)

// goldenAngle spreads consecutive hues as far apart as possible.
const goldenAngle = 137.50776405003785

// LabelColor returns a deterministic, well separated colour for a
// foreground label (> 1).
func LabelColor(label int32) colorful.Color {
	h := math.Mod(float64(label-2)*goldenAngle, 360)
	return colorful.Hsv(h, 0.75, 0.95)
}

// ColorizeLabels renders a watershed label grid over its source raster.
//
// The source is drawn in gray; foreground regions are tinted with their
// LabelColor at 50% strength, boundaries are drawn white and background or
// unknown pixels keep the source intensity.
func ColorizeLabels(base *Raster, labels []int32) *image.RGBA {
	bounds := image.Rect(0, 0, base.Width, base.Height)
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, base.Gray(), image.Point{}, draw.Src)

	palette := make(map[int32]colorful.Color)
	for i, l := range labels {
		if i >= len(base.Pix) {
			break
		}
		x, y := i%base.Width, i/base.Width
		switch {
		case l == LabelBoundary:
			result.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
		case l > LabelBackground:
			c, ok := palette[l]
			if !ok {
				c = LabelColor(l)
				palette[l] = c
			}
			v := float64(base.Pix[i]) / 255
			r, g, b := colorful.Color{R: v, G: v, B: v}.BlendRgb(c, 0.5).Clamped().RGB255()
			result.SetRGBA(x, y, color.RGBA{r, g, b, 255})
		}
	}
	return result
}
