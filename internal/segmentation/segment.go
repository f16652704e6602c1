package segmentation

import (
	"errors"
	"fmt"

	"github.com/ironsheep/xray-edge-tools/internal/imaging"
)

// ErrSizeMismatch is returned when the edge map and the raster differ in size.
var ErrSizeMismatch = errors.New("edge map and raster sizes differ")

// Params configures the marker construction around the watershed.
type Params struct {
	// ElementSize is the side of the elliptical structuring element.
	ElementSize int `yaml:"elementSize" json:"element_size"`

	// CloseIterations thickens the edge barriers.
	CloseIterations int `yaml:"closeIterations" json:"close_iterations"`

	// DilateIterations grows the barriers into the background estimate.
	DilateIterations int `yaml:"dilateIterations" json:"dilate_iterations"`
}

// DefaultParams returns a 7x7 ellipse, 3 closing and 8 dilation iterations.
func DefaultParams() Params {
	return Params{
		ElementSize:      7,
		CloseIterations:  3,
		DilateIterations: 8,
	}
}

// Validate checks that the parameters describe a usable element.
func (p Params) Validate() error {
	if p.ElementSize < 1 || p.ElementSize%2 == 0 {
		return fmt.Errorf("element size must be odd and positive, got %d", p.ElementSize)
	}
	if p.CloseIterations < 0 || p.DilateIterations < 0 {
		return fmt.Errorf("iterations must be non-negative, got close=%d dilate=%d", p.CloseIterations, p.DilateIterations)
	}
	return nil
}

// Markers is a label grid: 0 unknown, 1 background, >1 foreground regions,
// imaging.LabelBoundary on watershed lines.
type Markers struct {
	Width  int
	Height int
	Labels []int32
}

// At returns the label at (x, y).
func (m *Markers) At(x, y int) int32 {
	return m.Labels[y*m.Width+x]
}

// Result is the output of Segment.
type Result struct {
	// Markers is the flooded label grid.
	Markers *Markers

	// Mask is 255 where the final label is > 1 and 0 elsewhere.
	Mask *imaging.Raster

	// Threshold is the Otsu threshold used for the foreground estimate.
	Threshold uint8

	// Regions is the number of foreground components seeded before
	// flooding. Zero means an empty (all-background) segmentation.
	Regions int
}

// Empty reports whether no foreground was found.
func (r *Result) Empty() bool {
	return r.Regions == 0
}

// Segment runs marker-controlled watershed segmentation of r, using edges
// as barrier markers.
//
//  1. edges are closed with the ellipse (CloseIterations times)
//  2. foreground = r > Otsu threshold
//  3. background estimate = closed edges dilated DilateIterations times
//  4. unknown = background estimate and not foreground
//  5. foreground components are labelled, offset by +1 so the remaining
//     pixels become label 1, and unknown pixels are reset to 0
//  6. the labels are flooded over r (Watershed)
//  7. mask = 255 where label > 1
//
// A raster without foreground is a valid, empty segmentation.
func Segment(r, edges *imaging.Raster, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid segmentation parameters: %w", err)
	}
	if !r.SameSize(edges) {
		return nil, fmt.Errorf("%w: raster %dx%d, edges %dx%d",
			ErrSizeMismatch, r.Width, r.Height, edges.Width, edges.Height)
	}

	se := imaging.EllipseElement(p.ElementSize)
	closed := imaging.Close(edges, se, p.CloseIterations)

	threshold := OtsuThreshold(r)
	foreground := Binarize(r, threshold)

	background := imaging.Dilate(closed, se, p.DilateIterations)

	components, count := ConnectedComponents(foreground)
	markers := make([]int32, len(components))
	for i, c := range components {
		markers[i] = c + 1
		// saturating background - foreground, as on 8-bit masks
		if int(background.Pix[i])-int(foreground.Pix[i]) >= 255 {
			markers[i] = imaging.LabelUnknown
		}
	}

	labels := Watershed(r, markers)

	mask := imaging.NewRaster(r.Width, r.Height)
	for i, l := range labels {
		if l > imaging.LabelBackground {
			mask.Pix[i] = 255
		}
	}

	return &Result{
		Markers: &Markers{
			Width:  r.Width,
			Height: r.Height,
			Labels: labels,
		},
		Mask:      mask,
		Threshold: threshold,
		Regions:   count,
	}, nil
}
