package pipeline

import (
	"fmt"
	"math"
	"time"

	"github.com/ironsheep/xray-edge-tools/internal/fuzzy"
	"github.com/ironsheep/xray-edge-tools/internal/imaging"
	"github.com/ironsheep/xray-edge-tools/internal/segmentation"
)

// Timings records how long each stage took.
type Timings struct {
	Preprocess time.Duration
	Canny      time.Duration
	Fuzzy      time.Duration
	Segment    time.Duration
	Total      time.Duration
}

// Seconds reports the timings in seconds rounded to four decimals, keyed by
// stage name.
func (t Timings) Seconds() map[string]float64 {
	return map[string]float64{
		"preprocess": roundSeconds(t.Preprocess),
		"canny":      roundSeconds(t.Canny),
		"fuzzy":      roundSeconds(t.Fuzzy),
		"segment":    roundSeconds(t.Segment),
		"total":      roundSeconds(t.Total),
	}
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*1e4) / 1e4
}

// Result holds every raster produced for one input image.
type Result struct {
	// Smoothed is the adaptive-smoother output all later stages read.
	Smoothed *imaging.Raster

	// Baseline is the plain Canny edge map, nil when disabled.
	Baseline *imaging.Raster

	// Fusion holds the fuzzy edge map and its intermediates.
	Fusion *fuzzy.FusionResult

	// Segmentation holds the watershed markers and mask.
	Segmentation *segmentation.Result

	Timings Timings
}

// Edges returns the fused binary edge map.
func (r *Result) Edges() *imaging.Raster {
	return r.Fusion.Edges
}

// Process runs the full pipeline on one raster:
//
//	Smooth → (Edges ∥ EstimateThresholds) → Fuse → Segment
//
// The input is validated once up front; an invalid raster yields an error
// wrapping ErrInvalidInput and no stage runs. The input is never modified.
func Process(r *imaging.Raster, p Params) (*Result, error) {
	if err := ValidateRaster(r); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline parameters: %w", err)
	}

	res := &Result{}
	start := time.Now()

	t0 := time.Now()
	res.Smoothed = imaging.Smooth(r, p.Smooth)
	res.Timings.Preprocess = time.Since(t0)

	if p.Baseline.Enabled {
		t0 = time.Now()
		res.Baseline = imaging.Canny(res.Smoothed, p.Baseline.Low, p.Baseline.High)
		res.Timings.Canny = time.Since(t0)
	}

	t0 = time.Now()
	fusion, err := fuzzy.Fuse(res.Smoothed, p.Fusion)
	if err != nil {
		return nil, fmt.Errorf("fusion failed: %w", err)
	}
	res.Fusion = fusion
	res.Timings.Fuzzy = time.Since(t0)

	t0 = time.Now()
	seg, err := segmentation.Segment(res.Smoothed, fusion.Edges, p.Segmentation)
	if err != nil {
		return nil, fmt.Errorf("segmentation failed: %w", err)
	}
	res.Segmentation = seg
	res.Timings.Segment = time.Since(t0)

	res.Timings.Total = time.Since(start)
	return res, nil
}
