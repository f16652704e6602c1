package fuzzy

import (
	"fmt"

	"github.com/ironsheep/xray-edge-tools/internal/imaging"
)

// FusionParams configures the fuzzy Canny stage.
type FusionParams struct {
	// Ratio is the neighbour membership ratio of the rule engine.
	Ratio float64 `yaml:"ratio" json:"ratio"`

	// ImageWeight and IndicatorWeight blend the intensity raster with the
	// scaled indicator map before edge detection.
	ImageWeight     float64 `yaml:"imageWeight" json:"image_weight"`
	IndicatorWeight float64 `yaml:"indicatorWeight" json:"indicator_weight"`

	// CloseSize and CloseIterations shape the square closing applied to the
	// detected edges.
	CloseSize       int `yaml:"closeSize" json:"close_size"`
	CloseIterations int `yaml:"closeIterations" json:"close_iterations"`

	Thresholds ThresholdParams `yaml:"thresholds" json:"thresholds"`
}

// DefaultFusionParams returns ratio 0.8, a 0.7/0.3 blend and one 3x3 closing.
func DefaultFusionParams() FusionParams {
	return FusionParams{
		Ratio:           DefaultRatio,
		ImageWeight:     0.7,
		IndicatorWeight: 0.3,
		CloseSize:       3,
		CloseIterations: 1,
		Thresholds:      DefaultThresholdParams(),
	}
}

// Validate checks that the parameters can drive Fuse.
func (p FusionParams) Validate() error {
	if p.Ratio < 0 {
		return fmt.Errorf("ratio must be non-negative, got %g", p.Ratio)
	}
	if p.ImageWeight < 0 || p.IndicatorWeight < 0 {
		return fmt.Errorf("blend weights must be non-negative, got %g/%g", p.ImageWeight, p.IndicatorWeight)
	}
	if p.CloseSize < 1 || p.CloseSize%2 == 0 {
		return fmt.Errorf("close size must be odd and positive, got %d", p.CloseSize)
	}
	if p.CloseIterations < 0 {
		return fmt.Errorf("close iterations must be non-negative, got %d", p.CloseIterations)
	}
	if p.Thresholds.GridSize < 2 {
		return fmt.Errorf("membership grid needs at least 2 samples, got %d", p.Thresholds.GridSize)
	}
	return nil
}

// FusionResult holds the fused edge map and the intermediates it was
// derived from.
type FusionResult struct {
	// Edges is the closed binary edge map, samples in {0,255}.
	Edges *imaging.Raster

	// Indicator is the rule-engine output for the input raster.
	Indicator *IndicatorMap

	// Merged is the blend of the input and the scaled indicator map that
	// the edge detector ran on.
	Merged *imaging.Raster

	// Thresholds is the hysteresis pair used by the edge detector.
	Thresholds Thresholds
}

// Fuse computes the fuzzy edge map of r.
//
// The rule engine (Edges) and the threshold estimator (EstimateThresholds)
// both read r. The indicator map, scaled to {0,255}, is blended into r as
//
//	merged = ImageWeight*r + IndicatorWeight*indicator
//
// (rounded, saturated), hysteresis edge detection runs on merged with the
// estimated pair, and the edges are closed with a CloseSize square.
func Fuse(r *imaging.Raster, p FusionParams) (*FusionResult, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fusion parameters: %w", err)
	}

	indicator := Edges(r, p.Ratio)
	thresholds := EstimateThresholds(r, p.Thresholds)
	merged := Blend(r, indicator.Scaled(), p.ImageWeight, p.IndicatorWeight)

	edges := imaging.Canny(merged, thresholds.Low, thresholds.High)
	edges = imaging.Close(edges, imaging.RectElement(p.CloseSize), p.CloseIterations)

	return &FusionResult{
		Edges:      edges,
		Indicator:  indicator,
		Merged:     merged,
		Thresholds: thresholds,
	}, nil
}

// Blend returns wa*a + wb*b per sample, rounded and saturated to 8 bits.
// Both rasters must have the same size.
func Blend(a, b *imaging.Raster, wa, wb float64) *imaging.Raster {
	out := imaging.NewRaster(a.Width, a.Height)
	for i := range out.Pix {
		v := wa*float64(a.Pix[i]) + wb*float64(b.Pix[i])
		switch {
		case v <= 0:
			out.Pix[i] = 0
		case v >= 255:
			out.Pix[i] = 255
		default:
			out.Pix[i] = uint8(v + 0.5)
		}
	}
	return out
}
