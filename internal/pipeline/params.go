package pipeline

import (
	"fmt"

	"github.com/ironsheep/xray-edge-tools/internal/fuzzy"
	"github.com/ironsheep/xray-edge-tools/internal/imaging"
	"github.com/ironsheep/xray-edge-tools/internal/segmentation"
)

// BaselineParams configures the plain Canny output computed alongside the
// fuzzy edges.
type BaselineParams struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	Low     int  `yaml:"low" json:"low"`
	High    int  `yaml:"high" json:"high"`
}

// Params collects every tunable constant of the pipeline.
type Params struct {
	Smooth       imaging.SmoothParams `yaml:"smooth" json:"smooth"`
	Fusion       fuzzy.FusionParams   `yaml:"fusion" json:"fusion"`
	Segmentation segmentation.Params  `yaml:"segmentation" json:"segmentation"`
	Baseline     BaselineParams       `yaml:"baseline" json:"baseline"`
}

// DefaultParams returns the reference constants for every stage.
func DefaultParams() Params {
	return Params{
		Smooth:       imaging.DefaultSmoothParams(),
		Fusion:       fuzzy.DefaultFusionParams(),
		Segmentation: segmentation.DefaultParams(),
		Baseline: BaselineParams{
			Enabled: true,
			Low:     imaging.BaselineLowThreshold,
			High:    imaging.BaselineHighThreshold,
		},
	}
}

// Validate checks every stage's parameters.
func (p Params) Validate() error {
	if p.Smooth.KernelSize < 1 || p.Smooth.KernelSize%2 == 0 {
		return fmt.Errorf("smooth: kernel size must be odd and positive, got %d", p.Smooth.KernelSize)
	}
	if p.Smooth.LowSpread <= 0 || p.Smooth.HighSpread <= 0 {
		return fmt.Errorf("smooth: spreads must be positive, got %g/%g", p.Smooth.LowSpread, p.Smooth.HighSpread)
	}
	if err := p.Fusion.Validate(); err != nil {
		return fmt.Errorf("fusion: %w", err)
	}
	if err := p.Segmentation.Validate(); err != nil {
		return fmt.Errorf("segmentation: %w", err)
	}
	if p.Baseline.Enabled && (p.Baseline.Low < 0 || p.Baseline.High < p.Baseline.Low) {
		return fmt.Errorf("baseline: thresholds must satisfy 0 <= low <= high, got %d/%d", p.Baseline.Low, p.Baseline.High)
	}
	return nil
}
