package fuzzy

import (
	"github.com/ironsheep/xray-edge-tools/internal/imaging"
)

// ThresholdParams configures the fuzzy threshold estimator.
type ThresholdParams struct {
	// GridSize is the number of samples of [0,1] the membership functions
	// are evaluated on before interpolation.
	GridSize int `yaml:"gridSize" json:"grid_size"`

	// LowWeight and HighWeight combine the "low" and "high" membership
	// degrees into the low threshold fraction.
	LowWeight  float64 `yaml:"lowWeight" json:"low_weight"`
	HighWeight float64 `yaml:"highWeight" json:"high_weight"`

	// Offset is added to the low fraction to obtain the high fraction.
	Offset float64 `yaml:"offset" json:"offset"`
}

// DefaultThresholdParams returns a 256-point grid, weights 0.2/0.4 and an
// offset of 0.25.
func DefaultThresholdParams() ThresholdParams {
	return ThresholdParams{
		GridSize:   256,
		LowWeight:  0.2,
		HighWeight: 0.4,
		Offset:     0.25,
	}
}

// Thresholds is the hysteresis threshold pair derived from an image.
type Thresholds struct {
	// Low and High are the gradient thresholds, both in [0,255], Low <= High.
	Low  int `json:"low"`
	High int `json:"high"`

	// Mean is the normalized mean intensity the pair was derived from.
	Mean float64 `json:"mean"`

	// LowDegree, MediumDegree and HighDegree are the membership degrees of Mean.
	LowDegree    float64 `json:"low_degree"`
	MediumDegree float64 `json:"medium_degree"`
	HighDegree   float64 `json:"high_degree"`

	// Adjusted is set when the raw pair had to be clamped into [0,255] or
	// reordered to satisfy Low <= High.
	Adjusted bool `json:"adjusted"`
}

// EstimateThresholds derives the (low, high) hysteresis thresholds of r from
// its mean intensity.
//
// The mean is normalized to [0,1] and its "low" and "high" membership
// degrees are read off the sampled triangles. Then
//
//	lowFrac  = LowWeight*μlow + HighWeight*μhigh
//	highFrac = lowFrac + Offset
//
// and both fractions are scaled by 255 and truncated. With the default
// weights the pair is always ordered and in range, but the weights are
// configurable, so the result is guarded: values are clamped to [0,255] and
// swapped when low > high, and Adjusted records that this happened.
func EstimateThresholds(r *imaging.Raster, p ThresholdParams) Thresholds {
	mean := r.Mean() / 255

	t := Thresholds{
		Mean:         mean,
		LowDegree:    Low.Degree(mean, p.GridSize),
		MediumDegree: Medium.Degree(mean, p.GridSize),
		HighDegree:   High.Degree(mean, p.GridSize),
	}

	lowFrac := p.LowWeight*t.LowDegree + p.HighWeight*t.HighDegree
	highFrac := lowFrac + p.Offset

	t.Low, t.High, t.Adjusted = guardPair(int(lowFrac*255), int(highFrac*255))
	return t
}

// guardPair clamps both values into [0,255] and orders them.
func guardPair(low, high int) (int, int, bool) {
	adjusted := false
	clamp := func(v int) int {
		if v < 0 {
			adjusted = true
			return 0
		}
		if v > 255 {
			adjusted = true
			return 255
		}
		return v
	}
	low, high = clamp(low), clamp(high)
	if low > high {
		low, high = high, low
		adjusted = true
	}
	return low, high, adjusted
}
