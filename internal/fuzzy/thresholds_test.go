package fuzzy

import (
	"testing"

	"github.com/ironsheep/xray-edge-tools/internal/imaging"
)

func TestEstimateThresholds_Extremes(t *testing.T) {
	p := DefaultThresholdParams()

	tests := []struct {
		name      string
		value     uint8
		wantLow   int
		wantHigh  int
		wantLowD  float64
		wantHighD float64
	}{
		{"black", 0, 51, 114, 1, 0},
		{"white", 255, 102, 165, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateThresholds(imaging.NewFilledRaster(8, 8, tt.value), p)
			if got.Low != tt.wantLow || got.High != tt.wantHigh {
				t.Errorf("expected (%d, %d), got (%d, %d)", tt.wantLow, tt.wantHigh, got.Low, got.High)
			}
			if got.LowDegree != tt.wantLowD || got.HighDegree != tt.wantHighD {
				t.Errorf("expected degrees low=%v high=%v, got %v %v",
					tt.wantLowD, tt.wantHighD, got.LowDegree, got.HighDegree)
			}
			if got.Adjusted {
				t.Error("default weights should not need adjusting")
			}
		})
	}
}

func TestEstimateThresholds_Deterministic(t *testing.T) {
	p := DefaultThresholdParams()
	for v := 0; v < 256; v += 17 {
		r := imaging.NewFilledRaster(5, 7, uint8(v))
		a := EstimateThresholds(r, p)
		b := EstimateThresholds(r.Clone(), p)
		if a != b {
			t.Errorf("value %d: results differ %+v vs %+v", v, a, b)
		}
		if a.Low < 0 || a.High > 255 || a.Low > a.High {
			t.Errorf("value %d: invalid pair (%d, %d)", v, a.Low, a.High)
		}
		if a.Mean < 0 || a.Mean > 1 {
			t.Errorf("value %d: mean %v not normalized", v, a.Mean)
		}
	}
}

func TestEstimateThresholds_Guarded(t *testing.T) {
	p := DefaultThresholdParams()
	p.HighWeight = 2
	p.Offset = -0.5

	got := EstimateThresholds(imaging.NewFilledRaster(4, 4, 255), p)
	if !got.Adjusted {
		t.Error("expected the pair to be adjusted")
	}
	if got.Low > got.High || got.Low < 0 || got.High > 255 {
		t.Errorf("guarded pair out of order or range: (%d, %d)", got.Low, got.High)
	}
}

func TestGuardPair(t *testing.T) {
	tests := []struct {
		name              string
		low, high         int
		wantLow, wantHigh int
		wantAdjusted      bool
	}{
		{"ordered", 10, 20, 10, 20, false},
		{"equal", 30, 30, 30, 30, false},
		{"reversed", 200, 100, 100, 200, true},
		{"clamped", -5, 300, 0, 255, true},
		{"clamped and reversed", 400, -1, 0, 255, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			low, high, adjusted := guardPair(tt.low, tt.high)
			if low != tt.wantLow || high != tt.wantHigh || adjusted != tt.wantAdjusted {
				t.Errorf("guardPair(%d, %d) = (%d, %d, %v), want (%d, %d, %v)",
					tt.low, tt.high, low, high, adjusted, tt.wantLow, tt.wantHigh, tt.wantAdjusted)
			}
		})
	}
}
