package fuzzy

import (
	"testing"

	"github.com/ironsheep/xray-edge-tools/internal/imaging"
)

func TestFusionParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(p *FusionParams)
		wantErr bool
	}{
		{"defaults", func(p *FusionParams) {}, false},
		{"negative ratio", func(p *FusionParams) { p.Ratio = -1 }, true},
		{"negative weight", func(p *FusionParams) { p.IndicatorWeight = -0.3 }, true},
		{"even close size", func(p *FusionParams) { p.CloseSize = 4 }, true},
		{"negative iterations", func(p *FusionParams) { p.CloseIterations = -1 }, true},
		{"tiny grid", func(p *FusionParams) { p.Thresholds.GridSize = 1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultFusionParams()
			tt.modify(&p)
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBlend(t *testing.T) {
	a := imaging.NewRaster(4, 1)
	b := imaging.NewRaster(4, 1)
	copy(a.Pix, []uint8{0, 100, 200, 255})
	copy(b.Pix, []uint8{250, 0, 0, 255})

	got := Blend(a, b, 0.7, 0.3)
	want := []uint8{75, 70, 140, 255}
	for i := range want {
		if got.Pix[i] != want[i] {
			t.Errorf("sample %d: expected %d, got %d", i, want[i], got.Pix[i])
		}
	}

	sat := Blend(a, b, 1, 1)
	if sat.Pix[3] != 255 {
		t.Errorf("expected saturation at 255, got %d", sat.Pix[3])
	}
}

func TestFuse_UniformImages(t *testing.T) {
	for _, v := range []uint8{0, 255} {
		res, err := Fuse(imaging.NewFilledRaster(16, 16, v), DefaultFusionParams())
		if err != nil {
			t.Fatalf("Fuse failed: %v", err)
		}
		if res.Indicator.Count() != 0 {
			t.Errorf("value %d: expected empty indicator, got %d flags", v, res.Indicator.Count())
		}
		if n := res.Edges.CountNonZero(); n != 0 {
			t.Errorf("value %d: expected no edges, got %d", v, n)
		}
	}
}

func TestFuse_BrightSquare(t *testing.T) {
	r := createSquareRaster(16, 8, 255)
	p := DefaultFusionParams()

	res, err := Fuse(r, p)
	if err != nil {
		t.Fatalf("Fuse failed: %v", err)
	}
	if !res.Edges.SameSize(r) || !res.Merged.SameSize(r) {
		t.Fatal("outputs must keep the input size")
	}
	if res.Edges.CountNonZero() == 0 {
		t.Fatal("expected edges around the square")
	}
	for i, v := range res.Edges.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("edge sample %d is %d, expected 0 or 255", i, v)
		}
	}
	if res.Edges.At(0, 0) != 0 {
		t.Error("far background should not be an edge")
	}
	if res.Thresholds.Low > res.Thresholds.High {
		t.Errorf("thresholds out of order: %+v", res.Thresholds)
	}

	// The edge map is already closed.
	again := imaging.Close(res.Edges, imaging.RectElement(p.CloseSize), p.CloseIterations)
	if !again.Equal(res.Edges) {
		t.Error("closing the fused edges again should not change them")
	}
}

func TestFuse_InvalidParams(t *testing.T) {
	p := DefaultFusionParams()
	p.CloseSize = 0
	if _, err := Fuse(imaging.NewRaster(5, 5), p); err == nil {
		t.Error("expected error for invalid parameters")
	}
}

func TestFuse_Deterministic(t *testing.T) {
	r := createSquareRaster(24, 10, 180)
	a, err := Fuse(r, DefaultFusionParams())
	if err != nil {
		t.Fatalf("Fuse failed: %v", err)
	}
	b, err := Fuse(r, DefaultFusionParams())
	if err != nil {
		t.Fatalf("Fuse failed: %v", err)
	}
	if !a.Edges.Equal(b.Edges) || a.Thresholds != b.Thresholds {
		t.Error("Fuse should be deterministic")
	}
}
