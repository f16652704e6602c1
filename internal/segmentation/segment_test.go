package segmentation

import (
	"errors"
	"testing"

	"github.com/ironsheep/xray-edge-tools/internal/imaging"
)

// createSquareRaster returns a size x size black raster with a bright
// side x side square centred in it.
func createSquareRaster(size, side int, v uint8) *imaging.Raster {
	r := imaging.NewRaster(size, size)
	lo := (size - side) / 2
	for y := lo; y < lo+side; y++ {
		for x := lo; x < lo+side; x++ {
			r.Set(x, y, v)
		}
	}
	return r
}

func assertMaskConsistent(t *testing.T, res *Result) {
	t.Helper()
	for i, l := range res.Markers.Labels {
		want := uint8(0)
		if l > imaging.LabelBackground {
			want = 255
		}
		if res.Mask.Pix[i] != want {
			t.Fatalf("pixel %d: label %d but mask %d", i, l, res.Mask.Pix[i])
		}
	}
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		p       Params
		wantErr bool
	}{
		{"defaults", DefaultParams(), false},
		{"even element", Params{ElementSize: 6, CloseIterations: 3, DilateIterations: 8}, true},
		{"zero element", Params{ElementSize: 0}, true},
		{"negative iterations", Params{ElementSize: 7, CloseIterations: -1}, true},
		{"no iterations", Params{ElementSize: 3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSegment_AllBlack(t *testing.T) {
	r := imaging.NewRaster(16, 16)
	res, err := Segment(r, imaging.NewRaster(16, 16), DefaultParams())
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	if !res.Empty() {
		t.Errorf("expected empty segmentation, got %d regions", res.Regions)
	}
	if res.Threshold != 0 {
		t.Errorf("expected threshold 0, got %d", res.Threshold)
	}
	if n := res.Mask.CountNonZero(); n != 0 {
		t.Errorf("expected empty mask, got %d pixels", n)
	}
	assertMaskConsistent(t, res)
}

func TestSegment_BrightSquare(t *testing.T) {
	r := createSquareRaster(16, 8, 255)
	edges := imaging.Canny(r, imaging.BaselineLowThreshold, imaging.BaselineHighThreshold)

	res, err := Segment(r, edges, DefaultParams())
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	if res.Regions != 1 {
		t.Errorf("expected 1 seeded region, got %d", res.Regions)
	}
	if res.Markers.Width != 16 || res.Markers.Height != 16 || len(res.Markers.Labels) != 256 {
		t.Fatalf("unexpected marker grid %dx%d/%d", res.Markers.Width, res.Markers.Height, len(res.Markers.Labels))
	}
	assertMaskConsistent(t, res)

	for y := 4; y < 12; y++ {
		for x := 4; x < 12; x++ {
			if res.Mask.At(x, y) != 255 {
				t.Errorf("square pixel (%d,%d) not in the mask", x, y)
			}
		}
	}
	if res.Markers.At(0, 0) != imaging.LabelBoundary {
		t.Errorf("image border should be a boundary, got %d", res.Markers.At(0, 0))
	}

	_, blobs := ConnectedComponents(res.Mask)
	if blobs != 1 {
		t.Errorf("expected a single foreground blob, got %d", blobs)
	}

	// The dilated barrier covers the whole frame, so no background seed
	// survives and the square's label floods everything inside the border.
	if n := res.Mask.CountNonZero(); n != 14*14 {
		t.Errorf("expected the 14x14 interior to flood, got %d mask pixels", n)
	}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			border := x == 0 || y == 0 || x == 15 || y == 15
			if border != (res.Mask.At(x, y) == 0) {
				t.Fatalf("pixel (%d,%d): mask %d, border %v", x, y, res.Mask.At(x, y), border)
			}
		}
	}
}

func TestSegment_TwoObjects(t *testing.T) {
	r := imaging.NewRaster(40, 20)
	for y := 5; y < 15; y++ {
		for x := 4; x < 12; x++ {
			r.Set(x, y, 220)
		}
		for x := 28; x < 36; x++ {
			r.Set(x, y, 220)
		}
	}
	edges := imaging.Canny(r, imaging.BaselineLowThreshold, imaging.BaselineHighThreshold)

	res, err := Segment(r, edges, DefaultParams())
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	if res.Regions != 2 {
		t.Errorf("expected 2 seeded regions, got %d", res.Regions)
	}
	assertMaskConsistent(t, res)

	left, right := res.Markers.At(8, 10), res.Markers.At(32, 10)
	if left <= imaging.LabelBackground || right <= imaging.LabelBackground || left == right {
		t.Errorf("objects should keep distinct foreground labels, got %d and %d", left, right)
	}
}

func TestSegment_SizeMismatch(t *testing.T) {
	_, err := Segment(imaging.NewRaster(8, 8), imaging.NewRaster(8, 9), DefaultParams())
	if !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("expected ErrSizeMismatch, got %v", err)
	}
}

func TestSegment_InvalidParams(t *testing.T) {
	r := imaging.NewRaster(8, 8)
	if _, err := Segment(r, r, Params{ElementSize: 2}); err == nil {
		t.Error("expected error for invalid parameters")
	}
}
