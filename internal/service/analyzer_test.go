package service

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/xray-edge-tools/internal/imaging"
	"github.com/ironsheep/xray-edge-tools/internal/pipeline"
	"github.com/ironsheep/xray-edge-tools/internal/store"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestAnalyzer(params pipeline.Params) *Analyzer {
	return NewAnalyzer(params, store.New(0), newTestLogger())
}

// squarePNG encodes a size x size black image with a bright centred square.
func squarePNG(t *testing.T, size int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, size, size))
	lo, hi := size/4, size-size/4
	for y := lo; y < hi; y++ {
		for x := lo; x < hi; x++ {
			img.SetGray(x, y, color.Gray{Y: 230})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return buf.Bytes()
}

func TestImageURL(t *testing.T) {
	if got := ImageURL("abc", store.KindFuzzy); got != "/image/abc/fuzzy" {
		t.Errorf("ImageURL = %s", got)
	}
}

func TestAnalyzeBytes_Report(t *testing.T) {
	a := newTestAnalyzer(pipeline.DefaultParams())

	report, err := a.AnalyzeBytes("knee.png", squarePNG(t, 32))
	if err != nil {
		t.Fatalf("AnalyzeBytes failed: %v", err)
	}

	if report.Filename != "knee.png" {
		t.Errorf("Filename = %s", report.Filename)
	}
	if report.Width != 32 || report.Height != 32 {
		t.Errorf("size = %dx%d, want 32x32", report.Width, report.Height)
	}
	if report.Thresholds.Low > report.Thresholds.High {
		t.Errorf("thresholds out of order: %+v", report.Thresholds)
	}
	for _, stage := range []string{"preprocess", "canny", "fuzzy", "segment", "total"} {
		if _, ok := report.TimingSec[stage]; !ok {
			t.Errorf("TimingSec missing %s", stage)
		}
	}

	if len(report.Images) != len(store.Kinds) {
		t.Fatalf("expected %d images, got %d", len(store.Kinds), len(report.Images))
	}
	for _, kind := range store.Kinds {
		if report.Images[kind] != ImageURL(report.ImageID, kind) {
			t.Errorf("%s url = %s", kind, report.Images[kind])
		}
		data, err := a.Store().Get(report.ImageID, kind)
		if err != nil {
			t.Errorf("%s not stored: %v", kind, err)
			continue
		}
		cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil || format != "png" {
			t.Errorf("%s is not a PNG: %v", kind, err)
			continue
		}
		if cfg.Width != 32 || cfg.Height != 32 {
			t.Errorf("%s size = %dx%d", kind, cfg.Width, cfg.Height)
		}
	}
}

func TestAnalyzeBytes_BaselineDisabled(t *testing.T) {
	params := pipeline.DefaultParams()
	params.Baseline.Enabled = false
	a := newTestAnalyzer(params)

	report, err := a.AnalyzeBytes("knee.png", squarePNG(t, 16))
	if err != nil {
		t.Fatalf("AnalyzeBytes failed: %v", err)
	}
	if _, ok := report.Images[store.KindCanny]; ok {
		t.Error("canny output should be absent when the baseline is disabled")
	}
	if _, err := a.Store().Get(report.ImageID, store.KindCanny); !errors.Is(err, store.ErrNotFound) {
		t.Error("canny output should not be stored")
	}
}

func TestAnalyzeBytes_DecodeError(t *testing.T) {
	a := newTestAnalyzer(pipeline.DefaultParams())

	tests := []struct {
		name string
		data []byte
	}{
		{"garbage", []byte("not an image")},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.AnalyzeBytes("bad.png", tt.data)
			if !errors.Is(err, imaging.ErrDecode) {
				t.Errorf("got %v, want ErrDecode", err)
			}
			if a.Store().Len() != 0 {
				t.Error("nothing should be stored for undecodable input")
			}
		})
	}
}

func TestAnalyzeRaster_InvalidParams(t *testing.T) {
	params := pipeline.DefaultParams()
	params.Smooth.KernelSize = 4
	a := newTestAnalyzer(params)

	r, err := imaging.DecodeBytes(squarePNG(t, 16))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if _, err := a.AnalyzeRaster("x.png", r); err == nil {
		t.Error("expected error for invalid params")
	}
}

func TestAnalyzeBytes_DistinctIDs(t *testing.T) {
	a := newTestAnalyzer(pipeline.DefaultParams())
	data := squarePNG(t, 16)

	first, err := a.AnalyzeBytes("a.png", data)
	if err != nil {
		t.Fatalf("AnalyzeBytes failed: %v", err)
	}
	second, err := a.AnalyzeBytes("a.png", data)
	if err != nil {
		t.Fatalf("AnalyzeBytes failed: %v", err)
	}
	if first.ImageID == second.ImageID {
		t.Error("each analysis should get its own id")
	}
	if first.Regions != second.Regions || first.Thresholds != second.Thresholds {
		t.Error("identical input should give identical results")
	}
}
