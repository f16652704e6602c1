package fuzzy

import (
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

func TestIsEdgePattern(t *testing.T) {
	tests := []struct {
		name string
		code uint8
		want bool
	}{
		{"none", 0, false},
		{"all", 0xFF, false},
		{"single NW", dirNW, true},
		{"single E", dirE, true},
		{"single W", dirW, true},
		{"east triple", dirNE | dirE | dirSE, true},
		{"south triple", dirSE | dirS | dirSW, true},
		{"west triple", dirNW | dirSW | dirW, true},
		{"north triple", dirNW | dirN | dirNE, true},
		{"east triple plus one", dirNE | dirE | dirSE | dirN, false},
		{"two adjacent", dirE | dirSE, false},
		{"two opposite", dirN | dirS, false},
		{"non-corner triple", dirN | dirE | dirS, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEdgePattern(tt.code); got != tt.want {
				t.Errorf("IsEdgePattern(%08b) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}

	n := 0
	for code := 0; code < 256; code++ {
		if IsEdgePattern(uint8(code)) {
			n++
		}
	}
	if n != 12 {
		t.Errorf("expected 12 edge patterns, got %d", n)
	}
}

func TestNeighbourCode(t *testing.T) {
	r := imaging.NewRaster(3, 3)
	r.Set(2, 0, 10) // NE
	r.Set(2, 1, 10) // E
	r.Set(2, 2, 10) // SE

	if got := NeighbourCode(r, 1, 1, DefaultRatio); got != dirNE|dirE|dirSE {
		t.Errorf("expected %08b, got %08b", dirNE|dirE|dirSE, got)
	}

	// Borders replicate: from the top-left corner the NW, N and W
	// neighbours read the corner itself.
	r = imaging.NewRaster(3, 3)
	r.Set(0, 0, 100)
	if got := NeighbourCode(r, 0, 0, DefaultRatio); got != dirNW|dirN|dirW {
		t.Errorf("expected %08b, got %08b", dirNW|dirN|dirW, got)
	}
}

func TestEdges_UniformImages(t *testing.T) {
	for _, v := range []uint8{0, 1, 128, 255} {
		m := Edges(imaging.NewFilledRaster(16, 16, v), DefaultRatio)
		if m.Count() != 0 {
			t.Errorf("uniform %d: expected no flags, got %d", v, m.Count())
		}
	}
}

func TestEdges_Binary(t *testing.T) {
	r := imaging.NewRaster(20, 20)
	for i := range r.Pix {
		r.Pix[i] = uint8((i * 37) % 256)
	}
	m := Edges(r, DefaultRatio)
	if m.Width != 20 || m.Height != 20 || len(m.Flags) != 400 {
		t.Fatalf("unexpected indicator shape %dx%d/%d", m.Width, m.Height, len(m.Flags))
	}
	for i, f := range m.Flags {
		if f > 1 {
			t.Fatalf("flag %d is %d, expected 0 or 1", i, f)
		}
	}
	scaled := m.Scaled()
	for i, v := range scaled.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("scaled sample %d is %d", i, v)
		}
	}
}

func TestEdges_BrightSquare(t *testing.T) {
	// Square occupies [4,12) on both axes.
	r := createSquareRaster(16, 8, 255)
	m := Edges(r, DefaultRatio)

	tests := []struct {
		name string
		x, y int
		want uint8
	}{
		{"left of square", 3, 6, 1},
		{"above square", 6, 3, 1},
		{"right of square", 12, 6, 1},
		{"below square", 6, 12, 1},
		{"diagonal corner", 3, 3, 1},
		{"next to corner", 3, 4, 0},
		{"inside edge", 4, 6, 0},
		{"centre", 7, 7, 0},
		{"far background", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.At(tt.x, tt.y); got != tt.want {
				t.Errorf("flag at (%d,%d) = %d, want %d", tt.x, tt.y, got, tt.want)
			}
		})
	}

	// Every flag lies in the one-pixel ring around the square.
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.At(x, y) == 0 {
				continue
			}
			inRing := x >= 3 && x <= 12 && y >= 3 && y <= 12 &&
				(x == 3 || x == 12 || y == 3 || y == 12)
			if !inRing {
				t.Errorf("unexpected flag at (%d,%d)", x, y)
			}
		}
	}
}
