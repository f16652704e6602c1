package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image/png"
	"testing"
)

func TestSupportedFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"chest.png", true},
		{"CHEST.PNG", true},
		{"scan.jpg", true},
		{"scan.jpeg", true},
		{"dir/sub/scan.JPEG", true},
		{"scan.gif", false},
		{"scan.bmp", false},
		{"notes.txt", false},
		{"noextension", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SupportedFile(tt.name); got != tt.want {
				t.Errorf("SupportedFile(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestDecodeBytes_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", []byte("definitely not an image")},
		{"truncated png", []byte("\x89PNG\r\n\x1a\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBytes(tt.data)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrDecode) {
				t.Errorf("expected ErrDecode, got %v", err)
			}
		})
	}
}

func TestEncodePNG_Lossless(t *testing.T) {
	r := NewRaster(16, 9)
	for i := range r.Pix {
		r.Pix[i] = uint8(i * 7)
	}

	data, err := EncodePNG(r)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}

	decoded, err := DecodeBytes(data)
	if err != nil {
		t.Fatalf("DecodeBytes failed: %v", err)
	}
	if !decoded.Equal(r) {
		t.Error("decoded raster differs from encoded raster")
	}
}

func TestEncodeBase64(t *testing.T) {
	data, err := EncodePNG(NewFilledRaster(3, 2, 255))
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}

	enc := EncodeBase64(data, 3, 2)
	if enc.Width != 3 || enc.Height != 2 {
		t.Errorf("expected 3x2, got %dx%d", enc.Width, enc.Height)
	}
	if enc.MimeType != "image/png" {
		t.Errorf("expected image/png, got %s", enc.MimeType)
	}

	raw, err := base64.StdEncoding.DecodeString(enc.ImageBase64)
	if err != nil {
		t.Fatalf("invalid base64: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(raw)); err != nil {
		t.Errorf("payload is not a PNG: %v", err)
	}
}
