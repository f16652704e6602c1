package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"

	"github.com/disintegration/imaging"
)

// ErrDecode is returned when input bytes are not a decodable image.
var ErrDecode = errors.New("invalid image file")

// ErrUnsupportedFormat is returned for file names whose extension is not an
// accepted raster format.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// EncodedImage contains a raster encoded as base64 PNG.
//
// The MCP transport returns images in this form; the HTTP transport streams
// the raw PNG bytes instead.
type EncodedImage struct {
	// Width of the image in pixels.
	Width int `json:"width"`

	// Height of the image in pixels.
	Height int `json:"height"`

	// ImageBase64 is the image encoded as base64 PNG.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`
}

// Decode reads an encoded image (PNG, JPEG or GIF) and converts it to a
// grayscale raster. JPEG EXIF orientation is applied before conversion.
//
// Any decoder failure is reported as an error wrapping ErrDecode so callers
// can distinguish bad input from I/O failures.
func Decode(r io.Reader) (*Raster, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return FromImage(img), nil
}

// DecodeBytes is Decode over an in-memory buffer.
func DecodeBytes(data []byte) (*Raster, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecode)
	}
	return Decode(bytes.NewReader(data))
}

// DecodeFile opens and decodes an image file from disk.
func DecodeFile(path string) (*Raster, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return FromImage(img), nil
}

// SupportedFile reports whether name carries one of the extensions accepted
// for X-ray input: .png, .jpg or .jpeg (case-insensitive).
func SupportedFile(name string) bool {
	format, err := imaging.FormatFromFilename(name)
	if err != nil {
		return false
	}
	return format == imaging.PNG || format == imaging.JPEG
}

// EncodePNG encodes a raster as lossless grayscale PNG.
func EncodePNG(r *Raster) ([]byte, error) {
	return EncodeImagePNG(r.Gray())
}

// EncodeImagePNG encodes any image as PNG.
func EncodeImagePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeBase64 wraps PNG bytes in an EncodedImage.
func EncodeBase64(pngBytes []byte, width, height int) *EncodedImage {
	return &EncodedImage{
		Width:       width,
		Height:      height,
		ImageBase64: base64.StdEncoding.EncodeToString(pngBytes),
		MimeType:    "image/png",
	}
}
