package pipeline

import (
	"errors"
	"fmt"

	"github.com/ironsheep/xray-edge-tools/internal/imaging"
)

// MinSize is the smallest accepted width and height: the 3x3 rules and
// structuring elements need a full neighbourhood.
const MinSize = 3

// ErrInvalidInput is the sentinel wrapped by every InvalidInputError.
var ErrInvalidInput = errors.New("invalid input raster")

// InvalidInputError reports a raster the pipeline cannot interpret as a
// single-channel grid.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvalidInput, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// ValidateRaster checks a raster before any stage runs.
func ValidateRaster(r *imaging.Raster) error {
	switch {
	case r == nil:
		return &InvalidInputError{Reason: "raster is nil"}
	case r.Width <= 0 || r.Height <= 0:
		return &InvalidInputError{Reason: fmt.Sprintf("raster is empty (%dx%d)", r.Width, r.Height)}
	case len(r.Pix) != r.Width*r.Height:
		return &InvalidInputError{Reason: fmt.Sprintf("raster has %d samples, want %d for %dx%d",
			len(r.Pix), r.Width*r.Height, r.Width, r.Height)}
	case r.Width < MinSize || r.Height < MinSize:
		return &InvalidInputError{Reason: fmt.Sprintf("raster %dx%d is smaller than %dx%d",
			r.Width, r.Height, MinSize, MinSize)}
	}
	return nil
}
