// Package pipeline runs the X-ray edge and segmentation pipeline on one
// grayscale raster.
//
// Stages, in order:
//   - adaptive smoothing (imaging.Smooth)
//   - baseline Canny with fixed thresholds (optional, imaging.Canny)
//   - fuzzy rule engine, threshold estimation and fusion (fuzzy.Fuse)
//   - marker-controlled watershed (segmentation.Segment)
//
// Process is a pure function of its input and parameters: it keeps no state
// between calls, so independent images can be processed concurrently.
//
// # Errors
//
// Inputs are validated once before any stage runs. Nil, empty, inconsistent
// or smaller than 3x3 rasters produce an *InvalidInputError, which matches
// ErrInvalidInput under errors.Is. Degenerate thresholds are corrected, not
// reported as errors, and an empty segmentation is a valid result.
package pipeline
