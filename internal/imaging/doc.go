// Package imaging holds the single-channel raster type and the low-level
// operations the edge pipeline is built from.
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. A Raster stores one uint8
// sample per pixel in row-major order.
//
// # Operations
//
//   - Decoding and encoding: Decode, DecodeFile, EncodePNG, EncodeBase64
//   - Smoothing: Smooth, GaussianBlur, GaussianKernel
//   - Edge detection: Canny (native, or OpenCV with the gocv build tag)
//   - Morphology: Dilate, Erode, Close with rectangular or elliptical elements
//   - Rendering: ColorizeLabels for watershed marker overlays
//
// # Thread Safety
//
// RasterCache is safe for concurrent use. Every operation returns a new
// Raster and never modifies its input, so operations can run concurrently
// on shared rasters.
package imaging
