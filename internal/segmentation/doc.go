// Package segmentation turns a fused edge map into labelled regions with a
// marker-controlled watershed.
//
// Foreground seeds come from a global Otsu threshold of the smoothed raster,
// the background estimate from heavily dilated edge barriers. Pixels that are
// background-estimated but not foreground are left unknown and assigned by
// flooding.
//
// # Labels
//
//   - imaging.LabelBoundary (-1): watershed line or image border
//   - imaging.LabelUnknown (0): never reached by any basin
//   - imaging.LabelBackground (1): background
//   - > 1: foreground regions
package segmentation
