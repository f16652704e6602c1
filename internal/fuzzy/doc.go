// Package fuzzy implements the fuzzy half of the edge pipeline: the 8-neighbour
// rule engine, the triangular membership functions, the threshold estimator
// and the fusion stage that feeds both into a hysteresis edge detector.
//
// # Rule Engine
//
// Edges binarizes each pixel's eight neighbours against a fraction of the
// centre value and flags the pixel when the lit neighbours form one of a
// small set of directional patterns. The output is already binary.
//
// # Thresholds
//
// EstimateThresholds turns the global mean intensity into a hysteresis pair
// through the "low" and "high" membership degrees. The pair is guarded:
// it is always within [0,255] and ordered, with Thresholds.Adjusted set when
// the raw formula had to be corrected.
//
// # Thread Safety
//
// All functions are pure and safe to call concurrently on different or
// shared rasters.
package fuzzy
