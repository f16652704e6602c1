package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/xray-edge-tools/internal/fuzzy"
	"github.com/ironsheep/xray-edge-tools/internal/imaging"
	"github.com/ironsheep/xray-edge-tools/internal/pipeline"
	"github.com/ironsheep/xray-edge-tools/internal/store"
)

// Report describes one processed image and where its outputs can be fetched.
type Report struct {
	// Filename is the upload or archive entry name.
	Filename string `json:"filename"`

	// ImageID identifies the stored outputs.
	ImageID string `json:"image_id"`

	// Images maps each output kind to its retrieval path.
	Images map[string]string `json:"images"`

	// TimingSec holds per-stage durations in seconds (4 decimals).
	TimingSec map[string]float64 `json:"timing_sec"`

	Width  int `json:"width"`
	Height int `json:"height"`

	// Thresholds is the hysteresis pair the fuzzy edges were detected with.
	Thresholds fuzzy.Thresholds `json:"thresholds"`

	// Regions is the number of foreground regions seeded by the segmenter.
	Regions int `json:"regions"`
}

// ImageURL returns the retrieval path of a stored output.
func ImageURL(id, kind string) string {
	return "/image/" + id + "/" + kind
}

// Analyzer runs the pipeline on single images and stores the encoded outputs.
type Analyzer struct {
	params pipeline.Params
	store  *store.Store
	log    logrus.FieldLogger
}

// NewAnalyzer creates an analyzer writing into st.
func NewAnalyzer(params pipeline.Params, st *store.Store, log logrus.FieldLogger) *Analyzer {
	return &Analyzer{
		params: params,
		store:  st,
		log:    log,
	}
}

// Store returns the result store the analyzer writes into.
func (a *Analyzer) Store() *store.Store {
	return a.store
}

// Params returns the pipeline parameters in use.
func (a *Analyzer) Params() pipeline.Params {
	return a.params
}

// AnalyzeBytes decodes an encoded image and analyzes it. Undecodable input
// returns an error wrapping imaging.ErrDecode.
func (a *Analyzer) AnalyzeBytes(name string, data []byte) (*Report, error) {
	r, err := imaging.DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeRaster(name, r)
}

// AnalyzeRaster runs the pipeline, encodes every output as PNG and stores
// them under a new identifier.
func (a *Analyzer) AnalyzeRaster(name string, r *imaging.Raster) (*Report, error) {
	res, err := pipeline.Process(r, a.params)
	if err != nil {
		return nil, err
	}

	log := a.log.WithFields(logrus.Fields{
		"filename": name,
		"width":    r.Width,
		"height":   r.Height,
	})
	if res.Fusion.Thresholds.Adjusted {
		log.WithFields(logrus.Fields{
			"low":  res.Fusion.Thresholds.Low,
			"high": res.Fusion.Thresholds.High,
		}).Warn("Fuzzy thresholds were clamped or reordered")
	}

	images, err := encodeOutputs(res)
	if err != nil {
		return nil, err
	}
	id := a.store.PutSet(images)

	urls := make(map[string]string, len(images))
	for kind := range images {
		urls[kind] = ImageURL(id, kind)
	}

	log.WithFields(logrus.Fields{
		"image_id": id,
		"regions":  res.Segmentation.Regions,
		"total":    res.Timings.Total,
	}).Debug("Image processed")

	return &Report{
		Filename:   name,
		ImageID:    id,
		Images:     urls,
		TimingSec:  res.Timings.Seconds(),
		Width:      r.Width,
		Height:     r.Height,
		Thresholds: res.Fusion.Thresholds,
		Regions:    res.Segmentation.Regions,
	}, nil
}

// encodeOutputs PNG-encodes every raster of a pipeline result, keyed by kind.
func encodeOutputs(res *pipeline.Result) (map[string][]byte, error) {
	images := make(map[string][]byte, len(store.Kinds))

	rasters := map[string]*imaging.Raster{
		store.KindFuzzy:        res.Fusion.Edges,
		store.KindSegmentation: res.Segmentation.Mask,
	}
	if res.Baseline != nil {
		rasters[store.KindCanny] = res.Baseline
	}
	for kind, r := range rasters {
		data, err := imaging.EncodePNG(r)
		if err != nil {
			return nil, fmt.Errorf("%s output: %w", kind, err)
		}
		images[kind] = data
	}

	overlay := imaging.ColorizeLabels(res.Smoothed, res.Segmentation.Markers.Labels)
	data, err := imaging.EncodeImagePNG(overlay)
	if err != nil {
		return nil, fmt.Errorf("%s output: %w", store.KindMarkers, err)
	}
	images[store.KindMarkers] = data

	return images, nil
}
