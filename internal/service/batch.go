package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/xray-edge-tools/internal/imaging"
	"github.com/ironsheep/xray-edge-tools/internal/store"
)

// ErrInvalidArchive is returned when batch input is not a readable ZIP.
var ErrInvalidArchive = errors.New("invalid zip archive")

// Skip reasons reported in BatchResult.Skipped.
const (
	SkipUnsupported = "unsupported extension"
	SkipDecode      = "decode failed"
	SkipLimit       = "entry limit reached"
	SkipRead        = "read failed"
	SkipPipeline    = "processing failed"
	SkipCancelled   = "cancelled"
)

// Entry is one named image of a batch. Open is called from a worker.
type Entry struct {
	Name string
	Open func() ([]byte, error)
}

// Skipped records a batch entry that produced no report.
type Skipped struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// BatchResult collects the reports of one batch in input order.
type BatchResult struct {
	BatchID string    `json:"batch_id"`
	Results []*Report `json:"results"`
	Skipped []Skipped `json:"skipped,omitempty"`
}

// Runner processes batches of images with a bounded worker pool.
//
// Every image runs through its own pipeline invocation; one image failing
// never stops its siblings.
type Runner struct {
	analyzer   *Analyzer
	workers    int
	maxEntries int
	log        logrus.FieldLogger
}

// NewRunner creates a batch runner. workers below 1 is treated as 1, and
// maxEntries of 0 (or below) takes every supported entry.
func NewRunner(analyzer *Analyzer, workers, maxEntries int, log logrus.FieldLogger) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		analyzer:   analyzer,
		workers:    workers,
		maxEntries: maxEntries,
		log:        log,
	}
}

// RunZip processes every supported image of a ZIP archive held in memory.
// Directories are ignored; entries with an unsupported extension or that fail
// to decode are reported in Skipped.
func (r *Runner) RunZip(ctx context.Context, data []byte) (*BatchResult, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	entries := make([]Entry, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entries = append(entries, Entry{
			Name: f.Name,
			Open: func() ([]byte, error) {
				rc, err := f.Open()
				if err != nil {
					return nil, err
				}
				defer rc.Close()
				return io.ReadAll(rc)
			},
		})
	}
	return r.Run(ctx, entries)
}

// Run processes entries concurrently and returns the reports in input order.
//
// Cancelling ctx stops dispatching new entries; the reports finished so far
// are returned together with ctx.Err(), and every entry that never started
// is listed in Skipped as SkipCancelled.
func (r *Runner) Run(ctx context.Context, entries []Entry) (*BatchResult, error) {
	result := &BatchResult{BatchID: store.NewID()}

	var accepted []int
	skipped := make(map[int]string)
	for i, e := range entries {
		switch {
		case !imaging.SupportedFile(e.Name):
			skipped[i] = SkipUnsupported
		case r.maxEntries > 0 && len(accepted) >= r.maxEntries:
			skipped[i] = SkipLimit
		default:
			accepted = append(accepted, i)
		}
	}

	reports := make([]*Report, len(entries))
	var mu sync.Mutex

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				report, reason := r.process(entries[i])
				mu.Lock()
				if report != nil {
					reports[i] = report
				} else {
					skipped[i] = reason
				}
				mu.Unlock()
			}
		}()
	}

	var err error
	dispatched := 0
dispatch:
	for _, i := range accepted {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break dispatch
		case jobs <- i:
			dispatched++
		}
	}
	close(jobs)
	wg.Wait()

	for _, i := range accepted[dispatched:] {
		skipped[i] = SkipCancelled
	}

	for i, e := range entries {
		if reports[i] != nil {
			result.Results = append(result.Results, reports[i])
		} else if reason, ok := skipped[i]; ok {
			result.Skipped = append(result.Skipped, Skipped{Filename: e.Name, Reason: reason})
		}
	}
	if result.Results == nil {
		result.Results = []*Report{}
	}

	r.log.WithFields(logrus.Fields{
		"batch_id":  result.BatchID,
		"entries":   len(entries),
		"processed": len(result.Results),
		"skipped":   len(result.Skipped),
	}).Info("Batch finished")

	return result, err
}

// process reads, decodes and analyzes a single entry. On failure it returns
// the skip reason instead of a report.
func (r *Runner) process(e Entry) (*Report, string) {
	log := r.log.WithField("filename", e.Name)

	data, err := e.Open()
	if err != nil {
		log.WithError(err).Warn("Failed to read batch entry")
		return nil, SkipRead
	}

	report, err := r.analyzer.AnalyzeBytes(e.Name, data)
	if err != nil {
		if errors.Is(err, imaging.ErrDecode) {
			log.WithError(err).Debug("Skipping undecodable batch entry")
			return nil, SkipDecode
		}
		log.WithError(err).Warn("Failed to process batch entry")
		return nil, SkipPipeline
	}
	return report, ""
}
