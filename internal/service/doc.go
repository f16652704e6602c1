// Package service connects the pipeline to its collaborators: decoding
// uploads, encoding outputs as PNG, storing them under generated
// identifiers, and iterating ZIP batches with a worker pool.
//
// Both transports in package server are thin wrappers around Analyzer and
// Runner.
package service
