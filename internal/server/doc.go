// Package server exposes the X-ray edge pipeline over two transports.
//
// # MCP
//
// Server speaks JSON-RPC 2.0 over stdio:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// Tools:
//   - xray_edge_detect: Run the pipeline on one image file
//   - xray_thresholds: Report the fuzzy hysteresis thresholds of an image
//   - xray_batch_edge_detect: Run the pipeline on every image of a ZIP archive
//   - xray_get_result: Fetch a stored output as base64 PNG
//
// Tool execution errors are returned as JSON-RPC error responses with code
// -32000 and the Go error string as data.
//
// # HTTP
//
// NewHTTPHandler serves the same operations as a REST API:
//
//	GET  /                    banner
//	POST /edge-detect         multipart "file", one image
//	POST /batch-edge-detect   multipart "file", a .zip archive
//	GET  /image/{id}/{kind}   stored PNG (canny, fuzzy, segmentation, markers)
//
// Errors are JSON objects with a "detail" field, except a batch upload
// without a .zip name, which answers {"error": "Only ZIP files supported"}.
// Every response allows any origin.
//
// # Usage
//
//	st := store.New(cfg.Store.Capacity)
//	analyzer := service.NewAnalyzer(cfg.Pipeline, st, log)
//	runner := service.NewRunner(analyzer, cfg.Batch.Workers, cfg.Batch.MaxEntries, log)
//	srv := server.New(analyzer, runner, log)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
