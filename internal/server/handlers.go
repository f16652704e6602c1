package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/ironsheep/xray-edge-tools/internal/fuzzy"
	"github.com/ironsheep/xray-edge-tools/internal/imaging"
	"github.com/ironsheep/xray-edge-tools/internal/service"
	"github.com/ironsheep/xray-edge-tools/internal/store"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "xray_edge_detect").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.WithField("tool", params.Name).WithError(err).Warn("Tool execution failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "xray_edge_detect":
		return s.handleEdgeDetect(args)
	case "xray_thresholds":
		return s.handleThresholds(args)
	case "xray_batch_edge_detect":
		return s.handleBatchEdgeDetect(args)
	case "xray_get_result":
		return s.handleGetResult(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Single Image Handlers ===

type edgeDetectArgs struct {
	Path          string `json:"path"`
	IncludeImages bool   `json:"include_images"`
}

// EdgeDetectResult is the xray_edge_detect payload.
type EdgeDetectResult struct {
	*service.Report
	Encoded map[string]*imaging.EncodedImage `json:"encoded,omitempty"`
}

func (s *Server) handleEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a edgeDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	r, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	report, err := s.analyzer.AnalyzeRaster(filepath.Base(a.Path), r)
	if err != nil {
		return nil, err
	}

	result := &EdgeDetectResult{Report: report}
	if !a.IncludeImages {
		return result, nil
	}

	result.Encoded = make(map[string]*imaging.EncodedImage, len(report.Images))
	for kind := range report.Images {
		encoded, err := s.encodeStored(report.ImageID, kind)
		if err != nil {
			return nil, err
		}
		result.Encoded[kind] = encoded
	}
	return result, nil
}

type thresholdsArgs struct {
	Path string `json:"path"`
}

// ThresholdsResult is the xray_thresholds payload.
type ThresholdsResult struct {
	fuzzy.Thresholds
	Sigma  float64 `json:"sigma"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
}

func (s *Server) handleThresholds(args json.RawMessage) (interface{}, error) {
	var a thresholdsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	r, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	p := s.analyzer.Params()
	smoothed := imaging.Smooth(r, p.Smooth)
	return &ThresholdsResult{
		Thresholds: fuzzy.EstimateThresholds(smoothed, p.Fusion.Thresholds),
		Sigma:      imaging.SmoothingSigma(r, p.Smooth),
		Width:      r.Width,
		Height:     r.Height,
	}, nil
}

// === Batch Handlers ===

type batchEdgeDetectArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleBatchEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a batchEdgeDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if !isZipName(a.Path) {
		return nil, fmt.Errorf("only ZIP files supported: %s", a.Path)
	}
	data, err := os.ReadFile(a.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}
	return s.runner.RunZip(context.Background(), data)
}

// === Result Handlers ===

type getResultArgs struct {
	ImageID string `json:"image_id"`
	Kind    string `json:"kind"`
}

func (s *Server) handleGetResult(args json.RawMessage) (interface{}, error) {
	var a getResultArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if !store.ValidKind(a.Kind) {
		return nil, fmt.Errorf("invalid kind %q", a.Kind)
	}
	return s.encodeStored(a.ImageID, a.Kind)
}

// encodeStored fetches a stored PNG and wraps it as base64 with its size.
func (s *Server) encodeStored(id, kind string) (*imaging.EncodedImage, error) {
	data, err := s.analyzer.Store().Get(id, kind)
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", id, kind, err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("stored %s image is corrupt: %w", kind, err)
	}
	return imaging.EncodeBase64(data, cfg.Width, cfg.Height), nil
}
