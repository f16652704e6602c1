package server

import (
	"github.com/ironsheep/xray-edge-tools/internal/store"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Single image
		{
			Name:        "xray_edge_detect",
			Description: "Run the fuzzy edge pipeline on a grayscale (X-ray) image: adaptive smoothing, fuzzy rule edges fused with hysteresis edge detection, and watershed segmentation. Returns an image_id, per-stage timings and the derived thresholds.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to a PNG or JPEG image",
					},
					"include_images": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return every output as base64 PNG. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "xray_thresholds",
			Description: "Estimate the fuzzy hysteresis thresholds (low, high) of an image from its smoothed mean intensity, with the membership degrees used.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to a PNG or JPEG image",
					},
				},
				"required": []string{"path"},
			},
		},

		// Batch
		{
			Name:        "xray_batch_edge_detect",
			Description: "Run the edge pipeline on every .png/.jpg/.jpeg entry of a ZIP archive. Unsupported or undecodable entries are skipped without aborting the batch.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the ZIP archive",
					},
				},
				"required": []string{"path"},
			},
		},

		// Results
		{
			Name:        "xray_get_result",
			Description: "Fetch a stored output image by image_id and kind as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_id": map[string]interface{}{
						"type":        "string",
						"description": "Identifier returned by xray_edge_detect or xray_batch_edge_detect",
					},
					"kind": map[string]interface{}{
						"type":        "string",
						"enum":        store.Kinds,
						"description": "Output kind: canny (baseline edges), fuzzy (fused edges), segmentation (mask) or markers (coloured labels)",
					},
				},
				"required": []string{"image_id", "kind"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
