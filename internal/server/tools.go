package server

import (
	"github.com/ironsheep/image-enhance-mcp/internal/pipeline"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// parameterProperties turns the pipeline parameter domains into JSON Schema
// properties.
func parameterProperties() map[string]interface{} {
	props := make(map[string]interface{})
	for _, d := range pipeline.Domains() {
		p := map[string]interface{}{
			"type":        d.Type,
			"description": d.Description,
			"default":     d.Default,
		}
		if len(d.Enum) > 0 {
			p["enum"] = d.Enum
		}
		if len(d.Values) > 0 {
			p["enum"] = d.Values
		}
		if d.Minimum != nil {
			p["minimum"] = *d.Minimum
		}
		if d.Maximum != nil {
			p["maximum"] = *d.Maximum
		}
		props[d.Name] = p
	}
	return props
}

func stageNames(stages []pipeline.Stage) []string {
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = string(s)
	}
	return names
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	enhanceProps := parameterProperties()
	enhanceProps["path"] = map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file (either path or image_base64 is required)",
	}
	enhanceProps["image_base64"] = map[string]interface{}{
		"type":        "string",
		"description": "Base64-encoded image bytes (PNG, JPEG, GIF, BMP, TIFF or WebP)",
	}
	enhanceProps["outputs"] = map[string]interface{}{
		"type": "array",
		"items": map[string]interface{}{
			"type": "string",
			"enum": stageNames(pipeline.AllStages),
		},
		"description": "Outputs to return. Default: original, smoothed, sharpened, sobel, prewitt, canny",
	}
	enhanceProps["output_dir"] = map[string]interface{}{
		"type":        "string",
		"description": "Optional directory to also write the PNG files into",
	}
	enhanceProps["include_images"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Include base64 PNG data in the response (default true). Set false with output_dir to get paths and stats only",
		"default":     true,
	}

	return []Tool{
		{
			Name:        "image_info",
			Description: "Get the dimensions, format, colour depth and file size of an image without decoding its pixels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name: "image_enhance",
			Description: "Run the enhancement pipeline: smoothing (Gaussian, median or bilateral), sharpening " +
				"(unsharp masking or Laplacian kernel), then Sobel, Prewitt and Canny edge maps. " +
				"Returns each output as a base64 PNG with a caption and summary statistics.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": enhanceProps,
			},
		},
		{
			Name:        "image_edge_detect",
			Description: "Detect edges with the Canny detector on the grayscale image, without smoothing or sharpening. Returns a binary (0/255) PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"threshold_low": map[string]interface{}{
						"type":        "integer",
						"description": "Lower hysteresis threshold (default 100)",
						"default":     100,
						"minimum":     0,
						"maximum":     pipeline.MaxThreshold,
					},
					"threshold_high": map[string]interface{}{
						"type":        "integer",
						"description": "Upper hysteresis threshold (default 200)",
						"default":     200,
						"minimum":     0,
						"maximum":     pipeline.MaxThreshold,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_enhance_options",
			Description: "List every enhancement parameter with its type, allowed range and default, plus the available outputs and filter backends.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "image_enhance_plan",
			Description: "Describe the stages a run with the given parameters would execute, in order, with their captions and a Graphviz DOT rendering of the stage graph.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": parameterProperties(),
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
