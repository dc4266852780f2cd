package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/image-enhance-mcp/internal/filter"
	"github.com/ironsheep/image-enhance-mcp/internal/imaging"
	"github.com/ironsheep/image-enhance-mcp/internal/pipeline"
)

// errInvalidArgs marks argument errors that are reported as -32602.
var errInvalidArgs = errors.New("invalid arguments")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_enhance", "image_info").
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
// Malformed arguments and out-of-range parameters return -32602; any other
// tool execution error returns -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	log := s.log.WithField("tool", params.Name)
	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		log.WithError(err).Warn("tool call failed")
		if errors.Is(err, errInvalidArgs) || errors.Is(err, pipeline.ErrInvalidConfig) || errors.Is(err, pipeline.ErrUnknownStage) {
			return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}
	log.Debug("tool call complete")

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
//
// Each tool handler:
//  1. Unmarshals arguments from JSON over the server defaults
//  2. Decodes the image from a path or base64 payload as needed
//  3. Calls the pipeline
//  4. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_info":
		return s.handleImageInfo(args)
	case "image_enhance":
		return s.handleImageEnhance(args)
	case "image_edge_detect":
		return s.handleImageEdgeDetect(args)
	case "image_enhance_options":
		return s.handleImageEnhanceOptions(args)
	case "image_enhance_plan":
		return s.handleImageEnhancePlan(args)
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

// unmarshalArgs decodes tool arguments into v. Empty arguments leave v as is.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(bytes.TrimSpace(args)) == 0 || string(bytes.TrimSpace(args)) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	return nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return data, nil
}

// === Image Information ===

type imageInfoArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageInfo(args json.RawMessage) (interface{}, error) {
	var a imageInfoArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("%w: path is required", errInvalidArgs)
	}
	return imaging.Inspect(a.Path)
}

// === Enhancement Pipeline ===

type imageEnhanceArgs struct {
	pipeline.Config

	Path          string   `json:"path"`
	ImageBase64   string   `json:"image_base64"`
	Outputs       []string `json:"outputs"`
	OutputDir     string   `json:"output_dir"`
	IncludeImages *bool    `json:"include_images"`
}

// EnhanceOutput is one exported raster in an image_enhance response.
type EnhanceOutput struct {
	*pipeline.Artifact

	// Path is set when the PNG was also written to output_dir.
	Path string `json:"path,omitempty"`
}

// EnhanceResult is the image_enhance response.
type EnhanceResult struct {
	Width   int             `json:"width"`
	Height  int             `json:"height"`
	Backend string          `json:"backend"`
	Config  pipeline.Config `json:"config"`
	Outputs []EnhanceOutput `json:"outputs"`
}

// loadSource decodes the image named by path or carried inline as base64.
func loadSource(path, payload string) ([]byte, string, error) {
	switch {
	case path != "" && payload != "":
		return nil, "", fmt.Errorf("%w: provide either path or image_base64, not both", errInvalidArgs)
	case payload != "":
		if i := strings.Index(payload, ";base64,"); i >= 0 && strings.HasPrefix(payload, "data:") {
			payload = payload[i+len(";base64,"):]
		}
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", fmt.Errorf("%w: image_base64: %v", errInvalidArgs, err)
		}
		return data, "upload", nil
	case path != "":
		data, err := readFile(path)
		if err != nil {
			return nil, "", err
		}
		return data, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), nil
	}
	return nil, "", fmt.Errorf("%w: path or image_base64 is required", errInvalidArgs)
}

func (s *Server) handleImageEnhance(args json.RawMessage) (interface{}, error) {
	a := imageEnhanceArgs{Config: s.defaults}
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.Config.Validate(); err != nil {
		return nil, err
	}

	stages := pipeline.OutputStages
	if len(a.Outputs) > 0 {
		stages = make([]pipeline.Stage, 0, len(a.Outputs))
		for _, name := range a.Outputs {
			st, err := pipeline.ParseStage(name)
			if err != nil {
				return nil, err
			}
			stages = append(stages, st)
		}
	}

	data, base, err := loadSource(a.Path, a.ImageBase64)
	if err != nil {
		return nil, err
	}

	res, err := s.pipeline.Process(data, a.Config)
	if err != nil {
		return nil, err
	}

	artifacts, err := res.Export(context.Background(), stages...)
	if err != nil {
		return nil, err
	}

	var paths []string
	if a.OutputDir != "" {
		if paths, err = pipeline.WriteDir(a.OutputDir, base, artifacts); err != nil {
			return nil, err
		}
		s.log.WithFields(logrus.Fields{
			"dir":   a.OutputDir,
			"files": len(paths),
		}).Info("wrote enhancement outputs")
	}

	includeImages := a.IncludeImages == nil || *a.IncludeImages
	outputs := make([]EnhanceOutput, len(artifacts))
	for i, art := range artifacts {
		if !includeImages {
			art.ImageBase64 = ""
		}
		outputs[i] = EnhanceOutput{Artifact: art}
		if paths != nil {
			outputs[i].Path = paths[i]
		}
	}

	return &EnhanceResult{
		Width:   res.Width(),
		Height:  res.Height(),
		Backend: s.pipeline.Backend().Name(),
		Config:  res.Config,
		Outputs: outputs,
	}, nil
}

// === Edge Detection ===

type imageEdgeDetectArgs struct {
	Path          string `json:"path"`
	ThresholdLow  *int   `json:"threshold_low"`
	ThresholdHigh *int   `json:"threshold_high"`
}

// EdgeDetectResult is the image_edge_detect response.
type EdgeDetectResult struct {
	*imaging.EncodedImage
	ThresholdLow  int           `json:"threshold_low"`
	ThresholdHigh int           `json:"threshold_high"`
	Stats         imaging.Stats `json:"stats"`
}

func (s *Server) handleImageEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a imageEdgeDetectArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	low, high := s.defaults.CannyLow, s.defaults.CannyHigh
	if a.ThresholdLow != nil {
		low = *a.ThresholdLow
	}
	if a.ThresholdHigh != nil {
		high = *a.ThresholdHigh
	}

	data, _, err := loadSource(a.Path, "")
	if err != nil {
		return nil, err
	}
	img, _, err := imaging.Decode(data)
	if err != nil {
		return nil, err
	}
	img = imaging.Fit(img, s.defaults.MaxSide)

	edges, err := s.pipeline.EdgeMap(img, low, high)
	if err != nil {
		return nil, err
	}
	png, err := imaging.EncodePNG(edges)
	if err != nil {
		return nil, err
	}

	caption := fmt.Sprintf("Canny edges (t1=%d, t2=%d)", low, high)
	return &EdgeDetectResult{
		EncodedImage:  imaging.NewEncodedImage(string(pipeline.StageCanny), caption, pipeline.StageCanny.FileName(), edges.Bounds(), png),
		ThresholdLow:  low,
		ThresholdHigh: high,
		Stats:         imaging.Summarize(edges),
	}, nil
}

// === Options and Plan ===

// OptionsResult is the image_enhance_options response.
type OptionsResult struct {
	Parameters     []pipeline.Domain `json:"parameters"`
	Outputs        []string          `json:"outputs"`
	DefaultOutputs []string          `json:"default_outputs"`
	Backend        string            `json:"backend"`
	Backends       []string          `json:"backends"`
}

func (s *Server) handleImageEnhanceOptions(args json.RawMessage) (interface{}, error) {
	return &OptionsResult{
		Parameters:     pipeline.DomainsFor(s.defaults),
		Outputs:        stageNames(pipeline.AllStages),
		DefaultOutputs: stageNames(pipeline.OutputStages),
		Backend:        s.pipeline.Backend().Name(),
		Backends:       filter.Available(),
	}, nil
}

// PlanStage is one step of an image_enhance_plan response.
type PlanStage struct {
	Stage    string `json:"stage"`
	Caption  string `json:"caption"`
	FileName string `json:"file_name"`
}

// PlanResult is the image_enhance_plan response.
type PlanResult struct {
	Stages []PlanStage `json:"stages"`
	DOT    string      `json:"dot"`
}

func (s *Server) handleImageEnhancePlan(args json.RawMessage) (interface{}, error) {
	cfg := s.defaults
	if err := unmarshalArgs(args, &cfg); err != nil {
		return nil, err
	}

	order, err := pipeline.StageOrder(cfg)
	if err != nil {
		return nil, err
	}

	var dot bytes.Buffer
	if err := pipeline.WriteDOT(&dot, cfg); err != nil {
		return nil, err
	}

	cfg.Smooth, _ = pipeline.ParseSmoothMethod(string(cfg.Smooth))
	cfg.Sharpen, _ = pipeline.ParseSharpenMethod(string(cfg.Sharpen))
	captions := &pipeline.Result{Config: cfg}

	stages := make([]PlanStage, len(order))
	for i, st := range order {
		stages[i] = PlanStage{Stage: string(st), Caption: captions.Caption(st), FileName: st.FileName()}
	}
	return &PlanResult{Stages: stages, DOT: dot.String()}, nil
}
