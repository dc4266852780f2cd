package server

import (
	"encoding/json"
	"testing"

	"github.com/ironsheep/image-enhance-mcp/internal/pipeline"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	expectedTools := []string{
		"image_info",
		"image_enhance",
		"image_edge_detect",
		"image_enhance_options",
		"image_enhance_plan",
	}

	if len(tools) != len(expectedTools) {
		t.Fatalf("tool count: got %d, want %d", len(tools), len(expectedTools))
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		toolMap[tool.Name] = tool
	}
	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}
			if _, ok := tool.InputSchema["properties"].(map[string]interface{}); !ok {
				t.Error("InputSchema properties should be a map")
			}
			if _, err := json.Marshal(tool); err != nil {
				t.Errorf("tool does not marshal: %v", err)
			}
		})
	}
}

func TestToolDefinitions_EnhanceParameters(t *testing.T) {
	var enhance Tool
	for _, tool := range GetToolDefinitions() {
		if tool.Name == "image_enhance" {
			enhance = tool
		}
	}

	props := enhance.InputSchema["properties"].(map[string]interface{})
	for _, d := range pipeline.Domains() {
		p, ok := props[d.Name].(map[string]interface{})
		if !ok {
			t.Errorf("parameter %s missing from image_enhance schema", d.Name)
			continue
		}
		if p["type"] != d.Type {
			t.Errorf("%s type: got %v, want %s", d.Name, p["type"], d.Type)
		}
	}

	sobel := props["sobel_kernel"].(map[string]interface{})
	if values, ok := sobel["enum"].([]int); !ok || len(values) != 4 {
		t.Errorf("sobel_kernel enum: got %v", sobel["enum"])
	}
	kernel := props["smooth_kernel"].(map[string]interface{})
	if kernel["minimum"] != 1.0 || kernel["maximum"] != 31.0 {
		t.Errorf("smooth_kernel bounds: got %v..%v", kernel["minimum"], kernel["maximum"])
	}
	for _, name := range []string{"path", "image_base64", "outputs", "output_dir", "include_images"} {
		if _, ok := props[name]; !ok {
			t.Errorf("image_enhance schema missing %s", name)
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer()
	resp := s.handleToolsList(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})

	if resp == nil {
		t.Fatal("handleToolsList returned nil")
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("Result type: got %T", resp.Result)
	}
	tools, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatalf("tools type: got %T", result["tools"])
	}
	if len(tools) != 5 {
		t.Errorf("tools: got %d, want 5", len(tools))
	}
}
