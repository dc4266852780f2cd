// Package server implements the MCP (Model Context Protocol) server for the
// image enhancement pipeline.
//
// This package provides a JSON-RPC 2.0 server that exposes the pipeline through
// the MCP protocol, so MCP-compatible clients can enhance images and inspect
// every intermediate raster.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - image_info: Image metadata without decoding pixels
//   - image_enhance: Full pipeline run; returns the original, smoothed,
//     sharpened, Sobel, Prewitt and Canny rasters as base64 PNG, optionally
//     writing them to a directory
//   - image_edge_detect: Canny edge map of the unprocessed image
//   - image_enhance_options: Parameter domains and defaults
//   - image_enhance_plan: Stage order, captions and DOT graph for a parameter set
//
// Parameters not given in a call fall back to the server defaults
// (pipeline.DefaultConfig unless replaced with SetDefaults). Explicit zero
// values are honoured.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32602 for malformed or out-of-range arguments, -32000 for any
//     other tool failure (unreadable file, undecodable image)
//   - message: Human-readable error description
//   - data: The Go error string
//
// No state is kept between calls.
//
// # Usage
//
//	backend, _ := filter.Lookup("native")
//	srv := server.New(pipeline.New(backend, logger), logger)
//	if err := srv.Run(); err != nil {
//	    logger.Fatal(err)
//	}
package server
