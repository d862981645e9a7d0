// Package mcp exposes the workspace to assistants over the Model Context
// Protocol.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Repforge", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Repforge training program server. Read the active program and the template library, convert weights, and work with per-exercise max weights."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolConvertWeight, Handler: h.convertWeight},
		server.ServerTool{Tool: toolWeightToPercentage, Handler: h.weightToPercentage},
		server.ServerTool{Tool: toolPercentageToWeight, Handler: h.percentageToWeight},
		server.ServerTool{Tool: toolSetMaxWeight, Handler: h.setMaxWeight},
		server.ServerTool{Tool: toolGetProgram, Handler: h.getProgram},
		server.ServerTool{Tool: toolListLibrary, Handler: h.listLibrary},
		server.ServerTool{Tool: toolLoadLibraryWorkout, Handler: h.loadLibraryWorkout},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resProgram, Handler: h.program},
		server.ServerResource{Resource: resMaxWeights, Handler: h.maxWeights},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resProgram = mcp.NewResource(
	"repforge://program",
	"Active Program",
	mcp.WithResourceDescription("The program being edited: weeks in order, and the workouts with their exercises and sets"),
	mcp.WithMIMEType("application/json"),
)

var resMaxWeights = mcp.NewResource(
	"repforge://max_weights",
	"Max Weights",
	mcp.WithResourceDescription("Recorded max weight per exercise, with its unit and the date it was set"),
	mcp.WithMIMEType("application/json"),
)
