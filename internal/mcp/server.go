package mcp

import (
	"context"
	"database/sql"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tetherdocs/tether/internal/config"
	"github.com/tetherdocs/tether/internal/ops"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"artifact_sync": {
		def:     syncToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSync },
	},
	"artifact_move": {
		def:     moveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMove },
	},
	"artifact_add_comment": {
		def:     addCommentToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAddComment },
	},
	"artifact_list_comments": {
		def:     listCommentsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleListComments },
	},
	"artifact_resolve_comment": {
		def:     resolveCommentToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleResolveComment },
	},
	"artifact_list_versions": {
		def:     listVersionsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleListVersions },
	},
	"artifact_get_version": {
		def:     getVersionToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGetVersion },
	},
	"artifact_list": {
		def:     listArtifactsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleListArtifacts },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with artifact tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(database *sql.DB, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"tether",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(ops.NewEnv(database, cfg))

	disabled := make(map[string]bool)
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	// Register tools (skip disabled)
	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(database *sql.DB, cfg *config.Config, version string) error {
	s := NewServer(database, cfg, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
