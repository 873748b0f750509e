package mcp

import (
	"context"
	"database/sql"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/knitlab/skein/internal/config"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"project_create": {
		def:     projectCreateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProjectCreate },
	},
	"project_list": {
		def:     projectListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProjectList },
	},
	"project_get": {
		def:     projectGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProjectGet },
	},
	"project_update": {
		def:     projectUpdateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProjectUpdate },
	},
	"project_delete": {
		def:     projectDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProjectDelete },
	},
	"counter_get": {
		def:     counterGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCounterGet },
	},
	"counter_advance": {
		def:     counterAdvanceToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCounterAdvance },
	},
	"counter_set": {
		def:     counterSetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCounterSet },
	},
	"marker_create": {
		def:     markerCreateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMarkerCreate },
	},
	"marker_get": {
		def:     markerGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMarkerGet },
	},
	"marker_list": {
		def:     markerListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMarkerList },
	},
	"marker_update": {
		def:     markerUpdateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMarkerUpdate },
	},
	"marker_delete": {
		def:     markerDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMarkerDelete },
	},
	"marker_event": {
		def:     markerEventToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMarkerEvent },
	},
	"marker_upcoming": {
		def:     markerUpcomingToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMarkerUpcoming },
	},
	"marker_timeline": {
		def:     markerTimelineToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMarkerTimeline },
	},
	"marker_summary": {
		def:     markerSummaryToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMarkerSummary },
	},
	"marker_accept_suggestion": {
		def:     markerAcceptSuggestionToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMarkerAcceptSuggestion },
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

// NewServer creates a new MCP server with Skein tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(db *sql.DB, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"skein",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg)

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

// Run starts the MCP server using stdio transport. Unknown names in
// cfg.DisabledTools are warned about on stderr, never stdout, which
// belongs to the transport.
func Run(db *sql.DB, cfg *config.Config, version string) error {
	if unknown := ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		log.Warn().Strs("tools", unknown).Msg("ignoring unknown names in disabled_tools")
	}
	s := NewServer(db, cfg, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
