// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package server

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/tejzpr/affinity-mcp/internal/config"
	"github.com/tejzpr/affinity-mcp/internal/tracker"
	"github.com/tejzpr/affinity-mcp/internal/tools"
)

// ServerName is advertised to MCP clients
const ServerName = "Affinity"

// MCPServer wraps the mcp-go server with our configuration
type MCPServer struct {
	mcpServer *server.MCPServer
	config    *config.Config
	tracker   *tracker.Tracker
	logger    zerolog.Logger
}

// NewMCPServer creates a new MCP server instance with every tool registered
func NewMCPServer(cfg *config.Config, tr *tracker.Tracker, logger zerolog.Logger, version string) *MCPServer {
	if version == "" {
		version = "dev"
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
	)

	srv := &MCPServer{
		mcpServer: mcpServer,
		config:    cfg,
		tracker:   tr,
		logger:    logger,
	}
	srv.registerTools()

	return srv
}

// registerTools registers all MCP tools
func (s *MCPServer) registerTools() {
	toolCtx := tools.NewToolContext(s.tracker)

	// affection_get: current value and tier, creating the record on first sight
	s.mcpServer.AddTool(tools.NewGetTool(), tools.GetHandler(toolCtx))

	// affection_status: plain-text relationship summary for the agent's context
	s.mcpServer.AddTool(tools.NewStatusTool(), tools.StatusHandler(toolCtx))

	// affection_record: apply an event and unlock bonds
	s.mcpServer.AddTool(tools.NewRecordTool(), tools.RecordHandler(toolCtx))

	// affection_history: recent events
	s.mcpServer.AddTool(tools.NewHistoryTool(), tools.HistoryHandler(toolCtx))

	// affection_bonds: bond progress
	s.mcpServer.AddTool(tools.NewBondsTool(), tools.BondsHandler(toolCtx))

	// affection_reset: start the relationship over
	s.mcpServer.AddTool(tools.NewResetTool(), tools.ResetHandler(toolCtx))

	// affection_list: characters in a scope
	s.mcpServer.AddTool(tools.NewListTool(), tools.ListHandler(toolCtx))

	// affection_journal: commit trail, git store only
	s.mcpServer.AddTool(tools.NewJournalTool(), tools.JournalHandler(toolCtx))
}

// GetMCPServer returns the underlying MCP server
func (s *MCPServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves MCP over stdin/stdout until the client disconnects
func (s *MCPServer) ServeStdio() error {
	s.logger.Info().Msg("serving MCP over stdio")
	return server.ServeStdio(s.mcpServer)
}
