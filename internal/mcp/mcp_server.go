// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/hotspotlabs/hotreport/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// serverVersion is reported to MCP clients during initialization.
const serverVersion = "1.0.0"

// NewMCPServer initializes and configures the hotreport MCP server without starting it.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	return newMCPServer(&toolHandler{
		baseCfg:   baseCfg,
		mgr:       mgr,
		newClient: contract.NewGitClient,
	})
}

func newMCPServer(h *toolHandler) *server.MCPServer {
	s := server.NewMCPServer(
		"Hotreport Server",
		serverVersion,
		server.WithLogging(),
	)

	s.AddTool(mcp.NewTool("get_current_hotspots",
		mcp.WithDescription("Report code hotspots for the files a Git repository currently tracks, optionally narrowed by a glob pattern."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository (defaults to the server's repository).")),
		mcp.WithString("pattern", mcp.Description("Glob pattern for the files to report on, e.g. '*.go' or 'internal/**'. Empty means every file.")),
		mcp.WithString("mode", mcp.Description("Scoring mode (hot, risk, complexity, stale). Defaults to the server's mode."), mcp.Enum("hot", "risk", "complexity", "stale")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of ranked files returned.")),
	), h.handleGetCurrentHotspots)

	return s
}

// StartMCPServer serves the hotreport MCP server over stdio until the client disconnects.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	return server.ServeStdio(NewMCPServer(baseCfg, mgr))
}
