package cmd

import (
	"github.com/hotspotlabs/hotreport/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd serves hotspot reports to AI agents over the Model Context Protocol.
var mcpCmd = &cobra.Command{
	Use:   "mcp [repo-path]",
	Short: "Start the hotreport MCP server",
	Long: `Launch an MCP server on stdio that exposes the get_current_hotspots tool.

The validated flags and config file act as defaults for every tool call.`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
