package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/hotspotlabs/hotreport/core/repo"
	"github.com/hotspotlabs/hotreport/core/report"
	"github.com/hotspotlabs/hotreport/internal/contract"
	"github.com/hotspotlabs/hotreport/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg   *contract.Config
	mgr       contract.CacheManager
	newClient func(schema.GitBackend) contract.GitClient
}

// handleGetCurrentHotspots builds a report request for the tool arguments and
// returns its raw data as JSON. Failures are reported as tool errors.
func (h *toolHandler) handleGetCurrentHotspots(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	client := h.newClient(cfg.GitBackend)

	if p := request.GetString("repo_path", ""); p != "" {
		root, err := client.GetRepoRoot(ctx, p)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid repo_path: %v", err)), nil
		}
		cfg.RepoPath = root
		cfg.PathFilter = ""
	}
	if m := request.GetString("mode", ""); m != "" {
		mode := schema.ScoringMode(m)
		if !slices.Contains(schema.AllScoringModes, mode) {
			return mcp.NewToolResultError(fmt.Sprintf("invalid mode %q", m)), nil
		}
		cfg.Mode = mode
	}
	if l := request.GetInt("limit", 0); l != 0 {
		if l < 0 || l > contract.MaxResultLimit {
			return mcp.NewToolResultError(fmt.Sprintf("limit must be between 1 and %d", contract.MaxResultLimit)), nil
		}
		cfg.ResultLimit = l
	}

	req, err := report.NewHotspotsReportRequest(repo.NewGitRepository(cfg, client, h.mgr), request.GetString("pattern", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := req.RawData(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("report failed: %v", err)), nil
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
