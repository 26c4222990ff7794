package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hotspotlabs/hotreport/internal/contract"
	"github.com/hotspotlabs/hotreport/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const activityLog = `--c2|Alice|2024-05-30T10:00:00Z
10	2	lib/a.rb
1	1	README.md

--c1|Bob|2024-01-10T10:00:00Z
50	0	lib/a.rb
20	0	lib/b.rb
`

// newTestServer builds a server whose tool handler uses client for every request.
func newTestServer(t *testing.T, client contract.GitClient) (*toolHandler, string) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range map[string]string{
		"lib/a.rb":  "class A\nend\n",
		"lib/b.rb":  "class B\nend\n",
		"README.md": "# demo\n",
	} {
		full := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}

	end := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cfg := &contract.Config{
		RepoPath:    dir,
		StartTime:   end.AddDate(0, 0, -contract.DefaultLookbackDays),
		EndTime:     end,
		ResultLimit: contract.DefaultResultLimit,
		Workers:     2,
		Mode:        schema.HotMode,
	}
	return &toolHandler{
		baseCfg:   cfg,
		newClient: func(schema.GitBackend) contract.GitClient { return client },
	}, dir
}

func callTool(t *testing.T, h *toolHandler, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := newMCPServer(h)
	tool := s.GetTool("get_current_hotspots")
	require.NotNil(t, tool, "Tool get_current_hotspots should exist")

	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: "get_current_hotspots", Arguments: args},
	})
	require.NoError(t, err, "Tool logic failures should not be raw errors")
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestNewMCPServer_RegistersTool(t *testing.T) {
	s := NewMCPServer(&contract.Config{RepoPath: "."}, nil)
	assert.NotNil(t, s.GetTool("get_current_hotspots"))
	assert.Nil(t, s.GetTool("get_files_hotspots"))
}

func TestGetCurrentHotspots(t *testing.T) {
	client := &contract.MockGitClient{}
	h, dir := newTestServer(t, client)
	client.On("GetRepoRoot", mock.Anything, dir).Return(dir, nil)
	client.On("ListFilesAtRef", mock.Anything, dir, "HEAD").Return([]string{"README.md", "lib/a.rb", "lib/b.rb"}, nil)
	client.On("GetActivityLog", mock.Anything, dir, mock.Anything, mock.Anything).Return([]byte(activityLog), nil)

	res := callTool(t, h, map[string]any{
		"repo_path": dir,
		"pattern":   "*.rb",
		"mode":      "risk",
		"limit":     1.0,
	})
	require.False(t, res.IsError, resultText(t, res))

	var data schema.ReportData
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &data))
	assert.Equal(t, "*.rb", data.Pattern)
	assert.Equal(t, schema.RiskMode, data.Mode)
	assert.Equal(t, 2, data.Summary.TotalFiles)
	require.Len(t, data.Files, 1)
	assert.Contains(t, []string{"lib/a.rb", "lib/b.rb"}, data.Files[0].Path)

	// The base config is never mutated by a request
	assert.Equal(t, schema.HotMode, h.baseCfg.Mode)
	assert.Equal(t, contract.DefaultResultLimit, h.baseCfg.ResultLimit)
	client.AssertExpectations(t)
}

func TestGetCurrentHotspots_Defaults(t *testing.T) {
	client := &contract.MockGitClient{}
	h, dir := newTestServer(t, client)
	client.On("ListFilesAtRef", mock.Anything, dir, "HEAD").Return([]string{"README.md", "lib/a.rb", "lib/b.rb"}, nil)
	client.On("GetActivityLog", mock.Anything, dir, mock.Anything, mock.Anything).Return([]byte(activityLog), nil)

	res := callTool(t, h, map[string]any{})
	require.False(t, res.IsError, resultText(t, res))

	var data schema.ReportData
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &data))
	assert.Empty(t, data.Pattern)
	assert.Equal(t, schema.HotMode, data.Mode)
	assert.Len(t, data.Files, 3)
	client.AssertNotCalled(t, "GetRepoRoot", mock.Anything, mock.Anything)
}

func TestGetCurrentHotspots_ToolErrors(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]any
		setup    func(client *contract.MockGitClient, dir string)
		expected string
	}{
		{
			name:     "invalid mode",
			args:     map[string]any{"mode": "spicy"},
			expected: `invalid mode "spicy"`,
		},
		{
			name:     "limit too large",
			args:     map[string]any{"limit": 5000.0},
			expected: "limit must be between 1 and 1000",
		},
		{
			name: "repo path outside git",
			args: map[string]any{"repo_path": "/nowhere"},
			setup: func(client *contract.MockGitClient, _ string) {
				client.On("GetRepoRoot", mock.Anything, "/nowhere").Return("", assert.AnError)
			},
			expected: "invalid repo_path",
		},
		{
			name: "invalid pattern",
			args: map[string]any{"pattern": "lib/[a"},
			setup: func(client *contract.MockGitClient, dir string) {
				client.On("ListFilesAtRef", mock.Anything, dir, "HEAD").Return([]string{"lib/a.rb"}, nil)
			},
			expected: "invalid file pattern",
		},
		{
			name: "git log failure",
			args: map[string]any{"pattern": "*.rb"},
			setup: func(client *contract.MockGitClient, dir string) {
				client.On("ListFilesAtRef", mock.Anything, dir, "HEAD").Return([]string{"lib/a.rb"}, nil)
				client.On("GetActivityLog", mock.Anything, dir, mock.Anything, mock.Anything).Return(nil, assert.AnError)
			},
			expected: "report failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &contract.MockGitClient{}
			h, dir := newTestServer(t, client)
			if tt.setup != nil {
				tt.setup(client, dir)
			}

			res := callTool(t, h, tt.args)
			assert.True(t, res.IsError, "The response should indicate an error state")
			assert.Contains(t, resultText(t, res), tt.expected)
		})
	}
}
