//go:build basic

package integration

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gitRun runs a git command in dir with a fixed identity.
func gitRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=Ada Lovelace",
		"GIT_AUTHOR_EMAIL=ada@example.com",
		"GIT_COMMITTER_NAME=Ada Lovelace",
		"GIT_COMMITTER_EMAIL=ada@example.com",
	)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return string(out)
}

// newFixtureRepo creates a repository where app.rb changes three times,
// lib/util.rb twice and README.md once.
func newFixtureRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	gitRun(t, dir, "init", "-q")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib"), 0o755))

	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	commit := func(msg string) {
		gitRun(t, dir, "add", "-A")
		gitRun(t, dir, "commit", "-q", "-m", msg)
	}

	write("app.rb", "puts 1\n")
	write("lib/util.rb", "def a; end\n")
	write("README.md", "# fixture\n")
	commit("initial")
	write("app.rb", "puts 1\nputs 2\n")
	write("lib/util.rb", "def a; end\ndef b; end\n")
	commit("second")
	write("app.rb", "puts 3\n")
	commit("third")
	return dir
}

// parseCSVCommits maps file paths to commit counts from CSV report output.
func parseCSVCommits(t *testing.T, output string) map[string]int {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(output)).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)

	header := records[0]
	fileCol, commitsCol := -1, -1
	for i, h := range header {
		switch h {
		case "file":
			fileCol = i
		case "commits":
			commitsCol = i
		}
	}
	require.GreaterOrEqual(t, fileCol, 0)
	require.GreaterOrEqual(t, commitsCol, 0)

	got := make(map[string]int)
	for _, rec := range records[1:] {
		n, err := strconv.Atoi(rec[commitsCol])
		require.NoError(t, err)
		got[rec[fileCol]] = n
	}
	return got
}

// TestReportCommitCountsMatchGit checks CSV commit counts against git log.
func TestReportCommitCountsMatchGit(t *testing.T) {
	repoDir := newFixtureRepo(t)

	out, err := runHotreport(t, repoDir, nil, "report", ".", "--output", "csv", "--cache-backend", "none")
	require.NoError(t, err)

	fileCommits := parseCSVCommits(t, out)
	require.Len(t, fileCommits, 3)

	for file, commits := range fileCommits {
		t.Run(file, func(t *testing.T) {
			gitOut := strings.TrimSpace(gitRun(t, repoDir, "log", "--oneline", "--", file))
			want := 0
			if gitOut != "" {
				want = len(strings.Split(gitOut, "\n"))
			}
			assert.Equal(t, want, commits, "commit count mismatch for %s", file)
		})
	}
}

// TestReportGlobSelectsFiles checks that --glob narrows the report.
func TestReportGlobSelectsFiles(t *testing.T) {
	repoDir := newFixtureRepo(t)

	out, err := runHotreport(t, repoDir, nil, "report", ".", "--glob", "*.rb", "--output", "json", "--cache-backend", "none")
	require.NoError(t, err)

	var report struct {
		Pattern string `json:"pattern"`
		Files   []struct {
			Path string `json:"path"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "*.rb", report.Pattern)

	paths := make([]string, 0, len(report.Files))
	for _, f := range report.Files {
		paths = append(paths, f.Path)
	}
	assert.ElementsMatch(t, []string{"app.rb", "lib/util.rb"}, paths)
}

// TestReportNativeBackendMatchesCLI compares both git backends on the same repository.
func TestReportNativeBackendMatchesCLI(t *testing.T) {
	repoDir := newFixtureRepo(t)

	cliOut, err := runHotreport(t, repoDir, nil, "report", ".", "--output", "csv", "--cache-backend", "none")
	require.NoError(t, err)
	nativeOut, err := runHotreport(t, repoDir, nil, "report", ".", "--output", "csv", "--cache-backend", "none", "--git-backend", "native")
	require.NoError(t, err)

	assert.Equal(t, parseCSVCommits(t, cliOut), parseCSVCommits(t, nativeOut))
}

// TestReportRecordsRuns records two runs into SQLite and exports them.
func TestReportRecordsRuns(t *testing.T) {
	repoDir := newFixtureRepo(t)
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	env := []string{"HOTREPORT_RUNS_BACKEND=sqlite", "HOTREPORT_RUNS_DB_CONNECT=" + dbPath}

	for range 2 {
		_, err := runHotreport(t, repoDir, env, "report", ".", "--output", "json", "--cache-backend", "none")
		require.NoError(t, err)
	}

	status, err := runHotreport(t, repoDir, env, "runs", "status")
	require.NoError(t, err)
	assert.Contains(t, status, "Total Runs: 2")

	outBase := filepath.Join(t.TempDir(), "history")
	_, err = runHotreport(t, repoDir, env, "runs", "export", "--output-file", outBase)
	require.NoError(t, err)
	assert.FileExists(t, outBase+".runs.parquet")
	assert.FileExists(t, outBase+".file_scores.parquet")
}
