package iocache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hotspotlabs/hotreport/internal/parquet"
	"github.com/hotspotlabs/hotreport/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunStore(t *testing.T) (*RunStoreImpl, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	store, err := NewRunStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, dbPath
}

func TestRunStore_Lifecycle(t *testing.T) {
	store, _ := newTestRunStore(t)
	started := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)

	runID, err := store.BeginRun("/src/app", "*.rb", schema.HotMode, started)
	require.NoError(t, err)
	assert.Positive(t, runID)

	files := []schema.FileResult{
		{Path: "lib/a.rb", Commits: 2, Churn: 70, UniqueContributors: 2, LinesOfCode: 40, AgeDays: 143, Gini: 0.25, Owners: []string{"Alice", "Bob"}, ModeScore: 85},
		{Path: "lib/b.rb", Commits: 1, Churn: 12, UniqueContributors: 1, LinesOfCode: 9, AgeDays: 20, ModeScore: 12},
	}
	for _, f := range files {
		require.NoError(t, store.RecordFile(runID, f))
	}
	require.NoError(t, store.EndRun(runID, started.Add(2*time.Second), len(files)))

	runs, err := store.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].RunID)
	assert.Equal(t, "/src/app", runs[0].RepoPath)
	assert.Equal(t, "*.rb", runs[0].Pattern)
	assert.Equal(t, "hot", runs[0].Mode)
	assert.True(t, started.Equal(runs[0].StartedAt))
	require.NotNil(t, runs[0].FinishedAt)
	assert.True(t, started.Add(2*time.Second).Equal(*runs[0].FinishedAt))
	assert.Equal(t, 2, runs[0].TotalFiles)

	scores, err := store.ListFileScores()
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, "lib/a.rb", scores[0].FilePath)
	require.NotNil(t, scores[0].Owner)
	assert.Equal(t, "Alice", *scores[0].Owner)
	assert.Equal(t, "Critical", scores[0].Label)
	assert.InDelta(t, 0.25, scores[0].Gini, 1e-9)
	assert.Nil(t, scores[1].Owner)
	assert.Equal(t, "Low", scores[1].Label)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, uint(2), status.SchemaVersion)
	assert.Equal(t, 1, status.TotalRuns)
	assert.Equal(t, 2, status.TotalFileScores)
	assert.Equal(t, runID, status.LastRunID)
	assert.True(t, started.Equal(status.LastRunTime))
	assert.True(t, started.Equal(status.OldestRunTime))
}

func TestRunStore_UnfinishedRun(t *testing.T) {
	store, _ := newTestRunStore(t)

	_, err := store.BeginRun("/repo", "", schema.StaleMode, time.Now())
	require.NoError(t, err)

	runs, err := store.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].FinishedAt)
	assert.Zero(t, runs[0].TotalFiles)
}

func TestRunStore_EndUnknownRun(t *testing.T) {
	store, _ := newTestRunStore(t)
	err := store.EndRun(999, time.Now(), 0)
	assert.ErrorContains(t, err, "report run 999 not found")
}

func TestRunStore_DuplicateFile(t *testing.T) {
	store, _ := newTestRunStore(t)
	runID, err := store.BeginRun("/repo", "", schema.HotMode, time.Now())
	require.NoError(t, err)

	file := schema.FileResult{Path: "main.go", Commits: 1}
	require.NoError(t, store.RecordFile(runID, file))
	assert.ErrorContains(t, store.RecordFile(runID, file), "failed to insert file score for main.go")
}

func TestRunStore_EmptyStatus(t *testing.T) {
	store, _ := newTestRunStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, uint(2), status.SchemaVersion)
	assert.Zero(t, status.TotalRuns)
	assert.Zero(t, status.LastRunID)
}

func TestRunStore_NoneBackend(t *testing.T) {
	store, err := NewRunStore(schema.NoneBackend, "")
	require.NoError(t, err)

	runID, err := store.BeginRun("/repo", "", schema.HotMode, time.Now())
	require.NoError(t, err)
	assert.Zero(t, runID)
	assert.NoError(t, store.RecordFile(runID, schema.FileResult{Path: "a"}))
	assert.NoError(t, store.EndRun(runID, time.Now(), 1))

	runs, err := store.ListRuns()
	require.NoError(t, err)
	assert.Empty(t, runs)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestMigrateRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")

	res, err := MigrateRuns(schema.SQLiteBackend, dbPath, LatestVersion)
	require.NoError(t, err)
	assert.Equal(t, MigrateResult{From: 0, To: 2, Changed: true}, res)

	res, err = MigrateRuns(schema.SQLiteBackend, dbPath, LatestVersion)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, uint(2), res.To)

	res, err = MigrateRuns(schema.SQLiteBackend, dbPath, 1)
	require.NoError(t, err)
	assert.Equal(t, MigrateResult{From: 2, To: 1, Changed: true}, res)

	res, err = MigrateRuns(schema.SQLiteBackend, dbPath, 0)
	require.NoError(t, err)
	assert.Equal(t, MigrateResult{From: 1, To: 0, Changed: true}, res)

	_, err = MigrateRuns(schema.NoneBackend, "", LatestVersion)
	assert.ErrorContains(t, err, "migrations are not supported")
}

func TestPrintMigrateResult(t *testing.T) {
	var buf bytes.Buffer
	PrintMigrateResult(&buf, MigrateResult{From: 0, To: 2, Changed: true})
	assert.Equal(t, "Successfully migrated from version 0 to version 2\n", buf.String())

	buf.Reset()
	PrintMigrateResult(&buf, MigrateResult{From: 2, To: 2})
	assert.Equal(t, "No migration needed. Database is already at version 2\n", buf.String())
}

func TestClearRuns(t *testing.T) {
	store, dbPath := newTestRunStore(t)
	_, err := store.BeginRun("/repo", "", schema.HotMode, time.Now())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearRuns(schema.SQLiteBackend, dbPath))
	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err))
}

func TestPrintRunStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintRunStatus(&buf, schema.RunStatus{
		Backend:         "sqlite",
		Connected:       true,
		SchemaVersion:   2,
		TotalRuns:       4,
		LastRunID:       4,
		LastRunTime:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		OldestRunTime:   time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		TotalFileScores: 40,
	})

	out := buf.String()
	assert.Contains(t, out, "Runs Backend: sqlite")
	assert.Contains(t, out, "Schema Version: 2")
	assert.Contains(t, out, "Last Run ID: 4")
	assert.Contains(t, out, "Oldest Run: 2025-01-02 03:04:05")
	assert.Contains(t, out, "Total File Scores: 40")
}

func TestExportRuns(t *testing.T) {
	store, _ := newTestRunStore(t)
	started := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	runID, err := store.BeginRun("/repo", "**/*.go", schema.RiskMode, started)
	require.NoError(t, err)
	require.NoError(t, store.RecordFile(runID, schema.FileResult{Path: "main.go", Commits: 4, Owners: []string{"Carol"}, ModeScore: 50}))
	require.NoError(t, store.EndRun(runID, started.Add(time.Second), 1))

	out := filepath.Join(t.TempDir(), "history")
	var buf bytes.Buffer
	require.NoError(t, ExportRuns(store, out, &buf))
	assert.Contains(t, buf.String(), "Exported 1 report runs to: "+out+".runs.parquet")
	assert.Contains(t, buf.String(), "Exported 1 file score records to: "+out+".file_scores.parquet")

	runs, err := parquet.ReadFile[parquet.RunRecord](out + ".runs.parquet")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].RunID)
	assert.Equal(t, "risk", runs[0].Mode)

	scores, err := parquet.ReadFile[parquet.FileRecord](out + ".file_scores.parquet")
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, "main.go", scores[0].FilePath)
	require.NotNil(t, scores[0].Owner)
	assert.Equal(t, "Carol", *scores[0].Owner)
}

func TestExportRuns_Errors(t *testing.T) {
	var buf bytes.Buffer

	assert.ErrorContains(t, ExportRuns(&MockRunStore{}, "", &buf), "--output-file is required")
	assert.ErrorContains(t, ExportRuns(nil, "out", &buf), "run history is disabled")

	empty := &MockRunStore{}
	empty.On("GetStatus").Return(schema.RunStatus{Backend: "sqlite", Connected: true}, nil)
	assert.ErrorContains(t, ExportRuns(empty, filepath.Join(t.TempDir(), "out"), &buf), "no report runs found")
	empty.AssertExpectations(t)

	failing := &MockRunStore{}
	failing.On("GetStatus").Return(schema.RunStatus{TotalRuns: 1}, nil)
	failing.On("ListRuns").Return(nil, assert.AnError)
	assert.ErrorIs(t, ExportRuns(failing, filepath.Join(t.TempDir(), "out"), &buf), assert.AnError)
}
