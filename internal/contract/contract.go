// Package contract provides interfaces and shared utilities for hotreport's internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/hotspotlabs/hotreport/schema"
)

// Repository exposes the files a repository currently tracks.
type Repository interface {
	// CurrentFiles returns the tracked files matching pattern. What the pattern
	// syntax means, and what an empty pattern matches, is up to the implementation.
	CurrentFiles(ctx context.Context, pattern string) (FileSet, error)
}

// FileSet is a collection of files that can produce report data about itself.
type FileSet interface {
	// Paths returns the repository-relative paths in the set.
	Paths() []string

	// GenerateReports computes the report data for the files in the set.
	GenerateReports(ctx context.Context) (*schema.ReportData, error)
}

// GitClient defines the Git operations needed to build reports.
// This allows the analysis logic to be tested without needing a real git executable.
type GitClient interface {
	// GetRepoRoot returns the absolute path to the root of the Git repository
	// containing the given context path.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)

	// GetRepoHash returns the current HEAD commit hash of the repository.
	GetRepoHash(ctx context.Context, repoPath string) (string, error)

	// ListFilesAtRef returns all files tracked by the repository at a specific reference.
	ListFilesAtRef(ctx context.Context, repoPath string, ref string) ([]string, error)

	// GetActivityLog returns the raw numstat commit log for repository-wide aggregation.
	// Each commit starts with a "--<hash>|<author>|<iso-date>" header followed by
	// "<added>\t<deleted>\t<path>" lines.
	GetActivityLog(ctx context.Context, repoPath string, startTime, endTime time.Time) ([]byte, error)
}

// CacheManager defines the interface for managing persistence stores.
// This allows the persistence layer to be mocked for testing.
type CacheManager interface {
	GetActivityStore() CacheStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for cache data storage.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// RunStore defines the interface for tracking report runs and the file scores they produced.
type RunStore interface {
	// BeginRun creates a new report run and returns its unique ID.
	BeginRun(repoPath, pattern string, mode schema.ScoringMode, startedAt time.Time) (int64, error)

	// RecordFile stores the metrics and score of one file for a run.
	RecordFile(runID int64, file schema.FileResult) error

	// EndRun marks the run as finished.
	EndRun(runID int64, finishedAt time.Time, totalFiles int) error

	// ListRuns returns every recorded run, oldest first.
	ListRuns() ([]schema.RunRecord, error)

	// ListFileScores returns every recorded file score, ordered by run and path.
	ListFileScores() ([]schema.FileScoreRecord, error)

	// GetStatus returns status information about the run store.
	GetStatus() (schema.RunStatus, error)

	// Close closes the underlying connection.
	Close() error
}
