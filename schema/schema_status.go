package schema

import "time"

// CacheStatus represents the status of the cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// RunStatus represents the status of the report run history store.
type RunStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	SchemaVersion   uint      `json:"schema_version"`
	TotalRuns       int       `json:"total_runs"`
	LastRunID       int64     `json:"last_run_id"`
	LastRunTime     time.Time `json:"last_run_time"`
	OldestRunTime   time.Time `json:"oldest_run_time"`
	TotalFileScores int       `json:"total_file_scores"`
}

// RunRecord represents a row from the report_runs table.
type RunRecord struct {
	RunID      int64
	RepoPath   string
	Pattern    string
	Mode       string
	StartedAt  time.Time
	FinishedAt *time.Time
	TotalFiles int
}

// FileScoreRecord represents a row from the report_file_scores table.
type FileScoreRecord struct {
	RunID        int64
	FilePath     string
	Commits      int
	Churn        int
	Contributors int
	LinesOfCode  int
	AgeDays      int
	Gini         float64
	Owner        *string
	Score        float64
	Label        string
}
