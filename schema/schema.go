// Package schema has configs, models and constants for all parts of hotreport.
package schema

import "time"

// FileResult represents the Git and file system metrics for a single file,
// along with the score it earned in the active scoring mode.
type FileResult struct {
	Path               string                   `json:"path"`
	UniqueContributors int                      `json:"unique_contributors"`
	Commits            int                      `json:"commits"`
	RecentCommits      int                      `json:"recent_commits"`
	LinesOfCode        int                      `json:"lines_of_code"`
	SizeBytes          int64                    `json:"size_bytes"`
	AgeDays            int                      `json:"age_days"`
	Churn              int                      `json:"churn"`
	Gini               float64                  `json:"gini"`
	FirstCommit        time.Time                `json:"first_commit"`
	Owners             []string                 `json:"owners"`
	Mode               ScoringMode              `json:"mode"`
	ModeScore          float64                  `json:"score"`
	ModeBreakdown      map[BreakdownKey]float64 `json:"breakdown,omitempty"`
}

// FolderResult holds the aggregated metrics of every reported file below a folder.
type FolderResult struct {
	Path               string      `json:"path"`
	Files              int         `json:"files"`
	Commits            int         `json:"commits"`
	Churn              int         `json:"churn"`
	LinesOfCode        int         `json:"lines_of_code"`
	UniqueContributors int         `json:"unique_contributors"`
	Owners             []string    `json:"owners"`
	Mode               ScoringMode `json:"mode"`
	Score              float64     `json:"score"`
}

// AggregateOutput is the repository-wide activity gathered from a single git log pass.
type AggregateOutput struct {
	CommitMap       map[string]int            `json:"commit_map"`
	ChurnMap        map[string]int            `json:"churn_map"`
	ContribMap      map[string]map[string]int `json:"contrib_map"`
	FirstCommitMap  map[string]time.Time      `json:"first_commit_map"`
	RecentCommitMap map[string]int            `json:"recent_commit_map"`
}

// NewAggregateOutput returns an AggregateOutput with all maps allocated.
func NewAggregateOutput() *AggregateOutput {
	return &AggregateOutput{
		CommitMap:       make(map[string]int),
		ChurnMap:        make(map[string]int),
		ContribMap:      make(map[string]map[string]int),
		FirstCommitMap:  make(map[string]time.Time),
		RecentCommitMap: make(map[string]int),
	}
}

// ReportSummary holds totals across every file matched by the report pattern,
// not only the ranked ones.
type ReportSummary struct {
	TotalFiles    int     `json:"total_files"`
	RankedFiles   int     `json:"ranked_files"`
	TotalCommits  int     `json:"total_commits"`
	TotalChurn    int     `json:"total_churn"`
	AverageScore  float64 `json:"average_score"`
	MaxScore      float64 `json:"max_score"`
	CriticalFiles int     `json:"critical_files"`
}

// ReportData is what a file set produces when asked to generate its reports.
type ReportData struct {
	RunID       int64          `json:"run_id,omitempty"`
	RepoPath    string         `json:"repo_path"`
	Pattern     string         `json:"pattern"`
	Mode        ScoringMode    `json:"mode"`
	StartTime   time.Time      `json:"start_time"`
	EndTime     time.Time      `json:"end_time"`
	GeneratedAt time.Time      `json:"generated_at"`
	Files       []FileResult   `json:"files"`
	Folders     []FolderResult `json:"folders"`
	Summary     ReportSummary  `json:"summary"`
}
