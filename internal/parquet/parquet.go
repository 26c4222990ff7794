// Package parquet provides data structures and functions for exporting report
// history and report results to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/hotspotlabs/hotreport/schema"
	"github.com/parquet-go/parquet-go"
)

// RunRecord represents a single report run.
// This struct maps to the report_runs database table.
type RunRecord struct {
	RunID      int64      `parquet:"run_id,snappy"`
	RepoPath   string     `parquet:"repo_path,snappy,dict"`
	Pattern    string     `parquet:"pattern,snappy,dict"`
	Mode       string     `parquet:"mode,snappy,dict"`
	StartedAt  time.Time  `parquet:"started_at,snappy"`
	FinishedAt *time.Time `parquet:"finished_at,optional,snappy"`
	TotalFiles int32      `parquet:"total_files,snappy"`
}

// FileRecord represents the recorded score of one file in a report run.
// This struct maps to the report_file_scores database table.
type FileRecord struct {
	RunID        int64   `parquet:"run_id,snappy"`
	FilePath     string  `parquet:"file_path,snappy"`
	Commits      int32   `parquet:"commits,snappy"`
	Churn        int32   `parquet:"churn,snappy"`
	Contributors int32   `parquet:"contributors,snappy"`
	LinesOfCode  int32   `parquet:"lines_of_code,snappy"`
	AgeDays      int32   `parquet:"age_days,snappy"`
	Gini         float64 `parquet:"gini,snappy"`
	Owner        *string `parquet:"owner,optional,snappy"`
	Score        float64 `parquet:"score,snappy"`
	Label        string  `parquet:"label,snappy,dict"`
}

// ReportFileRecord is one ranked file of a report, as written by the parquet output mode.
type ReportFileRecord struct {
	Rank               int32     `parquet:"rank,snappy"`
	Path               string    `parquet:"path,snappy"`
	Mode               string    `parquet:"mode,snappy,dict"`
	Score              float64   `parquet:"score,snappy"`
	Label              string    `parquet:"label,snappy,dict"`
	Commits            int32     `parquet:"commits,snappy"`
	RecentCommits      int32     `parquet:"recent_commits,snappy"`
	Churn              int32     `parquet:"churn,snappy"`
	UniqueContributors int32     `parquet:"unique_contributors,snappy"`
	LinesOfCode        int32     `parquet:"lines_of_code,snappy"`
	SizeBytes          int64     `parquet:"size_bytes,snappy"`
	AgeDays            int32     `parquet:"age_days,snappy"`
	Gini               float64   `parquet:"gini,snappy"`
	Owners             string    `parquet:"owners,snappy"`
	GeneratedAt        time.Time `parquet:"generated_at,snappy"`
}

// WriteRows writes rows to w as a single Parquet file, with the schema derived
// from T's struct tags.
func WriteRows[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteFile creates outputPath and writes rows to it.
func WriteFile[T any](outputPath string, rows []T) (err error) {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { err = errors.Join(err, file.Close()) }()
	return WriteRows(file, rows)
}

// ReadFile reads every row of a Parquet file written for T.
func ReadFile[T any](path string) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read parquet file %s: %w", path, err)
	}
	return rows[:n], nil
}

// ConvertRunRecords converts database run records to Parquet rows.
func ConvertRunRecords(records []schema.RunRecord) []RunRecord {
	out := make([]RunRecord, len(records))
	for i, r := range records {
		out[i] = RunRecord{
			RunID:      r.RunID,
			RepoPath:   r.RepoPath,
			Pattern:    r.Pattern,
			Mode:       r.Mode,
			StartedAt:  r.StartedAt,
			FinishedAt: r.FinishedAt,
			TotalFiles: int32(r.TotalFiles),
		}
	}
	return out
}

// ConvertFileScoreRecords converts database file score records to Parquet rows.
func ConvertFileScoreRecords(records []schema.FileScoreRecord) []FileRecord {
	out := make([]FileRecord, len(records))
	for i, r := range records {
		out[i] = FileRecord{
			RunID:        r.RunID,
			FilePath:     r.FilePath,
			Commits:      int32(r.Commits),
			Churn:        int32(r.Churn),
			Contributors: int32(r.Contributors),
			LinesOfCode:  int32(r.LinesOfCode),
			AgeDays:      int32(r.AgeDays),
			Gini:         r.Gini,
			Owner:        r.Owner,
			Score:        r.Score,
			Label:        r.Label,
		}
	}
	return out
}

// ConvertReportFiles converts the ranked files of a report to Parquet rows.
// Labels are computed by the caller so this package stays free of presentation rules.
func ConvertReportFiles(data *schema.ReportData, label func(float64) string) []ReportFileRecord {
	out := make([]ReportFileRecord, len(data.Files))
	for i, f := range data.Files {
		out[i] = ReportFileRecord{
			Rank:               int32(i + 1),
			Path:               f.Path,
			Mode:               string(f.Mode),
			Score:              f.ModeScore,
			Label:              label(f.ModeScore),
			Commits:            int32(f.Commits),
			RecentCommits:      int32(f.RecentCommits),
			Churn:              int32(f.Churn),
			UniqueContributors: int32(f.UniqueContributors),
			LinesOfCode:        int32(f.LinesOfCode),
			SizeBytes:          f.SizeBytes,
			AgeDays:            int32(f.AgeDays),
			Gini:               f.Gini,
			Owners:             strings.Join(f.Owners, ", "),
			GeneratedAt:        data.GeneratedAt,
		}
	}
	return out
}
