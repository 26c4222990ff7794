package iocache

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hotspotlabs/hotreport/internal/contract"
	"github.com/hotspotlabs/hotreport/schema"
	"github.com/jmoiron/sqlx"
)

// Table names for run history.
const (
	runsTable       = "report_runs"
	fileScoresTable = "report_file_scores"
)

// RunStoreImpl implements the RunStore interface on top of sqlx.
// Timestamps are stored as Unix milliseconds so every backend shares one layout.
type RunStoreImpl struct {
	db      *sqlx.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// runRow mirrors a report_runs row.
type runRow struct {
	RunID      int64         `db:"run_id"`
	RepoPath   string        `db:"repo_path"`
	Pattern    string        `db:"pattern"`
	Mode       string        `db:"mode"`
	StartedAt  int64         `db:"started_at"`
	FinishedAt sql.NullInt64 `db:"finished_at"`
	TotalFiles int           `db:"total_files"`
}

// fileScoreRow mirrors a report_file_scores row.
type fileScoreRow struct {
	RunID        int64          `db:"run_id"`
	FilePath     string         `db:"file_path"`
	Commits      int            `db:"commits"`
	Churn        int            `db:"churn"`
	Contributors int            `db:"contributors"`
	LinesOfCode  int            `db:"lines_of_code"`
	AgeDays      int            `db:"age_days"`
	Gini         float64        `db:"gini"`
	Owner        sql.NullString `db:"owner"`
	Score        float64        `db:"score"`
	Label        string         `db:"label"`
}

// NewRunStore opens the run history store, migrating its schema to the latest version.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (*RunStoreImpl, error) {
	if backend == schema.NoneBackend {
		// No-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	}

	if _, err := MigrateRuns(backend, connStr, LatestVersion); err != nil {
		return nil, fmt.Errorf("failed to migrate run history schema: %w", err)
	}

	db, driverName, err := openDB(backend, connStr, contract.GetRunsDBFilePath())
	if err != nil {
		return nil, err
	}
	return &RunStoreImpl{db: sqlx.NewDb(db, driverName), backend: backend}, nil
}

// BeginRun creates a new report run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(repoPath, pattern string, mode schema.ScoringMode, startedAt time.Time) (int64, error) {
	if rs.db == nil {
		return 0, nil
	}

	var runID int64
	var err error
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := rs.db.Rebind(`INSERT INTO report_runs (repo_path, pattern, mode, started_at) VALUES (?, ?, ?, ?) RETURNING run_id`)
		err = rs.db.Get(&runID, query, repoPath, pattern, string(mode), startedAt.UnixMilli())
	default: // SQLite and MySQL
		var result sql.Result
		result, err = rs.db.Exec(`INSERT INTO report_runs (repo_path, pattern, mode, started_at) VALUES (?, ?, ?, ?)`,
			repoPath, pattern, string(mode), startedAt.UnixMilli())
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert report run: %w", err)
	}
	return runID, nil
}

// RecordFile stores the metrics and score of one file for a run.
func (rs *RunStoreImpl) RecordFile(runID int64, file schema.FileResult) error {
	if rs.db == nil {
		return nil
	}

	var owner sql.NullString
	if len(file.Owners) > 0 {
		owner = sql.NullString{String: file.Owners[0], Valid: true}
	}

	query := rs.db.Rebind(`INSERT INTO report_file_scores
		(run_id, file_path, commits, churn, contributors, lines_of_code, age_days, gini, owner, score, label)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := rs.db.Exec(query, runID, file.Path, file.Commits, file.Churn, file.UniqueContributors,
		file.LinesOfCode, file.AgeDays, file.Gini, owner, file.ModeScore, contract.GetPlainLabel(file.ModeScore))
	if err != nil {
		return fmt.Errorf("failed to insert file score for %s: %w", file.Path, err)
	}
	return nil
}

// EndRun marks the run as finished.
func (rs *RunStoreImpl) EndRun(runID int64, finishedAt time.Time, totalFiles int) error {
	if rs.db == nil {
		return nil
	}

	query := rs.db.Rebind(`UPDATE report_runs SET finished_at = ?, total_files = ? WHERE run_id = ?`)
	result, err := rs.db.Exec(query, finishedAt.UnixMilli(), totalFiles, runID)
	if err != nil {
		return fmt.Errorf("failed to update report run: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("report run %d not found", runID)
	}
	return nil
}

// ListRuns returns every recorded run, oldest first.
func (rs *RunStoreImpl) ListRuns() ([]schema.RunRecord, error) {
	if rs.db == nil {
		return nil, nil
	}

	var rows []runRow
	if err := rs.db.Select(&rows, `SELECT run_id, repo_path, pattern, mode, started_at, finished_at, total_files
		FROM report_runs ORDER BY run_id`); err != nil {
		return nil, fmt.Errorf("failed to query report runs: %w", err)
	}

	records := make([]schema.RunRecord, 0, len(rows))
	for _, r := range rows {
		record := schema.RunRecord{
			RunID:      r.RunID,
			RepoPath:   r.RepoPath,
			Pattern:    r.Pattern,
			Mode:       r.Mode,
			StartedAt:  time.UnixMilli(r.StartedAt),
			TotalFiles: r.TotalFiles,
		}
		if r.FinishedAt.Valid {
			finished := time.UnixMilli(r.FinishedAt.Int64)
			record.FinishedAt = &finished
		}
		records = append(records, record)
	}
	return records, nil
}

// ListFileScores returns every recorded file score, ordered by run and path.
func (rs *RunStoreImpl) ListFileScores() ([]schema.FileScoreRecord, error) {
	if rs.db == nil {
		return nil, nil
	}

	var rows []fileScoreRow
	if err := rs.db.Select(&rows, `SELECT run_id, file_path, commits, churn, contributors, lines_of_code,
		age_days, gini, owner, score, label FROM report_file_scores ORDER BY run_id, file_path`); err != nil {
		return nil, fmt.Errorf("failed to query file scores: %w", err)
	}

	records := make([]schema.FileScoreRecord, 0, len(rows))
	for _, r := range rows {
		record := schema.FileScoreRecord{
			RunID:        r.RunID,
			FilePath:     r.FilePath,
			Commits:      r.Commits,
			Churn:        r.Churn,
			Contributors: r.Contributors,
			LinesOfCode:  r.LinesOfCode,
			AgeDays:      r.AgeDays,
			Gini:         r.Gini,
			Score:        r.Score,
			Label:        r.Label,
		}
		if r.Owner.Valid {
			owner := r.Owner.String
			record.Owner = &owner
		}
		records = append(records, record)
	}
	return records, nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:   string(rs.backend),
		Connected: rs.db != nil,
	}
	if rs.db == nil {
		return status, nil
	}

	var version sql.NullInt64
	err := rs.db.Get(&version, fmt.Sprintf("SELECT version FROM %s LIMIT 1", quoteTableName(migrationsTable, rs.backend)))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return status, fmt.Errorf("failed to get schema version: %w", err)
	}
	status.SchemaVersion = uint(version.Int64)

	if err := rs.db.Get(&status.TotalRuns, "SELECT COUNT(*) FROM report_runs"); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}
	if err := rs.db.Get(&status.TotalFileScores, "SELECT COUNT(*) FROM report_file_scores"); err != nil {
		return status, fmt.Errorf("failed to get total file scores: %w", err)
	}
	if status.TotalRuns == 0 {
		return status, nil
	}

	var last struct {
		RunID     int64 `db:"run_id"`
		StartedAt int64 `db:"started_at"`
	}
	if err := rs.db.Get(&last, "SELECT run_id, started_at FROM report_runs ORDER BY run_id DESC LIMIT 1"); err != nil {
		return status, fmt.Errorf("failed to get last run info: %w", err)
	}
	status.LastRunID = last.RunID
	status.LastRunTime = time.UnixMilli(last.StartedAt)

	var oldest int64
	if err := rs.db.Get(&oldest, "SELECT MIN(started_at) FROM report_runs"); err != nil {
		return status, fmt.Errorf("failed to get oldest run time: %w", err)
	}
	status.OldestRunTime = time.UnixMilli(oldest)
	return status, nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}
