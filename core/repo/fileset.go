package repo

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/hotspotlabs/hotreport/core/agg"
	"github.com/hotspotlabs/hotreport/core/algo"
	"github.com/hotspotlabs/hotreport/internal/contract"
	"github.com/hotspotlabs/hotreport/schema"
)

// criticalScore is the lowest score labeled critical.
const criticalScore = 80.0

// ownersPerFile is how many top contributors are reported per file.
const ownersPerFile = 2

// GitFileSet is the set of current files selected from a GitRepository.
type GitFileSet struct {
	repo    *GitRepository
	pattern string
	paths   []string
	tracked []string
}

var _ contract.FileSet = &GitFileSet{} // Compile-time check

// Paths returns the sorted repository-relative paths in the set.
func (s *GitFileSet) Paths() []string {
	return slices.Clone(s.paths)
}

// GenerateReports scores every file in the set and returns the ranked report.
// The summary covers all files in the set, while Files and Folders are limited
// to the configured result limit. When a run store is configured the ranked
// files are recorded as a new run; recording failures only warn.
func (s *GitFileSet) GenerateReports(ctx context.Context) (*schema.ReportData, error) {
	cfg := s.repo.cfg
	data := &schema.ReportData{
		RepoPath:    cfg.RepoPath,
		Pattern:     s.pattern,
		Mode:        cfg.Mode,
		StartTime:   cfg.StartTime,
		EndTime:     cfg.EndTime,
		GeneratedAt: time.Now(),
		Files:       []schema.FileResult{},
		Folders:     []schema.FolderResult{},
	}
	if len(s.paths) == 0 {
		return data, nil
	}

	output, err := agg.CachedAggregateActivity(ctx, cfg, s.repo.client, s.repo.mgr, s.tracked)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate activity: %w", err)
	}

	results, err := analyzeFiles(ctx, cfg, output, s.paths)
	if err != nil {
		return nil, err
	}

	data.Summary = summarize(results)
	data.Folders = algo.RankFolders(agg.AggregateAndScoreFolders(cfg, results), cfg.ResultLimit)
	data.Files = algo.RankFiles(results, cfg.ResultLimit)
	data.Summary.RankedFiles = len(data.Files)
	data.RunID = s.recordRun(cfg, data)
	return data, nil
}

// analyzeFiles processes all files in parallel using a worker pool.
// It spawns cfg.Workers goroutines and returns one result per path.
func analyzeFiles(ctx context.Context, cfg *contract.Config, output *schema.AggregateOutput, files []string) ([]schema.FileResult, error) {
	fileCh := make(chan string, len(files))
	resultCh := make(chan schema.FileResult, len(files))
	var wg sync.WaitGroup

	for range max(cfg.Workers, 1) {
		wg.Go(func() {
			for f := range fileCh {
				if ctx.Err() != nil {
					continue // Drain without work
				}
				resultCh <- analyzeFile(cfg, output, f)
			}
		})
	}

	for _, f := range files {
		fileCh <- f
	}
	close(fileCh)
	wg.Wait()
	close(resultCh)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]schema.FileResult, 0, len(files))
	for r := range resultCh {
		results = append(results, r)
	}
	return results, nil
}

// analyzeFile computes all metrics and the score for a single file.
func analyzeFile(cfg *contract.Config, output *schema.AggregateOutput, path string) schema.FileResult {
	result := schema.FileResult{
		Path:          path,
		Commits:       output.CommitMap[path],
		Churn:         output.ChurnMap[path],
		RecentCommits: output.RecentCommitMap[path],
		FirstCommit:   output.FirstCommitMap[path],
	}

	contribs := output.ContribMap[path]
	result.UniqueContributors = len(contribs)
	result.Owners = schema.TopOwners(contribs, ownersPerFile)
	values := make([]float64, 0, len(contribs))
	for _, c := range contribs {
		values = append(values, float64(c))
	}
	result.Gini = algo.Gini(values)

	if !result.FirstCommit.IsZero() {
		result.AgeDays = max(int(referenceTime(cfg).Sub(result.FirstCommit).Hours()/24), 0)
	}

	result.SizeBytes, result.LinesOfCode = fileStats(filepath.Join(cfg.RepoPath, path))
	algo.ComputeScore(&result, cfg.Mode, cfg.WeightsFor(cfg.Mode))
	return result
}

// referenceTime is the instant file ages are measured from.
func referenceTime(cfg *contract.Config) time.Time {
	if cfg.EndTime.IsZero() {
		return time.Now()
	}
	return cfg.EndTime
}

// fileStats reads the file once to get its size and line count.
// Unreadable files (e.g. removed from the working copy) report zero for both.
func fileStats(fullPath string) (int64, int) {
	content, err := os.ReadFile(fullPath)
	if err != nil {
		return 0, 0
	}
	lines := bytes.Count(content, []byte{'\n'})
	if len(content) > 0 && content[len(content)-1] != '\n' {
		lines++ // Unterminated last line
	}
	return int64(len(content)), lines
}

// summarize computes totals across every scored file.
func summarize(results []schema.FileResult) schema.ReportSummary {
	summary := schema.ReportSummary{TotalFiles: len(results)}
	if len(results) == 0 {
		return summary
	}

	var total float64
	for _, r := range results {
		summary.TotalCommits += r.Commits
		summary.TotalChurn += r.Churn
		total += r.ModeScore
		summary.MaxScore = max(summary.MaxScore, r.ModeScore)
		if r.ModeScore >= criticalScore {
			summary.CriticalFiles++
		}
	}
	summary.AverageScore = total / float64(len(results))
	return summary
}

// recordRun stores the ranked files in the run store and returns the run ID,
// or zero when history is disabled or the run could not be started.
func (s *GitFileSet) recordRun(cfg *contract.Config, data *schema.ReportData) int64 {
	if s.repo.mgr == nil {
		return 0
	}
	store := s.repo.mgr.GetRunStore()
	if store == nil {
		return 0
	}

	runID, err := store.BeginRun(cfg.RepoPath, s.pattern, cfg.Mode, data.GeneratedAt)
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return 0
	}
	for _, f := range data.Files {
		if err := store.RecordFile(runID, f); err != nil {
			contract.LogWarn(fmt.Sprintf("Run tracking failed for %s", f.Path), err)
		}
	}
	if err := store.EndRun(runID, time.Now(), len(data.Files)); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
	return runID
}
