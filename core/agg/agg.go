// Package agg has aggregation logic for Git activity data.
package agg

import (
	"context"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hotspotlabs/hotreport/internal/contract"
	"github.com/hotspotlabs/hotreport/schema"
)

// AggregateActivity performs a single repository-wide git log and aggregates per-file
// commits, churn, contributors, first commit and recent commits.
// Only paths present in tracked are kept, so deleted files never show up.
func AggregateActivity(ctx context.Context, cfg *contract.Config, client contract.GitClient, tracked []string) (*schema.AggregateOutput, error) {
	out, err := client.GetActivityLog(ctx, cfg.RepoPath, cfg.GetAnalysisStartTime(), cfg.GetAnalysisEndTime())
	if err != nil {
		return nil, err
	}

	output := schema.NewAggregateOutput()
	parseAndAggregateGitLog(out, buildFileExistenceMap(tracked), cfg.RecentSince(), output)
	return output, nil
}

// buildFileExistenceMap creates a lookup map for O(1) file existence checks.
func buildFileExistenceMap(files []string) map[string]bool {
	fileExists := make(map[string]bool, len(files))
	for _, file := range files {
		fileExists[file] = true
	}
	return fileExists
}

// parseAndAggregateGitLog processes the git log output and aggregates data into output.
func parseAndAggregateGitLog(out []byte, fileExists map[string]bool, recentSince time.Time, output *schema.AggregateOutput) {
	var currentAuthor string
	var currentDate time.Time

	for l := range strings.SplitSeq(string(out), "\n") {
		l = strings.TrimSuffix(l, "\r")
		if l == "" {
			continue
		}
		if strings.HasPrefix(l, "--") {
			currentAuthor, currentDate = parseCommitHeader(l)
			continue
		}

		paths, add, del := parseFileStatsLine(l, fileExists)
		for _, p := range paths {
			aggregateForPath(p, add+del, currentAuthor, currentDate, recentSince, output)
		}
	}
}

// parseCommitHeader extracts author and date from a "--hash|author|date" header line.
// The hash and the date never contain '|', so the author is everything between them.
func parseCommitHeader(line string) (string, time.Time) {
	if !strings.HasPrefix(line, "--") || len(line) < 5 {
		return "", time.Time{}
	}
	rest := line[2:]
	first, last := strings.Index(rest, "|"), strings.LastIndex(rest, "|")
	if first < 0 || first == last {
		return "", time.Time{}
	}
	author := rest[first+1 : last]
	date, err := time.Parse(time.RFC3339, strings.TrimSpace(rest[last+1:]))
	if err != nil {
		return author, time.Time{}
	}
	return author, date
}

// parseFileStatsLine parses a numstat line and returns the paths to aggregate and churn values.
func parseFileStatsLine(line string, fileExists map[string]bool) ([]string, int, int) {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) < 3 {
		return nil, 0, 0
	}
	add := parseChurnValue(parts[0])
	del := parseChurnValue(parts[1])
	return determinePathsToAggregate(parts[2], fileExists), add, del
}

// parseChurnValue converts a churn string to int; binary files report "-" and count as 0.
func parseChurnValue(s string) int {
	if val, err := strconv.Atoi(s); err == nil && val >= 0 {
		return val
	}
	return 0
}

// determinePathsToAggregate handles renames and keeps the paths that still exist.
func determinePathsToAggregate(p string, fileExists map[string]bool) []string {
	if !strings.Contains(p, " => ") {
		if fileExists[p] {
			return []string{p}
		}
		return nil
	}

	oldPath, newPath := parseRenamePath(p)
	var paths []string
	if fileExists[oldPath] {
		paths = append(paths, oldPath)
	}
	if fileExists[newPath] {
		paths = append(paths, newPath)
	}
	return paths
}

// parseRenamePath extracts old and new paths from "old => new" or "prefix/{old => new}/suffix".
func parseRenamePath(p string) (string, string) {
	if !strings.Contains(p, "{") {
		parts := strings.SplitN(p, " => ", 2)
		if len(parts) == 2 {
			return parts[0], parts[1]
		}
		return "", ""
	}

	braceStart := strings.Index(p, "{")
	braceEnd := strings.Index(p, "}")
	if braceEnd == -1 || braceStart >= braceEnd {
		return "", ""
	}

	prefix := p[:braceStart]
	renamePart := p[braceStart+1 : braceEnd]
	suffix := p[braceEnd+1:]

	renameParts := strings.SplitN(renamePart, " => ", 2)
	if len(renameParts) != 2 {
		return "", ""
	}
	// An empty side like "{ => sub}/a.go" leaves a double slash behind.
	clean := func(s string) string { return strings.ReplaceAll(s, "//", "/") }
	return clean(prefix + renameParts[0] + suffix), clean(prefix + renameParts[1] + suffix)
}

// aggregateForPath updates the aggregation maps for a single path.
func aggregateForPath(p string, churn int, author string, date time.Time, recentSince time.Time, output *schema.AggregateOutput) {
	output.ChurnMap[p] += churn
	output.CommitMap[p]++

	if author != "" {
		if output.ContribMap[p] == nil {
			output.ContribMap[p] = make(map[string]int)
		}
		output.ContribMap[p][author]++
	}

	if date.IsZero() {
		return
	}
	if existing, ok := output.FirstCommitMap[p]; !ok || date.Before(existing) {
		output.FirstCommitMap[p] = date
	}
	if !date.Before(recentSince) {
		output.RecentCommitMap[p]++
	}
}

// AggregateAndScoreFolders rolls file results up into their parent folders.
// A folder's score is the LOC-weighted average of its files' scores, and its
// owners are the authors owning the most commits across its files.
func AggregateAndScoreFolders(cfg *contract.Config, fileResults []schema.FileResult) []schema.FolderResult {
	folders := make(map[string]*schema.FolderResult)
	weightedScores := make(map[string]float64)
	folderAuthors := make(map[string]map[string]int)
	folderContributors := make(map[string]map[string]struct{})

	for _, fr := range fileResults {
		folderPath := path.Dir(fr.Path)
		if cfg.PathFilter == "" && folderPath == "." {
			continue // Skip the root if not filtered
		}

		res, ok := folders[folderPath]
		if !ok {
			res = &schema.FolderResult{Path: folderPath, Mode: cfg.Mode}
			folders[folderPath] = res
			folderAuthors[folderPath] = make(map[string]int)
			folderContributors[folderPath] = make(map[string]struct{})
		}

		res.Files++
		res.Commits += fr.Commits
		res.Churn += fr.Churn
		res.LinesOfCode += fr.LinesOfCode
		weightedScores[folderPath] += fr.ModeScore * float64(fr.LinesOfCode)

		if len(fr.Owners) > 0 {
			folderAuthors[folderPath][fr.Owners[0]] += fr.Commits
		}
		for _, owner := range fr.Owners {
			folderContributors[folderPath][owner] = struct{}{}
		}
	}

	results := make([]schema.FolderResult, 0, len(folders))
	for p, res := range folders {
		if res.LinesOfCode > 0 {
			res.Score = weightedScores[p] / float64(res.LinesOfCode)
		}
		res.Owners = schema.TopOwners(folderAuthors[p], 2)
		res.UniqueContributors = len(folderContributors[p])
		results = append(results, *res)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results
}
