// Package repo binds the report pipeline to a Git repository: it selects the
// files a pattern names and generates their hotspot reports.
package repo

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hotspotlabs/hotreport/internal/contract"
)

// ErrInvalidPattern is returned by CurrentFiles when the glob cannot be parsed.
var ErrInvalidPattern = errors.New("invalid file pattern")

// headRef is the reference whose tree defines the current files.
const headRef = "HEAD"

// GitRepository is a Repository backed by a Git working copy.
type GitRepository struct {
	cfg    *contract.Config
	client contract.GitClient
	mgr    contract.CacheManager
}

var _ contract.Repository = &GitRepository{} // Compile-time check

// NewGitRepository returns a repository reading cfg.RepoPath through client.
// The cache manager is optional; nil disables activity caching and run history.
func NewGitRepository(cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) *GitRepository {
	return &GitRepository{cfg: cfg, client: client, mgr: mgr}
}

// CurrentFiles returns the files tracked at HEAD that match pattern.
//
// Patterns use doublestar syntax: "**" crosses directories and "{a,b}" alternates.
// A pattern without a slash is also tried against the base name, so "*.rb" matches
// "lib/a.rb". The empty pattern matches every tracked file. The configured path
// filter and excludes are applied on top of the pattern.
func (r *GitRepository) CurrentFiles(ctx context.Context, pattern string) (contract.FileSet, error) {
	pattern = strings.TrimPrefix(pattern, "./")
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}

	tracked, err := r.client.ListFilesAtRef(ctx, r.cfg.RepoPath, headRef)
	if err != nil {
		return nil, fmt.Errorf("failed to list files at %s: %w", headRef, err)
	}

	selected := make([]string, 0, len(tracked))
	for _, f := range tracked {
		if r.cfg.PathFilter != "" && !strings.HasPrefix(f, r.cfg.PathFilter) {
			continue
		}
		if contract.ShouldIgnore(f, r.cfg.Excludes) {
			continue
		}
		if !matchPattern(pattern, f) {
			continue
		}
		selected = append(selected, f)
	}
	slices.Sort(selected)

	return &GitFileSet{
		repo:    r,
		pattern: pattern,
		paths:   slices.Compact(selected),
		tracked: tracked,
	}, nil
}

// matchPattern reports whether file matches an already validated pattern.
func matchPattern(pattern, file string) bool {
	if pattern == "" {
		return true
	}
	if ok, _ := doublestar.Match(pattern, file); ok {
		return true
	}
	if strings.Contains(pattern, "/") {
		return false
	}
	ok, _ := doublestar.Match(pattern, path.Base(file))
	return ok
}
