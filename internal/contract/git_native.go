package contract

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/hotspotlabs/hotreport/schema"
)

// NativeGitClient implements the GitClient interface in pure Go with go-git,
// for machines where the git binary is not available.
// Its activity log uses the same text format as LocalGitClient so the two are interchangeable.
type NativeGitClient struct{}

var _ GitClient = &NativeGitClient{} // Compile-time check

// NewNativeGitClient creates a new instance of the go-git backed client.
func NewNativeGitClient() *NativeGitClient {
	return &NativeGitClient{}
}

// NewGitClient returns the client for the given backend.
func NewGitClient(backend schema.GitBackend) GitClient {
	if backend == schema.NativeGitBackend {
		return NewNativeGitClient()
	}
	return NewLocalGitClient()
}

// open opens the repository that contains path.
func (c *NativeGitClient) open(path string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("cannot open Git repository at %q: %w", path, err)
	}
	return repo, nil
}

// GetRepoRoot implements the GitClient interface.
func (c *NativeGitClient) GetRepoRoot(_ context.Context, contextPath string) (string, error) {
	repo, err := c.open(contextPath)
	if err != nil {
		return "", err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("cannot resolve worktree for %q: %w", contextPath, err)
	}
	return wt.Filesystem.Root(), nil
}

// GetRepoHash implements the GitClient interface.
func (c *NativeGitClient) GetRepoHash(_ context.Context, repoPath string) (string, error) {
	repo, err := c.open(repoPath)
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("cannot resolve HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// ListFilesAtRef implements the GitClient interface.
func (c *NativeGitClient) ListFilesAtRef(ctx context.Context, repoPath string, ref string) ([]string, error) {
	repo, err := c.open(repoPath)
	if err != nil {
		return nil, err
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve %q: %w", ref, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, err
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, err
	}

	files := []string{}
	err = tree.Files().ForEach(func(f *object.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		files = append(files, f.Name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// GetActivityLog implements the GitClient interface.
// Merge commits are skipped, matching 'git log --numstat --no-merges'.
func (c *NativeGitClient) GetActivityLog(ctx context.Context, repoPath string, startTime, endTime time.Time) ([]byte, error) {
	repo, err := c.open(repoPath)
	if err != nil {
		return nil, err
	}
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("cannot resolve HEAD: %w", err)
	}

	opts := &git.LogOptions{From: head.Hash()}
	if !startTime.IsZero() {
		opts.Since = &startTime
	}
	if !endTime.IsZero() {
		opts.Until = &endTime
	}
	iter, err := repo.Log(opts)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var buf bytes.Buffer
	err = iter.ForEach(func(commit *object.Commit) error {
		if commit.NumParents() > 1 {
			return nil
		}
		stats, err := commit.StatsContext(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(&buf, "--%s|%s|%s\n", commit.Hash, commit.Author.Name, commit.Author.When.Format(time.RFC3339))
		for _, s := range stats {
			fmt.Fprintf(&buf, "%d\t%d\t%s\n", s.Addition, s.Deletion, s.Name)
		}
		buf.WriteString("\n")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
