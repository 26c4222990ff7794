// Package report binds a repository to a file pattern and retrieves the
// hotspot report data for the files it currently tracks.
package report

import (
	"context"
	"errors"

	"github.com/hotspotlabs/hotreport/internal/contract"
	"github.com/hotspotlabs/hotreport/schema"
)

// ErrNilRepository is returned when a request is built without a repository.
var ErrNilRepository = errors.New("hotspots report request needs a repository")

// HotspotsReportRequest asks a repository for the current files matching a
// pattern and has that file set generate its reports.
// It is immutable once built and safe for concurrent use.
type HotspotsReportRequest struct {
	repo    contract.Repository
	pattern string
}

// NewHotspotsReportRequest binds repo and pattern. The pattern is passed to the
// repository as is; an empty pattern means whatever the repository says it means.
func NewHotspotsReportRequest(repo contract.Repository, pattern string) (*HotspotsReportRequest, error) {
	if repo == nil {
		return nil, ErrNilRepository
	}
	return &HotspotsReportRequest{repo: repo, pattern: pattern}, nil
}

// Repository returns the bound repository.
func (r *HotspotsReportRequest) Repository() contract.Repository {
	return r.repo
}

// Pattern returns the bound file pattern.
func (r *HotspotsReportRequest) Pattern() string {
	return r.pattern
}

// RawData returns the reports generated for the repository's current files
// matching the bound pattern. Errors from either step are returned untouched.
func (r *HotspotsReportRequest) RawData(ctx context.Context) (*schema.ReportData, error) {
	files, err := r.repo.CurrentFiles(ctx, r.pattern)
	if err != nil {
		return nil, err
	}
	return files.GenerateReports(ctx)
}
