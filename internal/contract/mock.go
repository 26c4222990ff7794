package contract

import (
	"context"
	"time"

	"github.com/hotspotlabs/hotreport/schema"
	"github.com/stretchr/testify/mock"
)

// MockGitClient is a mock implementation of GitClient for testing.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// GetRepoRoot implements the GitClient interface.
func (m *MockGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	ret := m.Called(ctx, contextPath)
	return ret.String(0), ret.Error(1)
}

// GetRepoHash implements the GitClient interface.
func (m *MockGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	return ret.String(0), ret.Error(1)
}

// ListFilesAtRef implements the GitClient interface.
func (m *MockGitClient) ListFilesAtRef(ctx context.Context, repoPath string, ref string) ([]string, error) {
	ret := m.Called(ctx, repoPath, ref)
	files, _ := ret.Get(0).([]string)
	return files, ret.Error(1)
}

// GetActivityLog implements the GitClient interface.
func (m *MockGitClient) GetActivityLog(ctx context.Context, repoPath string, startTime, endTime time.Time) ([]byte, error) {
	ret := m.Called(ctx, repoPath, startTime, endTime)
	out, _ := ret.Get(0).([]byte)
	return out, ret.Error(1)
}

// MockRepository is a mock implementation of Repository for testing.
type MockRepository struct {
	mock.Mock
}

var _ Repository = &MockRepository{} // Compile-time check

// CurrentFiles implements the Repository interface.
func (m *MockRepository) CurrentFiles(ctx context.Context, pattern string) (FileSet, error) {
	ret := m.Called(ctx, pattern)
	fs, _ := ret.Get(0).(FileSet)
	return fs, ret.Error(1)
}

// MockFileSet is a mock implementation of FileSet for testing.
type MockFileSet struct {
	mock.Mock
}

var _ FileSet = &MockFileSet{} // Compile-time check

// Paths implements the FileSet interface.
func (m *MockFileSet) Paths() []string {
	ret := m.Called()
	paths, _ := ret.Get(0).([]string)
	return paths
}

// GenerateReports implements the FileSet interface.
func (m *MockFileSet) GenerateReports(ctx context.Context) (*schema.ReportData, error) {
	ret := m.Called(ctx)
	data, _ := ret.Get(0).(*schema.ReportData)
	return data, ret.Error(1)
}
