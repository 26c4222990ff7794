package agg

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hotspotlabs/hotreport/internal/contract"
	"github.com/hotspotlabs/hotreport/internal/iocache"
	"github.com/hotspotlabs/hotreport/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func cachedOutput(t *testing.T) []byte {
	t.Helper()
	out := schema.NewAggregateOutput()
	out.CommitMap["test.go"] = 5
	data, err := json.Marshal(out)
	require.NoError(t, err)
	return data
}

func TestCheckCacheHit(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		data    []byte
		version int
		ts      int64
		err     error
		wantHit bool
	}{
		{"hit", cachedOutput(t), currentCacheVersion, now.Unix(), nil, true},
		{"version mismatch", []byte("{}"), currentCacheVersion - 1, now.Unix(), nil, false},
		{"stale", []byte("{}"), currentCacheVersion, now.Add(-8 * 24 * time.Hour).Unix(), nil, false},
		{"store error", nil, 0, 0, assert.AnError, false},
		{"bad json", []byte("invalid json"), currentCacheVersion, now.Unix(), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &iocache.MockCacheStore{}
			store.On("Get", "key").Return(tt.data, tt.version, tt.ts, tt.err)

			actual := checkCacheHit(store, "key", now)
			if tt.wantHit {
				require.NotNil(t, actual)
				assert.Equal(t, 5, actual.CommitMap["test.go"])
			} else {
				assert.Nil(t, actual)
			}
			store.AssertExpectations(t)
		})
	}
}

func TestGenerateCacheKey(t *testing.T) {
	ctx := context.Background()
	client := &contract.MockGitClient{}
	client.On("GetRepoHash", mock.Anything, mock.AnythingOfType("string")).Return("abcd1234", nil)

	cfg := &contract.Config{
		RepoPath:  "/test/repo",
		StartTime: time.Unix(1000000, 0),
		EndTime:   time.Unix(2000000, 0),
	}
	key1, ok := generateCacheKey(ctx, cfg, client)
	require.True(t, ok)
	assert.Len(t, key1, 64)

	sameHour := cfg.Clone()
	sameHour.EndTime = cfg.EndTime.Add(time.Second)
	key2, _ := generateCacheKey(ctx, sameHour, client)
	assert.Equal(t, key1, key2, "windows inside the same hour share an entry")

	otherMode := cfg.Clone()
	otherMode.Mode = schema.StaleMode
	otherMode.Pattern = "*.rb"
	key3, _ := generateCacheKey(ctx, otherMode, client)
	assert.Equal(t, key1, key3, "mode and pattern do not affect aggregation")

	otherRepo := cfg.Clone()
	otherRepo.RepoPath = "/different/repo"
	key4, _ := generateCacheKey(ctx, otherRepo, client)
	assert.NotEqual(t, key1, key4)
}

func TestGenerateCacheKey_RepoHashError(t *testing.T) {
	client := &contract.MockGitClient{}
	client.On("GetRepoHash", mock.Anything, "/test/repo").Return("", assert.AnError)

	key, ok := generateCacheKey(context.Background(), &contract.Config{RepoPath: "/test/repo"}, client)
	assert.False(t, ok)
	assert.Empty(t, key)
}

func TestCachedAggregateActivity_Hit(t *testing.T) {
	ctx := context.Background()
	cfg := &contract.Config{RepoPath: "/repo", EndTime: baseTime}
	client := &contract.MockGitClient{}
	client.On("GetRepoHash", ctx, "/repo").Return("abc", nil)

	store := &iocache.MockCacheStore{}
	store.On("Get", mock.AnythingOfType("string")).Return(cachedOutput(t), currentCacheVersion, time.Now().Unix(), nil)
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetActivityStore").Return(store)

	output, err := CachedAggregateActivity(ctx, cfg, client, mgr, []string{"test.go"})
	require.NoError(t, err)
	assert.Equal(t, 5, output.CommitMap["test.go"])
	client.AssertNotCalled(t, "GetActivityLog", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCachedAggregateActivity_MissStores(t *testing.T) {
	ctx := context.Background()
	cfg := &contract.Config{RepoPath: "/repo", EndTime: baseTime}
	client := &contract.MockGitClient{}
	client.On("GetRepoHash", ctx, "/repo").Return("abc", nil)
	client.On("GetActivityLog", ctx, "/repo", mock.Anything, mock.Anything).
		Return([]byte("--h|Alice|2024-06-01T10:00:00Z\n1\t1\tmain.go\n"), nil)

	store := &iocache.MockCacheStore{}
	store.On("Get", mock.AnythingOfType("string")).Return(nil, 0, int64(0), assert.AnError)
	store.On("Set", mock.AnythingOfType("string"), mock.Anything, currentCacheVersion, mock.AnythingOfType("int64")).Return(nil)
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetActivityStore").Return(store)

	output, err := CachedAggregateActivity(ctx, cfg, client, mgr, []string{"main.go"})
	require.NoError(t, err)
	assert.Equal(t, 1, output.CommitMap["main.go"])
	store.AssertExpectations(t)
}

func TestCachedAggregateActivity_SetFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	cfg := &contract.Config{RepoPath: "/repo", EndTime: baseTime}
	client := &contract.MockGitClient{}
	client.On("GetRepoHash", ctx, "/repo").Return("abc", nil)
	client.On("GetActivityLog", ctx, "/repo", mock.Anything, mock.Anything).Return([]byte{}, nil)

	store := &iocache.MockCacheStore{}
	store.On("Get", mock.Anything).Return(nil, 0, int64(0), assert.AnError)
	store.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetActivityStore").Return(store)

	output, err := CachedAggregateActivity(ctx, cfg, client, mgr, nil)
	require.NoError(t, err)
	assert.NotNil(t, output)
}

func TestCachedAggregateActivity_NoStore(t *testing.T) {
	ctx := context.Background()
	cfg := &contract.Config{RepoPath: "/repo", EndTime: baseTime}
	client := &contract.MockGitClient{}
	client.On("GetActivityLog", ctx, "/repo", mock.Anything, mock.Anything).Return([]byte{}, nil)

	output, err := CachedAggregateActivity(ctx, cfg, client, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, output)
	client.AssertNotCalled(t, "GetRepoHash", mock.Anything, mock.Anything)
}
