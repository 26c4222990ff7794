package agg

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hotspotlabs/hotreport/internal/contract"
	"github.com/hotspotlabs/hotreport/schema"
)

// currentCacheVersion defines the version of the cached aggregate layout.
const currentCacheVersion = 2

// cacheTTL is how long an entry stays valid regardless of version.
const cacheTTL = 7 * 24 * time.Hour

// CachedAggregateActivity returns the aggregated activity for the configured window,
// serving it from the activity store when a fresh entry exists.
// Cache read or write failures never fail the report; they fall back to direct computation.
func CachedAggregateActivity(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager, tracked []string) (*schema.AggregateOutput, error) {
	var activity contract.CacheStore
	if mgr != nil {
		activity = mgr.GetActivityStore()
	}
	if activity == nil {
		return AggregateActivity(ctx, cfg, client, tracked)
	}

	key, ok := generateCacheKey(ctx, cfg, client)
	if !ok {
		return AggregateActivity(ctx, cfg, client, tracked)
	}

	if result := checkCacheHit(activity, key, time.Now()); result != nil {
		return result, nil
	}
	return computeAndStore(ctx, cfg, client, activity, key, tracked)
}

// checkCacheHit attempts to retrieve and validate a cached result.
func checkCacheHit(activity contract.CacheStore, key string, now time.Time) *schema.AggregateOutput {
	data, version, ts, err := activity.Get(key)
	if err != nil {
		return nil // Cache miss
	}
	if version != currentCacheVersion || now.Sub(time.Unix(ts, 0)) > cacheTTL {
		return nil
	}

	result := schema.NewAggregateOutput()
	if err := json.Unmarshal(data, result); err != nil {
		contract.LogWarn("Ignoring unreadable cache entry", err)
		return nil
	}
	return result
}

// computeAndStore computes the result and stores it in cache.
func computeAndStore(ctx context.Context, cfg *contract.Config, client contract.GitClient, activity contract.CacheStore, key string, tracked []string) (*schema.AggregateOutput, error) {
	result, err := AggregateActivity(ctx, cfg, client, tracked)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(result)
	if err != nil {
		contract.LogWarn("Cannot encode activity for caching", err)
		return result, nil
	}
	if err := activity.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
		contract.LogWarn("Cannot write activity cache", err)
	}
	return result, nil
}

// generateCacheKey creates a unique key from the repository state and the analysis window.
// The pattern is left out since aggregation always covers the whole repository.
// Without a HEAD hash there is nothing safe to key on, so ok is false.
func generateCacheKey(ctx context.Context, cfg *contract.Config, client contract.GitClient) (string, bool) {
	repoHash, err := client.GetRepoHash(ctx, cfg.RepoPath)
	if err != nil || repoHash == "" {
		return "", false
	}

	key := fmt.Sprintf("%s:%d:%d:%d:%s",
		cfg.RepoPath,
		cfg.GetAnalysisStartTime().Unix(),
		cfg.GetAnalysisEndTime().Unix(),
		cfg.RecentSince().Unix(),
		repoHash,
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key))), true
}
