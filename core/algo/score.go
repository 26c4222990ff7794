// Package algo has the scoring and ranking algorithms behind a hotspot report.
package algo

import (
	"math"
	"strings"

	"github.com/hotspotlabs/hotreport/schema"
)

// Tunable maxima to normalize metrics.
const (
	maxContrib = 20.0    // contributors beyond this saturate
	maxCommits = 500.0   // commits beyond this saturate
	maxSizeKB  = 500.0   // file size in KB beyond this saturate
	maxAgeDays = 3650.0  // ~10 years
	maxChurn   = 5000.0  // total added+deleted lines
	maxLOC     = 10000.0 // lines of code beyond this saturate
	maxRecent  = 50.0    // 50 recent commits is high activity
)

// testFileDiscount is applied to risk scores of test files, since tests often
// have narrow contributors and shouldn't be first-class risks.
const testFileDiscount = 0.75

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}

// normalizedFactors maps every breakdown key to the file's normalized [0,1] value for it.
func normalizedFactors(f *schema.FileResult) map[schema.BreakdownKey]float64 {
	nContrib := clamp01(float64(f.UniqueContributors) / maxContrib)
	nRecent := clamp01(float64(f.RecentCommits) / maxRecent)
	return map[schema.BreakdownKey]float64{
		schema.BreakdownContrib:    nContrib,
		schema.BreakdownCommits:    clamp01(float64(f.Commits) / maxCommits),
		schema.BreakdownLOC:        clamp01(float64(f.LinesOfCode) / maxLOC),
		schema.BreakdownSize:       clamp01((float64(f.SizeBytes) / 1024.0) / maxSizeKB),
		schema.BreakdownAge:        clamp01(math.Log1p(float64(f.AgeDays)) / math.Log1p(maxAgeDays)),
		schema.BreakdownChurn:      clamp01(float64(f.Churn) / maxChurn),
		schema.BreakdownGini:       clamp01(f.Gini),
		schema.BreakdownInvContrib: 1.0 - nContrib,
		schema.BreakdownInvRecent:  1.0 - nRecent,
		schema.BreakdownLowRecent:  1.0 - nRecent,
	}
}

// ComputeScore calculates a file's score (0-100) for the given mode and stores the
// score, the mode and the per-factor breakdown (in percent points) on the file.
// Supports four core scoring modes:
// - hot: Activity hotspots (high commits, churn, contributors)
// - risk: Knowledge risk/bus factor (few contributors, high inequality)
// - complexity: Technical debt candidates (large, old, high total churn)
// - stale: Maintenance debt (important but untouched)
func ComputeScore(f *schema.FileResult, mode schema.ScoringMode, weights map[schema.BreakdownKey]float64) float64 {
	f.Mode = mode
	f.ModeBreakdown = make(map[schema.BreakdownKey]float64, len(weights))

	// A file with no content has nothing to maintain.
	if f.SizeBytes == 0 {
		f.ModeScore = 0
		return 0
	}

	factors := normalizedFactors(f)
	var raw float64
	for key, weight := range weights {
		contribution := weight * factors[key]
		f.ModeBreakdown[key] = contribution * 100.0
		raw += contribution
	}

	score := clampScore(raw * 100.0)
	if mode == schema.RiskMode && IsTestFile(f.Path) {
		score *= testFileDiscount
	}
	f.ModeScore = score
	return score
}

func clampScore(v float64) float64 {
	return math.Min(math.Max(v, 0), 100)
}

// IsTestFile reports whether a path looks like a test file.
func IsTestFile(p string) bool {
	base := p[strings.LastIndex(p, "/")+1:]
	return strings.Contains(base, "_test") ||
		strings.HasPrefix(base, "test_") ||
		strings.Contains(base, ".test.") ||
		strings.Contains(base, ".spec.") ||
		strings.HasSuffix(strings.TrimSuffix(base, ".rb"), "_spec")
}

// Gini calculates the Gini coefficient for a set of values.
// The Gini coefficient measures inequality in a distribution, ranging from 0 (perfect equality)
// to 1 (perfect inequality). It's used here to measure how evenly distributed commits are
// among contributors.
func Gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)
	if mean == 0 {
		return 0
	}

	var diffSum float64
	for i := range n {
		for j := range n {
			diffSum += math.Abs(values[i] - values[j])
		}
	}

	g := diffSum / (2 * float64(n*n) * mean)
	return clamp01(g)
}

// TopBreakdown returns up to n breakdown keys of a file, largest contribution first.
func TopBreakdown(f *schema.FileResult, n int) []schema.BreakdownKey {
	keys := make([]schema.BreakdownKey, 0, len(f.ModeBreakdown))
	for k, v := range f.ModeBreakdown {
		if v > 0 {
			keys = append(keys, k)
		}
	}
	sortKeysByValue(keys, f.ModeBreakdown)
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
