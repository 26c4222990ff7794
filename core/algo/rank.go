package algo

import (
	"cmp"
	"slices"

	"github.com/hotspotlabs/hotreport/schema"
)

// RankFiles sorts files by score in descending order, breaking ties by path,
// and returns the top 'limit' files. If limit is greater than the number
// of files, all files are returned in sorted order.
func RankFiles(files []schema.FileResult, limit int) []schema.FileResult {
	slices.SortStableFunc(files, func(a, b schema.FileResult) int {
		if c := cmp.Compare(b.ModeScore, a.ModeScore); c != 0 {
			return c
		}
		return cmp.Compare(a.Path, b.Path)
	})
	if limit >= 0 && len(files) > limit {
		return files[:limit]
	}
	return files
}

// RankFolders sorts folders by score in descending order, breaking ties by path,
// and returns the top 'limit' folders.
func RankFolders(folders []schema.FolderResult, limit int) []schema.FolderResult {
	slices.SortStableFunc(folders, func(a, b schema.FolderResult) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Path, b.Path)
	})
	if limit >= 0 && len(folders) > limit {
		return folders[:limit]
	}
	return folders
}

func sortKeysByValue(keys []schema.BreakdownKey, values map[schema.BreakdownKey]float64) {
	slices.SortFunc(keys, func(a, b schema.BreakdownKey) int {
		if c := cmp.Compare(values[b], values[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
}
