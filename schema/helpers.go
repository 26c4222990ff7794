package schema

import (
	"sort"
	"strings"
	"unicode"
)

// trimNamePart strips punctuation from both ends of a name part but keeps
// hyphens and apostrophes that belong to the name itself.
func trimNamePart(p string) string {
	cp := strings.TrimFunc(p, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '-' && r != '\'' && r != '.'
	})
	return strings.TrimSuffix(cp, ".")
}

// AbbreviateName formats "Ada Lovelace" to "Ada L".
// Single-word names and bot accounts are returned unchanged.
func AbbreviateName(name string) string {
	trimmed := strings.TrimSpace(name)
	if strings.Contains(trimmed, "[bot]") {
		return strings.Join(strings.Fields(trimmed), " ")
	}
	trimmed = strings.Trim(trimmed, "()\"'`")

	var parts []string
	for _, p := range strings.Fields(trimmed) {
		if cp := trimNamePart(p); cp != "" {
			parts = append(parts, cp)
		}
	}

	switch len(parts) {
	case 0:
		return trimmed
	case 1:
		return parts[0]
	default:
		last := []rune(parts[len(parts)-1])
		return parts[0] + " " + string(last[0])
	}
}

// FormatOwners formats the top owners as "Ada L, Alan T".
func FormatOwners(owners []string) string {
	abbreviated := make([]string, 0, len(owners))
	for _, owner := range owners {
		abbreviated = append(abbreviated, AbbreviateName(owner))
	}
	return strings.Join(abbreviated, ", ")
}

// TopOwners returns up to n authors ordered by commit count, highest first.
// Ties are broken by name so the output is deterministic.
func TopOwners(contribs map[string]int, n int) []string {
	if n <= 0 || len(contribs) == 0 {
		return nil
	}
	authors := make([]string, 0, len(contribs))
	for author := range contribs {
		authors = append(authors, author)
	}
	sort.Slice(authors, func(i, j int) bool {
		ci, cj := contribs[authors[i]], contribs[authors[j]]
		if ci != cj {
			return ci > cj
		}
		return authors[i] < authors[j]
	})
	if len(authors) > n {
		authors = authors[:n]
	}
	return authors
}
