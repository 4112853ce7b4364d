package sortutil

import (
	"path/filepath"
	"sort"
)

// UniquePaths returns the cleaned, de-duplicated, non-empty paths sorted
// lexicographically. The input slice is not modified.
func UniquePaths(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		c := filepath.Clean(p)
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
