// Package resolve computes the archive root: the deepest directory shared by
// the VCS roots of all selected changes. Everything here is pure path
// arithmetic; the filesystem is never touched.
package resolve

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"quick-hotfix/internal/sortutil"
)

var (
	ErrNoRootsFound     = errors.New("no VCS roots found")
	ErrNoCommonAncestor = errors.New("no common ancestor found for changes")
)

// ResolveRoot folds the distinct roots with CommonAncestor. Input order does
// not affect the result.
func ResolveRoot(roots []string) (string, error) {
	uniq := sortutil.UniquePaths(roots)
	if len(uniq) == 0 {
		return "", ErrNoRootsFound
	}
	root := uniq[0]
	for _, r := range uniq[1:] {
		anc, ok := CommonAncestor(root, r)
		if !ok {
			return "", fmt.Errorf("%w: %s and %s", ErrNoCommonAncestor, root, r)
		}
		root = anc
	}
	if _, ok := CommonAncestor(root, root); !ok {
		return "", fmt.Errorf("%w: %s", ErrNoCommonAncestor, root)
	}
	return root, nil
}

// CommonAncestor returns the deepest directory that is a component-wise
// prefix of both a and b. A bare filesystem root does not count: ok is false
// when the paths share nothing but "/" or sit on different volumes.
func CommonAncestor(a, b string) (string, bool) {
	va, pa := split(a)
	vb, pb := split(b)
	if !strings.EqualFold(va, vb) {
		return "", false
	}
	n := 0
	for n < len(pa) && n < len(pb) && pa[n] == pb[n] {
		n++
	}
	if n == 0 {
		return "", false
	}
	return va + string(filepath.Separator) + filepath.Join(pa[:n]...), true
}

func split(p string) (string, []string) {
	p = filepath.Clean(p)
	vol := filepath.VolumeName(p)
	rest := strings.Trim(p[len(vol):], string(filepath.Separator))
	if rest == "" {
		return vol, nil
	}
	return vol, strings.Split(rest, string(filepath.Separator))
}
