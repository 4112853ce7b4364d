package change

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultMarkers are the directory names that identify a VCS working tree.
var DefaultMarkers = []string{".git", ".hg", ".svn", ".bvc"}

// ErrNoVCSRoot is returned when no marker is found above a path.
var ErrNoVCSRoot = errors.New("no VCS root")

// RootFinder maps a path to the root of the repository that contains it.
type RootFinder interface {
	VCSRoot(path string) (string, error)
}

// MarkerFinder walks up from a path until a directory containing one of
// Markers is found. Results are cached per directory.
type MarkerFinder struct {
	Markers []string
	cache   map[string]string
}

// NewMarkerFinder returns a finder using markers, or DefaultMarkers if empty.
func NewMarkerFinder(markers []string) *MarkerFinder {
	if len(markers) == 0 {
		markers = DefaultMarkers
	}
	return &MarkerFinder{Markers: markers, cache: map[string]string{}}
}

func (f *MarkerFinder) VCSRoot(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	dir := abs
	if fi, err := os.Stat(abs); err != nil || !fi.IsDir() {
		dir = filepath.Dir(abs)
	}
	start := dir
	if root, ok := f.cache[start]; ok {
		return root, nil
	}
	for {
		for _, m := range f.Markers {
			if _, err := os.Stat(filepath.Join(dir, m)); err == nil {
				if f.cache == nil {
					f.cache = map[string]string{}
				}
				f.cache[start] = dir
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w above %s", ErrNoVCSRoot, abs)
		}
		dir = parent
	}
}

// StaticRoot is a RootFinder that returns the same root for every path.
type StaticRoot string

func (r StaticRoot) VCSRoot(string) (string, error) {
	return filepath.Abs(string(r))
}

// Roots looks up the VCS root of every non-deleted entry. Deleted entries
// contribute nothing, like changes without an after-revision.
func Roots(entries []Entry, finder RootFinder) ([]string, error) {
	var roots []string
	for _, p := range AfterPaths(entries) {
		root, err := finder.VCSRoot(p)
		if err != nil {
			return nil, err
		}
		roots = append(roots, root)
	}
	return roots, nil
}
