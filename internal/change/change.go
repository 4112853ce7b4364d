// Package change models the pending VCS changes a hotfix is built from and
// reads them from the usual git text formats.
package change

import (
	"os"
	"path/filepath"
	"strings"
)

// Status is the kind of modification recorded for a path.
type Status byte

const (
	Modified Status = 'M'
	Added    Status = 'A'
	Deleted  Status = 'D'
	Renamed  Status = 'R'
	Copied   Status = 'C'
)

// Entry is one changed file. AfterPath is empty for deletions.
type Entry struct {
	AfterPath string // absolute path of the current on-disk file
	IsDir     bool
	Extension string // lowercase, with leading dot (".java"); may be empty
	Status    Status
}

// Deleted reports whether the entry has no after-revision.
func (e Entry) Deleted() bool { return e.AfterPath == "" }

// FromPath builds an entry for an existing (or vanished) file. A path that no
// longer exists on disk is treated as a deletion, mirroring a change whose
// after-revision cannot be materialised.
func FromPath(path string, st Status) (Entry, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Entry{}, err
	}
	if st == Deleted {
		return Entry{Status: Deleted}, nil
	}
	fi, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return Entry{Status: Deleted}, nil
		}
		return Entry{}, err
	}
	return Entry{
		AfterPath: abs,
		IsDir:     fi.IsDir(),
		Extension: strings.ToLower(filepath.Ext(abs)),
		Status:    st,
	}, nil
}

// AfterPaths returns the after-paths of all non-deleted entries, in order.
func AfterPaths(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Deleted() {
			out = append(out, e.AfterPath)
		}
	}
	return out
}
