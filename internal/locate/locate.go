// Package locate maps a changed file to the files that must ship in a hotfix.
//
// Plain resources ship as they are. Compiled sources ship as their compiled
// units, found by listing the parallel build output directory: Foo.java
// resolves to Foo.class plus every nested or anonymous unit (Foo$Inner.class,
// Foo$1.class). Entry names are relative to the archive root with the
// src/{main|test}/{java|resources} segment removed.
package locate

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"quick-hotfix/internal/change"
	"quick-hotfix/internal/logging"
)

// ErrOutsideRoot is returned for a change that does not live under the
// archive root.
var ErrOutsideRoot = errors.New("change outside archive root")

// Artifact is one file to place in the archive.
type Artifact struct {
	Name   string // slash-separated entry name
	Source string // absolute path on disk
}

// Locator resolves changes using a Layout.
type Locator struct {
	Layout Layout
	Log    *logging.Logger
}

// New returns a locator for layout. Zero-valued fields fall back to
// DefaultLayout.
func New(layout Layout, log *logging.Logger) *Locator {
	def := DefaultLayout()
	if layout.OutputDir == "" {
		layout.OutputDir = def.OutputDir
	}
	if len(layout.CompiledExtensions) == 0 {
		layout.CompiledExtensions = def.CompiledExtensions
	}
	if layout.UnitExtension == "" {
		layout.UnitExtension = def.UnitExtension
	}
	return &Locator{Layout: layout, Log: log}
}

// Locate returns the artifacts for one change. Deletions and directories
// yield nothing. A compiled source without compiled output also yields
// nothing; that is logged, not an error.
func (l *Locator) Locate(e change.Entry, root string) ([]Artifact, error) {
	if e.Deleted() || e.IsDir {
		return nil, nil
	}
	rel, err := filepath.Rel(root, e.AfterPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrOutsideRoot, e.AfterPath)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") || rel == "." {
		return nil, fmt.Errorf("%w: %s not under %s", ErrOutsideRoot, e.AfterPath, root)
	}
	trimmed := TrimSourceRoot(rel)

	ext := e.Extension
	if ext == "" {
		ext = filepath.Ext(e.AfterPath)
	}
	if !l.Layout.compiled(ext) {
		return []Artifact{{Name: trimmed, Source: e.AfterPath}}, nil
	}
	return l.compiledUnits(e.AfterPath, ext, trimmed)
}

// LocateAll resolves every change in order and concatenates the results.
func (l *Locator) LocateAll(entries []change.Entry, root string) ([]Artifact, error) {
	var out []Artifact
	for _, e := range entries {
		arts, err := l.Locate(e, root)
		if err != nil {
			return nil, err
		}
		out = append(out, arts...)
	}
	return out, nil
}

func (l *Locator) compiledUnits(src, ext, trimmed string) ([]Artifact, error) {
	parent := filepath.ToSlash(filepath.Dir(src))
	outDir, ok := OutputDirFor(parent, l.Layout.OutputDir)
	if !ok {
		l.Log.Debugf("skip %s: parent directory has no source root", src)
		return nil, nil
	}
	outDir = filepath.FromSlash(outDir)

	base := filepath.Base(src)
	stem := base[:len(base)-len(ext)]
	names, err := l.matchUnits(outDir, stem)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		l.Log.Warnf("no compiled output for %s in %s", src, outDir)
		return nil, nil
	}

	entryDir := path.Dir(trimmed)
	out := make([]Artifact, 0, len(names))
	for _, n := range names {
		name := n
		if entryDir != "." {
			name = entryDir + "/" + n
		}
		out = append(out, Artifact{Name: name, Source: filepath.Join(outDir, n)})
	}
	return out, nil
}

// matchUnits lists dir and returns, sorted, the regular files that are
// stem's compiled unit or one of its nested units. A missing dir matches
// nothing.
func (l *Locator) matchUnits(dir, stem string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	unit := l.Layout.UnitExtension
	primary := stem + unit
	nestedPrefix := stem + "$"
	var names []string
	for _, d := range ents {
		if d.IsDir() {
			continue
		}
		n := d.Name()
		switch {
		case strings.EqualFold(n, primary):
		case strings.HasPrefix(n, nestedPrefix) && hasSuffixFold(n, unit):
		default:
			continue
		}
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}
