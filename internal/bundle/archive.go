// Package bundle writes and reads hotfix archives.
//
// A hotfix archive holds one deflated entry per resolved artifact, named
// relative to the archive root (com/acme/Foo.class, app.properties). Entries
// keep the caller's order and carry the fixed ZIP timestamp, so the same
// inputs always produce the same bytes.
package bundle

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/zeebo/xxh3"

	"quick-hotfix/internal/locate"
	"quick-hotfix/internal/logging"
	"quick-hotfix/internal/ziputil"
)

// ErrDuplicateEntry is returned when two artifacts map to the same entry name.
var ErrDuplicateEntry = errors.New("duplicate archive entry")

// FileMode is the permission of a finished archive and its manifest.
// Temp files start at 0600, so it is applied before the rename.
const FileMode os.FileMode = 0o644

// Entry describes one written (or listed) archive entry.
type Entry struct {
	Name   string `json:"name"`
	Source string `json:"source,omitempty"`
	Size   int64  `json:"size"`
	Hash   string `json:"hash"` // lowercase hex xxh3-128 of the entry body
}

// Report is the result of a successful WriteArchive.
type Report struct {
	Path    string
	Entries []Entry
}

// Options tunes WriteArchive. The zero value is usable.
type Options struct {
	ChunkSize int
	Log       *logging.Logger
}

// WriteArchive streams every artifact into a new zip at dest.
//
// The archive is assembled in a temp file beside dest and renamed over it
// only after every entry was written and the container closed; on failure
// the temp file is removed and dest is left untouched. Entry names are
// checked for duplicates before any file is opened. ctx is checked between
// entries.
func WriteArchive(ctx context.Context, arts []locate.Artifact, dest string, opt Options) (Report, error) {
	names, err := entryNames(arts)
	if err != nil {
		return Report{}, err
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Report{}, fmt.Errorf("mkdir output: %w", err)
	}
	f, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(dest)+"-")
	if err != nil {
		return Report{}, fmt.Errorf("create output: %w", err)
	}
	tmp := f.Name()
	committed := false
	defer func() {
		if !committed {
			_ = f.Close()
			_ = os.Remove(tmp) // best-effort cleanup
		}
	}()

	zw := zip.NewWriter(f)
	zipOpen := true
	defer func() {
		if zipOpen {
			_ = zw.Close()
		}
	}()

	size := opt.ChunkSize
	if size <= 0 {
		size = ziputil.ChunkSize
	}
	buf := make([]byte, size)

	rep := Report{Path: dest, Entries: make([]Entry, 0, len(arts))}
	for i, a := range arts {
		if err := ctx.Err(); err != nil {
			return Report{}, fmt.Errorf("archive %s: %w", dest, err)
		}
		e, err := writeEntry(zw, names[i], a.Source, buf)
		if err != nil {
			return Report{}, err
		}
		opt.Log.Debugf("added %s (%d bytes) from %s", e.Name, e.Size, e.Source)
		rep.Entries = append(rep.Entries, e)
	}

	zipOpen = false
	if err := zw.Close(); err != nil {
		return Report{}, fmt.Errorf("finish %s: %w", dest, err)
	}
	if err := f.Chmod(FileMode); err != nil {
		return Report{}, fmt.Errorf("chmod %s: %w", dest, err)
	}
	if err := f.Sync(); err != nil {
		return Report{}, fmt.Errorf("sync %s: %w", dest, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		committed = true
		return Report{}, fmt.Errorf("close %s: %w", dest, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		committed = true
		return Report{}, fmt.Errorf("rename into %s: %w", dest, err)
	}
	committed = true
	return rep, nil
}

func writeEntry(zw *zip.Writer, name, source string, buf []byte) (Entry, error) {
	src, err := os.Open(source)
	if err != nil {
		return Entry{}, fmt.Errorf("read %s: %w", source, err)
	}
	defer src.Close()

	h := xxh3.New()
	n, err := ziputil.CopyBuffer(zw, name, io.TeeReader(src, h), buf)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Name: name, Source: source, Size: n, Hash: hashHex(h)}, nil
}

// entryNames sanitizes every artifact name and rejects collisions.
func entryNames(arts []locate.Artifact) ([]string, error) {
	names := make([]string, len(arts))
	seen := make(map[string]int, len(arts))
	for i, a := range arts {
		n := ziputil.SanitizePath(a.Name)
		if j, ok := seen[n]; ok {
			return nil, fmt.Errorf("%w: %s (from %s and %s)", ErrDuplicateEntry, n, arts[j].Source, a.Source)
		}
		seen[n] = i
		names[i] = n
	}
	return names, nil
}

func hashHex(h *xxh3.Hasher) string {
	return fmt.Sprintf("%x", h.Sum128().Bytes())
}
