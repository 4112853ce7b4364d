package bundle

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"

	"github.com/zeebo/xxh3"

	"quick-hotfix/internal/ziputil"
)

// ReadListing opens a hotfix archive and hashes every entry, in archive order.
func ReadListing(zipPath string) ([]Entry, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", zipPath, err)
	}
	defer zr.Close()

	buf := make([]byte, ziputil.ChunkSize)
	out := make([]Entry, 0, len(zr.File))
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() {
			continue
		}
		e, err := hashEntry(zf, buf)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func hashEntry(zf *zip.File, buf []byte) (Entry, error) {
	rc, err := zf.Open()
	if err != nil {
		return Entry{}, fmt.Errorf("open entry %s: %w", zf.Name, err)
	}
	defer rc.Close()
	h := xxh3.New()
	n, err := io.CopyBuffer(h, rc, buf)
	if err != nil {
		return Entry{}, fmt.Errorf("read entry %s: %w", zf.Name, err)
	}
	return Entry{Name: zf.Name, Size: n, Hash: hashHex(h)}, nil
}

// FormatListing renders entries one per line as "<hash>  <size>  <name>".
func FormatListing(entries []Entry) string {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s  %8d  %s\n", e.Hash, e.Size, e.Name)
	}
	return b.String()
}
