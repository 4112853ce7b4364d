// Package ziputil holds the small zip helpers shared by the bundle writer and
// readers: entry-name normalisation and bounded-buffer streaming.
package ziputil

import (
	"archive/zip"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

// FixedZipTime ensures byte-for-byte reproducible archives (1980-01-01 UTC).
var FixedZipTime = time.Unix(315532800, 0).UTC()

// ChunkSize bounds the copy buffer used for entry bodies.
const ChunkSize = 32 << 10

// SanitizePath normalizes ZIP entry paths (forward slashes on every OS, no
// drive, no leading '/'), and removes '.' and '..' segments without escaping the root.
func SanitizePath(p string) string {
	s := strings.ReplaceAll(filepath.ToSlash(p), `\`, "/")
	if len(s) > 1 && s[1] == ':' {
		s = s[2:]
	}
	s = strings.TrimLeft(s, "/")
	parts := strings.Split(s, "/")
	stack := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" || part == "." {
			continue
		}
		if part == ".." {
			if n := len(stack); n > 0 {
				stack = stack[:n-1]
			}
			continue
		}
		stack = append(stack, part)
	}
	s = strings.Join(stack, "/")
	if s == "" {
		return "entry"
	}
	return s
}

// Header builds a deflated file header with the fixed timestamp.
func Header(name string) *zip.FileHeader {
	h := &zip.FileHeader{Name: SanitizePath(name), Method: zip.Deflate}
	h.SetMode(0o644)
	h.Modified = FixedZipTime
	return h
}

// CopyBuffer creates an entry and streams r into it through buf, so entry
// bodies never need to fit in memory. A nil buf allocates ChunkSize bytes.
func CopyBuffer(zw *zip.Writer, name string, r io.Reader, buf []byte) (int64, error) {
	w, err := zw.CreateHeader(Header(name))
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", name, err)
	}
	if buf == nil {
		buf = make([]byte, ChunkSize)
	}
	n, err := io.CopyBuffer(onlyWriter{w}, onlyReader{r}, buf)
	if err != nil {
		return n, fmt.Errorf("write %s: %w", name, err)
	}
	return n, nil
}

// onlyReader and onlyWriter hide ReaderFrom/WriterTo so io.CopyBuffer
// really uses the caller's buffer.
type onlyReader struct{ io.Reader }
type onlyWriter struct{ io.Writer }
