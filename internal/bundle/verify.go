package bundle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/xxh3"
	"golang.org/x/exp/mmap"

	"quick-hotfix/internal/ziputil"
)

// Mismatch reasons reported by Verify.
const (
	ReasonMissingEntry  = "missing from archive"
	ReasonCorruptEntry  = "archive entry differs from manifest"
	ReasonSourceMissing = "source file missing"
	ReasonSourceChanged = "source file changed"
	ReasonUnexpected    = "not recorded in manifest"
)

// Mismatch is one entry that no longer matches its recorded source.
type Mismatch struct {
	Name   string
	Source string
	Reason string
}

// Verify compares an archive with its manifest and with the current content
// of every recorded source file. Archive entries the manifest does not know
// are reported after the recorded ones, in archive order.
func Verify(ctx context.Context, zipPath string, m Manifest) ([]Mismatch, error) {
	listing, err := ReadListing(zipPath)
	if err != nil {
		return nil, err
	}
	inZip := make(map[string]Entry, len(listing))
	for _, e := range listing {
		inZip[e.Name] = e
	}

	var out []Mismatch
	buf := make([]byte, ziputil.ChunkSize)
	for _, e := range m.Entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		z, ok := inZip[e.Name]
		switch {
		case !ok:
			out = append(out, Mismatch{Name: e.Name, Source: e.Source, Reason: ReasonMissingEntry})
			continue
		case z.Hash != e.Hash:
			out = append(out, Mismatch{Name: e.Name, Source: e.Source, Reason: ReasonCorruptEntry})
			continue
		}
		if e.Source == "" {
			continue
		}
		sum, err := hashFile(e.Source, buf)
		if errors.Is(err, os.ErrNotExist) {
			out = append(out, Mismatch{Name: e.Name, Source: e.Source, Reason: ReasonSourceMissing})
			continue
		}
		if err != nil {
			return nil, err
		}
		if sum != e.Hash {
			out = append(out, Mismatch{Name: e.Name, Source: e.Source, Reason: ReasonSourceChanged})
		}
	}

	recorded := make(map[string]struct{}, len(m.Entries))
	for _, e := range m.Entries {
		recorded[e.Name] = struct{}{}
	}
	for _, z := range listing {
		if _, ok := recorded[z.Name]; !ok {
			out = append(out, Mismatch{Name: z.Name, Reason: ReasonUnexpected})
		}
	}
	return out, nil
}

// hashFile memory-maps path and hashes it in buffer-sized reads.
func hashFile(path string, buf []byte) (string, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return "", err
	}
	defer r.Close()
	h := xxh3.New()
	if _, err := io.CopyBuffer(h, io.NewSectionReader(r, 0, int64(r.Len())), buf); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hashHex(h), nil
}
