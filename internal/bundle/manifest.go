package bundle

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const manifestFormat = "1"

// Manifest is the optional sidecar written next to an archive
// (<archive>.json). It records where each entry came from so the bundle can
// be verified against the workspace later.
type Manifest struct {
	FormatVersion string  `json:"formatVersion"`
	BundleID      string  `json:"bundleId"`
	Created       string  `json:"created"`
	Root          string  `json:"root"`
	Build         string  `json:"build,omitempty"`
	Module        string  `json:"module,omitempty"`
	JDK           string  `json:"jdk,omitempty"`
	Message       string  `json:"message,omitempty"`
	Entries       []Entry `json:"entries"`
}

// ManifestPath returns the sidecar path for an archive.
func ManifestPath(zipPath string) string { return zipPath + ".json" }

// BundleID derives a name-based UUID (v5) from entry names and hashes, so
// identical bundles share an ID.
func BundleID(entries []Entry) string {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.Name)
		b.WriteByte(0)
		b.WriteString(e.Hash)
		b.WriteByte('\n')
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(b.String())).String()
}

// NewManifest fills the derived fields of a manifest for rep.
func NewManifest(rep Report, root, created string) Manifest {
	entries := append([]Entry{}, rep.Entries...)
	return Manifest{
		FormatVersion: manifestFormat,
		BundleID:      BundleID(entries),
		Created:       created,
		Root:          root,
		Entries:       entries,
	}
}

// WriteManifest writes m atomically: temp file in the same directory, then
// rename, so readers never observe a partially-written file.
func WriteManifest(path string, m Manifest) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-")
	if err != nil {
		return err
	}
	tmp := f.Name()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Chmod(FileMode); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// ReadManifest loads a sidecar manifest. A missing file returns (nil, nil).
func ReadManifest(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
