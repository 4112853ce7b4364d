// Package validate checks a bundle manifest for structural problems before
// it is trusted by verify or inspect. All issues found are reported in one
// aggregated error.
package validate

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"quick-hotfix/internal/bundle"
)

// ErrInvalidManifest wraps every validation failure.
var ErrInvalidManifest = errors.New("invalid manifest")

// Manifest validates a decoded manifest:
//
//   - formatVersion and bundleId are present; bundleId matches the entries.
//   - root is an absolute path.
//   - Entry names are relative, slash-separated, free of ".." and unique.
//   - Hashes are 32 lowercase hex chars (xxh3-128); sizes are not negative.
//   - Sources, when recorded, are absolute.
func Manifest(m bundle.Manifest) error {
	var errs errlist

	if strings.TrimSpace(m.FormatVersion) == "" {
		errs.add("formatVersion must be non-empty")
	}
	if m.Root == "" || !filepath.IsAbs(m.Root) {
		errs.add("root must be an absolute path, got %q", m.Root)
	}

	seen := make(map[string]struct{}, len(m.Entries))
	for i, e := range m.Entries {
		prefix := fmt.Sprintf("entries[%d] (%s)", i, e.Name)

		switch {
		case e.Name == "":
			errs.add("%s: name must be non-empty", prefix)
		case strings.HasPrefix(e.Name, "/") || filepath.IsAbs(e.Name):
			errs.add("%s: name must be relative", prefix)
		case strings.Contains(e.Name, `\`):
			errs.add("%s: name must use forward slashes", prefix)
		case hasDotDot(e.Name):
			errs.add("%s: name must not contain '..' segments", prefix)
		}

		if _, dup := seen[e.Name]; dup {
			errs.add("%s: duplicate entry name", prefix)
		} else if e.Name != "" {
			seen[e.Name] = struct{}{}
		}

		if !reHex32.MatchString(e.Hash) {
			errs.add("%s: hash must be 32 lowercase hex chars, got %q", prefix, e.Hash)
		}
		if e.Size < 0 {
			errs.add("%s: size must be >= 0 (got %d)", prefix, e.Size)
		}
		if e.Source != "" && !filepath.IsAbs(e.Source) {
			errs.add("%s: source must be absolute, got %q", prefix, e.Source)
		}
	}

	if m.BundleID == "" {
		errs.add("bundleId must be non-empty")
	} else if want := bundle.BundleID(m.Entries); m.BundleID != want {
		errs.add("bundleId %s does not match entries (want %s)", m.BundleID, want)
	}

	return errs.err()
}

var reHex32 = regexp.MustCompile(`^[0-9a-f]{32}$`)

func hasDotDot(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

// errlist aggregates multiple validation issues into a single error.
type errlist struct {
	msgs []string
}

func (e *errlist) add(format string, args ...any) {
	e.msgs = append(e.msgs, fmt.Sprintf(format, args...))
}

func (e *errlist) err() error {
	if len(e.msgs) == 0 {
		return nil
	}
	return fmt.Errorf("%w:\n%s", ErrInvalidManifest, strings.Join(e.msgs, "\n"))
}
