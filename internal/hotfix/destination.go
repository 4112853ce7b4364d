package hotfix

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// Extension is the file extension of a hotfix archive.
const Extension = ".zip"

const (
	defaultName = "hotfix"
	maxNameLen  = 64
)

// Destination normalises a user-supplied archive path: ".zip" is appended
// unless the path already ends in it (case-insensitively).
func Destination(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("empty destination path")
	}
	if strings.EqualFold(filepath.Ext(path), Extension) {
		return path, nil
	}
	return path + Extension, nil
}

// SuggestDestination proposes <dir>/<name>.zip where name is derived from
// the first line of message, and picks <name>_1.zip, <name>_2.zip, ... when
// the file already exists.
func SuggestDestination(dir, message string) string {
	name := fileNameFrom(message)
	candidate := filepath.Join(dir, name+Extension)
	for i := 1; exists(candidate); i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", name, i, Extension))
	}
	return candidate
}

func fileNameFrom(message string) string {
	line := message
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.TrimSpace(line) {
		ok := unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '.'
		if !ok {
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
			continue
		}
		b.WriteRune(r)
		lastUnderscore = false
	}
	name := strings.Trim(b.String(), "_.")
	if len(name) > maxNameLen {
		name = strings.TrimRight(name[:maxNameLen], "_.")
	}
	if name == "" {
		return defaultName
	}
	return name
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
