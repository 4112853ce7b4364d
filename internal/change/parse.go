package change

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Parse reads a change list and resolves relative paths against base.
//
// Accepted line forms (blank lines and '#' comments are skipped):
//
//	M\tpath                 git diff --name-status
//	R100\told\tnew          rename / copy with similarity score
//	XY path                 git status --porcelain (v1)
//	R  old -> new           porcelain rename
//	path                    bare path, treated as modified
func Parse(r io.Reader, base string) ([]Entry, error) {
	var out []Entry
	s := bufio.NewScanner(r)
	lineNo := 0
	for s.Scan() {
		lineNo++
		line := strings.TrimRight(s.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		st, path, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("change list line %d: %w", lineNo, err)
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(base, filepath.FromSlash(path))
		}
		e, err := FromPath(path, st)
		if err != nil {
			return nil, fmt.Errorf("change list line %d: %w", lineNo, err)
		}
		out = append(out, e)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseLine(line string) (Status, string, error) {
	if strings.Contains(line, "\t") {
		return parseNameStatus(line)
	}
	if len(line) > 3 && line[2] == ' ' && isPorcelainCode(line[:2]) {
		return parsePorcelain(line)
	}
	return Modified, strings.TrimSpace(line), nil
}

func parseNameStatus(line string) (Status, string, error) {
	fields := strings.Split(line, "\t")
	code := strings.TrimSpace(fields[0])
	if code == "" {
		return 0, "", fmt.Errorf("missing status in %q", line)
	}
	st, err := statusOf(code[0])
	if err != nil {
		return 0, "", err
	}
	switch st {
	case Renamed, Copied:
		if len(fields) < 3 {
			return 0, "", fmt.Errorf("%c needs old and new path in %q", st, line)
		}
		return st, unquote(fields[2]), nil
	default:
		if len(fields) < 2 || fields[1] == "" {
			return 0, "", fmt.Errorf("missing path in %q", line)
		}
		return st, unquote(fields[1]), nil
	}
}

func parsePorcelain(line string) (Status, string, error) {
	code, rest := line[:2], line[3:]
	if code == "??" {
		return Added, unquote(rest), nil
	}
	// Worktree column wins over index column: it describes the file on disk.
	c := code[1]
	if c == ' ' {
		c = code[0]
	}
	st, err := statusOf(c)
	if err != nil {
		return 0, "", err
	}
	if st == Renamed || st == Copied {
		if i := strings.Index(rest, " -> "); i >= 0 {
			rest = rest[i+len(" -> "):]
		}
	}
	return st, unquote(rest), nil
}

func statusOf(c byte) (Status, error) {
	switch c {
	case 'M', 'T', 'U':
		return Modified, nil
	case 'A':
		return Added, nil
	case 'D':
		return Deleted, nil
	case 'R':
		return Renamed, nil
	case 'C':
		return Copied, nil
	}
	return 0, fmt.Errorf("unknown status %q", string(c))
}

func isPorcelainCode(code string) bool {
	if code == "??" {
		return true
	}
	for i := 0; i < 2; i++ {
		switch code[i] {
		case ' ', 'M', 'T', 'A', 'D', 'R', 'C', 'U':
		default:
			return false
		}
	}
	return code != "  "
}

// unquote strips the double quotes git puts around paths with special
// characters. Escape sequences inside are left as-is.
func unquote(p string) string {
	p = strings.TrimSpace(p)
	if len(p) >= 2 && p[0] == '"' && p[len(p)-1] == '"' {
		return p[1 : len(p)-1]
	}
	return p
}
