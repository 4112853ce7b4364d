package locate

import (
	"regexp"
	"strings"
)

// sourceRoot matches src/{main|test}/{java|resources} on path-component
// boundaries of a slash-separated path.
var sourceRoot = regexp.MustCompile(`(^|/)src/(?:main|test)/(?:java|resources)(/|$)`)

// Layout describes how compiled sources map onto build output.
type Layout struct {
	// OutputDir replaces the source-root segment of a compiled source's
	// parent directory, e.g. "target/classes".
	OutputDir string
	// CompiledExtensions lists source extensions (with dot) that are compiled
	// before deployment.
	CompiledExtensions []string
	// UnitExtension is the extension of compiled units, e.g. ".class".
	UnitExtension string
}

// DefaultLayout is the Maven convention.
func DefaultLayout() Layout {
	return Layout{
		OutputDir:          "target/classes",
		CompiledExtensions: []string{".java"},
		UnitExtension:      ".class",
	}
}

func (l Layout) compiled(ext string) bool {
	for _, e := range l.CompiledExtensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// TrimSourceRoot removes the first source-root segment from a relative
// slash path: "src/main/java/com/acme/Foo.java" -> "com/acme/Foo.java".
// Paths without the segment are returned unchanged.
func TrimSourceRoot(rel string) string {
	loc := sourceRoot.FindStringSubmatchIndex(rel)
	if loc == nil {
		return rel
	}
	// Keep the leading separator, drop the trailing one.
	return rel[:loc[3]] + rel[loc[1]:]
}

// OutputDirFor substitutes the first source-root segment of a slash path with
// outputDir. ok is false when the path contains no source root.
func OutputDirFor(dir, outputDir string) (string, bool) {
	loc := sourceRoot.FindStringSubmatchIndex(dir)
	if loc == nil {
		return "", false
	}
	return dir[:loc[3]] + strings.Trim(outputDir, "/") + dir[loc[4]:loc[5]] + dir[loc[1]:], true
}
