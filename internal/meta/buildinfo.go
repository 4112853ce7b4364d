// Package meta detects the build tool of a project (Maven or Gradle) and the
// directory its compiler writes class files to.
//
// Goals:
//   - Zero external dependencies (stdlib only)
//   - Best-effort parsing: tolerate partial/absent files
//   - Deterministic defaults per build type
package meta

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	MavenOutputDir  = "target/classes"
	GradleOutputDir = "build/classes/java/main"
)

// Info contains a minimal summary of build metadata.
type Info struct {
	Build     string // "maven"|"gradle"|"" (unknown)
	JDK       string // e.g., "21", "17"
	Module    string // artifactId / rootProject.name / directory name
	OutputDir string // slash-separated, relative to the module root
}

// Detect probes the project root. Maven wins over Gradle; an unknown project
// gets the Maven output layout.
func Detect(root string) Info {
	absRoot, _ := filepath.Abs(root)

	if p := firstExisting(absRoot, "pom.xml"); p != "" {
		if inf, ok := detectMaven(absRoot, p); ok {
			return inf
		}
	}
	if p := firstExisting(absRoot, "build.gradle", "build.gradle.kts"); p != "" {
		if inf, ok := detectGradle(absRoot, p); ok {
			return inf
		}
	}
	return Info{Module: filepath.Base(absRoot), OutputDir: MavenOutputDir}
}

// ------------------------------ Maven ----------------------------------------

type pomXML struct {
	XMLName    xml.Name `xml:"project"`
	ArtifactID string   `xml:"artifactId"`
	Props      pomProps `xml:"properties"`
	Build      pomBuild `xml:"build"`
}

type pomProps struct {
	Source  string `xml:"maven.compiler.source"`
	Target  string `xml:"maven.compiler.target"`
	Release string `xml:"maven.compiler.release"`
	JavaVer string `xml:"java.version"`
}

type pomBuild struct {
	OutputDirectory string `xml:"outputDirectory"`
}

func detectMaven(root, pomPath string) (Info, bool) {
	b, err := os.ReadFile(pomPath)
	if err != nil {
		return Info{}, false
	}
	var p pomXML
	if err := xml.Unmarshal(b, &p); err != nil {
		return Info{}, false
	}
	out := MavenOutputDir
	if d := mavenOutputDir(p.Build.OutputDirectory); d != "" {
		out = d
	}
	return Info{
		Build:     "maven",
		JDK:       normalizeJDK(firstNonEmpty(p.Props.Release, p.Props.Target, p.Props.Source, p.Props.JavaVer)),
		Module:    firstNonEmpty(p.ArtifactID, filepath.Base(root)),
		OutputDir: out,
	}, true
}

// mavenOutputDir accepts a relative <outputDirectory> or one based on
// ${project.basedir}/${basedir}. Anything else (other properties, absolute
// paths) cannot be mapped onto a source tree and is ignored.
func mavenOutputDir(s string) string {
	s = strings.TrimSpace(filepath.ToSlash(s))
	for _, prefix := range []string{"${project.basedir}/", "${basedir}/"} {
		s = strings.TrimPrefix(s, prefix)
	}
	if s == "" || strings.Contains(s, "${") || strings.HasPrefix(s, "/") || filepath.IsAbs(s) {
		return ""
	}
	return strings.TrimSuffix(s, "/")
}

// ------------------------------ Gradle ---------------------------------------

var (
	reGradleCompatQuoted = regexp.MustCompile(`(?m)^\s*(?:sourceCompatibility|targetCompatibility)\s*=\s*["']?(\d{1,2})["']?`)
	reGradleCompatEnum   = regexp.MustCompile(`(?m)^\s*(?:sourceCompatibility|targetCompatibility)\s*=\s*JavaVersion\.VERSION_(\d{1,2})`)
	reGradleRootName     = regexp.MustCompile(`(?m)^\s*rootProject\.name\s*=\s*["']([^"']+)["']`)
)

func detectGradle(root, buildPath string) (Info, bool) {
	b, err := os.ReadFile(buildPath)
	if err != nil {
		return Info{}, false
	}
	text := string(b)
	jdk := ""
	if m := reGradleCompatQuoted.FindStringSubmatch(text); m != nil {
		jdk = normalizeJDK(m[1])
	} else if m := reGradleCompatEnum.FindStringSubmatch(text); m != nil {
		jdk = normalizeJDK(m[1])
	}
	mod := ""
	if p := firstExisting(root, "settings.gradle", "settings.gradle.kts"); p != "" {
		if sb, err := os.ReadFile(p); err == nil {
			if m := reGradleRootName.FindStringSubmatch(string(sb)); m != nil {
				mod = m[1]
			}
		}
	}
	return Info{
		Build:     "gradle",
		JDK:       jdk,
		Module:    firstNonEmpty(mod, filepath.Base(root)),
		OutputDir: GradleOutputDir,
	}, true
}

// ---------------------------- helpers ---------------------------------------

func firstExisting(root string, names ...string) string {
	for _, n := range names {
		p := filepath.Join(root, n)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		s = strings.TrimSpace(s)
		if s != "" {
			return s
		}
	}
	return ""
}

// normalizeJDK coerces "21", "1.8", "17.0.1" into "21"|"8"|"17".
func normalizeJDK(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "1.") && len(s) >= 3 {
		s = strings.TrimPrefix(s, "1.")
	}
	out := strings.Builder{}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			break
		}
		out.WriteByte(s[i])
	}
	return out.String()
}
