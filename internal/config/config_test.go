package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"quick-hotfix/internal/meta"
)

func TestLoadProjectDefaultsWhenMissing(t *testing.T) {
	p, err := LoadProject(t.TempDir())
	if err != nil {
		t.Fatalf("LoadProject returned error: %v", err)
	}
	l := p.Layout(meta.Info{})
	if l.OutputDir != "target/classes" || l.UnitExtension != ".class" {
		t.Fatalf("unexpected default layout: %+v", l)
	}
}

func TestLoadProjectParsesYaml(t *testing.T) {
	root := t.TempDir()
	configYAML := strings.TrimSpace(`
output_dir: out/production
compiled_extensions: [".JAVA", ".groovy"]
manifest: true
`)
	if err := os.WriteFile(filepath.Join(root, ProjectFile), []byte(configYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadProject(root)
	if err != nil {
		t.Fatalf("LoadProject returned error: %v", err)
	}
	if !p.Manifest {
		t.Fatalf("manifest flag not parsed")
	}
	l := p.Layout(meta.Info{OutputDir: meta.GradleOutputDir})
	if l.OutputDir != "out/production" {
		t.Fatalf("config output_dir should win over detection: %+v", l)
	}
	if !reflect.DeepEqual(l.CompiledExtensions, []string{".java", ".groovy"}) {
		t.Fatalf("extensions=%v", l.CompiledExtensions)
	}
}

func TestLoadProjectUsesDetectedLayout(t *testing.T) {
	l := Project{}.Layout(meta.Info{OutputDir: meta.GradleOutputDir})
	if l.OutputDir != meta.GradleOutputDir {
		t.Fatalf("OutputDir=%q", l.OutputDir)
	}
}

func TestLoadProjectRejectsUnknownKeys(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ProjectFile), []byte("outputdir: x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProject(root); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestLoadProjectRejectsAbsoluteOutputDir(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ProjectFile), []byte("output_dir: /opt/classes\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProject(root); err == nil || !strings.Contains(err.Error(), "relative") {
		t.Fatalf("expected relative-path error, got %v", err)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", settingsFile)
	s, err := LoadSettings(path)
	if err != nil || s.LastDestination != "" {
		t.Fatalf("LoadSettings(missing) = %+v, %v", s, err)
	}
	if err := SaveSettings(path, Settings{LastDestination: "/tmp/hotfix.zip"}); err != nil {
		t.Fatalf("SaveSettings error: %v", err)
	}
	s, err = LoadSettings(path)
	if err != nil || s.LastDestination != "/tmp/hotfix.zip" {
		t.Fatalf("LoadSettings = %+v, %v", s, err)
	}
}
