package hotfix

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"quick-hotfix/internal/bundle"
	"quick-hotfix/internal/change"
	"quick-hotfix/internal/resolve"
)

func put(t *testing.T, path, body string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func zipNames(t *testing.T, path string) []string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

type recorder struct{ started, stopped int }

func (r *recorder) Start(string) { r.started++ }
func (r *recorder) Stop()        { r.stopped++ }

func TestExecuteEndToEnd(t *testing.T) {
	repo := t.TempDir()
	if err := os.MkdirAll(filepath.Join(repo, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	put(t, filepath.Join(repo, "src/main/java/com/acme/Foo.java"), "class Foo {}")
	put(t, filepath.Join(repo, "target/classes/com/acme/Foo.class"), "FOO")
	put(t, filepath.Join(repo, "target/classes/com/acme/Foo$1.class"), "FOO1")
	put(t, filepath.Join(repo, "target/classes/com/acme/Foo$Inner.class"), "FOOI")
	put(t, filepath.Join(repo, "target/classes/com/acme/Bar.class"), "BAR")
	put(t, filepath.Join(repo, "src/main/resources/x.txt"), "resource")

	list := "M\tsrc/main/java/com/acme/Foo.java\nM\tsrc/main/resources/x.txt\nD\tsrc/main/java/com/acme/Bar.java\n"
	entries, err := change.Parse(strings.NewReader(list), repo)
	if err != nil {
		t.Fatal(err)
	}

	rec := &recorder{}
	p := New(Options{
		Finder:   change.NewMarkerFinder(nil),
		Progress: rec,
		Manifest: true,
		Now:      func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) },
	})
	if !p.CanExecute(entries) {
		t.Fatalf("CanExecute should be true")
	}
	dest := filepath.Join(t.TempDir(), "hotfix")
	res, err := p.Execute(context.Background(), entries, dest)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if res.Root != repo {
		t.Fatalf("root=%s want %s", res.Root, repo)
	}
	if res.Report.Path != dest+".zip" {
		t.Fatalf("destination not normalised: %s", res.Report.Path)
	}
	got := zipNames(t, dest+".zip")
	want := []string{"com/acme/Foo$1.class", "com/acme/Foo$Inner.class", "com/acme/Foo.class", "x.txt"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("entries=%v want %v", got, want)
	}
	if rec.started != 1 || rec.stopped != 1 {
		t.Fatalf("progress start/stop = %d/%d", rec.started, rec.stopped)
	}

	m, err := bundle.ReadManifest(res.Manifest)
	if err != nil || m == nil {
		t.Fatalf("manifest: %v, %v", m, err)
	}
	if m.Created != "2024-01-02T03:04:05Z" || len(m.Entries) != 4 || m.Root != repo {
		t.Fatalf("unexpected manifest: %+v", m)
	}
}

func TestExecuteNoRoots(t *testing.T) {
	p := New(Options{Finder: change.StaticRoot(t.TempDir())})
	entries := []change.Entry{{Status: change.Deleted}}
	if p.CanExecute(entries) {
		t.Fatalf("CanExecute should be false for deletions only")
	}
	_, err := p.Execute(context.Background(), entries, filepath.Join(t.TempDir(), "h.zip"))
	if !errors.Is(err, resolve.ErrNoRootsFound) {
		t.Fatalf("want ErrNoRootsFound, got %v", err)
	}
}

func TestExecuteDuplicateEntries(t *testing.T) {
	repo := t.TempDir()
	a := put(t, filepath.Join(repo, "src/main/resources/app.properties"), "main")
	b := put(t, filepath.Join(repo, "src/test/resources/app.properties"), "test")
	entries := []change.Entry{
		{AfterPath: a, Extension: ".properties"},
		{AfterPath: b, Extension: ".properties"},
	}
	dest := filepath.Join(t.TempDir(), "h.zip")
	_, err := New(Options{Finder: change.StaticRoot(repo)}).Execute(context.Background(), entries, dest)
	if !errors.Is(err, bundle.ErrDuplicateEntry) {
		t.Fatalf("want ErrDuplicateEntry, got %v", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Fatalf("no archive expected on failure")
	}
}

func TestExecuteUsesProjectConfig(t *testing.T) {
	repo := t.TempDir()
	put(t, filepath.Join(repo, ".quick-hotfix.yaml"), "output_dir: out/classes\n")
	src := put(t, filepath.Join(repo, "src/main/java/p/K.java"), "class K {}")
	put(t, filepath.Join(repo, "out/classes/p/K.class"), "K")

	entries := []change.Entry{{AfterPath: src, Extension: ".java"}}
	dest := filepath.Join(t.TempDir(), "h.zip")
	if _, err := New(Options{Finder: change.StaticRoot(repo)}).Execute(context.Background(), entries, dest); err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if got := zipNames(t, dest); len(got) != 1 || got[0] != "p/K.class" {
		t.Fatalf("entries=%v", got)
	}
}

func TestDestination(t *testing.T) {
	cases := map[string]string{
		"/tmp/hotfix.zip":   "/tmp/hotfix.zip",
		"/tmp/hotfix.ZIP":   "/tmp/hotfix.ZIP",
		"/tmp/hotfix":       "/tmp/hotfix.zip",
		"/tmp/release.v2":   "/tmp/release.v2.zip",
		" /tmp/spaced.zip ": "/tmp/spaced.zip",
	}
	for in, want := range cases {
		got, err := Destination(in)
		if err != nil || got != want {
			t.Fatalf("Destination(%q)=%q,%v want %q", in, got, err, want)
		}
	}
	if _, err := Destination("  "); err == nil {
		t.Fatalf("expected error for empty destination")
	}
}

func TestSuggestDestination(t *testing.T) {
	dir := t.TempDir()
	first := SuggestDestination(dir, "Fix NPE in billing/Invoice!\n\nlong body")
	if filepath.Base(first) != "Fix_NPE_in_billing_Invoice.zip" {
		t.Fatalf("suggested %s", first)
	}
	put(t, first, "x")
	second := SuggestDestination(dir, "Fix NPE in billing/Invoice!")
	if filepath.Base(second) != "Fix_NPE_in_billing_Invoice_1.zip" {
		t.Fatalf("suggested %s", second)
	}
	if filepath.Base(SuggestDestination(dir, "   ")) != "hotfix.zip" {
		t.Fatalf("empty message should fall back to hotfix.zip")
	}
}

func TestExecuteOutputDirKeepsProjectExtensions(t *testing.T) {
	repo := t.TempDir()
	put(t, filepath.Join(repo, ".quick-hotfix.yaml"), "compiled_extensions: [\".kt\"]\n")
	src := put(t, filepath.Join(repo, "src/main/java/p/K.kt"), "class K")
	put(t, filepath.Join(repo, "out/p/K.class"), "K")

	entries := []change.Entry{{AfterPath: src, Extension: ".kt"}}
	dest := filepath.Join(t.TempDir(), "h.zip")
	p := New(Options{Finder: change.StaticRoot(repo), OutputDir: "out"})
	if _, err := p.Execute(context.Background(), entries, dest); err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if got := zipNames(t, dest); len(got) != 1 || got[0] != "p/K.class" {
		t.Fatalf("entries=%v", got)
	}
}

func TestExecuteSuggestsDestinationInRoot(t *testing.T) {
	repo := t.TempDir()
	src := put(t, filepath.Join(repo, "src/main/resources/app.yml"), "k: v")

	entries := []change.Entry{{AfterPath: src, Extension: ".yml"}}
	p := New(Options{Finder: change.StaticRoot(repo), Message: "Fix login\n\ndetails"})
	res, err := p.Execute(context.Background(), entries, "")
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if want := filepath.Join(repo, "Fix_login.zip"); res.Report.Path != want {
		t.Fatalf("destination=%s want %s", res.Report.Path, want)
	}
	if got := zipNames(t, res.Report.Path); len(got) != 1 || got[0] != "app.yml" {
		t.Fatalf("entries=%v", got)
	}
}
