package bundle

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"quick-hotfix/internal/locate"
)

func TestManifestRoundTripAndVerify(t *testing.T) {
	dir := t.TempDir()
	foo := writeSource(t, dir, "target/classes/Foo.class", []byte("v1"))
	res := writeSource(t, dir, "app.properties", []byte("k=v"))
	dest := filepath.Join(dir, "hotfix.zip")

	rep, err := WriteArchive(context.Background(), []locate.Artifact{
		{Name: "Foo.class", Source: foo},
		{Name: "app.properties", Source: res},
	}, dest, Options{})
	if err != nil {
		t.Fatal(err)
	}
	m := NewManifest(rep, dir, "2024-01-01T00:00:00Z")
	if m.BundleID == "" || m.BundleID != BundleID(rep.Entries) {
		t.Fatalf("bundle id not derived from entries: %q", m.BundleID)
	}
	if err := WriteManifest(ManifestPath(dest), m); err != nil {
		t.Fatalf("WriteManifest error: %v", err)
	}
	loaded, err := ReadManifest(ManifestPath(dest))
	if err != nil || loaded == nil {
		t.Fatalf("ReadManifest = %v, %v", loaded, err)
	}
	if len(loaded.Entries) != 2 || loaded.Entries[1].Source != res {
		t.Fatalf("loaded manifest: %+v", loaded)
	}

	mis, err := Verify(context.Background(), dest, *loaded)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if len(mis) != 0 {
		t.Fatalf("fresh bundle should verify, got %+v", mis)
	}

	if err := os.WriteFile(foo, []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(res); err != nil {
		t.Fatal(err)
	}
	mis, err = Verify(context.Background(), dest, *loaded)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if len(mis) != 2 || mis[0].Reason != ReasonSourceChanged || mis[1].Reason != ReasonSourceMissing {
		t.Fatalf("mismatches: %+v", mis)
	}
}

func TestReadManifestMissing(t *testing.T) {
	m, err := ReadManifest(filepath.Join(t.TempDir(), "none.json"))
	if m != nil || err != nil {
		t.Fatalf("ReadManifest(missing) = %v, %v", m, err)
	}
}

func TestBundleIDStable(t *testing.T) {
	es := []Entry{{Name: "a", Hash: "01"}, {Name: "b", Hash: "02"}}
	if BundleID(es) != BundleID(append([]Entry{}, es...)) {
		t.Fatalf("BundleID not deterministic")
	}
	if BundleID(es) == BundleID(es[:1]) {
		t.Fatalf("BundleID ignores entries")
	}
}

func TestVerifyReportsUnrecordedEntries(t *testing.T) {
	dir := t.TempDir()
	a := writeSource(t, dir, "a.txt", []byte("a"))
	b := writeSource(t, dir, "b.txt", []byte("b"))
	dest := filepath.Join(dir, "hotfix.zip")
	rep, err := WriteArchive(context.Background(), []locate.Artifact{
		{Name: "a.txt", Source: a},
		{Name: "extra/b.txt", Source: b},
	}, dest, Options{})
	if err != nil {
		t.Fatal(err)
	}
	// Manifest that only knows about the first entry.
	m := NewManifest(Report{Path: rep.Path, Entries: rep.Entries[:1]}, dir, "2024-01-01T00:00:00Z")

	mis, err := Verify(context.Background(), dest, m)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if len(mis) != 1 || mis[0].Name != "extra/b.txt" || mis[0].Reason != ReasonUnexpected {
		t.Fatalf("mismatches: %+v", mis)
	}
}

func TestWriteManifestIsWorldReadable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	path := filepath.Join(t.TempDir(), "hotfix.zip.json")
	if err := WriteManifest(path, Manifest{FormatVersion: "1"}); err != nil {
		t.Fatal(err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm() != FileMode {
		t.Fatalf("manifest mode = %v want %v", fi.Mode().Perm(), FileMode)
	}
}
