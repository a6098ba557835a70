package export

import (
	"archive/tar"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func artifactDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "run-test")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"module-plan.json":       `{"entries":[]}`,
		"config-tasks.json":      `[]`,
		"implementation-spec.md": "# Spec\n",
		"audit.json":             `{"events":[]}`,
		"manifest.json":          `{"checksums":{}}`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func readBundle(t *testing.T, path string) map[string]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open bundle: %v", err)
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer zr.Close()

	contents := make(map[string]string)
	tr := tar.NewReader(zr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("tar: %v", err)
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			t.Fatalf("read entry: %v", err)
		}
		contents[header.Name] = string(data)
	}
	return contents
}

func TestBundle(t *testing.T) {
	dir := artifactDir(t)
	out := filepath.Join(t.TempDir(), "bundle.tar.zst")

	if err := Bundle(dir, out); err != nil {
		t.Fatalf("Bundle: %v", err)
	}

	contents := readBundle(t, out)
	if len(contents) != 5 {
		t.Fatalf("bundle holds %d files, want 5", len(contents))
	}
	if contents["module-plan.json"] != `{"entries":[]}` {
		t.Errorf("module-plan.json = %q", contents["module-plan.json"])
	}
}

func TestBundleDeterministic(t *testing.T) {
	dir := artifactDir(t)

	bundle := func(name string) []byte {
		path := filepath.Join(t.TempDir(), name)
		if err := Bundle(dir, path); err != nil {
			t.Fatalf("Bundle: %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		return data
	}

	first := bundle("a.tar.zst")
	second := bundle("b.tar.zst")
	if !bytes.Equal(first, second) {
		t.Error("identical artifact sets must produce identical bundles")
	}
}

func TestBundleEmptyDir(t *testing.T) {
	if err := Bundle(t.TempDir(), filepath.Join(t.TempDir(), "out.tar.zst")); err == nil {
		t.Fatal("empty artifact directory must fail")
	}
}

func TestDefaultBundleName(t *testing.T) {
	if got := DefaultBundleName("outputs/run-abc123"); got != "run-abc123.tar.zst" {
		t.Errorf("name = %q", got)
	}
	if got := DefaultBundleName("outputs/run-abc123/"); got != "run-abc123.tar.zst" {
		t.Errorf("name with trailing slash = %q", got)
	}
}
