package app

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func TestComputeSHA256Hex(t *testing.T) {
	got := computeSHA256Hex([]byte("hello"))
	if got != "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824" {
		t.Fatalf("digest = %s", got)
	}
}

func TestBuildManifestFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.json"), []byte("hello"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	files, err := buildManifestFiles(dir, []string{"a.json"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(files) != 1 || files[0].Bytes != 5 || files[0].SHA256 != computeSHA256Hex([]byte("hello")) {
		t.Fatalf("files = %#v", files)
	}
	if _, err := buildManifestFiles(dir, []string{"missing.json"}); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestWriteSHA256SUMS_SortedAndSelfExcluded(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{"b.txt": "b", "a.txt": "a", "SHA256SUMS": "stale", "x.tar.gz": "tar"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := writeSHA256SUMS(dir); err != nil {
		t.Fatalf("sums: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "SHA256SUMS"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 2 || !strings.HasSuffix(lines[0], "  a.txt") || !strings.HasSuffix(lines[1], "  b.txt") {
		t.Fatalf("SHA256SUMS =\n%s", b)
	}
	if !strings.HasPrefix(lines[0], computeSHA256Hex([]byte("a"))) {
		t.Fatalf("wrong digest line %q", lines[0])
	}
}

func TestTarGzDirectory(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "bundle")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, name := range []string{"final_output.json", "manifest.json"} {
		if err := os.WriteFile(filepath.Join(src, name), []byte("{}"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	out := filepath.Join(tmp, "bundle.tar.gz")
	if err := tarGzDirectory(src, out); err != nil {
		t.Fatalf("tar: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip: %v", err)
	}
	tr := tar.NewReader(gz)
	var names []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		names = append(names, hdr.Name)
	}
	sort.Strings(names)
	if len(names) != 2 || names[0] != "bundle/final_output.json" || names[1] != "bundle/manifest.json" {
		t.Fatalf("tar entries = %v", names)
	}
}
