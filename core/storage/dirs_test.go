package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDirPathHelpers(t *testing.T) {
	d := &Dirs{
		Config: "/cfg",
		Data:   "/data",
		Cache:  "/cache",
		State:  "/state",
	}

	if got := d.ConfigDir("config.yaml"); got != filepath.Join("/cfg", "config.yaml") {
		t.Errorf("ConfigDir: got %s", got)
	}
	if got := d.DataDir("a", "b.csv"); got != filepath.Join("/data", "a", "b.csv") {
		t.Errorf("DataDir: got %s", got)
	}
	if got := d.ExportDir(); got != filepath.Join("/data", "exports") {
		t.Errorf("ExportDir: got %s", got)
	}
	if got := d.LogDir(); got != filepath.Join("/state", "logs") {
		t.Errorf("LogDir: got %s", got)
	}
}

func TestEnsureAll(t *testing.T) {
	base := t.TempDir()
	d := &Dirs{
		Config: filepath.Join(base, "config"),
		Data:   filepath.Join(base, "data"),
		Cache:  filepath.Join(base, "cache"),
		State:  filepath.Join(base, "state"),
	}

	if err := d.EnsureAll(); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}

	for _, path := range []string{d.Config, d.Data, d.Cache, d.State} {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat %s: %v", path, err)
		}
		if !info.IsDir() {
			t.Errorf("%s should be a directory", path)
		}
	}

	info, err := os.Stat(d.Config)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0700 {
		t.Errorf("config dir permissions: got %o, want 0700", perm)
	}
}

func TestEnsureDirIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir")
	if err := EnsureDir(path, 0); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	if err := EnsureDir(path, 0); err != nil {
		t.Fatalf("EnsureDir again: %v", err)
	}
}
