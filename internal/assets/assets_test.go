package assets

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLibrary_ResolveCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "models/Infernus.DFF", []byte("x"))

	lib := NewLibrary()
	if err := lib.AddDir(dir); err != nil {
		t.Fatalf("AddDir failed: %v", err)
	}

	tests := []string{"infernus.dff", "INFERNUS.DFF", "models/Infernus.DFF"}
	for _, name := range tests {
		if _, ok := lib.Resolve(name); !ok {
			t.Errorf("Resolve(%q) failed", name)
		}
	}
	if _, ok := lib.Resolve("missing.dff"); ok {
		t.Error("Resolve should fail for unindexed names")
	}
}

func TestLibrary_LaterDirsTakePriority(t *testing.T) {
	base := t.TempDir()
	writeTestFile(t, base, "generic.txd", []byte("old"))
	override := t.TempDir()
	want := writeTestFile(t, override, "generic.txd", []byte("new"))

	lib := NewLibrary()
	if err := lib.AddDir(base); err != nil {
		t.Fatalf("AddDir failed: %v", err)
	}
	if err := lib.AddDir(override); err != nil {
		t.Fatalf("AddDir failed: %v", err)
	}

	path, ok := lib.Resolve("generic.txd")
	if !ok {
		t.Fatal("Resolve failed")
	}
	if path != want {
		t.Errorf("resolved %s, want override path %s", path, want)
	}
}

func TestLibrary_LoadCaches(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "water.dat", []byte("0 0 0 1 0 0 1 1 0 0 1 0 3.0\n"))

	lib := NewLibrary()
	if err := lib.AddDir(dir); err != nil {
		t.Fatalf("AddDir failed: %v", err)
	}

	data, err := lib.Load("water.dat")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected file contents")
	}

	// Second load should hit the cache.
	if _, err := lib.Load("WATER.DAT"); err != nil {
		t.Fatalf("cached Load failed: %v", err)
	}
	hits, misses := lib.CacheStats()
	if hits != 1 || misses != 1 {
		t.Errorf("cache stats = %d hits / %d misses, want 1/1", hits, misses)
	}

	lib.Clear()
	if _, err := lib.Load("water.dat"); err != nil {
		t.Fatalf("Load after Clear failed: %v", err)
	}
	if hits, _ := lib.CacheStats(); hits != 0 {
		t.Errorf("hits after Clear = %d, want 0", hits)
	}
}

func TestLibrary_LoadMissing(t *testing.T) {
	lib := NewLibrary()
	if _, err := lib.Load("nothing.dff"); err == nil {
		t.Error("expected error for missing asset")
	}
}
