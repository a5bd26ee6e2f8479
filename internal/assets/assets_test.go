package assets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestLoadPriority(t *testing.T) {
	m := NewManager()
	m.AddFS(fstest.MapFS{
		"sprites/atlas.png": {Data: []byte("base")},
		"sfx/hit.wav":       {Data: []byte("hit")},
	})
	m.AddFS(fstest.MapFS{
		"sprites/atlas.png": {Data: []byte("mod")},
	})

	tests := []struct {
		name string
		want string
	}{
		{"sprites/atlas.png", "mod"},
		{"sfx/hit.wav", "hit"},
		{"./sfx/../sfx/hit.wav", "hit"},
	}
	for _, tt := range tests {
		got, err := m.Load(tt.name)
		if err != nil {
			t.Errorf("Load(%q): %v", tt.name, err)
			continue
		}
		if string(got) != tt.want {
			t.Errorf("Load(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestLoadNotFound(t *testing.T) {
	m := NewManager()
	m.AddFS(fstest.MapFS{})

	if _, err := m.Load("missing.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load missing: err = %v, want ErrNotFound", err)
	}
	if _, err := m.Load(filepath.Join(t.TempDir(), "missing.png")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load missing absolute: err = %v, want ErrNotFound", err)
	}
}

func TestAddDirAndAbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "track.wav")
	if err := os.WriteFile(path, []byte("music"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	m := NewManager()
	if err := m.AddDir(dir); err != nil {
		t.Fatalf("AddDir: %v", err)
	}
	if got, err := m.Load("track.wav"); err != nil || string(got) != "music" {
		t.Errorf("Load relative = %q, %v", got, err)
	}
	if got, err := m.Load(path); err != nil || string(got) != "music" {
		t.Errorf("Load absolute = %q, %v", got, err)
	}

	if err := m.AddDir(path); err == nil {
		t.Error("AddDir on a file: expected error, got nil")
	}
	if err := m.AddDir(filepath.Join(dir, "nope")); err == nil {
		t.Error("AddDir on a missing dir: expected error, got nil")
	}
}

func TestCacheStats(t *testing.T) {
	m := NewManager()
	m.AddFS(fstest.MapFS{"a": {Data: []byte("1")}})

	for i := 0; i < 3; i++ {
		if _, err := m.Load("a"); err != nil {
			t.Fatalf("Load: %v", err)
		}
	}
	hits, misses := m.cache.Stats()
	if hits != 2 || misses != 1 {
		t.Errorf("stats = %d hits %d misses, want 2 and 1", hits, misses)
	}

	m.Close()
	if _, err := m.Load("a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after Close: err = %v, want ErrNotFound", err)
	}
}
