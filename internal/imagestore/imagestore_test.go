package imagestore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCopyIn(t *testing.T) {
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "photo.jpg")
	if err := os.WriteFile(src, []byte("jpeg bytes"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	store, err := New(filepath.Join(t.TempDir(), "managed"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	ref, err := store.CopyIn(src)
	if err != nil {
		t.Fatalf("copy in: %v", err)
	}
	if !strings.HasSuffix(ref, ".jpg") {
		t.Errorf("expected reference to keep extension, got %q", ref)
	}

	data, err := os.ReadFile(store.Path(ref))
	if err != nil {
		t.Fatalf("read managed copy: %v", err)
	}
	if string(data) != "jpeg bytes" {
		t.Errorf("managed copy differs from source: %q", data)
	}

	// References are stable and unique per copy.
	ref2, err := store.CopyIn(src)
	if err != nil {
		t.Fatalf("second copy: %v", err)
	}
	if ref2 == ref {
		t.Error("expected distinct references for distinct copies")
	}
}

func TestCopyIn_MissingSource(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.CopyIn("does-not-exist.png"); err == nil {
		t.Error("expected error for missing source file")
	}
}
