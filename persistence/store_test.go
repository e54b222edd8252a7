package persistence

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.txt")
	text := WriteBoard(sampleBoard())
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	b, err := NewFileStore(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if b.Location(0) == nil || b.Location(1) == nil {
		t.Fatal("locations missing after load")
	}
}

func TestFileStoreLoadMissingFile(t *testing.T) {
	_, err := NewFileStore(filepath.Join(t.TempDir(), "nope.txt")).Load()
	if err == nil {
		t.Fatal("loading a missing file succeeded")
	}
}
