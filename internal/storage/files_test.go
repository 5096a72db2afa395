package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileStore_SaveAndExists(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	path, err := store.Save([]byte("audio bytes"), "recording.wav")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.HasSuffix(path, ".wav") {
		t.Errorf("expected .wav extension preserved, got %s", path)
	}
	if !store.Exists(path) {
		t.Error("saved file should exist")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved file failed: %v", err)
	}
	if string(data) != "audio bytes" {
		t.Errorf("stored content mismatch: %q", data)
	}
}

func TestFileStore_DefaultsExtension(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	path, err := store.Save([]byte("x"), "no-extension")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.HasSuffix(path, ".wav") {
		t.Errorf("extensionless uploads default to .wav, got %s", path)
	}
}

func TestFileStore_UniqueNames(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	first, _ := store.Save([]byte("a"), "same.wav")
	second, _ := store.Save([]byte("b"), "same.wav")
	if first == second {
		t.Error("identical upload names must not collide on disk")
	}
}

func TestFileStore_Remove(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	path, _ := store.Save([]byte("x"), "gone.wav")
	if err := store.Remove(path); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if store.Exists(path) {
		t.Error("removed file should not exist")
	}

	// Removing twice is not an error
	if err := store.Remove(path); err != nil {
		t.Errorf("removing an already-gone file should be a no-op, got %v", err)
	}
}

func TestNewFileStore_CreatesNestedDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "uploads")
	if _, err := NewFileStore(dir); err != nil {
		t.Fatalf("NewFileStore should create nested directories: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Error("upload directory was not created")
	}
}

func TestNewFileStore_RejectsEmptyDir(t *testing.T) {
	if _, err := NewFileStore(""); err == nil {
		t.Error("empty directory must be rejected")
	}
}
