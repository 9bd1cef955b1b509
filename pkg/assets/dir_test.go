package assets

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newDirStore(t *testing.T) *DirStore {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "css"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "css", "app.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "secret.txt"), []byte("top"), 0o644); err != nil {
		t.Fatal(err)
	}
	return NewDirStore(dir)
}

func TestDirStoreOpen(t *testing.T) {
	s := newDirStore(t)

	f, err := s.Open(context.Background(), "css/app.css")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Reader.Close()

	if !strings.Contains(f.ContentType, "text/css") {
		t.Errorf("ContentType = %q, want text/css", f.ContentType)
	}
	if f.Size != int64(len("body{}")) {
		t.Errorf("Size = %d", f.Size)
	}
	body, _ := io.ReadAll(f.Reader)
	if string(body) != "body{}" {
		t.Errorf("body = %q", body)
	}
}

func TestDirStoreMissing(t *testing.T) {
	s := newDirStore(t)

	if _, err := s.Open(context.Background(), "nope.css"); err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDirStoreDirectoryIsNotAFile(t *testing.T) {
	s := newDirStore(t)

	if _, err := s.Open(context.Background(), "css"); err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound for a directory", err)
	}
}

func TestDirStoreRejectsUncleanNames(t *testing.T) {
	s := newDirStore(t)

	for _, name := range []string{
		"",
		"/etc/passwd",
		"../secret.txt",
		"css/../../secret.txt",
		"css//app.css",
		"./secret.txt",
	} {
		if _, err := s.Open(context.Background(), name); err != ErrNotFound {
			t.Errorf("Open(%q) = %v, want ErrNotFound", name, err)
		}
	}
}
