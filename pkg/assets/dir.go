package assets

import (
	"context"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// DirStore serves assets from a local directory.
type DirStore struct {
	root string
}

// NewDirStore creates a store rooted at dir.
func NewDirStore(dir string) *DirStore {
	return &DirStore{root: dir}
}

// Open opens the named file under the root. Directories and unclean
// paths are treated as missing.
func (s *DirStore) Open(ctx context.Context, name string) (*File, error) {
	if !validName(name) {
		return nil, ErrNotFound
	}

	path := filepath.Join(s.root, filepath.FromSlash(name))
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrNotFound
	}

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		f.Close()
		return nil, ErrNotFound
	}

	return &File{
		Name:        name,
		ContentType: mime.TypeByExtension(filepath.Ext(name)),
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		Reader:      f,
	}, nil
}

// validName rejects anything but a clean relative slash path. Serving
// code sanitizes request paths before reaching the store; this is the
// store's own last line.
func validName(name string) bool {
	if name == "" || strings.HasPrefix(name, "/") {
		return false
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}
