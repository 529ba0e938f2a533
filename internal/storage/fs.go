package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/starford/inkpress/internal/checksum"
	"github.com/starford/inkpress/internal/models"
)

// FS implements Provider over an fs.FS, normally os.DirFS of the content
// directory. Paths handed to List and Read are slash separated and relative
// to the root; fs.ValidPath rejects anything that would leave it.
type FS struct {
	root string
	fsys fs.FS
}

// NewFS creates a provider for the content directory at root. A root that
// does not exist yet lists as empty; a root that is a regular file is an
// error.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	return &FS{root: abs, fsys: os.DirFS(abs)}, nil
}

// NewFSFrom wraps an existing file system, e.g. an embed.FS or fstest.MapFS.
func NewFSFrom(fsys fs.FS) *FS {
	return &FS{fsys: fsys}
}

// Root returns the absolute content root, or "" for NewFSFrom providers.
func (f *FS) Root() string { return f.root }

func cleanPath(name string) (string, error) {
	name = path.Clean(filepath.ToSlash(name))
	if !fs.ValidPath(name) {
		return "", fmt.Errorf("storage: invalid path %q", name)
	}
	return name, nil
}

// List walks dir and returns every visible .md file in lexical order.
// Dot-directories (drafts, .git) are skipped.
func (f *FS) List(dir string) ([]models.FileMetadata, error) {
	base, err := cleanPath(dir)
	if err != nil {
		return nil, err
	}

	var out []models.FileMetadata
	err = fs.WalkDir(f.fsys, base, func(name string, d fs.DirEntry, walkErr error) error {
		switch {
		case walkErr != nil && name == base && errors.Is(walkErr, fs.ErrNotExist):
			return fs.SkipAll
		case walkErr != nil:
			return walkErr
		case d.IsDir() && name != base && strings.HasPrefix(d.Name(), "."):
			return fs.SkipDir
		case d.IsDir() || path.Ext(name) != ".md":
			return nil
		}

		// An unreadable file is listed without a checksum; the
		// loader's Read fails for it and skips just that post.
		meta := models.FileMetadata{Path: name}
		if info, err := d.Info(); err == nil {
			meta.ModTime = info.ModTime()
		}
		if data, err := fs.ReadFile(f.fsys, name); err == nil {
			meta.Checksum = checksum.Sum(data)
		}
		out = append(out, meta)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list %s: %w", base, err)
	}
	return out, nil
}

// Read returns the raw bytes of a content file.
func (f *FS) Read(name string) ([]byte, error) {
	clean, err := cleanPath(name)
	if err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(f.fsys, clean)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", name, err)
	}
	return data, nil
}
