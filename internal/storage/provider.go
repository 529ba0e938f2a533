// Package storage defines the read-only content directory abstraction.
package storage

import "github.com/starford/inkpress/internal/models"

// Provider is the interface for content file access.
type Provider interface {
	// List returns metadata for every .md file under dir (relative to the
	// content root), in lexical walk order. A missing root yields no files.
	List(dir string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at path (relative to the content root).
	Read(path string) ([]byte, error)
}
