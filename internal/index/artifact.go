package index

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/starford/inkpress/internal/storage"
)

// Marshal encodes idx as indented JSON.
func Marshal(idx *SearchIndex) ([]byte, error) {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("index: marshal: %w", err)
	}
	return data, nil
}

// Unmarshal decodes an artifact. Absent tables decode as empty slices.
func Unmarshal(data []byte) (*SearchIndex, error) {
	var idx SearchIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("index: unmarshal: %w", err)
	}
	if idx.Posts == nil {
		idx.Posts = []Post{}
	}
	if idx.Categories == nil {
		idx.Categories = []TermCount{}
	}
	if idx.Tags == nil {
		idx.Tags = []TermCount{}
	}
	idx.TotalPosts = len(idx.Posts)
	return &idx, nil
}

// Save writes the artifact atomically to path.
func Save(path string, idx *SearchIndex) error {
	data, err := Marshal(idx)
	if err != nil {
		return err
	}
	if err := storage.WriteFileAtomic(path, data); err != nil {
		return fmt.Errorf("index: save: %w", err)
	}
	return nil
}

// Load reads the artifact at path. A missing file yields an error matching
// os.ErrNotExist.
func Load(path string) (*SearchIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("index: load: %w", err)
	}
	return Unmarshal(data)
}
