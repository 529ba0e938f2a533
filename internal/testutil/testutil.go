// Package testutil provides shared test helpers for setting up content directories.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/inkpress/internal/storage"
)

// TestContent creates a temporary content directory seeded with files
// (relative slash path → content) and a storage.Provider over it.
func TestContent(t *testing.T, files map[string]string) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		WriteFile(t, dir, rel, content)
	}
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// WriteFile writes content to rel under dir, creating parent directories.
func WriteFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// Markdown builds a post with YAML front-matter. Empty fields are omitted.
func Markdown(title, date string, tags []string, body string) string {
	var b strings.Builder
	b.WriteString("---\n")
	if title != "" {
		fmt.Fprintf(&b, "title: %q\n", title)
	}
	if date != "" {
		fmt.Fprintf(&b, "date: %s\n", date)
	}
	if len(tags) > 0 {
		fmt.Fprintf(&b, "tags: [%s]\n", strings.Join(tags, ", "))
	}
	b.WriteString("---\n")
	b.WriteString(body)
	return b.String()
}
