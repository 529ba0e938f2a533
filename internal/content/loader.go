// Package content loads Markdown posts from storage and links them into a
// date-ordered collection.
package content

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/starford/inkpress/internal/models"
	"github.com/starford/inkpress/internal/parser"
	"github.com/starford/inkpress/internal/render"
	"github.com/starford/inkpress/internal/storage"
)

// DefaultCategory is assigned to files at the root of the content directory.
const DefaultCategory = "general"

// Loader turns the Markdown files of a storage.Provider into posts.
type Loader struct {
	store    storage.Provider
	renderer render.Renderer
	logger   *slog.Logger
	workers  int
}

// NewLoader creates a loader. workers <= 0 uses GOMAXPROCS.
func NewLoader(store storage.Provider, renderer render.Renderer, logger *slog.Logger, workers int) *Loader {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{store: store, renderer: renderer, logger: logger, workers: workers}
}

// Load lists every Markdown file and loads it. A missing content directory
// yields no posts and no error.
func (l *Loader) Load(ctx context.Context) ([]models.Post, error) {
	metas, err := l.store.List("")
	if err != nil {
		return nil, fmt.Errorf("content: load: %w", err)
	}
	return l.LoadFiles(ctx, metas)
}

// LoadFiles parses and renders the given files concurrently. Files that
// cannot be read, decoded or rendered are skipped with a warning. The result
// keeps discovery order and carries unique slugs.
func (l *Loader) LoadFiles(ctx context.Context, metas []models.FileMetadata) ([]models.Post, error) {
	results := make([]*models.Post, len(metas))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, m := range metas {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			post, err := l.loadFile(m)
			if err != nil {
				l.logger.Warn("content: skipping file",
					slog.String("path", m.Path),
					slog.String("error", err.Error()),
				)
				return nil
			}
			results[i] = post
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("content: load: %w", err)
	}

	posts := make([]models.Post, 0, len(results))
	for _, p := range results {
		if p != nil {
			posts = append(posts, *p)
		}
	}
	assignSlugs(posts)
	return posts, nil
}

func (l *Loader) loadFile(m models.FileMetadata) (*models.Post, error) {
	data, err := l.store.Read(m.Path)
	if err != nil {
		return nil, err
	}
	res, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}
	if res.Malformed {
		l.logger.Warn("content: malformed front-matter, using defaults", slog.String("path", m.Path))
	}

	html, headings, err := l.renderer.Render([]byte(res.Body))
	if err != nil {
		return nil, err
	}

	meta := res.Meta
	title := meta.Title
	if title == "" {
		title = strings.TrimSuffix(path.Base(m.Path), path.Ext(m.Path))
	}
	date := meta.Date
	if date.IsZero() {
		date = m.ModTime
	}
	tags := meta.Tags
	if tags == nil {
		tags = []string{}
	}
	category := CategoryOf(m.Path)

	return &models.Post{
		Slug:         SlugOf(m.Path),
		Title:        title,
		Date:         date,
		Excerpt:      meta.Excerpt,
		Content:      html,
		Category:     category,
		CategoryName: CategoryName(category),
		Tags:         tags,
		Author:       meta.Author,
		ReadingTime:  parser.ReadingTime(res.Body),
		Headings:     headings,
		SourcePath:   m.Path,
		Checksum:     m.Checksum,
		Body:         res.Body,
	}, nil
}

// SlugOf derives the slug for a slash-separated path relative to the content
// root: extension stripped, separators replaced by "-", lowercased.
func SlugOf(rel string) string {
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	return strings.ToLower(strings.ReplaceAll(rel, "/", "-"))
}

// CategoryOf returns the first path segment, or DefaultCategory for files at
// the content root.
func CategoryOf(rel string) string {
	dir, _, ok := strings.Cut(rel, "/")
	if !ok || dir == "" {
		return DefaultCategory
	}
	return strings.ToLower(dir)
}

// CategoryName turns a category slug into its display name:
// "machine-learning" becomes "Machine Learning".
func CategoryName(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	caser := cases.Title(language.Und)
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

// assignSlugs makes slugs unique in discovery order: the first post keeps
// its slug, later ones get "-2", "-3" and so on.
func assignSlugs(posts []models.Post) {
	taken := make(map[string]struct{}, len(posts))
	for i := range posts {
		slug := posts[i].Slug
		if _, dup := taken[slug]; dup {
			for n := 2; ; n++ {
				candidate := fmt.Sprintf("%s-%d", posts[i].Slug, n)
				if _, used := taken[candidate]; !used {
					slug = candidate
					break
				}
			}
		}
		taken[slug] = struct{}{}
		posts[i].Slug = slug
	}
}
