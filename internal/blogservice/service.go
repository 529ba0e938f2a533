// Package blogservice holds the current content snapshot and answers the
// queries of the HTTP, MCP and CLI surfaces.
package blogservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/starford/inkpress/internal/apperr"
	"github.com/starford/inkpress/internal/checksum"
	"github.com/starford/inkpress/internal/content"
	"github.com/starford/inkpress/internal/index"
	"github.com/starford/inkpress/internal/models"
	"github.com/starford/inkpress/internal/search"
	"github.com/starford/inkpress/internal/storage"
	"github.com/starford/inkpress/internal/tokenize"
)

// DefaultCacheSize is the number of cached search results.
const DefaultCacheSize = 256

// Options configures a Service.
type Options struct {
	// IndexPath is where Rebuild persists the artifact; empty disables it.
	IndexPath string
	// DefaultLimit applies to searches with limit <= 0.
	DefaultLimit int
	// CacheSize bounds the search result cache.
	CacheSize int
}

// Snapshot is one immutable generation of collection, index and engine.
type Snapshot struct {
	Generation  uint64
	Collection  *content.Collection
	Index       *index.SearchIndex
	Engine      *search.Engine
	Artifact    []byte
	ETag        string
	Fingerprint string
}

// SearchHit is a search result with highlighted title and excerpt.
type SearchHit struct {
	Slug               string    `json:"slug"`
	Title              string    `json:"title"`
	Excerpt            string    `json:"excerpt"`
	Category           string    `json:"category"`
	CategoryName       string    `json:"categoryName"`
	Tags               []string  `json:"tags"`
	Author             string    `json:"author,omitempty"`
	Date               time.Time `json:"date"`
	ReadingTime        int       `json:"readingTime"`
	HighlightedTitle   string    `json:"highlightedTitle"`
	HighlightedExcerpt string    `json:"highlightedExcerpt"`
}

// CategoryDetail is a category aggregate with its posts.
type CategoryDetail struct {
	models.Category
	Posts []models.Post `json:"posts"`
}

type cacheKey struct {
	generation uint64
	query      string
	limit      int
}

// Service coordinates loading, indexing and querying. Queries read the
// current snapshot without locking; Rebuild swaps in a new one.
type Service struct {
	store  storage.Provider
	loader *content.Loader
	tok    *tokenize.Tokenizer
	logger *slog.Logger
	opts   Options

	snap  atomic.Pointer[Snapshot]
	gen   atomic.Uint64
	mu    sync.Mutex
	cache *lru.Cache[cacheKey, []SearchHit]
	now   func() time.Time
}

// NewService creates a service holding an empty snapshot.
func NewService(store storage.Provider, loader *content.Loader, tok *tokenize.Tokenizer, logger *slog.Logger, opts Options) (*Service, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = search.DefaultLimit
	}
	if tok == nil {
		tok = tokenize.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	cache, err := lru.New[cacheKey, []SearchHit](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("blogservice: cache: %w", err)
	}
	s := &Service{
		store:  store,
		loader: loader,
		tok:    tok,
		logger: logger,
		opts:   opts,
		cache:  cache,
		now:    time.Now,
	}
	snap, err := s.newSnapshot(content.NewCollection(nil), index.Empty(s.now()), "")
	if err != nil {
		return nil, err
	}
	s.snap.Store(snap)
	return s, nil
}

// Snapshot returns the current snapshot. It is never nil.
func (s *Service) Snapshot() *Snapshot {
	return s.snap.Load()
}

// Ready reports whether content has been loaded at least once.
func (s *Service) Ready() bool {
	return s.Snapshot().Generation > 0
}

// Rebuild reloads all content and replaces the snapshot. It returns false
// without rebuilding when the content is byte-identical to the current
// snapshot.
func (s *Service) Rebuild(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	metas, err := s.store.List("")
	if err != nil {
		return false, fmt.Errorf("blogservice: rebuild: %w", err)
	}
	fingerprint := checksum.Corpus(metas)
	if cur := s.Snapshot(); cur.Generation > 0 && cur.Fingerprint == fingerprint {
		s.logger.Debug("service: content unchanged, rebuild skipped")
		return false, nil
	}

	posts, err := s.loader.LoadFiles(ctx, metas)
	if err != nil {
		return false, fmt.Errorf("blogservice: rebuild: %w", err)
	}
	coll := content.NewCollection(posts)
	idx := index.Build(coll.Posts(), s.tok, s.now())
	snap, err := s.newSnapshot(coll, idx, fingerprint)
	if err != nil {
		return false, err
	}
	if s.opts.IndexPath != "" {
		if err := storage.WriteFileAtomic(s.opts.IndexPath, snap.Artifact); err != nil {
			return false, fmt.Errorf("blogservice: save index: %w", err)
		}
	}
	s.publish(snap)

	s.logger.Info("service: rebuilt",
		slog.Int("posts", idx.TotalPosts),
		slog.Int("categories", len(idx.Categories)),
		slog.Uint64("generation", snap.Generation),
		slog.Duration("took", time.Since(start)),
	)
	return true, nil
}

// LoadArtifact installs a previously saved index without content. A missing
// or unreadable artifact keeps the current snapshot and returns an
// error matching apperr.ErrIndexUnavailable.
func (s *Service) LoadArtifact(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := index.Load(path)
	if err != nil {
		s.logger.Warn("service: search index unavailable",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", apperr.ErrIndexUnavailable, err)
	}
	snap, err := s.newSnapshot(content.NewCollection(nil), idx, "")
	if err != nil {
		return err
	}
	s.publish(snap)
	return nil
}

func (s *Service) newSnapshot(coll *content.Collection, idx *index.SearchIndex, fingerprint string) (*Snapshot, error) {
	artifact, err := index.Marshal(idx)
	if err != nil {
		return nil, fmt.Errorf("blogservice: %w", err)
	}
	return &Snapshot{
		Collection:  coll,
		Index:       idx,
		Engine:      search.New(idx, s.tok),
		Artifact:    artifact,
		ETag:        `"` + checksum.Sum(artifact)[:16] + `"`,
		Fingerprint: fingerprint,
	}, nil
}

// publish assigns the next generation to snap and makes it current.
func (s *Service) publish(snap *Snapshot) {
	snap.Generation = s.gen.Add(1)
	s.snap.Store(snap)
}

// Search runs a ranked query and highlights titles and excerpts. Results
// are cached per snapshot generation.
func (s *Service) Search(query string, limit int) []SearchHit {
	if limit <= 0 {
		limit = s.opts.DefaultLimit
	}
	snap := s.Snapshot()
	key := cacheKey{generation: snap.Generation, query: strings.TrimSpace(query), limit: limit}
	if hits, ok := s.cache.Get(key); ok {
		return hits
	}

	results := snap.Engine.Search(query, limit)
	hits := make([]SearchHit, 0, len(results))
	for _, p := range results {
		hits = append(hits, SearchHit{
			Slug:               p.Slug,
			Title:              p.Title,
			Excerpt:            p.Excerpt,
			Category:           p.Category,
			CategoryName:       p.CategoryName,
			Tags:               p.Tags,
			Author:             p.Author,
			Date:               p.Date,
			ReadingTime:        p.ReadingTime,
			HighlightedTitle:   snap.Engine.HighlightHTML(p.Title, query),
			HighlightedExcerpt: snap.Engine.HighlightHTML(p.Excerpt, query),
		})
	}
	s.cache.Add(key, hits)
	return hits
}

// Suggestions returns search suggestions for a partial query.
func (s *Service) Suggestions(query string, limit int) []string {
	return s.Snapshot().Engine.Suggestions(query, limit)
}

// PopularTerms returns the most used tags and category names.
func (s *Service) PopularTerms(limit int) []index.TermCount {
	return s.Snapshot().Engine.PopularTerms(limit)
}

// Stats summarises the current index.
func (s *Service) Stats() search.Stats {
	return s.Snapshot().Engine.Stats()
}

// Posts returns one page of posts, optionally filtered by category and tag.
func (s *Service) Posts(page, perPage int, category, tag string) content.Page {
	coll := s.Snapshot().Collection
	posts := coll.Posts()
	switch {
	case category != "" && tag != "":
		posts = intersect(coll.ByCategory(category), coll.ByTag(tag))
	case category != "":
		posts = coll.ByCategory(category)
	case tag != "":
		posts = coll.ByTag(tag)
	}
	return content.Paginate(posts, page, perPage)
}

func intersect(a, b []models.Post) []models.Post {
	keep := make(map[string]struct{}, len(b))
	for _, p := range b {
		keep[p.Slug] = struct{}{}
	}
	out := []models.Post{}
	for _, p := range a {
		if _, ok := keep[p.Slug]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Recent returns the n newest posts.
func (s *Service) Recent(n int) []models.Post {
	return s.Snapshot().Collection.Recent(n)
}

// Post returns a single post or apperr.ErrNotFound.
func (s *Service) Post(slug string) (models.Post, error) {
	return s.Snapshot().Collection.BySlug(slug)
}

// Categories returns all category aggregates.
func (s *Service) Categories() []models.Category {
	return s.Snapshot().Collection.Categories()
}

// Category returns a category with its posts or apperr.ErrNotFound.
func (s *Service) Category(slug string) (*CategoryDetail, error) {
	coll := s.Snapshot().Collection
	cat, err := coll.Category(slug)
	if err != nil {
		return nil, err
	}
	return &CategoryDetail{Category: cat, Posts: coll.ByCategory(slug)}, nil
}

// Tags returns the tag frequency table.
func (s *Service) Tags() []index.TermCount {
	if idx := s.Snapshot().Index; idx != nil {
		return idx.Tags
	}
	return []index.TermCount{}
}

// Artifact returns the serialized index and its entity tag.
func (s *Service) Artifact() ([]byte, string) {
	snap := s.Snapshot()
	return snap.Artifact, snap.ETag
}
