// Package index builds and persists the search index artifact.
package index

import (
	"sort"
	"strings"
	"time"

	"github.com/starford/inkpress/internal/models"
	"github.com/starford/inkpress/internal/parser"
	"github.com/starford/inkpress/internal/tokenize"
)

// ExcerptLength is the rune length of generated excerpts.
const ExcerptLength = 200

// Post is the lightweight record stored per post.
type Post struct {
	ID                string    `json:"id"`
	Slug              string    `json:"slug"`
	Title             string    `json:"title"`
	Excerpt           string    `json:"excerpt"`
	Category          string    `json:"category"`
	CategoryName      string    `json:"categoryName"`
	Tags              []string  `json:"tags"`
	Author            string    `json:"author,omitempty"`
	Date              time.Time `json:"date"`
	ReadingTime       int       `json:"readingTime"`
	Tokens            []string  `json:"tokens"`
	SearchableContent string    `json:"searchableContent"`
}

// TermCount is one row of a frequency table.
type TermCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// SearchIndex is the persisted artifact. It is never modified after Build.
type SearchIndex struct {
	Posts       []Post      `json:"posts"`
	Categories  []TermCount `json:"categories"`
	Tags        []TermCount `json:"tags"`
	TotalPosts  int         `json:"totalPosts"`
	LastUpdated time.Time   `json:"lastUpdated"`
}

// Empty returns a valid index without posts.
func Empty(now time.Time) *SearchIndex {
	return &SearchIndex{
		Posts:       []Post{},
		Categories:  []TermCount{},
		Tags:        []TermCount{},
		LastUpdated: now.UTC(),
	}
}

// Build creates the index for posts, keeping their order. A nil tokenizer
// uses tokenize.New().
func Build(posts []models.Post, tok *tokenize.Tokenizer, now time.Time) *SearchIndex {
	if tok == nil {
		tok = tokenize.New()
	}
	idx := Empty(now)

	categories := map[string]int{}
	tags := map[string]int{}
	for _, p := range posts {
		plain := parser.PlainText(p.Content)
		excerpt := p.Excerpt
		if excerpt == "" {
			excerpt = parser.Summarize(plain, ExcerptLength)
		}
		blob := SearchableContent(p, plain)
		postTags := p.Tags
		if postTags == nil {
			postTags = []string{}
		}

		idx.Posts = append(idx.Posts, Post{
			ID:                p.Slug,
			Slug:              p.Slug,
			Title:             p.Title,
			Excerpt:           excerpt,
			Category:          p.Category,
			CategoryName:      p.CategoryName,
			Tags:              postTags,
			Author:            p.Author,
			Date:              p.Date,
			ReadingTime:       p.ReadingTime,
			Tokens:            tok.Tokenize(blob),
			SearchableContent: blob,
		})

		categories[categoryLabel(p)]++
		for _, t := range postTags {
			tags[t]++
		}
	}

	idx.TotalPosts = len(idx.Posts)
	idx.Categories = frequencies(categories)
	idx.Tags = frequencies(tags)
	return idx
}

// SearchableContent joins the searchable fields of a post with spaces:
// title, plain content, excerpt, category name, tags and author.
func SearchableContent(p models.Post, plain string) string {
	parts := []string{p.Title, plain, p.Excerpt, categoryLabel(p)}
	parts = append(parts, p.Tags...)
	parts = append(parts, p.Author)

	nonEmpty := parts[:0]
	for _, s := range parts {
		if s = strings.TrimSpace(s); s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	return strings.Join(nonEmpty, " ")
}

func categoryLabel(p models.Post) string {
	if p.CategoryName != "" {
		return p.CategoryName
	}
	return p.Category
}

// frequencies sorts counts by count descending, then name ascending.
func frequencies(counts map[string]int) []TermCount {
	out := make([]TermCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, TermCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
