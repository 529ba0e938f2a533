// Package search answers ranked full-text queries over a search index.
package search

import (
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/starford/inkpress/internal/index"
	"github.com/starford/inkpress/internal/tokenize"
)

const (
	// DefaultLimit caps Search results when limit <= 0.
	DefaultLimit = 20
	// DefaultSuggestions caps Suggestions when limit <= 0.
	DefaultSuggestions = 5
	// DefaultPopular caps PopularTerms when limit <= 0.
	DefaultPopular = 10
	// TitleWeight multiplies occurrences of a query token in the title.
	TitleWeight = 3
)

// Engine is a read-only view over one SearchIndex. A nil Engine, or one
// built from a nil index, behaves as an empty index.
type Engine struct {
	idx   *index.SearchIndex
	tok   *tokenize.Tokenizer
	terms []postTerms
}

type postTerms struct {
	blob  map[string]int
	title map[string]int
}

// New precomputes per-post term frequencies. A nil tokenizer uses
// tokenize.New(); it must match the tokenizer the index was built with.
func New(idx *index.SearchIndex, tok *tokenize.Tokenizer) *Engine {
	if tok == nil {
		tok = tokenize.New()
	}
	e := &Engine{idx: idx, tok: tok}
	if idx == nil {
		return e
	}
	e.terms = make([]postTerms, len(idx.Posts))
	for i, p := range idx.Posts {
		e.terms[i] = postTerms{
			blob:  counts(p.Tokens),
			title: counts(tok.Tokenize(p.Title)),
		}
	}
	return e
}

func counts(tokens []string) map[string]int {
	m := make(map[string]int, len(tokens))
	for _, t := range tokens {
		m[t]++
	}
	return m
}

// Index returns the underlying index, or nil.
func (e *Engine) Index() *index.SearchIndex {
	if e == nil {
		return nil
	}
	return e.idx
}

func (e *Engine) posts() []index.Post {
	if e == nil || e.idx == nil {
		return nil
	}
	return e.idx.Posts
}

func (e *Engine) tokenizer() *tokenize.Tokenizer {
	if e == nil || e.tok == nil {
		return tokenize.New()
	}
	return e.tok
}

type candidate struct {
	pos     int
	matched int
	weight  int
}

// Search returns up to limit posts sharing at least one token with query.
// Results are ordered by distinct query tokens matched, weighted term
// frequency, date (newest first) and slug.
func (e *Engine) Search(query string, limit int) []index.Post {
	out := []index.Post{}
	if strings.TrimSpace(query) == "" {
		return out
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	qtokens := tokenize.Unique(e.tokenizer().Tokenize(query))
	if len(qtokens) == 0 {
		return out
	}

	posts := e.posts()
	var cands []candidate
	for i := range posts {
		c := candidate{pos: i}
		for _, q := range qtokens {
			n := e.terms[i].blob[q]
			if n == 0 {
				continue
			}
			c.matched++
			c.weight += n + TitleWeight*e.terms[i].title[q]
		}
		if c.matched > 0 {
			cands = append(cands, c)
		}
	}

	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.matched != b.matched {
			return a.matched > b.matched
		}
		if a.weight != b.weight {
			return a.weight > b.weight
		}
		pa, pb := posts[a.pos], posts[b.pos]
		if !pa.Date.Equal(pb.Date) {
			return pa.Date.After(pb.Date)
		}
		return pa.Slug < pb.Slug
	})

	for _, c := range cands[:min(limit, len(cands))] {
		out = append(out, clonePost(posts[c.pos]))
	}
	return out
}

func clonePost(p index.Post) index.Post {
	p.Tags = slices.Clone(p.Tags)
	p.Tokens = slices.Clone(p.Tokens)
	return p
}

// Suggestions returns up to limit distinct titles, tags and category names
// containing query, case-insensitively, in first-found order.
func (e *Engine) Suggestions(query string, limit int) []string {
	out := []string{}
	if strings.TrimSpace(query) == "" {
		return out
	}
	q := strings.ToLower(query)
	if limit <= 0 {
		limit = DefaultSuggestions
	}

	seen := map[string]struct{}{}
	add := func(s string) bool {
		if s == "" || !strings.Contains(strings.ToLower(s), q) {
			return false
		}
		if _, ok := seen[s]; ok {
			return false
		}
		seen[s] = struct{}{}
		out = append(out, s)
		return len(out) == limit
	}

	for _, p := range e.posts() {
		if add(p.Title) {
			return out
		}
		for _, t := range p.Tags {
			if add(t) {
				return out
			}
		}
		if add(p.CategoryName) {
			return out
		}
	}
	return out
}

// PopularTerms ranks tags and category names by how many posts carry them.
func (e *Engine) PopularTerms(limit int) []index.TermCount {
	if limit <= 0 {
		limit = DefaultPopular
	}
	idx := e.Index()
	if idx == nil {
		return []index.TermCount{}
	}

	totals := map[string]int{}
	for _, tc := range idx.Tags {
		totals[tc.Name] += tc.Count
	}
	for _, tc := range idx.Categories {
		totals[tc.Name] += tc.Count
	}

	out := make([]index.TermCount, 0, len(totals))
	for name, n := range totals {
		out = append(out, index.TermCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out[:min(limit, len(out))]
}

// Stats summarises an index.
type Stats struct {
	TotalPosts         int `json:"totalPosts"`
	Categories         int `json:"categories"`
	Tags               int `json:"tags"`
	AverageReadingTime int `json:"averageReadingTime"`
}

// Stats reports totals and the rounded average reading time. Categories
// are counted by slug, and posts without a reading time are left out of the
// average.
func (e *Engine) Stats() Stats {
	idx := e.Index()
	if idx == nil {
		return Stats{}
	}
	s := Stats{
		TotalPosts: len(idx.Posts),
		Tags:       len(idx.Tags),
	}

	categories := map[string]struct{}{}
	sum, timed := 0, 0
	for _, p := range idx.Posts {
		categories[p.Category] = struct{}{}
		if p.ReadingTime > 0 {
			sum += p.ReadingTime
			timed++
		}
	}
	s.Categories = len(categories)
	if timed > 0 {
		s.AverageReadingTime = int(math.Round(float64(sum) / float64(timed)))
	}
	return s
}
