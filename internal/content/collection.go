package content

import (
	"strings"

	"github.com/starford/inkpress/internal/apperr"
	"github.com/starford/inkpress/internal/models"
)

const (
	// DefaultRecent is the number of posts Recent returns for n <= 0.
	DefaultRecent = 5
	// DefaultPerPage is the page size Paginate uses for perPage <= 0.
	DefaultPerPage = 10
)

// Collection is an immutable, date-ordered set of linked posts.
// Returned slices and values must not be modified by callers.
type Collection struct {
	posts      []models.Post
	bySlug     map[string]int
	categories []models.Category
}

// NewCollection sorts and links a copy of posts and aggregates categories.
func NewCollection(posts []models.Post) *Collection {
	sorted := make([]models.Post, len(posts))
	copy(sorted, posts)
	SortPosts(sorted)
	Link(sorted)

	bySlug := make(map[string]int, len(sorted))
	for i, p := range sorted {
		bySlug[p.Slug] = i
	}
	return &Collection{
		posts:      sorted,
		bySlug:     bySlug,
		categories: Categories(sorted),
	}
}

// Posts returns every post, newest first.
func (c *Collection) Posts() []models.Post {
	if c == nil {
		return nil
	}
	return c.posts
}

// Len returns the number of posts.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.posts)
}

// BySlug looks up one post.
func (c *Collection) BySlug(slug string) (models.Post, error) {
	if c != nil {
		if i, ok := c.bySlug[slug]; ok {
			return c.posts[i], nil
		}
	}
	return models.Post{}, apperr.ErrNotFound
}

// ByCategory returns the posts of a category, newest first.
func (c *Collection) ByCategory(slug string) []models.Post {
	return c.filter(func(p models.Post) bool { return p.Category == slug })
}

// ByTag returns posts carrying tag, compared case-insensitively.
func (c *Collection) ByTag(tag string) []models.Post {
	return c.filter(func(p models.Post) bool {
		for _, t := range p.Tags {
			if strings.EqualFold(t, tag) {
				return true
			}
		}
		return false
	})
}

// Recent returns up to n of the newest posts.
func (c *Collection) Recent(n int) []models.Post {
	if n <= 0 {
		n = DefaultRecent
	}
	posts := c.Posts()
	if n > len(posts) {
		n = len(posts)
	}
	return posts[:n]
}

// Categories returns the category aggregates.
func (c *Collection) Categories() []models.Category {
	if c == nil {
		return []models.Category{}
	}
	return c.categories
}

// Category looks up one category aggregate by slug.
func (c *Collection) Category(slug string) (models.Category, error) {
	for _, cat := range c.Categories() {
		if cat.Slug == slug {
			return cat, nil
		}
	}
	return models.Category{}, apperr.ErrNotFound
}

func (c *Collection) filter(keep func(models.Post) bool) []models.Post {
	out := []models.Post{}
	for _, p := range c.Posts() {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// Page is one slice of a paginated post list.
type Page struct {
	Posts      []models.Post `json:"posts"`
	Page       int           `json:"page"`
	PerPage    int           `json:"perPage"`
	Total      int           `json:"total"`
	TotalPages int           `json:"totalPages"`
}

// Paginate slices posts into pages numbered from 1. Out-of-range pages are
// empty.
func Paginate(posts []models.Post, page, perPage int) Page {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	total := len(posts)
	p := Page{
		Posts:      []models.Post{},
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	start := (page - 1) * perPage
	if start >= total {
		return p
	}
	end := min(start+perPage, total)
	p.Posts = posts[start:end]
	return p
}
