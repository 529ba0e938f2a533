package api

import (
	"github.com/starford/inkpress/internal/blogservice"
	"github.com/starford/inkpress/internal/content"
	"github.com/starford/inkpress/internal/index"
	"github.com/starford/inkpress/internal/models"
	"github.com/starford/inkpress/internal/search"
)

// PostDetail is the full post response type (aliased from the domain layer).
type PostDetail = models.Post

// PostPage is one page of a post listing (aliased from the domain layer).
type PostPage = content.Page

// CategoryDetail is a category with its posts (aliased from the domain layer).
type CategoryDetail = blogservice.CategoryDetail

// SearchHit is a single search hit with highlighted fields.
type SearchHit = blogservice.SearchHit

// StatsResponse summarises the search index.
type StatsResponse = search.Stats

// PostsResponse wraps a plain post list.
type PostsResponse struct {
	Posts []models.Post `json:"posts" validate:"required"`
}

// CategoriesResponse wraps the category aggregates.
type CategoriesResponse struct {
	Categories []models.Category `json:"categories" validate:"required"`
}

// TermsResponse wraps a frequency table.
type TermsResponse struct {
	Terms []index.TermCount `json:"terms" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Query   string      `json:"query" example:"rust" validate:"required"`
	Results []SearchHit `json:"results" validate:"required"`
	Total   int         `json:"total" example:"1" validate:"required"`
}

// SuggestionsResponse wraps search suggestions.
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions" validate:"required"`
}
