package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/inkpress/internal/apperr"
	"github.com/starford/inkpress/internal/blogservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *blogservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *blogservice.Service) *Handler {
	return &Handler{svc: svc}
}

// intParam parses a query parameter, returning def when absent or invalid.
func intParam(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}

// ListPosts handles GET /api/posts.
//
//	@Summary		List posts, newest first, with pagination and filtering
//	@Tags			posts
//	@Produce		json
//	@Param			page		query		int		false	"Page number (from 1)"
//	@Param			per_page	query		int		false	"Page size"
//	@Param			category	query		string	false	"Filter by category slug"
//	@Param			tag			query		string	false	"Filter by tag"
//	@Success		200			{object}	PostPage
//	@Router			/posts [get]
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := h.svc.Posts(intParam(r, "page", 1), intParam(r, "per_page", 0), q.Get("category"), q.Get("tag"))
	writeJSON(w, http.StatusOK, page)
}

// RecentPosts handles GET /api/posts/recent.
//
//	@Summary		Get the newest posts
//	@Tags			posts
//	@Produce		json
//	@Param			limit	query		int	false	"Number of posts"
//	@Success		200		{object}	PostsResponse
//	@Router			/posts/recent [get]
func (h *Handler) RecentPosts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, PostsResponse{Posts: h.svc.Recent(intParam(r, "limit", 0))})
}

// GetPost handles GET /api/posts/{slug}.
//
//	@Summary		Get a single post by slug
//	@Tags			posts
//	@Produce		json
//	@Param			slug	path		string	true	"Post slug"
//	@Success		200		{object}	PostDetail
//	@Failure		404		{object}	errResponse
//	@Router			/posts/{slug} [get]
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	post, err := h.svc.Post(slug)
	if err != nil {
		h.fail(w, "get post", slug, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// ListCategories handles GET /api/categories.
//
//	@Summary		List categories by post count
//	@Tags			categories
//	@Produce		json
//	@Success		200	{object}	CategoriesResponse
//	@Router			/categories [get]
func (h *Handler) ListCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, CategoriesResponse{Categories: h.svc.Categories()})
}

// GetCategory handles GET /api/categories/{slug}.
//
//	@Summary		Get a category with its posts
//	@Tags			categories
//	@Produce		json
//	@Param			slug	path		string	true	"Category slug"
//	@Success		200		{object}	CategoryDetail
//	@Failure		404		{object}	errResponse
//	@Router			/categories/{slug} [get]
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	cat, err := h.svc.Category(slug)
	if err != nil {
		h.fail(w, "get category", slug, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// ListTags handles GET /api/tags.
//
//	@Summary		List tags by post count
//	@Tags			tags
//	@Produce		json
//	@Success		200	{object}	TermsResponse
//	@Router			/tags [get]
func (h *Handler) ListTags(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, TermsResponse{Terms: h.svc.Tags()})
}

// Search handles GET /api/search.
//
//	@Summary		Ranked full-text search across posts
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	results := h.svc.Search(q, intParam(r, "limit", 0))
	writeJSON(w, http.StatusOK, SearchResponse{
		Query:   q,
		Results: results,
		Total:   len(results),
	})
}

// Suggestions handles GET /api/search/suggestions.
//
//	@Summary		Suggest titles, tags and categories for a partial query
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Partial query"
//	@Param			limit	query		int		false	"Max suggestions"
//	@Success		200		{object}	SuggestionsResponse
//	@Router			/search/suggestions [get]
func (h *Handler) Suggestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	writeJSON(w, http.StatusOK, SuggestionsResponse{Suggestions: h.svc.Suggestions(q, intParam(r, "limit", 0))})
}

// PopularTerms handles GET /api/search/popular.
//
//	@Summary		Most used tags and categories
//	@Tags			search
//	@Produce		json
//	@Param			limit	query		int	false	"Max terms"
//	@Success		200		{object}	TermsResponse
//	@Router			/search/popular [get]
func (h *Handler) PopularTerms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, TermsResponse{Terms: h.svc.PopularTerms(intParam(r, "limit", 0))})
}

// Stats handles GET /api/stats.
//
//	@Summary		Index statistics
//	@Tags			search
//	@Produce		json
//	@Success		200	{object}	StatsResponse
//	@Router			/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Stats())
}

// Artifact handles GET /search-index.json. It honours If-None-Match.
func (h *Handler) Artifact(w http.ResponseWriter, r *http.Request) {
	data, etag := h.svc.Artifact()
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}

// Live handles GET /health/live.
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /health/ready. It reports 503 until content is loaded.
func (h *Handler) Ready(w http.ResponseWriter, _ *http.Request) {
	if !h.svc.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) fail(w http.ResponseWriter, op, slug string, err error) {
	if errors.Is(err, apperr.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	slog.Error(op+" failed", slog.String("slug", slug), slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
}
