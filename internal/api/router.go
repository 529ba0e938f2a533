package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/inkpress/internal/blogservice"
)

// DefaultMaxAge is the Cache-Control max-age of API responses.
const DefaultMaxAge = 30 * time.Second

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events without caching.
func NewRouter(svc *blogservice.Service, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(CacheControl(DefaultMaxAge))

		// Posts.
		r.Get("/posts", h.ListPosts)
		r.Get("/posts/recent", h.RecentPosts)
		r.Get("/posts/{slug}", h.GetPost)

		// Taxonomy.
		r.Get("/categories", h.ListCategories)
		r.Get("/categories/{slug}", h.GetCategory)
		r.Get("/tags", h.ListTags)

		// Search.
		r.Get("/search", h.Search)
		r.Get("/search/suggestions", h.Suggestions)
		r.Get("/search/popular", h.PopularTerms)
		r.Get("/stats", h.Stats)
	})

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

// Mount registers the API under /api plus the root artifact and health
// endpoints on r.
func Mount(r chi.Router, svc *blogservice.Service, sseHandler http.Handler) {
	h := NewHandler(svc)
	r.Get("/health/live", h.Live)
	r.Get("/health/ready", h.Ready)
	r.Get("/search-index.json", h.Artifact)
	r.Mount("/api", NewRouter(svc, sseHandler))
}
