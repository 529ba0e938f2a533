// Package api implements the InkPress read-only REST API using chi.
package api

import (
	"fmt"
	"net/http"
	"time"
)

// CacheControl returns middleware that marks successful GET responses as
// publicly cacheable for maxAge. A zero maxAge disables caching.
func CacheControl(maxAge time.Duration) func(http.Handler) http.Handler {
	value := "no-cache"
	if maxAge > 0 {
		value = fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds()))
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				w.Header().Set("Cache-Control", value)
			}
			next.ServeHTTP(w, r)
		})
	}
}
