package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/starford/inkpress/internal/mcpserver"
)

// Build loads the content once and writes the search index artifact.
func Build(ctx context.Context, opts ...Option) error {
	app, err := newApplication(os.Stdout, opts)
	if err != nil {
		return err
	}
	cfg := app.config

	svc, err := app.newService()
	if err != nil {
		return err
	}
	if _, err := svc.Rebuild(ctx); err != nil {
		return fmt.Errorf("build: %w", err)
	}

	stats := svc.Stats()
	app.logger.Info("search index written",
		slog.String("path", cfg.Search.IndexPath),
		slog.Int("posts", stats.TotalPosts),
		slog.Int("categories", stats.Categories),
		slog.Int("tags", stats.Tags))
	fmt.Fprintf(app.out, "indexed %d posts into %s\n", stats.TotalPosts, cfg.Search.IndexPath)
	return nil
}

// Query searches the saved search index artifact and prints one line per
// hit: date, slug and title separated by tabs.
func Query(ctx context.Context, query string, limit int, opts ...Option) error {
	app, err := newApplication(os.Stderr, opts)
	if err != nil {
		return err
	}
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("search: query is required")
	}

	svc, err := app.newService()
	if err != nil {
		return err
	}
	if err := svc.LoadArtifact(app.config.Search.IndexPath); err != nil {
		app.logger.Warn("search: no index, run build first", slog.String("error", err.Error()))
	}

	hits := svc.Search(query, limit)
	if len(hits) == 0 {
		fmt.Fprintln(app.out, "no posts found")
		return nil
	}
	for _, h := range hits {
		fmt.Fprintf(app.out, "%s\t%s\t%s\n", h.Date.Format("2006-01-02"), h.Slug, h.Title)
	}
	return nil
}

// ServeMCP builds the content and serves the MCP tools on stdin/stdout.
// Logs go to stderr because stdout carries the protocol.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(os.Stderr, opts)
	if err != nil {
		return err
	}

	svc, err := app.newService()
	if err != nil {
		return err
	}
	if _, err := svc.Rebuild(ctx); err != nil {
		app.logger.Warn("mcp: initial build failed", slog.String("error", err.Error()))
		if loadErr := svc.LoadArtifact(app.config.Search.IndexPath); loadErr != nil {
			app.logger.Warn("mcp: no saved index available", slog.String("error", loadErr.Error()))
		}
	}

	app.logger.Info("mcp: serving on stdio", slog.Int("posts", svc.Snapshot().Collection.Len()))
	return mcpserver.New(svc, app.version).ServeStdio()
}
