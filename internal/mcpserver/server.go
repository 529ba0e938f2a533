// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes InkPress search and browse tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/inkpress/internal/apperr"
	"github.com/starford/inkpress/internal/blogservice"
	"github.com/starford/inkpress/internal/models"
)

// FrontMatterURI is the resource URI of the post format guide.
const FrontMatterURI = "inkpress://front-matter"

// Server wraps the MCP server with InkPress tools.
type Server struct {
	mcp *server.MCPServer
	svc *blogservice.Service
}

// New creates a new MCP server with all InkPress tools registered.
func New(svc *blogservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"InkPress",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_posts",
		mcp.WithDescription("Full-text search over post titles, excerpts, tags and bodies. "+
			"Results are ranked by matched terms and carry <mark> highlighted title and excerpt."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchPosts)

	s.mcp.AddTool(mcp.NewTool("get_post",
		mcp.WithDescription("Return a post by slug, including rendered HTML, headings and neighbours."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Post slug, e.g. tech-intro-to-rust")),
		mcp.WithBoolean("markdown", mcp.Description("Return the raw Markdown body instead of JSON")),
	), s.getPost)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List posts newest first, optionally filtered by category or tag."),
		mcp.WithString("category", mcp.Description("Category slug filter")),
		mcp.WithString("tag", mcp.Description("Tag filter (case-insensitive)")),
		mcp.WithNumber("page", mcp.Description("1-based page number")),
		mcp.WithNumber("per_page", mcp.Description("Posts per page (default 10)")),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List categories with post counts and their latest post."),
	), s.listCategories)

	s.mcp.AddTool(mcp.NewTool("suggest_terms",
		mcp.WithDescription("Suggest post titles for a partial query, or popular tags and "+
			"categories when the query is empty."),
		mcp.WithString("query", mcp.Description("Partial query")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of suggestions")),
	), s.suggestTerms)

	s.mcp.AddResource(
		mcp.NewResource(FrontMatterURI, "Post Format",
			mcp.WithResourceDescription("Front-matter fields and derived metadata of InkPress posts."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFrontMatterResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !s.svc.Ready() {
		return mcp.NewToolResultError(apperr.ErrIndexUnavailable.Error()), nil
	}
	hits := s.svc.Search(query, req.GetInt("limit", 0))
	if len(hits) == 0 {
		return mcp.NewToolResultText("no posts found"), nil
	}
	return jsonResult(hits)
}

func (s *Server) getPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	post, err := s.svc.Post(slug)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", slug)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if req.GetBool("markdown", false) {
		return mcp.NewToolResultText(post.Body), nil
	}
	return jsonResult(post)
}

func (s *Server) listPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page := s.svc.Posts(
		req.GetInt("page", 1),
		req.GetInt("per_page", 0),
		req.GetString("category", ""),
		req.GetString("tag", ""),
	)
	// Rendered HTML is left out of listings; get_post returns it.
	posts := make([]models.Post, len(page.Posts))
	for i, p := range page.Posts {
		p.Content = ""
		posts[i] = p
	}
	page.Posts = posts
	return jsonResult(page)
}

func (s *Server) listCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Categories())
}

func (s *Server) suggestTerms(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	limit := req.GetInt("limit", 0)
	if query == "" {
		return jsonResult(s.svc.PopularTerms(limit))
	}
	return jsonResult(s.svc.Suggestions(query, limit))
}

func (s *Server) readFrontMatterResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      FrontMatterURI,
			MIMEType: "text/markdown",
			Text:     FrontMatterGuide,
		},
	}, nil
}
