// Package models defines the domain types for InkPress.
package models

import "time"

// Post represents one rendered Markdown file from the content directory.
type Post struct {
	Slug         string        `json:"slug"`
	Title        string        `json:"title"`
	Date         time.Time     `json:"date"`
	Excerpt      string        `json:"excerpt,omitempty"`
	Content      string        `json:"content"`
	Category     string        `json:"category"`
	CategoryName string        `json:"categoryName"`
	Tags         []string      `json:"tags"`
	Author       string        `json:"author,omitempty"`
	ReadingTime  int           `json:"readingTime"`
	Headings     []Heading     `json:"headings,omitempty"`
	PreviousPost *PostRef      `json:"previousPost,omitempty"`
	NextPost     *PostRef      `json:"nextPost,omitempty"`
	RelatedPosts []RelatedPost `json:"relatedPosts,omitempty"`

	SourcePath string `json:"-"`
	Checksum   string `json:"-"`
	// Body is the raw Markdown body without front-matter.
	Body string `json:"-"`
}

// Heading is one entry of a post's table of contents.
type Heading struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// PostRef points at an adjacent post in date order.
type PostRef struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// RelatedPost is a lightweight reference to a post in the same category.
type RelatedPost struct {
	Slug  string    `json:"slug"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
}

// Category is an aggregate view over the posts sharing a category slug.
type Category struct {
	Slug        string      `json:"slug"`
	Name        string      `json:"name"`
	Count       int         `json:"count"`
	Description string      `json:"description"`
	LatestPost  *LatestPost `json:"latestPost,omitempty"`
}

// LatestPost summarises the most recent post of a category.
type LatestPost struct {
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
}

// FileMetadata is a lightweight representation returned by content listing.
type FileMetadata struct {
	Path     string    `json:"path"`
	Checksum string    `json:"checksum"`
	ModTime  time.Time `json:"mod_time"`
}
