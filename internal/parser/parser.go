// Package parser extracts front-matter, headings, and text metrics from Markdown content.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/adrg/frontmatter"
)

// ErrNotUTF8 is returned for sources that are not valid UTF-8 text.
var ErrNotUTF8 = errors.New("parser: content is not valid UTF-8")

// Meta holds the recognised front-matter fields after normalisation.
type Meta struct {
	Title   string
	Date    time.Time // zero when absent or unparsable
	Excerpt string
	Tags    []string
	Author  string
}

// Result holds the output of parsing a Markdown file.
type Result struct {
	Meta Meta
	Body string
	// Malformed reports that a front-matter block was present but could not
	// be decoded; Meta is then empty and callers fall back to defaults.
	Malformed bool
}

// rawMeta mirrors the accepted front-matter keys. Date and Tags stay loosely
// typed because authors write them in several shapes.
type rawMeta struct {
	Title       string `yaml:"title" toml:"title" json:"title"`
	Date        any    `yaml:"date" toml:"date" json:"date"`
	Excerpt     string `yaml:"excerpt" toml:"excerpt" json:"excerpt"`
	Description string `yaml:"description" toml:"description" json:"description"`
	Tags        any    `yaml:"tags" toml:"tags" json:"tags"`
	Author      string `yaml:"author" toml:"author" json:"author"`
}

// Parse splits raw Markdown bytes into normalised front-matter and body.
// Only non-UTF-8 input is an error; a broken front-matter block is reported
// through Result.Malformed.
func Parse(data []byte) (*Result, error) {
	if !utf8.Valid(data) {
		return nil, ErrNotUTF8
	}

	var raw rawMeta
	body, err := frontmatter.Parse(bytes.NewReader(data), &raw)
	if err != nil {
		return &Result{Body: stripFrontmatter(data), Malformed: true}, nil
	}

	excerpt := strings.TrimSpace(raw.Excerpt)
	if excerpt == "" {
		excerpt = strings.TrimSpace(raw.Description)
	}
	date, _ := parseDate(raw.Date)

	return &Result{
		Meta: Meta{
			Title:   strings.TrimSpace(raw.Title),
			Date:    date,
			Excerpt: excerpt,
			Tags:    normalizeTags(raw.Tags),
			Author:  strings.TrimSpace(raw.Author),
		},
		Body: string(body),
	}, nil
}

// stripFrontmatter drops a leading --- or +++ delimited block that failed to
// decode. Without a closing delimiter the entire content is body.
func stripFrontmatter(data []byte) string {
	trimmed := bytes.TrimLeft(data, "\n\r")
	for _, delim := range []string{"---", "+++"} {
		if !bytes.HasPrefix(trimmed, []byte(delim)) {
			continue
		}
		rest := trimmed[len(delim):]
		idx := bytes.Index(rest, []byte("\n"+delim))
		if idx < 0 {
			return string(data)
		}
		after := rest[idx+1+len(delim):]
		return strings.TrimLeft(string(after), "\n\r")
	}
	return string(data)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
}

func parseDate(v any) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return d, !d.IsZero()
	case string:
		s := strings.TrimSpace(d)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// normalizeTags accepts a YAML/TOML sequence or a comma-separated string and
// returns trimmed, de-duplicated tags in first-seen order.
func normalizeTags(v any) []string {
	var items []string
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if item == nil {
				continue
			}
			items = append(items, fmt.Sprint(item))
		}
	case []string:
		items = t
	case string:
		items = strings.Split(t, ",")
	}

	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
