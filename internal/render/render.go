// Package render converts Markdown bodies into sanitised HTML.
package render

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/starford/inkpress/internal/models"
	mdparser "github.com/starford/inkpress/internal/parser"
)

// Renderer turns a raw Markdown body into HTML plus its heading outline.
// Heading ids in the HTML always equal the ids in the returned outline.
type Renderer interface {
	Render(raw []byte) (string, []models.Heading, error)
}

// Options configures the goldmark pipeline.
type Options struct {
	// HighlightStyle is a chroma style name; only used for the CSS export.
	HighlightStyle string
	// HeadingClass is set on the anchor wrapped around heading text.
	HeadingClass string
	// Extensions lists goldmark extension names; empty selects GFM defaults.
	Extensions []string
}

// DefaultOptions mirrors the stock blog look.
func DefaultOptions() Options {
	return Options{
		HighlightStyle: "github",
		HeadingClass:   "heading-link",
	}
}

// Goldmark implements Renderer. The pipeline is block parse → HTML
// serialisation with chroma highlighting → heading ids → anchor wrapping,
// followed by sanitisation. It is stateless and safe for concurrent use.
type Goldmark struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	opts   Options
}

// NewGoldmark builds the rendering pipeline.
func NewGoldmark(opts Options) *Goldmark {
	if opts.HeadingClass == "" {
		opts.HeadingClass = DefaultOptions().HeadingClass
	}
	if opts.HighlightStyle == "" {
		opts.HighlightStyle = DefaultOptions().HighlightStyle
	}

	exts := collectExtensions(opts.Extensions)
	exts = append(exts, highlighting.NewHighlighting(
		highlighting.WithStyle(opts.HighlightStyle),
		highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
	))

	md := goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(&anchorTransformer{class: opts.HeadingClass}, 1000),
			),
		),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	return &Goldmark{md: md, policy: newPolicy(), opts: opts}
}

// Render implements Renderer.
func (g *Goldmark) Render(raw []byte) (string, []models.Heading, error) {
	var buf bytes.Buffer
	ctx := parser.NewContext(parser.WithIDs(headingIDs{}))
	if err := g.md.Convert(raw, &buf, parser.WithContext(ctx)); err != nil {
		return "", nil, fmt.Errorf("render: convert: %w", err)
	}
	out := g.policy.SanitizeBytes(buf.Bytes())
	return string(out), mdparser.ExtractHeadings(string(raw)), nil
}

// StyleCSS returns the stylesheet for the configured highlight style.
func (g *Goldmark) StyleCSS() (string, error) {
	return styleCSS(g.opts.HighlightStyle)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{extension.GFM}
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := seen[key]; ok {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		extenders = append(extenders, ext)
		seen[key] = struct{}{}
	}
	return extenders
}

// headingIDs feeds goldmark's auto heading ids through parser.HeadingID.
// Duplicates are not suffixed so ids match the extracted outline.
type headingIDs struct{}

func (headingIDs) Generate(value []byte, _ ast.NodeKind) []byte {
	return []byte(mdparser.HeadingID(mdparser.HeadingText(string(value))))
}

func (headingIDs) Put(_ []byte) {}

// anchorTransformer moves the inline content of every heading that carries
// an id into <a href="#id" class="...">.
type anchorTransformer struct {
	class string
}

func (t *anchorTransformer) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		raw, ok := h.AttributeString("id")
		if !ok {
			return ast.WalkSkipChildren, nil
		}
		id, _ := raw.([]byte)
		if len(id) == 0 {
			h.RemoveAttributes()
			return ast.WalkSkipChildren, nil
		}

		link := ast.NewLink()
		link.Destination = append([]byte("#"), id...)
		link.SetAttributeString("class", []byte(t.class))
		moveChildren(h, link)
		h.AppendChild(h, link)
		return ast.WalkSkipChildren, nil
	})
}

// moveChildren reparents the inline children of from onto to. Links are
// flattened into their text so anchors never nest.
func moveChildren(from, to ast.Node) {
	for c := from.FirstChild(); c != nil; {
		next := c.NextSibling()
		from.RemoveChild(from, c)
		if _, ok := c.(*ast.Link); ok {
			moveChildren(c, to)
		} else {
			to.AppendChild(to, c)
		}
		c = next
	}
}

var (
	classRe    = regexp.MustCompile(`^[\w\- ]+$`)
	checkboxRe = regexp.MustCompile(`^checkbox$`)
)

// newPolicy allows user-generated content plus the class and id attributes
// produced by highlighting and heading anchors. Only links leaving the site
// get rel="nofollow".
func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(false)
	p.RequireNoFollowOnFullyQualifiedLinks(true)
	p.AllowAttrs("class").Matching(classRe).Globally()
	p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("type").Matching(checkboxRe).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	return p
}
