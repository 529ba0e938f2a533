package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_HeadingAnchors(t *testing.T) {
	g := NewGoldmark(DefaultOptions())
	html, headings, err := g.Render([]byte("## Hello World\n\nSome text.\n"))
	require.NoError(t, err)

	assert.Contains(t, html, `id="hello-world"`)
	assert.Contains(t, html, `href="#hello-world"`)
	assert.Contains(t, html, `class="heading-link"`)
	assert.Contains(t, html, "Hello World</a></h2>")
	require.Len(t, headings, 1)
	assert.Equal(t, "hello-world", headings[0].ID)
	assert.Equal(t, 2, headings[0].Level)
}

func TestRender_NoFollowOnlyOnExternalLinks(t *testing.T) {
	g := NewGoldmark(DefaultOptions())
	html, _, err := g.Render([]byte("## Setup\n\nSee [the docs](https://go.dev) and [below](#setup).\n"))
	require.NoError(t, err)

	heading := html[strings.Index(html, "<h2"):strings.Index(html, "</h2>")]
	assert.Contains(t, heading, `href="#setup"`)
	assert.NotContains(t, heading, "nofollow")
	assert.Equal(t, 1, strings.Count(html, `rel="nofollow"`))
	assert.Contains(t, html, `href="https://go.dev" rel="nofollow"`)
}

func TestRender_HeadingIDsMatchOutline(t *testing.T) {
	g := NewGoldmark(DefaultOptions())
	body := "# Intro\n\n## See [the docs](https://go.dev)\n\n### 中文 标题 ##\n"
	html, headings, err := g.Render([]byte(body))
	require.NoError(t, err)

	require.Len(t, headings, 3)
	for _, h := range headings {
		assert.Contains(t, html, `id="`+h.ID+`"`, h.Text)
	}
	assert.Equal(t, "see-the-docs", headings[1].ID)
	assert.Equal(t, "中文-标题", headings[2].ID)
}

func TestRender_CustomHeadingClass(t *testing.T) {
	g := NewGoldmark(Options{HeadingClass: "anchor"})
	html, _, err := g.Render([]byte("# Title\n"))
	require.NoError(t, err)
	assert.Contains(t, html, `class="anchor"`)
}

func TestRender_GFM(t *testing.T) {
	g := NewGoldmark(DefaultOptions())
	html, _, err := g.Render([]byte("| a | b |\n|---|---|\n| 1 | 2 |\n\n~~gone~~\n"))
	require.NoError(t, err)
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<del>gone</del>")
}

func TestRender_CodeHighlighting(t *testing.T) {
	g := NewGoldmark(DefaultOptions())
	html, headings, err := g.Render([]byte("```go\n# not a heading\nfunc main() {}\n```\n"))
	require.NoError(t, err)
	assert.Contains(t, html, "chroma")
	assert.Empty(t, headings)
}

func TestRender_StripsScripts(t *testing.T) {
	g := NewGoldmark(DefaultOptions())
	html, _, err := g.Render([]byte("hi\n\n<script>alert(1)</script>\n\n<p onclick=\"x()\">p</p>\n"))
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, "onclick")
}

func TestRender_EmptyBody(t *testing.T) {
	g := NewGoldmark(DefaultOptions())
	html, headings, err := g.Render(nil)
	require.NoError(t, err)
	assert.Equal(t, "", strings.TrimSpace(html))
	assert.Empty(t, headings)
}

func TestCollectExtensions(t *testing.T) {
	assert.Len(t, collectExtensions(nil), 1)
	assert.Len(t, collectExtensions([]string{"table", "Tables", "bogus", "footnote"}), 3)
}

func TestStyleCSS(t *testing.T) {
	g := NewGoldmark(DefaultOptions())
	css, err := g.StyleCSS()
	require.NoError(t, err)
	assert.Contains(t, css, ".chroma")

	_, err = styleCSS("no-such-style")
	assert.Error(t, err)
}
