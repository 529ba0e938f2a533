package parser

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Hello\ndate: 2024-01-03\nexcerpt: Short\nauthor: Ann\ntags:\n  - go\n  - inkpress\n---\n# Hello\nBody text.\n")
	r, err := Parse(input)
	require.NoError(t, err)

	assert.False(t, r.Malformed)
	assert.Equal(t, "Hello", r.Meta.Title)
	assert.Equal(t, "Short", r.Meta.Excerpt)
	assert.Equal(t, "Ann", r.Meta.Author)
	assert.Equal(t, []string{"go", "inkpress"}, r.Meta.Tags)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), r.Meta.Date.UTC())
	assert.Equal(t, "# Hello\nBody text.", strings.TrimSpace(r.Body))
}

func TestParse_DescriptionFallsBackForExcerpt(t *testing.T) {
	r, err := Parse([]byte("---\ndescription: From description\n---\nbody\n"))
	require.NoError(t, err)
	assert.Equal(t, "From description", r.Meta.Excerpt)
}

func TestParse_QuotedDateTime(t *testing.T) {
	r, err := Parse([]byte("---\ndate: \"2024-02-10T08:30:00Z\"\n---\nbody\n"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 10, 8, 30, 0, 0, time.UTC), r.Meta.Date.UTC())
}

func TestParse_TOMLFrontmatter(t *testing.T) {
	r, err := Parse([]byte("+++\ntitle = \"Toml Post\"\ntags = [\"a\", \"b\"]\n+++\nbody\n"))
	require.NoError(t, err)
	assert.Equal(t, "Toml Post", r.Meta.Title)
	assert.Equal(t, []string{"a", "b"}, r.Meta.Tags)
}

func TestParse_NoFrontmatter(t *testing.T) {
	r, err := Parse([]byte("# Just a heading\nSome text.\n"))
	require.NoError(t, err)
	assert.False(t, r.Malformed)
	assert.Empty(t, r.Meta.Title)
	assert.True(t, r.Meta.Date.IsZero())
	assert.Equal(t, "# Just a heading\nSome text.", strings.TrimSpace(r.Body))
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	r, err := Parse([]byte("---\n: invalid: yaml: {{{\n---\nBody\n"))
	require.NoError(t, err)
	assert.True(t, r.Malformed)
	assert.Empty(t, r.Meta.Title)
	assert.Equal(t, "Body\n", r.Body)
}

func TestParse_UnparsableDateIgnored(t *testing.T) {
	r, err := Parse([]byte("---\ntitle: T\ndate: someday\n---\nbody\n"))
	require.NoError(t, err)
	assert.Equal(t, "T", r.Meta.Title)
	assert.True(t, r.Meta.Date.IsZero())
}

func TestParse_NotUTF8(t *testing.T) {
	_, err := Parse([]byte{0xff, 0xfe, 0xfd})
	assert.ErrorIs(t, err, ErrNotUTF8)
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"go", "web"}, normalizeTags("go, web ,go"))
	assert.Equal(t, []string{"a", "1"}, normalizeTags([]any{"a", 1, nil, " "}))
	assert.Empty(t, normalizeTags(nil))
}

func TestStripFrontmatter_Unclosed(t *testing.T) {
	in := "---\ntitle: x\nno closing"
	assert.Equal(t, in, stripFrontmatter([]byte(in)))
}
