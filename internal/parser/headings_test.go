package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/starford/inkpress/internal/models"
)

func TestHeadingID(t *testing.T) {
	cases := map[string]string{
		"Hello World":             "hello-world",
		"  Leading and Trailing ": "leading-and-trailing",
		"What's New in Go 1.22?":  "whats-new-in-go-122",
		"multi   space\ttab":      "multi-space-tab",
		"-dashed-":                "dashed",
		"snake_case stays":        "snake_case-stays",
		"中文 标题":                   "中文-标题",
		"C#":                      "c",
		"!!!":                     "",
	}
	for in, want := range cases {
		assert.Equal(t, want, HeadingID(in), "HeadingID(%q)", in)
	}
}

func TestExtractHeadings(t *testing.T) {
	body := "# Title\n\nintro\n\n## Getting Started ##\n\n```bash\n# not a heading\n```\n\n### See [the docs](https://go.dev)\n####### too deep\n#nospace\n"
	got := ExtractHeadings(body)
	assert.Equal(t, []models.Heading{
		{ID: "title", Text: "Title", Level: 1},
		{ID: "getting-started", Text: "Getting Started", Level: 2},
		{ID: "see-the-docs", Text: "See the docs", Level: 3},
	}, got)
}

func TestExtractHeadings_TildeFenceAndCRLF(t *testing.T) {
	body := "## One\r\n~~~\r\n## hidden\r\n~~~\r\n###### Six\r\n"
	got := ExtractHeadings(body)
	assert.Equal(t, []models.Heading{
		{ID: "one", Text: "One", Level: 2},
		{ID: "six", Text: "Six", Level: 6},
	}, got)
}

func TestExtractHeadings_Empty(t *testing.T) {
	assert.Empty(t, ExtractHeadings(""))
}
