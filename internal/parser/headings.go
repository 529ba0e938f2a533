package parser

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/starford/inkpress/internal/models"
)

var (
	headingRe    = regexp.MustCompile(`^(#{1,6})[ \t]+(.+?)[ \t]*$`)
	closingRe    = regexp.MustCompile(`[ \t]+#+$`)
	inlineLinkRe = regexp.MustCompile(`!?\[([^\]]*)\]\([^)]*\)`)
)

// ExtractHeadings returns the ATX headings of a Markdown body in document
// order. Lines inside fenced code blocks are ignored.
func ExtractHeadings(body string) []models.Heading {
	var out []models.Heading
	fence := ""
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimLeft(line, " ")

		if fence != "" {
			if strings.HasPrefix(trimmed, fence) {
				fence = ""
			}
			continue
		}
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			fence = trimmed[:3]
			continue
		}

		m := headingRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		text := HeadingText(m[2])
		if text == "" {
			continue
		}
		out = append(out, models.Heading{
			ID:    HeadingID(text),
			Text:  text,
			Level: len(m[1]),
		})
	}
	return out
}

// HeadingText cleans the source of a heading line: a closing # sequence is
// dropped and inline links keep only their label.
func HeadingText(raw string) string {
	text := closingRe.ReplaceAllString(strings.TrimSpace(raw), "")
	text = inlineLinkRe.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}

// HeadingID derives the anchor id for a heading text: lowercase, keep only
// word characters, whitespace and hyphens, turn whitespace runs into a single
// hyphen, trim hyphens at both ends. The renderer uses the same function so
// table-of-contents links always resolve.
func HeadingID(text string) string {
	lower := strings.ToLower(text)
	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		if isWordRune(r) || unicode.IsSpace(r) || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(strings.Join(strings.Fields(b.String()), "-"), "-")
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}
