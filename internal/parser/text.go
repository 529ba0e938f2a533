package parser

import (
	"html"
	"regexp"
	"strings"
)

// WordsPerMinute is the reading speed used for ReadingTime.
const WordsPerMinute = 200

var tagRe = regexp.MustCompile(`<[^>]*>`)

// ReadingTime returns the estimated minutes needed to read body, rounded up.
func ReadingTime(body string) int {
	words := len(strings.Fields(body))
	return (words + WordsPerMinute - 1) / WordsPerMinute
}

// PlainText strips HTML tags, decodes entities and collapses whitespace.
func PlainText(htmlText string) string {
	text := tagRe.ReplaceAllString(htmlText, " ")
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}

// Summarize truncates plain text to at most max runes, appending "..." when
// anything was cut.
func Summarize(plain string, max int) string {
	runes := []rune(plain)
	if max <= 0 || len(runes) <= max {
		return plain
	}
	return strings.TrimSpace(string(runes[:max])) + "..."
}
