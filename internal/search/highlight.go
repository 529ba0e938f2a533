package search

import (
	"html"
	"regexp"
	"strings"

	"github.com/starford/inkpress/internal/tokenize"
)

const (
	markOpen  = "<mark>"
	markClose = "</mark>"
)

// Highlight wraps every case-insensitive occurrence of each distinct query
// token in <mark></mark>, keeping the original casing. Tokens are applied
// one after another over the already marked text, so a later token can match
// inside an earlier marker: "rust mark" over "rust" yields
// "<<mark>mark</mark>>rust</<mark>mark</mark>>".
//
// The text is not escaped. Use HighlightHTML for fragments that end up in a
// page.
func (e *Engine) Highlight(text, query string) string {
	return highlight(e.tokenizer(), text, query)
}

func highlight(tok *tokenize.Tokenizer, text, query string) string {
	if text == "" {
		return text
	}
	for _, t := range tokenize.Unique(tok.Tokenize(query)) {
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(t))
		text = re.ReplaceAllString(text, markOpen+"$0"+markClose)
	}
	return text
}

// HighlightHTML is Highlight for plain text headed into HTML. Everything
// outside the markers is escaped, and a pass only sees text, never a marker
// or an entity, so the result is well-formed and <mark> is its only tag. A
// later token can still match inside an earlier marker's text, which nests
// the markers.
func (e *Engine) HighlightHTML(text, query string) string {
	return highlightHTML(e.tokenizer(), text, query)
}

// span is either literal text or, when text is empty, a marker tag.
type span struct {
	text string
	tag  string
}

func highlightHTML(tok *tokenize.Tokenizer, text, query string) string {
	if text == "" {
		return text
	}
	spans := []span{{text: text}}
	for _, t := range tokenize.Unique(tok.Tokenize(query)) {
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(t))
		next := make([]span, 0, len(spans))
		for _, s := range spans {
			if s.tag != "" {
				next = append(next, s)
				continue
			}
			next = appendMarked(next, re, s.text)
		}
		spans = next
	}

	var b strings.Builder
	for _, s := range spans {
		if s.tag != "" {
			b.WriteString(s.tag)
			continue
		}
		b.WriteString(html.EscapeString(s.text))
	}
	return b.String()
}

func appendMarked(out []span, re *regexp.Regexp, text string) []span {
	last := 0
	for _, m := range re.FindAllStringIndex(text, -1) {
		if m[0] == m[1] {
			continue
		}
		if m[0] > last {
			out = append(out, span{text: text[last:m[0]]})
		}
		out = append(out,
			span{tag: markOpen},
			span{text: text[m[0]:m[1]]},
			span{tag: markClose},
		)
		last = m[1]
	}
	if last < len(text) {
		out = append(out, span{text: text[last:]})
	}
	return out
}
