// Package tokenize turns mixed Latin and CJK text into normalised search
// tokens. The same Tokenizer must be used to build an index and to query it.
package tokenize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinLatinLength is the shortest Latin token kept. CJK tokens have no minimum.
const MinLatinLength = 2

var markupRe = regexp.MustCompile(`<[^>]*>`)

// Segmenter splits a run of CJK characters into words.
type Segmenter interface {
	Segment(run string) []string
}

// Tokenizer converts text into an ordered token sequence. It is stateless
// after construction and safe for concurrent use.
type Tokenizer struct {
	seg Segmenter
}

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithSegmenter replaces the single-character CJK fallback.
func WithSegmenter(s Segmenter) Option {
	return func(t *Tokenizer) {
		if s != nil {
			t.seg = s
		}
	}
}

// New returns a Tokenizer using CharSegmenter unless another segmenter is supplied.
func New(opts ...Option) *Tokenizer {
	t := &Tokenizer{seg: CharSegmenter{}}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type runeClass int

const (
	classOther runeClass = iota
	classLatin
	classCJK
)

func classify(r rune) runeClass {
	switch {
	case unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul):
		return classCJK
	case unicode.IsLetter(r) && unicode.Is(unicode.Latin, r):
		return classLatin
	default:
		return classOther
	}
}

// Tokenize strips markup, lowercases, and emits Latin words (length >= 2)
// and segmented CJK tokens in left-to-right order. Duplicates are kept.
func (t *Tokenizer) Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	clean := strings.ToLower(markupRe.ReplaceAllString(text, " "))

	var (
		out     []string
		run     strings.Builder
		current = classOther
	)
	flush := func() {
		if run.Len() == 0 {
			return
		}
		s := run.String()
		run.Reset()
		switch current {
		case classLatin:
			if utf8.RuneCountInString(s) >= MinLatinLength {
				out = append(out, s)
			}
		case classCJK:
			for _, tok := range t.seg.Segment(s) {
				if strings.TrimSpace(tok) != "" {
					out = append(out, tok)
				}
			}
		}
	}

	for _, r := range clean {
		c := classify(r)
		if c != current {
			flush()
			current = c
		}
		if c != classOther {
			run.WriteRune(r)
		}
	}
	flush()
	return out
}

// Unique returns tokens with duplicates removed, keeping first occurrences.
func Unique(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}
