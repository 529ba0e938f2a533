package tokenize

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-ego/gse"
)

// CharSegmenter emits every character of a run as its own token. It needs no
// data and is always available.
type CharSegmenter struct{}

// Segment implements Segmenter.
func (CharSegmenter) Segment(run string) []string {
	out := make([]string, 0, utf8.RuneCountInString(run))
	for _, r := range run {
		out = append(out, string(r))
	}
	return out
}

// UserWordFreq is the frequency given to user dictionary words that carry
// none, high enough to win over the bundled dictionary.
const UserWordFreq = 1000

// GseSegmenter splits runs with gse, a jieba-compatible dictionary and HMM
// segmenter, over its bundled Chinese dictionary.
type GseSegmenter struct {
	seg *gse.Segmenter
}

// NewGseSegmenter loads the bundled dictionary.
func NewGseSegmenter() (*GseSegmenter, error) {
	seg := &gse.Segmenter{SkipLog: true}
	if err := seg.LoadDict(); err != nil {
		return nil, fmt.Errorf("tokenize: load gse dictionary: %w", err)
	}
	return &GseSegmenter{seg: seg}, nil
}

// LoadUserDictionary adds the words listed in the file at path, see
// ReadUserDictionary.
func (g *GseSegmenter) LoadUserDictionary(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("tokenize: open dictionary: %w", err)
	}
	defer f.Close()
	return g.ReadUserDictionary(f)
}

// ReadUserDictionary adds jieba-style "word [freq] [tag]" lines. Blank lines
// and lines starting with # are ignored.
func (g *GseSegmenter) ReadUserDictionary(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		freq := float64(UserWordFreq)
		if len(fields) > 1 {
			if f, err := strconv.ParseFloat(fields[1], 64); err == nil && f > 0 {
				freq = f
			}
		}
		var pos []string
		if len(fields) > 2 {
			pos = fields[2:3]
		}
		if err := g.seg.AddToken(strings.ToLower(fields[0]), freq, pos...); err != nil {
			return fmt.Errorf("tokenize: add word %q: %w", fields[0], err)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("tokenize: read dictionary: %w", err)
	}
	return nil
}

// Segment implements Segmenter.
func (g *GseSegmenter) Segment(run string) []string {
	words := g.seg.Cut(run, true)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimFunc(w, unicode.IsSpace); w != "" {
			out = append(out, w)
		}
	}
	return out
}
