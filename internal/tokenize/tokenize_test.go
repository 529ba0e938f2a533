package tokenize

import (
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize_Latin(t *testing.T) {
	tok := New()
	assert.Equal(t, []string{"hello", "world", "go"}, tok.Tokenize("Hello, World! a Go1.22 x"))
	assert.Equal(t, []string{"abc", "def"}, tok.Tokenize("abc123def"))
	assert.Equal(t, []string{"café", "crème"}, tok.Tokenize("Café crème"))
}

func TestTokenize_KeepsDuplicatesInOrder(t *testing.T) {
	assert.Equal(t, []string{"go", "rust", "go"}, New().Tokenize("go rust GO"))
}

func TestTokenize_StripsMarkup(t *testing.T) {
	got := New().Tokenize(`<p class="lead">Intro to <strong>Rust</strong></p>`)
	assert.Equal(t, []string{"intro", "to", "rust"}, got)
}

func TestTokenize_CJKFallbackLeftToRight(t *testing.T) {
	got := New().Tokenize("学习Go语言 and 搜索")
	assert.Equal(t, []string{"学", "习", "go", "语", "言", "and", "搜", "索"}, got)
}

func TestTokenize_OtherCJKScripts(t *testing.T) {
	tok := New()
	assert.Equal(t, []string{"こ", "ん", "に", "ち", "は"}, tok.Tokenize("こんにちは"))
	assert.Equal(t, []string{"안", "녕"}, tok.Tokenize("안녕"))
}

func TestTokenize_EmptyAndPunctuation(t *testing.T) {
	tok := New()
	assert.Empty(t, tok.Tokenize(""))
	assert.Empty(t, tok.Tokenize("!!! ... 123 ,,,"))
	assert.Empty(t, tok.Tokenize("<br/>"))
}

func TestTokenize_SingleTokenIdempotent(t *testing.T) {
	tok := New()
	for _, in := range []string{"go", "rust", "programming", "中", "語", "éé"} {
		assert.Equal(t, []string{in}, tok.Tokenize(in), "input %q", in)
	}
}

var loadGse = sync.OnceValues(NewGseSegmenter)

func gseSegmenter(t *testing.T) *GseSegmenter {
	t.Helper()
	seg, err := loadGse()
	require.NoError(t, err)
	return seg
}

type fixedSegmenter map[string][]string

func (f fixedSegmenter) Segment(run string) []string { return f[run] }

func TestTokenize_WithSegmenter(t *testing.T) {
	tok := New(WithSegmenter(fixedSegmenter{"语言入门": {"语言", "入门"}}))
	assert.Equal(t, []string{"go", "语言", "入门"}, tok.Tokenize("Go语言入门"))
}

func TestWithSegmenter_NilKeepsFallback(t *testing.T) {
	tok := New(WithSegmenter(nil))
	assert.Equal(t, []string{"中", "文"}, tok.Tokenize("中文"))
}

func TestGseSegmenter_GroupsWords(t *testing.T) {
	seg := gseSegmenter(t)
	run := "我们喜欢编程"
	words := seg.Segment(run)
	assert.Equal(t, run, strings.Join(words, ""))
	assert.Less(t, len(words), utf8.RuneCountInString(run))
	for _, w := range words {
		assert.NotEmpty(t, strings.TrimSpace(w))
	}

	tok := New(WithSegmenter(seg))
	assert.Equal(t, run, strings.Join(tok.Tokenize(run), ""))
}

func TestGseSegmenter_UserDictionary(t *testing.T) {
	seg := gseSegmenter(t)
	src := "# comment\n\n龘靐齉 5000 n\n"
	require.NoError(t, seg.ReadUserDictionary(strings.NewReader(src)))
	assert.Equal(t, []string{"龘靐齉"}, seg.Segment("龘靐齉"))
}

func TestGseSegmenter_MissingUserDictionary(t *testing.T) {
	seg := gseSegmenter(t)
	assert.Error(t, seg.LoadUserDictionary("/nonexistent/dict.txt"))
}

func TestUnique(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Unique([]string{"a", "b", "a"}))
	assert.Empty(t, Unique(nil))
}
