package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadingTime(t *testing.T) {
	assert.Equal(t, 0, ReadingTime(""))
	assert.Equal(t, 1, ReadingTime("one two three"))
	assert.Equal(t, 1, ReadingTime(strings.Repeat("word ", 200)))
	assert.Equal(t, 2, ReadingTime(strings.Repeat("word ", 201)))
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Hi & bye there", PlainText("<p>Hi &amp; <b>bye</b></p>\n\n<p>there</p>"))
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "short", Summarize("short", 10))
	assert.Equal(t, "abc...", Summarize("abc def", 4))
	assert.Equal(t, "中文...", Summarize("中文内容", 2))
}
