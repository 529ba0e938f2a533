package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.App.HTTP.Address())
	assert.True(t, cfg.Watch.Enabled)
}

func TestConfig_MissingContentPath(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Content.Path = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content")
}

func TestConfig_InvalidPort(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.HTTP.Port = 70000
	assert.Error(t, cfg.Validate())
}

func TestConfig_MissingIndexPath(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Search.IndexPath = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search")
}

func TestConfig_Segmenter(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Equal(t, SegmenterChar, cfg.Search.Segmenter)

	cfg.Search.Segmenter = "jieba"
	assert.Error(t, cfg.Validate())

	cfg.Search.Segmenter = SegmenterChar
	cfg.Search.DictionaryPath = "./dict.txt"
	assert.Error(t, cfg.Validate())

	cfg.Search.Segmenter = SegmenterGse
	assert.NoError(t, cfg.Validate())
}

func TestConfig_NegativeValues(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Watch.Debounce = -time.Second
	assert.Error(t, cfg.Validate())

	cfg = NewDefaultConfig()
	cfg.Build.Workers = -1
	assert.Error(t, cfg.Validate())
}

func TestRenderConfig_Options(t *testing.T) {
	rc := RenderConfig{HighlightStyle: "monokai"}
	opts := rc.Options()
	assert.Equal(t, "monokai", opts.HighlightStyle)
	assert.Equal(t, "heading-link", opts.HeadingClass)

	rc.HeadingClass = "anchor"
	assert.Equal(t, "anchor", rc.Options().HeadingClass)
}
