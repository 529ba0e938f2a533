package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/inkpress/internal/index"
	"github.com/starford/inkpress/internal/render"
	"github.com/starford/inkpress/internal/search"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app" toml:"app"`
	Content ContentConfig     `yaml:"content" toml:"content"`
	Search  SearchConfig      `yaml:"search" toml:"search"`
	Render  RenderConfig      `yaml:"render" toml:"render"`
	Watch   WatchConfig       `yaml:"watch" toml:"watch"`
	Build   BuildConfig       `yaml:"build" toml:"build"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Content.Validate(); err != nil {
		return fmt.Errorf("content: %w", err)
	}
	if err := c.Search.Validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if err := c.Render.Validate(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := c.Watch.Validate(); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	return c.Build.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level" toml:"log_level"`
	HTTP     HTTPConfig `yaml:"http" toml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port" toml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ContentConfig holds the path to the Markdown content directory.
type ContentConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// Segmenters accepted by SearchConfig.Segmenter.
const (
	SegmenterChar = "char"
	SegmenterGse  = "gse"
)

// SearchConfig controls the search index artifact and query defaults.
//
// Segmenter picks how CJK runs are split: "char" makes every character a
// token, "gse" segments with the bundled dictionary. DictionaryPath
// optionally adds user words ("word [freq] [tag]" per line) to gse.
type SearchConfig struct {
	IndexPath      string `yaml:"index_path" toml:"index_path"`
	Segmenter      string `yaml:"segmenter" toml:"segmenter"`
	DictionaryPath string `yaml:"dictionary_path" toml:"dictionary_path"`
	DefaultLimit   int    `yaml:"default_limit" toml:"default_limit"`
	CacheSize      int    `yaml:"cache_size" toml:"cache_size"`
}

// Validate validates the search configuration.
func (c *SearchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.IndexPath, validation.Required),
		validation.Field(&c.Segmenter, validation.In(SegmenterChar, SegmenterGse)),
		validation.Field(&c.DictionaryPath,
			validation.When(c.Segmenter != SegmenterGse, validation.Empty.Error("requires the gse segmenter"))),
		validation.Field(&c.DefaultLimit, validation.Min(0), validation.Max(1000)),
		validation.Field(&c.CacheSize, validation.Min(0)),
	)
}

// RenderConfig controls Markdown rendering.
type RenderConfig struct {
	HighlightStyle string `yaml:"highlight_style" toml:"highlight_style"`
	HeadingClass   string `yaml:"heading_class" toml:"heading_class"`
}

// Validate validates the render configuration.
func (c *RenderConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.HighlightStyle, validation.Required),
	)
}

// Options converts the configuration into renderer options.
func (c *RenderConfig) Options() render.Options {
	opts := render.DefaultOptions()
	opts.HighlightStyle = c.HighlightStyle
	if c.HeadingClass != "" {
		opts.HeadingClass = c.HeadingClass
	}
	return opts
}

// WatchConfig controls rebuild-on-change.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled" toml:"enabled"`
	Debounce time.Duration `yaml:"debounce" toml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// BuildConfig controls the parallel content build.
type BuildConfig struct {
	Workers int `yaml:"workers" toml:"workers"`
}

// Validate validates the build configuration.
func (c *BuildConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Workers, validation.Min(0), validation.Max(256)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Content: ContentConfig{
			Path: "./content",
		},
		Search: SearchConfig{
			IndexPath:    "./public/search-index.json",
			Segmenter:    SegmenterChar,
			DefaultLimit: search.DefaultLimit,
			CacheSize:    256,
		},
		Render: RenderConfig{
			HighlightStyle: render.DefaultOptions().HighlightStyle,
			HeadingClass:   render.DefaultOptions().HeadingClass,
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: index.DefaultDebounce,
		},
		Build: BuildConfig{
			Workers: 4,
		},
	}
}
