package render

import (
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

func styleCSS(name string) (string, error) {
	style, ok := styles.Registry[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("render: unknown highlight style %q", name)
	}
	var sb strings.Builder
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&sb, style); err != nil {
		return "", fmt.Errorf("render: write css: %w", err)
	}
	return sb.String(), nil
}
