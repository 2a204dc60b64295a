package scriptura

import (
	"bytes"
	"context"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// markdownConverter converts Markdown fragments to HTML using goldmark
// (pure Go). Fragments stay fragments: no document wrapper is added, the
// assembler owns the enclosing document.
type markdownConverter struct {
	md goldmark.Markdown
}

// newMarkdownConverter creates a converter with GFM extensions and syntax
// highlighting emitting CSS classes, so the theme controls code colors.
func newMarkdownConverter() *markdownConverter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(), // heading ids feed the reference index
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
			// WithUnsafe() intentionally not used; raw HTML blocks in
			// Markdown fragments are dropped rather than passed through.
		),
	)
	return &markdownConverter{md: md}
}

// Convert renders Markdown content to an HTML fragment.
func (c *markdownConverter) Convert(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := c.md.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMarkdownConvert, err)
	}
	return buf.String(), nil
}
