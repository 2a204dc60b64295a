package scriptura

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestMarkdownConvert(t *testing.T) {
	converter := newMarkdownConverter()
	ctx := context.Background()

	t.Run("basic structure", func(t *testing.T) {
		got, err := converter.Convert(ctx, "# Title\n\nSome *emphasis*.\n")
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		if !strings.Contains(got, `<h1 id="title">Title</h1>`) {
			t.Errorf("output missing heading with auto id:\n%s", got)
		}
		if !strings.Contains(got, "<em>emphasis</em>") {
			t.Errorf("output missing emphasis:\n%s", got)
		}
	})

	t.Run("gfm tables", func(t *testing.T) {
		got, err := converter.Convert(ctx, "| a | b |\n|---|---|\n| 1 | 2 |\n")
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		if !strings.Contains(got, "<table>") {
			t.Errorf("output missing table:\n%s", got)
		}
	})

	t.Run("code highlighted with classes", func(t *testing.T) {
		got, err := converter.Convert(ctx, "```go\nfunc main() {}\n```\n")
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		// Classes, not inline styles: theme CSS owns code colors.
		if !strings.Contains(got, "class=") {
			t.Errorf("output missing highlight classes:\n%s", got)
		}
		if strings.Contains(got, "style=") {
			t.Errorf("output carries inline styles:\n%s", got)
		}
	})

	t.Run("raw html dropped", func(t *testing.T) {
		got, err := converter.Convert(ctx, "text\n\n<script>alert(1)</script>\n")
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		if strings.Contains(got, "<script>") {
			t.Errorf("raw HTML passed through:\n%s", got)
		}
	})

	t.Run("no document wrapper", func(t *testing.T) {
		got, err := converter.Convert(ctx, "# Title\n")
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		if strings.Contains(got, "<html") || strings.Contains(got, "<body") {
			t.Errorf("output wrapped in a document:\n%s", got)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := converter.Convert(cancelled, "# Title\n"); !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}
