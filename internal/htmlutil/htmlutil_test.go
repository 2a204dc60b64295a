package htmlutil

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func TestParseRoundTrip(t *testing.T) {
	t.Run("fragment stays unwrapped", func(t *testing.T) {
		in := `<section><h1>Intro</h1><p>Hello</p></section>`
		doc, isFragment, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if !isFragment {
			t.Error("isFragment = false, want true")
		}

		out, err := Render(doc, isFragment)
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if out != in {
			t.Errorf("round trip = %q, want %q", out, in)
		}
	})

	t.Run("full document detected", func(t *testing.T) {
		in := "<!DOCTYPE html><html><head></head><body><p>x</p></body></html>"
		_, isFragment, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if isFragment {
			t.Error("isFragment = true, want false")
		}
	})
}

func TestAttrHelpers(t *testing.T) {
	doc, _, err := Parse(`<img src="images/a.png" alt="">`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	var img *html.Node
	Walk(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "img" {
			img = n
		}
		return true
	})
	if img == nil {
		t.Fatal("img element not found")
	}

	src, ok := Attr(img, "src")
	if !ok || src != "images/a.png" {
		t.Errorf("Attr(src) = %q, %v", src, ok)
	}
	if _, ok := Attr(img, "missing"); ok {
		t.Error("Attr(missing) reported present")
	}

	SetAttr(img, "src", "file:///abs/a.png")
	if src, _ := Attr(img, "src"); src != "file:///abs/a.png" {
		t.Errorf("after SetAttr, src = %q", src)
	}

	SetAttr(img, "id", "fig-1")
	if id, _ := Attr(img, "id"); id != "fig-1" {
		t.Errorf("after SetAttr new attr, id = %q", id)
	}
}

func TestText(t *testing.T) {
	doc, _, err := Parse(`<h2>Data <em>Sources</em></h2>`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := strings.TrimSpace(Text(doc)); got != "Data Sources" {
		t.Errorf("Text() = %q, want %q", got, "Data Sources")
	}
}

func TestHeadingLevel(t *testing.T) {
	doc, _, err := Parse(`<h1>a</h1><h3>b</h3><p>c</p>`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	var levels []int
	Walk(doc, func(n *html.Node) bool {
		if lvl := HeadingLevel(n); lvl > 0 {
			levels = append(levels, lvl)
		}
		return true
	})
	if len(levels) != 2 || levels[0] != 1 || levels[1] != 3 {
		t.Errorf("levels = %v, want [1 3]", levels)
	}
}

func TestNormalizeToken(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Data   Sources ", "data sources"},
		{"Intro", "intro"},
		{"Multi\n line\ttext", "multi line text"},
	}
	for _, tt := range tests {
		if got := NormalizeToken(tt.in); got != tt.want {
			t.Errorf("NormalizeToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Data Sources", "data-sources"},
		{"C'est l'été!", "c-est-l-t"},
		{"  spaced  out  ", "spaced-out"},
		{"2.1 Setup", "2-1-setup"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
