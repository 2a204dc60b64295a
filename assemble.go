package scriptura

import (
	"context"
	"fmt"
	stdhtml "html"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/scriptura/scriptura/internal/assets"
	"github.com/scriptura/scriptura/internal/htmlutil"
)

// CanonicalDocument is the single merged, fully resolved document handed
// to the renderer: no unresolved reference tokens, no relative asset path
// that does not exist.
type CanonicalDocument struct {
	HTML string
}

// ValidationError carries the full diagnostic report when assembly refuses
// to proceed over structurally broken input.
type ValidationError struct {
	Report *DiagnosticReport
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %d error(s)\n%s", ErrValidationFailed, e.Report.ErrorCount(), e.Report)
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }

// bodyMarker is where section content is inserted in the wrapper: before
// the closing page if present, otherwise before </body>.
const bodyMarker = `<section id="end"`

// Assemble produces the canonical document and its manifest. Validation is
// re-run internally and assembly refuses to proceed over any
// error-severity finding; assembling over broken input would produce a
// misleading artifact.
func Assemble(ctx context.Context, fragments []Fragment, index *ReferenceIndex, bundle *ThemeBundle, cfg *Config) (*CanonicalDocument, *Manifest, error) {
	report := Validate(fragments, index, bundle, cfg)
	if !report.OK() {
		return nil, nil, &ValidationError{Report: report}
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	assetRoots := cfg.ResolveAll(cfg.AssetsRoots)

	// Anchors per fragment, in document order, for number injection.
	headingAnchors := make(map[int][]*Anchor)
	for _, a := range index.Anchors() {
		if a.Kind == AnchorHeading {
			headingAnchors[a.FragmentOrderKey] = append(headingAnchors[a.FragmentOrderKey], a)
		}
	}

	var body []string
	for _, frag := range fragments {
		processed, err := processFragment(frag, headingAnchors[frag.OrderKey], index, assetRoots)
		if err != nil {
			return nil, nil, fmt.Errorf("assembling %s: %w", frag.ID(), err)
		}
		body = append(body, processed)
	}

	frontMatter, err := loadExtraFragments(cfg.ResolveAll(cfg.FrontMatter), "front-matter", assetRoots)
	if err != nil {
		return nil, nil, err
	}
	lastPage, err := loadExtraFragments(cfg.ResolveAll(cfg.LastPage), "last-page-extra", assetRoots)
	if err != nil {
		return nil, nil, err
	}

	combined := strings.Join(append(append(frontMatter, body...), lastPage...), "\n")

	page := assets.WrapperTemplate()
	page = applyPlaceholders(page, cfg)
	page = injectStyles(page, bundle)
	page = injectBody(page, combined)

	manifest := buildManifest(fragments, index, bundle, cfg, report)

	return &CanonicalDocument{HTML: page}, manifest, nil
}

// processFragment injects computed heading numbers and stable ids,
// rewrites cross-reference tokens into hyperlinks, and rewrites relative
// asset paths to file:// URLs.
func processFragment(frag Fragment, anchors []*Anchor, index *ReferenceIndex, assetRoots []string) (string, error) {
	doc, isFragment, err := htmlutil.Parse(frag.RawContent)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFragmentParse, err)
	}

	headingIdx := 0
	htmlutil.Walk(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}

		if htmlutil.HeadingLevel(n) > 0 && headingIdx < len(anchors) {
			anchor := anchors[headingIdx]
			headingIdx++
			htmlutil.SetAttr(n, "id", anchor.StableID)
			numberSpan := &html.Node{Type: html.ElementNode, Data: "span"}
			htmlutil.SetAttr(numberSpan, "class", "sec-num")
			numberSpan.AppendChild(&html.Node{Type: html.TextNode, Data: anchor.Number})
			n.InsertBefore(numberSpan, n.FirstChild)
			return true
		}

		switch n.Data {
		case "a":
			if token, ok := htmlutil.Attr(n, "data-ref"); ok {
				rewriteCrossRef(n, token, index)
			} else if href, ok := htmlutil.Attr(n, "href"); ok && isRelativeRef(href) {
				htmlutil.SetAttr(n, "href", assetFileURL(href, assetRoots))
			}
		case "img":
			if src, ok := htmlutil.Attr(n, "src"); ok && isRelativeRef(src) {
				htmlutil.SetAttr(n, "src", assetFileURL(src, assetRoots))
			}
		}
		return true
	})

	return htmlutil.Render(doc, isFragment)
}

// rewriteCrossRef turns <a data-ref="..."> into a stable hyperlink.
// Validation guarantees exactly one match by the time assembly runs.
func rewriteCrossRef(n *html.Node, token string, index *ReferenceIndex) {
	matches := index.Resolve(token)
	if len(matches) != 1 {
		return
	}
	anchor := matches[0]

	htmlutil.SetAttr(n, "href", "#"+anchor.StableID)
	htmlutil.SetAttr(n, "class", "xref")

	// Empty link text is filled with the computed number; authors never
	// hand-maintain numbers.
	if n.FirstChild == nil {
		text := anchor.Number
		if text == "" {
			text = anchor.Title
		}
		n.AppendChild(&html.Node{Type: html.TextNode, Data: "§" + text})
	}
}

// assetFileURL resolves a relative asset reference to a file:// URL under
// the first root containing it. Validation already proved existence.
func assetFileURL(ref string, roots []string) string {
	resolved := resolveAsset(ref, roots)
	if resolved == "" {
		return ref
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return ref
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String()
}

// loadExtraFragments reads front-matter or last-page fragments. These are
// configured separately from numbered sections and excluded from the
// numbering walk, so they are wrapped unnumbered verbatim.
func loadExtraFragments(paths []string, class string, assetRoots []string) ([]string, error) {
	var out []string
	for _, path := range paths {
		data, err := os.ReadFile(path) // #nosec G304 -- paths come from config
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrFragmentRead, path, err)
		}
		content, err := rewriteExtraAssets(string(data), assetRoots)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrFragmentParse, path, err)
		}
		out = append(out, fmt.Sprintf(`<div class="%s unnumbered">%s</div>`, class, content))
	}
	return out, nil
}

// rewriteExtraAssets applies asset path rewriting to unnumbered fragments.
func rewriteExtraAssets(content string, assetRoots []string) (string, error) {
	doc, isFragment, err := htmlutil.Parse(content)
	if err != nil {
		return "", err
	}
	htmlutil.Walk(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		switch n.Data {
		case "img":
			if src, ok := htmlutil.Attr(n, "src"); ok && isRelativeRef(src) {
				htmlutil.SetAttr(n, "src", assetFileURL(src, assetRoots))
			}
		case "a":
			if href, ok := htmlutil.Attr(n, "href"); ok && isRelativeRef(href) {
				htmlutil.SetAttr(n, "href", assetFileURL(href, assetRoots))
			}
		}
		return true
	})
	return htmlutil.Render(doc, isFragment)
}

// Wrapper placeholders populated from config, matching the authored
// template convention.
var placeholderFields = []struct {
	token string
	value func(*Config) string
}{
	{"[TITLE]", func(c *Config) string { return c.Title }},
	{"[SUBTITLE]", func(c *Config) string { return c.Subtitle }},
	{"[PREPARED]", func(c *Config) string { return c.Prepared }},
	{"[KICKER]", func(c *Config) string { return c.Kicker }},
}

func applyPlaceholders(page string, cfg *Config) string {
	for _, p := range placeholderFields {
		page = strings.ReplaceAll(page, p.token, stdhtml.EscapeString(p.value(cfg)))
	}
	return page
}

// injectStyles inlines the theme chain as <style data-role> blocks before
// </head>, in fixed cascade order.
func injectStyles(page string, bundle *ThemeBundle) string {
	var buf strings.Builder
	for _, sheet := range bundle.Chain() {
		buf.WriteString(`<style data-role="`)
		buf.WriteString(sheet.Role)
		buf.WriteString("\">\n")
		buf.WriteString(sanitizeCSS(sheet.Content))
		buf.WriteString("\n</style>\n")
	}

	lower := strings.ToLower(page)
	if idx := strings.Index(lower, "</head>"); idx != -1 {
		return page[:idx] + buf.String() + page[idx:]
	}
	return buf.String() + page
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// injectBody inserts assembled content before the closing page marker, or
// before </body> when the wrapper has no closing page.
func injectBody(page, combined string) string {
	if idx := strings.Index(page, bodyMarker); idx != -1 {
		return page[:idx] + combined + "\n" + page[idx:]
	}
	if idx := strings.Index(strings.ToLower(page), "</body>"); idx != -1 {
		return page[:idx] + combined + "\n" + page[idx:]
	}
	return page + combined
}
