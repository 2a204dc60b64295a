package scriptura

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/scriptura/scriptura/internal/htmlutil"
)

// fragmentNamePattern matches "<integer><sep><slug>.<ext>". Both "-" and
// "_" separators are accepted, matching what authors already use.
var fragmentNamePattern = regexp.MustCompile(`^(\d+)[-_](.+)\.(html|md)$`)

// defaultLoadWorkers bounds concurrent fragment reads. Fragments are
// independent and read-only, so reads may overlap; results are re-joined
// into order-key order before anything downstream sees them.
const defaultLoadWorkers = 4

// Heading is one heading element extracted from a fragment, in document
// order.
type Heading struct {
	Level int    // 1..6
	Text  string // text content, untrimmed of internal markup
	ID    string // authored id attribute, may be empty
}

// Figure is an explicitly tagged figure or table anchor target.
type Figure struct {
	ID      string // authored id attribute (required to be indexed)
	Caption string // figcaption/caption text, may be empty
}

// Fragment is one authored section file. Immutable after load; the
// assembler derives new content from it rather than mutating it.
type Fragment struct {
	OrderKey   int
	Slug       string
	Path       string
	RawContent string // HTML (Markdown fragments are converted at load time)
	Headings   []Heading
	Figures    []Figure
	AssetRefs  []string // relative img/src and a/href paths, document order
	CrossRefs  []string // data-ref tokens, document order
}

// ID returns the fragment identifier used in diagnostics.
func (f Fragment) ID() string {
	return filepath.Base(f.Path)
}

// FragmentStore loads section fragments from a directory.
type FragmentStore struct {
	markdown *markdownConverter
	workers  int
}

// NewFragmentStore creates a FragmentStore.
func NewFragmentStore() *FragmentStore {
	return &FragmentStore{
		markdown: newMarkdownConverter(),
		workers:  defaultLoadWorkers,
	}
}

// LoadFragments reads every fragment file under sectionsDir and returns
// them sorted by order key. File reads run concurrently; ordering of the
// result is by (orderKey, filename) and therefore deterministic.
func (s *FragmentStore) LoadFragments(ctx context.Context, sectionsDir string) ([]Fragment, error) {
	entries, err := os.ReadDir(sectionsDir)
	if err != nil {
		return nil, fmt.Errorf("reading sections directory: %w", err)
	}

	type job struct {
		index    int
		name     string
		orderKey int
		slug     string
		ext      string
	}

	var jobs []job
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".html" && ext != ".md" {
			continue
		}
		m := fragmentNamePattern.FindStringSubmatch(name)
		if m == nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedFilename, name)
		}
		orderKey, err := strconv.Atoi(m[1])
		if err != nil {
			// Digits-only prefix that overflows int.
			return nil, fmt.Errorf("%w: %q: %v", ErrMalformedFilename, name, err)
		}
		jobs = append(jobs, job{index: len(jobs), name: name, orderKey: orderKey, slug: m[2], ext: ext})
	}

	if len(jobs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDirectory, sectionsDir)
	}

	fragments := make([]Fragment, len(jobs))
	errs := make([]error, len(jobs))

	workers := s.workers
	if workers > len(jobs) {
		workers = len(jobs)
	}
	jobCh := make(chan job)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				fragments[j.index], errs[j.index] = s.loadOne(ctx, sectionsDir, j.name, j.orderKey, j.slug, j.ext)
			}
		}()
	}
	for _, j := range jobs {
		jobCh <- j
	}
	close(jobCh)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	// Re-join into order-key order; filename breaks ties so duplicate keys
	// still sort deterministically for the validator to report.
	sort.SliceStable(fragments, func(i, j int) bool {
		if fragments[i].OrderKey != fragments[j].OrderKey {
			return fragments[i].OrderKey < fragments[j].OrderKey
		}
		return fragments[i].ID() < fragments[j].ID()
	})

	return fragments, nil
}

// loadOne reads and parses a single fragment file.
func (s *FragmentStore) loadOne(ctx context.Context, dir, name string, orderKey int, slug, ext string) (Fragment, error) {
	if err := ctx.Err(); err != nil {
		return Fragment{}, err
	}

	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from directory listing
	if err != nil {
		return Fragment{}, fmt.Errorf("%w: %s: %v", ErrFragmentRead, path, err)
	}

	content := string(data)
	if ext == ".md" {
		content, err = s.markdown.Convert(ctx, content)
		if err != nil {
			return Fragment{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	frag := Fragment{
		OrderKey:   orderKey,
		Slug:       slug,
		Path:       path,
		RawContent: content,
	}
	if err := extractStructure(&frag); err != nil {
		return Fragment{}, fmt.Errorf("%w: %s: %v", ErrFragmentParse, path, err)
	}
	return frag, nil
}

// extractStructure populates Headings, Figures, AssetRefs and CrossRefs
// from the fragment content.
func extractStructure(frag *Fragment) error {
	doc, _, err := htmlutil.Parse(frag.RawContent)
	if err != nil {
		return err
	}

	htmlutil.Walk(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}

		if level := htmlutil.HeadingLevel(n); level > 0 {
			id, _ := htmlutil.Attr(n, "id")
			frag.Headings = append(frag.Headings, Heading{
				Level: level,
				Text:  strings.TrimSpace(htmlutil.Text(n)),
				ID:    id,
			})
			return true
		}

		switch n.Data {
		case "img":
			if src, ok := htmlutil.Attr(n, "src"); ok && isRelativeRef(src) {
				frag.AssetRefs = append(frag.AssetRefs, src)
			}
		case "a":
			if token, ok := htmlutil.Attr(n, "data-ref"); ok {
				frag.CrossRefs = append(frag.CrossRefs, token)
			} else if href, ok := htmlutil.Attr(n, "href"); ok && isRelativeRef(href) {
				frag.AssetRefs = append(frag.AssetRefs, href)
			}
		case "figure", "table":
			if id, ok := htmlutil.Attr(n, "id"); ok && id != "" {
				frag.Figures = append(frag.Figures, Figure{
					ID:      id,
					Caption: captionText(n),
				})
			}
		}
		return true
	})

	return nil
}

// captionText returns the figcaption/caption text of a figure or table.
func captionText(n *html.Node) string {
	var caption string
	htmlutil.Walk(n, func(c *html.Node) bool {
		if c.Type == html.ElementNode && (c.Data == "figcaption" || c.Data == "caption") {
			caption = strings.TrimSpace(htmlutil.Text(c))
			return false
		}
		return true
	})
	return caption
}

// isRelativeRef reports whether a src/href value is a relative filesystem
// reference that must exist under an assets root.
func isRelativeRef(ref string) bool {
	if ref == "" {
		return false
	}
	// Skip URLs (http, https, file, data, mailto, protocol-relative).
	for _, prefix := range []string{"http://", "https://", "file://", "data:", "mailto:", "//"} {
		if strings.HasPrefix(ref, prefix) {
			return false
		}
	}
	// Skip in-document anchors and absolute paths.
	if strings.HasPrefix(ref, "#") || filepath.IsAbs(ref) {
		return false
	}
	return true
}
