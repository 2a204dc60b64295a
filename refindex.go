package scriptura

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/scriptura/scriptura/internal/htmlutil"
)

// maxHeadingDepth is the deepest heading level that receives a number.
const maxHeadingDepth = 6

// numberTokenPattern matches dotted number paths like "3" or "3.2.1".
var numberTokenPattern = regexp.MustCompile(`^\d+(\.\d+)*$`)

// Anchor is a uniquely addressable point in the assembled document.
type Anchor struct {
	FragmentOrderKey int
	HeadingPath      []string // heading texts from the top-level section down
	Number           string   // computed dotted number, e.g. "3.2"
	StableID         string   // element id the assembler links to
	Title            string   // heading text or figure caption
	Kind             AnchorKind
}

// AnchorKind distinguishes heading anchors from tagged figures/tables.
type AnchorKind string

const (
	AnchorHeading AnchorKind = "heading"
	AnchorFigure  AnchorKind = "figure"
)

// DuplicateAnchor records two headings normalizing to the same lookup
// token under the same parent section.
type DuplicateAnchor struct {
	Token     string
	Scope     string // parent number, "" for top level
	Fragments []string
}

// ReferenceIndex maps lookup tokens to anchors. Rebuilt every run, never
// persisted.
type ReferenceIndex struct {
	anchors    []*Anchor
	byTitle    map[string][]*Anchor
	byNumber   map[string]*Anchor
	byID       map[string]*Anchor
	duplicates []DuplicateAnchor
}

// BuildIndex walks fragments in order, assigns depth-aware numbers and
// records every candidate anchor target. The returned index is usable even
// when the error is non-nil (ErrDuplicateAnchor), so lint can fold
// duplicates into its report instead of stopping at the first.
func BuildIndex(fragments []Fragment) (*ReferenceIndex, error) {
	ix := &ReferenceIndex{
		byTitle:  make(map[string][]*Anchor),
		byNumber: make(map[string]*Anchor),
		byID:     make(map[string]*Anchor),
	}

	var counters [maxHeadingDepth]int
	var path [maxHeadingDepth]string
	// Scope-local duplicate tracking: (parent number, token) -> fragments.
	seen := make(map[string][]string)

	for i := range fragments {
		frag := &fragments[i]

		for _, h := range frag.Headings {
			level := h.Level
			if level > maxHeadingDepth {
				level = maxHeadingDepth
			}

			counters[level-1]++
			for d := level; d < maxHeadingDepth; d++ {
				counters[d] = 0
				path[d] = ""
			}
			// A depth jump leaves shallower counters at zero; treat the
			// missing levels as an implicit first section so numbers stay
			// well-formed. The validator flags the jump itself.
			for d := 0; d < level-1; d++ {
				if counters[d] == 0 {
					counters[d] = 1
				}
			}
			path[level-1] = h.Text

			number := joinNumber(counters[:level])
			anchor := &Anchor{
				FragmentOrderKey: frag.OrderKey,
				HeadingPath:      headingPath(path[:level]),
				Number:           number,
				StableID:         stableID(h, number),
				Title:            h.Text,
				Kind:             AnchorHeading,
			}
			ix.add(anchor)

			scope := parentNumber(number)
			token := htmlutil.NormalizeToken(h.Text)
			key := scope + "\x00" + token
			seen[key] = append(seen[key], frag.ID())
			if len(seen[key]) == 2 {
				ix.duplicates = append(ix.duplicates, DuplicateAnchor{
					Token:     token,
					Scope:     scope,
					Fragments: seen[key],
				})
			}
		}

		// Figures and tables carry the number of the section they appear
		// in; their authored id is the stable anchor.
		sectionNumber := currentNumber(counters[:])
		for _, fig := range frag.Figures {
			anchor := &Anchor{
				FragmentOrderKey: frag.OrderKey,
				Number:           sectionNumber,
				StableID:         fig.ID,
				Title:            fig.Caption,
				Kind:             AnchorFigure,
			}
			ix.add(anchor)
		}
	}

	if len(ix.duplicates) > 0 {
		d := ix.duplicates[0]
		return ix, fmt.Errorf("%w: %q in %s", ErrDuplicateAnchor, d.Token, strings.Join(d.Fragments, ", "))
	}
	return ix, nil
}

// add registers an anchor under every lookup key it answers to.
func (ix *ReferenceIndex) add(a *Anchor) {
	ix.anchors = append(ix.anchors, a)

	if a.Title != "" {
		token := htmlutil.NormalizeToken(a.Title)
		ix.byTitle[token] = append(ix.byTitle[token], a)
	}
	if a.Kind == AnchorHeading && a.Number != "" {
		// First heading wins a contested number; duplicates are already
		// reported through the scope check.
		if _, taken := ix.byNumber[a.Number]; !taken {
			ix.byNumber[a.Number] = a
		}
	}
	if a.StableID != "" {
		if _, taken := ix.byID[a.StableID]; !taken {
			ix.byID[a.StableID] = a
		}
	}
}

// Resolve returns every anchor matching a cross-reference token. Number
// tokens resolve through the number table, everything else through ids and
// normalized titles. Callers decide how to treat zero or multiple matches.
func (ix *ReferenceIndex) Resolve(token string) []*Anchor {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return nil
	}

	if numberTokenPattern.MatchString(trimmed) {
		if a, ok := ix.byNumber[trimmed]; ok {
			return []*Anchor{a}
		}
		return nil
	}

	if a, ok := ix.byID[trimmed]; ok {
		return []*Anchor{a}
	}

	return ix.byTitle[htmlutil.NormalizeToken(trimmed)]
}

// Anchors returns all anchors in document order.
func (ix *ReferenceIndex) Anchors() []*Anchor {
	return ix.anchors
}

// Duplicates returns scoped duplicate-anchor violations found during the
// index walk.
func (ix *ReferenceIndex) Duplicates() []DuplicateAnchor {
	return ix.duplicates
}

// stableID derives the element id an anchor is linked by. Authored ids are
// kept; otherwise the id derives from the computed number and title so it
// is stable across runs.
func stableID(h Heading, number string) string {
	if h.ID != "" {
		return h.ID
	}
	slug := htmlutil.Slugify(h.Text)
	numPart := strings.ReplaceAll(number, ".", "-")
	if slug == "" {
		return "sec-" + numPart
	}
	return "sec-" + numPart + "-" + slug
}

// joinNumber renders counters as a dotted number path.
func joinNumber(counters []int) string {
	parts := make([]string, len(counters))
	for i, c := range counters {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ".")
}

// currentNumber renders the number of the deepest open section, or "" when
// no heading has been seen yet.
func currentNumber(counters []int) string {
	depth := 0
	for i, c := range counters {
		if c > 0 {
			depth = i + 1
		}
	}
	if depth == 0 {
		return ""
	}
	return joinNumber(counters[:depth])
}

// parentNumber strips the last component of a dotted number.
func parentNumber(number string) string {
	if i := strings.LastIndex(number, "."); i >= 0 {
		return number[:i]
	}
	return ""
}

// headingPath copies the live path slice so anchors stay immutable.
func headingPath(path []string) []string {
	out := make([]string, len(path))
	copy(out, path)
	return out
}
