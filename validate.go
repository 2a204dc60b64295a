package scriptura

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/scriptura/scriptura/internal/fileutil"
)

// Severity of a finding. Errors block build; warnings never do.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Kind identifies the check a finding came from.
type Kind string

const (
	KindOrdering            Kind = "ordering"
	KindHeadingDepth        Kind = "heading-depth"
	KindDuplicateAnchor     Kind = "duplicate-anchor"
	KindUnresolvedReference Kind = "unresolved-reference"
	KindAmbiguousReference  Kind = "ambiguous-reference"
	KindMissingAsset        Kind = "missing-asset"
	KindIncompleteTheme     Kind = "incomplete-theme"
	KindMalformedHTML       Kind = "malformed-html"
	KindDeepNesting         Kind = "deep-nesting"
)

// Category groups finding kinds into the error taxonomy.
func (k Kind) Category() string {
	switch k {
	case KindOrdering, KindHeadingDepth, KindDuplicateAnchor, KindDeepNesting:
		return "structural"
	case KindUnresolvedReference, KindAmbiguousReference, KindMissingAsset:
		return "referential"
	case KindIncompleteTheme:
		return "theme"
	case KindMalformedHTML:
		return "syntax"
	}
	return "unknown"
}

// GlobalScope is the fragment identifier for findings not tied to a single
// fragment.
const GlobalScope = "global"

// Finding is one diagnostic produced by validation.
type Finding struct {
	Fragment string // fragment filename, or GlobalScope
	Severity Severity
	Kind     Kind
	Message  string
	Line     int // 1-based, 0 when not determinable
	Col      int // 1-based, 0 when not determinable
}

// String renders a finding the way lint prints it.
func (f Finding) String() string {
	mark := "✗"
	if f.Severity == SeverityWarning {
		mark = "⚠"
	}
	loc := f.Fragment
	if f.Line > 0 {
		loc = fmt.Sprintf("%s:%d:%d", f.Fragment, f.Line, f.Col)
	}
	return fmt.Sprintf("%s [%s] %s: %s", mark, f.Kind, loc, f.Message)
}

// DiagnosticReport is a flat ordered sequence of findings.
type DiagnosticReport struct {
	Findings []Finding
}

// OK reports whether the report contains zero error-severity findings.
// Warnings never block.
func (r *DiagnosticReport) OK() bool {
	return r.ErrorCount() == 0
}

// ErrorCount returns the number of error-severity findings.
func (r *DiagnosticReport) ErrorCount() int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			n++
		}
	}
	return n
}

// WarningCount returns the number of warning-severity findings.
func (r *DiagnosticReport) WarningCount() int {
	return len(r.Findings) - r.ErrorCount()
}

// Warnings returns the warning-severity findings in report order.
func (r *DiagnosticReport) Warnings() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == SeverityWarning {
			out = append(out, f)
		}
	}
	return out
}

// String renders the full report, one finding per line.
func (r *DiagnosticReport) String() string {
	var buf strings.Builder
	for _, f := range r.Findings {
		buf.WriteString(f.String())
		buf.WriteByte('\n')
	}
	return buf.String()
}

func (r *DiagnosticReport) add(f Finding) {
	r.Findings = append(r.Findings, f)
}

// deepNestingThreshold is the heading depth beyond which a warning is
// raised. Deep nesting paginates poorly but is not a structural violation.
const deepNestingThreshold = 4

// Validate runs every structural check and aggregates all findings; lint
// must report everything wrong in one pass, so no check short-circuits
// another. The theme bundle may be nil or partial; missing roles become
// findings rather than hard errors.
func Validate(fragments []Fragment, index *ReferenceIndex, bundle *ThemeBundle, cfg *Config) *DiagnosticReport {
	report := &DiagnosticReport{}

	checkOrdering(report, fragments, cfg.OrderingBase)
	checkHeadingDepth(report, fragments)
	checkDuplicateAnchors(report, index)
	checkCrossReferences(report, fragments, index)
	checkAssets(report, fragments, cfg)
	checkTheme(report, bundle)
	checkWellFormed(report, fragments)

	return report
}

// checkOrdering verifies order keys are unique and form a dense ascending
// sequence starting at base.
func checkOrdering(report *DiagnosticReport, fragments []Fragment, base int) {
	byKey := make(map[int][]string)
	keys := make([]int, 0, len(fragments))
	for _, frag := range fragments {
		if _, seen := byKey[frag.OrderKey]; !seen {
			keys = append(keys, frag.OrderKey)
		}
		byKey[frag.OrderKey] = append(byKey[frag.OrderKey], frag.ID())
	}
	sort.Ints(keys)

	for _, key := range keys {
		if names := byKey[key]; len(names) > 1 {
			report.add(Finding{
				Fragment: GlobalScope,
				Severity: SeverityError,
				Kind:     KindOrdering,
				Message:  fmt.Sprintf("order key %d is duplicated by %s", key, strings.Join(names, ", ")),
			})
		}
	}

	if len(keys) == 0 {
		return
	}
	if keys[0] != base {
		report.add(Finding{
			Fragment: GlobalScope,
			Severity: SeverityError,
			Kind:     KindOrdering,
			Message:  fmt.Sprintf("sequence starts at %d, expected base %d", keys[0], base),
		})
	}
	for i := 1; i < len(keys); i++ {
		for missing := keys[i-1] + 1; missing < keys[i]; missing++ {
			report.add(Finding{
				Fragment: GlobalScope,
				Severity: SeverityError,
				Kind:     KindOrdering,
				Message:  fmt.Sprintf("missing order key %d between %s and %s", missing, byKey[keys[i-1]][0], byKey[keys[i]][0]),
			})
		}
	}
}

// checkHeadingDepth verifies heading levels never deepen by more than one
// step within a fragment, and warns about unusually deep nesting.
func checkHeadingDepth(report *DiagnosticReport, fragments []Fragment) {
	for _, frag := range fragments {
		prev := 0
		for i, h := range frag.Headings {
			if i == 0 && h.Level > 1 {
				report.add(Finding{
					Fragment: frag.ID(),
					Severity: SeverityWarning,
					Kind:     KindHeadingDepth,
					Message:  fmt.Sprintf("fragment opens at heading level %d", h.Level),
				})
			} else if i > 0 && h.Level > prev+1 {
				report.add(Finding{
					Fragment: frag.ID(),
					Severity: SeverityError,
					Kind:     KindHeadingDepth,
					Message:  fmt.Sprintf("heading %q jumps from level %d to %d", h.Text, prev, h.Level),
				})
			}
			if h.Level > deepNestingThreshold {
				report.add(Finding{
					Fragment: frag.ID(),
					Severity: SeverityWarning,
					Kind:     KindDeepNesting,
					Message:  fmt.Sprintf("heading %q nests at level %d (deeper than %d)", h.Text, h.Level, deepNestingThreshold),
				})
			}
			prev = h.Level
		}
	}
}

// checkDuplicateAnchors folds scoped duplicate titles from the index walk
// into the report.
func checkDuplicateAnchors(report *DiagnosticReport, index *ReferenceIndex) {
	for _, dup := range index.Duplicates() {
		scope := "top level"
		if dup.Scope != "" {
			scope = "section " + dup.Scope
		}
		report.add(Finding{
			Fragment: GlobalScope,
			Severity: SeverityError,
			Kind:     KindDuplicateAnchor,
			Message:  fmt.Sprintf("heading %q appears twice under %s (%s)", dup.Token, scope, strings.Join(dup.Fragments, ", ")),
		})
	}
}

// checkCrossReferences resolves every data-ref token against the frozen
// index. Forward references are legal; only genuinely unmatched or
// multi-matched tokens are findings.
func checkCrossReferences(report *DiagnosticReport, fragments []Fragment, index *ReferenceIndex) {
	for _, frag := range fragments {
		for _, token := range frag.CrossRefs {
			matches := index.Resolve(token)
			switch len(matches) {
			case 1:
				// resolved
			case 0:
				report.add(Finding{
					Fragment: frag.ID(),
					Severity: SeverityError,
					Kind:     KindUnresolvedReference,
					Message:  fmt.Sprintf("reference %q does not match any anchor", token),
				})
			default:
				numbers := make([]string, len(matches))
				for i, a := range matches {
					numbers[i] = a.Number
				}
				report.add(Finding{
					Fragment: frag.ID(),
					Severity: SeverityError,
					Kind:     KindAmbiguousReference,
					Message:  fmt.Sprintf("reference %q matches %d anchors (%s)", token, len(matches), strings.Join(numbers, ", ")),
				})
			}
		}
	}
}

// checkAssets verifies every relative asset reference exists under one of
// the configured assets roots.
func checkAssets(report *DiagnosticReport, fragments []Fragment, cfg *Config) {
	roots := cfg.ResolveAll(cfg.AssetsRoots)
	for _, frag := range fragments {
		for _, ref := range frag.AssetRefs {
			if resolveAsset(ref, roots) == "" {
				report.add(Finding{
					Fragment: frag.ID(),
					Severity: SeverityError,
					Kind:     KindMissingAsset,
					Message:  fmt.Sprintf("asset %q not found under any assets root", ref),
				})
			}
		}
	}
}

// resolveAsset returns the absolute path of ref under the first root that
// contains it, or "" when no root does. Paths escaping their root are
// treated as unresolved.
func resolveAsset(ref string, roots []string) string {
	for _, root := range roots {
		if root == "" {
			continue
		}
		candidate := filepath.Join(root, ref)
		if !pathUnderDir(candidate, root) {
			continue
		}
		if fileutil.FileExists(candidate) {
			return candidate
		}
	}
	return ""
}

// pathUnderDir checks containment after cleaning, preventing ../ escapes.
func pathUnderDir(path, dir string) bool {
	cleanPath := filepath.Clean(path)
	cleanDir := filepath.Clean(dir)
	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}
	return strings.HasPrefix(cleanPath+string(filepath.Separator), cleanDir)
}

// checkTheme verifies every stylesheet role resolved to non-empty content.
func checkTheme(report *DiagnosticReport, bundle *ThemeBundle) {
	if bundle == nil {
		report.add(Finding{
			Fragment: GlobalScope,
			Severity: SeverityError,
			Kind:     KindIncompleteTheme,
			Message:  "theme bundle could not be composed",
		})
		return
	}
	for _, role := range bundle.MissingRoles() {
		report.add(Finding{
			Fragment: GlobalScope,
			Severity: SeverityError,
			Kind:     KindIncompleteTheme,
			Message:  fmt.Sprintf("theme %q resolves no stylesheet for role %q", bundle.Name, role),
		})
	}
}

// Void elements never take end tags; the balance scan skips them.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// checkWellFormed runs a minimal balanced-tag scan over each fragment.
// The tokenizer is forgiving, so this is a linters-eye check: mismatched
// or unclosed non-void tags are reported with a line estimate.
func checkWellFormed(report *DiagnosticReport, fragments []Fragment) {
	for _, frag := range fragments {
		scanBalance(report, frag)
	}
}

type openTag struct {
	name string
	line int
}

func scanBalance(report *DiagnosticReport, frag Fragment) {
	tokenizer := html.NewTokenizer(strings.NewReader(frag.RawContent))
	var stack []openTag
	line := 1

	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}
		tokenLine := line
		line += strings.Count(string(tokenizer.Raw()), "\n")

		switch tt {
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if voidElements[tag] {
				continue
			}
			stack = append(stack, openTag{name: tag, line: tokenLine})

		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if len(stack) > 0 && stack[len(stack)-1].name == tag {
				stack = stack[:len(stack)-1]
				continue
			}
			// Mismatch: either a stray close or an unclosed parent.
			if idx := lastIndexOf(stack, tag); idx >= 0 {
				for i := len(stack) - 1; i > idx; i-- {
					report.add(Finding{
						Fragment: frag.ID(),
						Severity: SeverityError,
						Kind:     KindMalformedHTML,
						Message:  fmt.Sprintf("unclosed <%s>", stack[i].name),
						Line:     stack[i].line,
						Col:      1,
					})
				}
				stack = stack[:idx]
			} else {
				report.add(Finding{
					Fragment: frag.ID(),
					Severity: SeverityError,
					Kind:     KindMalformedHTML,
					Message:  fmt.Sprintf("unexpected closing </%s>", tag),
					Line:     tokenLine,
					Col:      1,
				})
			}
		}
	}

	for i := len(stack) - 1; i >= 0; i-- {
		report.add(Finding{
			Fragment: frag.ID(),
			Severity: SeverityError,
			Kind:     KindMalformedHTML,
			Message:  fmt.Sprintf("unclosed <%s>", stack[i].name),
			Line:     stack[i].line,
			Col:      1,
		})
	}
}

func lastIndexOf(stack []openTag, name string) int {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].name == name {
			return i
		}
	}
	return -1
}
