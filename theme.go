package scriptura

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/scriptura/scriptura/internal/assets"
)

// The five fixed stylesheet roles every theme must resolve.
const (
	RoleCover     = "cover"
	RoleFooter    = "footer"
	RoleGeneral   = "general"
	RoleNumbering = "numbering"
	RoleLastPage  = "last-page"
)

// ThemeRoles lists every role, in no particular order.
var ThemeRoles = []string{RoleCover, RoleFooter, RoleGeneral, RoleNumbering, RoleLastPage}

// CascadeOrder is the fixed stylesheet order in the assembled document, so
// later rules override earlier ones predictably.
var CascadeOrder = []string{RoleCover, RoleGeneral, RoleNumbering, RoleFooter, RoleLastPage}

// Stylesheet is one resolved theme role.
type Stylesheet struct {
	Role    string
	Source  string // file path, or "embedded:default" for the built-in theme
	Content string
}

// EmbeddedSource marks stylesheets resolved from the embedded default theme.
const EmbeddedSource = "embedded:default"

// ThemeBundle is the ordered set of resolved stylesheets for one theme.
// Computed once per run; inspectable independently of any CSS engine.
type ThemeBundle struct {
	Name   string
	sheets map[string]Stylesheet
}

// Role returns the resolved stylesheet for a role.
func (b *ThemeBundle) Role(role string) (Stylesheet, bool) {
	s, ok := b.sheets[role]
	return s, ok
}

// Chain returns the resolved stylesheets in cascade order.
func (b *ThemeBundle) Chain() []Stylesheet {
	var chain []Stylesheet
	for _, role := range CascadeOrder {
		if s, ok := b.sheets[role]; ok {
			chain = append(chain, s)
		}
	}
	return chain
}

// MissingRoles returns roles that resolved to nothing or to an empty
// stylesheet, in cascade order. An explicitly empty stylesheet is a
// violation, not a silent no-op: a theme with no numbering CSS breaks the
// paginated output contract.
func (b *ThemeBundle) MissingRoles() []string {
	var missing []string
	for _, role := range CascadeOrder {
		s, ok := b.sheets[role]
		if !ok || strings.TrimSpace(s.Content) == "" {
			missing = append(missing, role)
		}
	}
	return missing
}

// Provenance maps each role to the source its stylesheet came from, for
// the manifest.
func (b *ThemeBundle) Provenance() map[string]string {
	out := make(map[string]string, len(b.sheets))
	for role, s := range b.sheets {
		out[role] = s.Source
	}
	return out
}

// ComposeTheme resolves each role through the override chain:
//
//  1. overrideDir/<role>.css (user-level, role-by-role override)
//  2. stylesRoot/<themeName>/<role>.css (named base theme)
//  3. the embedded default theme, only when themeName is "default"
//
// A file that exists wins its link in the chain even when empty; the empty
// content is then reported as a missing role rather than silently falling
// through to a different theme's stylesheet. Returns the partially
// resolved bundle together with ErrIncompleteTheme when any role cannot be
// resolved, so lint can report every missing role.
func ComposeTheme(themeName, stylesRoot, overrideDir string) (*ThemeBundle, error) {
	bundle := &ThemeBundle{
		Name:   themeName,
		sheets: make(map[string]Stylesheet, len(ThemeRoles)),
	}

	for _, role := range ThemeRoles {
		sheet, err := resolveRole(role, themeName, stylesRoot, overrideDir)
		if err != nil {
			if errors.Is(err, errRoleUnresolved) {
				continue // reported through MissingRoles
			}
			return nil, err
		}
		bundle.sheets[role] = sheet
	}

	if missing := bundle.MissingRoles(); len(missing) > 0 {
		return bundle, fmt.Errorf("%w: theme %q missing %s", ErrIncompleteTheme, themeName, strings.Join(missing, ", "))
	}
	return bundle, nil
}

// errRoleUnresolved signals that no link of the chain had the role.
var errRoleUnresolved = errors.New("role unresolved")

func resolveRole(role, themeName, stylesRoot, overrideDir string) (Stylesheet, error) {
	if overrideDir != "" {
		if sheet, found, err := readRole(role, overrideDir); err != nil {
			return Stylesheet{}, err
		} else if found {
			return sheet, nil
		}
	}

	if stylesRoot != "" {
		if sheet, found, err := readRole(role, filepath.Join(stylesRoot, themeName)); err != nil {
			return Stylesheet{}, err
		} else if found {
			return sheet, nil
		}
	}

	if themeName == assets.DefaultThemeName {
		content, err := assets.DefaultThemeStyle(role)
		if err != nil {
			return Stylesheet{}, fmt.Errorf("%w: %v", ErrThemeRead, err)
		}
		return Stylesheet{Role: role, Source: EmbeddedSource, Content: content}, nil
	}

	return Stylesheet{}, errRoleUnresolved
}

// readRole reads dir/<role>.css. Absence is not an error; any other read
// failure is.
func readRole(role, dir string) (Stylesheet, bool, error) {
	path := filepath.Join(dir, role+".css")
	content, err := os.ReadFile(path) // #nosec G304 -- paths come from config
	if err != nil {
		if os.IsNotExist(err) {
			return Stylesheet{}, false, nil
		}
		return Stylesheet{}, false, fmt.Errorf("%w: %s: %v", ErrThemeRead, path, err)
	}
	return Stylesheet{Role: role, Source: path, Content: string(content)}, true, nil
}
