package scriptura

import (
	"github.com/scriptura/scriptura/internal/fileutil"
	"github.com/scriptura/scriptura/internal/yamlutil"
)

// Manifest summarizes one build: ordered section list with numbers, the
// resolved anchor table, the theme bundle used, and non-fatal warnings.
// Produced once per build; persisted for inspection and preview reuse.
type Manifest struct {
	Title    string            `yaml:"title"`
	Theme    ManifestTheme     `yaml:"theme"`
	Sections []ManifestSection `yaml:"sections"`
	Anchors  []ManifestAnchor  `yaml:"anchors"`
	Warnings []string          `yaml:"warnings,omitempty"`
}

// ManifestTheme records which source every stylesheet role resolved to.
type ManifestTheme struct {
	Name  string         `yaml:"name"`
	Roles []ManifestRole `yaml:"roles"`
}

// ManifestRole is one role→source entry, in cascade order.
type ManifestRole struct {
	Role   string `yaml:"role"`
	Source string `yaml:"source"`
}

// ManifestSection is one numbered section in document order.
type ManifestSection struct {
	OrderKey int    `yaml:"orderKey"`
	Slug     string `yaml:"slug"`
	Number   string `yaml:"number,omitempty"`
	Title    string `yaml:"title,omitempty"`
}

// ManifestAnchor is one resolved anchor in document order.
type ManifestAnchor struct {
	Number   string `yaml:"number,omitempty"`
	Title    string `yaml:"title,omitempty"`
	ID       string `yaml:"id"`
	Kind     string `yaml:"kind"`
	Fragment int    `yaml:"fragment"`
}

// buildManifest derives the manifest from the assembled structures.
// Everything is emitted in document order so output is byte-stable.
func buildManifest(fragments []Fragment, index *ReferenceIndex, bundle *ThemeBundle, cfg *Config, report *DiagnosticReport) *Manifest {
	m := &Manifest{
		Title: cfg.Title,
		Theme: ManifestTheme{Name: bundle.Name},
	}

	for _, sheet := range bundle.Chain() {
		m.Theme.Roles = append(m.Theme.Roles, ManifestRole{Role: sheet.Role, Source: sheet.Source})
	}

	firstAnchor := make(map[int]*Anchor)
	for _, a := range index.Anchors() {
		if a.Kind == AnchorHeading {
			if _, seen := firstAnchor[a.FragmentOrderKey]; !seen {
				firstAnchor[a.FragmentOrderKey] = a
			}
		}
		m.Anchors = append(m.Anchors, ManifestAnchor{
			Number:   a.Number,
			Title:    a.Title,
			ID:       a.StableID,
			Kind:     string(a.Kind),
			Fragment: a.FragmentOrderKey,
		})
	}

	for _, frag := range fragments {
		section := ManifestSection{OrderKey: frag.OrderKey, Slug: frag.Slug}
		if a, ok := firstAnchor[frag.OrderKey]; ok {
			section.Number = a.Number
			section.Title = a.Title
		}
		m.Sections = append(m.Sections, section)
	}

	for _, w := range report.Warnings() {
		m.Warnings = append(m.Warnings, w.String())
	}

	return m
}

// WriteFile persists the manifest as YAML.
func (m *Manifest) WriteFile(path string) error {
	data, err := yamlutil.Marshal(m)
	if err != nil {
		return err
	}
	return fileutil.WriteFile(path, string(data))
}
