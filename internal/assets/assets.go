// Package assets provides the embedded default theme, the report wrapper
// template, and the scaffold files used by the init command.
package assets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed themes/default/*.css
var themes embed.FS

//go:embed templates/report.html
var templates embed.FS

//go:embed scaffold
var scaffold embed.FS

// Sentinel errors for asset loading.
var (
	ErrRoleNotFound     = errors.New("no embedded stylesheet for role")
	ErrInvalidAssetName = errors.New("invalid asset name")
)

// DefaultThemeName is the name of the built-in theme.
const DefaultThemeName = "default"

// DefaultThemeStyle returns the embedded default theme stylesheet for a
// role (role name without the .css extension).
func DefaultThemeStyle(role string) (string, error) {
	if err := validateName(role); err != nil {
		return "", err
	}
	content, err := themes.ReadFile("themes/default/" + role + ".css")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrRoleNotFound, role)
	}
	return string(content), nil
}

// WrapperTemplate returns the report wrapper document the assembler
// populates with placeholders, stylesheets and section content.
func WrapperTemplate() string {
	content, err := templates.ReadFile("templates/report.html")
	if err != nil {
		// Embedded file; absence is a packaging bug.
		panic("assets: embedded wrapper template missing: " + err.Error())
	}
	return string(content)
}

// ScaffoldFile is one file of the init scaffold.
type ScaffoldFile struct {
	Path    string // relative to the scaffold target directory
	Content string
}

// ScaffoldFiles returns every scaffold file in deterministic path order.
func ScaffoldFiles() ([]ScaffoldFile, error) {
	var files []ScaffoldFile
	err := fs.WalkDir(scaffold, "scaffold", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		content, err := scaffold.ReadFile(path)
		if err != nil {
			return err
		}
		files = append(files, ScaffoldFile{
			Path:    strings.TrimPrefix(path, "scaffold/"),
			Content: string(content),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading scaffold: %w", err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// validateName rejects names that could escape the embedded directory.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
