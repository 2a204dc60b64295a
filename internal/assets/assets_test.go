package assets

import (
	"errors"
	"strings"
	"testing"
)

func TestDefaultThemeStyle(t *testing.T) {
	roles := []string{"cover", "footer", "general", "numbering", "last-page"}
	for _, role := range roles {
		t.Run(role, func(t *testing.T) {
			content, err := DefaultThemeStyle(role)
			if err != nil {
				t.Fatalf("DefaultThemeStyle(%q) error = %v", role, err)
			}
			if strings.TrimSpace(content) == "" {
				t.Errorf("DefaultThemeStyle(%q) returned empty stylesheet", role)
			}
		})
	}

	t.Run("unknown role", func(t *testing.T) {
		_, err := DefaultThemeStyle("sidebar")
		if !errors.Is(err, ErrRoleNotFound) {
			t.Errorf("error = %v, want ErrRoleNotFound", err)
		}
	})

	t.Run("traversal rejected", func(t *testing.T) {
		_, err := DefaultThemeStyle("../templates/report")
		if !errors.Is(err, ErrInvalidAssetName) {
			t.Errorf("error = %v, want ErrInvalidAssetName", err)
		}
	})
}

func TestWrapperTemplate(t *testing.T) {
	tpl := WrapperTemplate()
	for _, marker := range []string{"[TITLE]", "[SUBTITLE]", "[PREPARED]", "[KICKER]", `<section id="end"`} {
		if !strings.Contains(tpl, marker) {
			t.Errorf("wrapper template missing %q", marker)
		}
	}
}

func TestScaffoldFiles(t *testing.T) {
	files, err := ScaffoldFiles()
	if err != nil {
		t.Fatalf("ScaffoldFiles() error = %v", err)
	}

	byPath := make(map[string]string, len(files))
	for _, f := range files {
		byPath[f.Path] = f.Content
	}

	for _, want := range []string{
		"config.yaml",
		"sections/01-introduction.html",
		"sections/02-methodology.html",
		"sections/03-results.html",
	} {
		if _, ok := byPath[want]; !ok {
			t.Errorf("scaffold missing %q", want)
		}
	}

	// Deterministic ordering for idempotent init.
	for i := 1; i < len(files); i++ {
		if files[i-1].Path >= files[i].Path {
			t.Errorf("scaffold files not sorted: %q before %q", files[i-1].Path, files[i].Path)
		}
	}
}
