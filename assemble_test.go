package scriptura

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/scriptura/scriptura/internal/yamlutil"
)

// assembleFixture lays out a minimal report tree and loads its pieces.
func assembleFixture(t *testing.T, sections map[string]string) ([]Fragment, *ReferenceIndex, *ThemeBundle, *Config) {
	t.Helper()
	base := t.TempDir()

	sectionsDir := filepath.Join(base, "sections")
	if err := os.MkdirAll(sectionsDir, 0o750); err != nil {
		t.Fatal(err)
	}
	for name, content := range sections {
		if err := os.WriteFile(filepath.Join(sectionsDir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	imagesDir := filepath.Join(base, "images")
	if err := os.MkdirAll(imagesDir, 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(imagesDir, "chart.png"), []byte("png"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.BaseDir = base
	cfg.Title = "Annual Report <2026>"
	cfg.Kicker = "ACME"

	fragments, err := NewFragmentStore().LoadFragments(context.Background(), sectionsDir)
	if err != nil {
		t.Fatalf("LoadFragments() error = %v", err)
	}
	index, err := BuildIndex(fragments)
	if err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}
	bundle, err := ComposeTheme(cfg.Theme, "", "")
	if err != nil {
		t.Fatalf("ComposeTheme() error = %v", err)
	}
	return fragments, index, bundle, cfg
}

func TestAssemble(t *testing.T) {
	fragments, index, bundle, cfg := assembleFixture(t, map[string]string{
		"01-intro.html": `<section><h1>Intro</h1><p>Hello.</p></section>`,
		"02-method.html": `<section><h1>Setup</h1>
<p>See <a data-ref="Intro"></a> and <a data-ref="Data">the data section</a>.</p>
<img src="chart.png" alt="chart">
<h2>Data</h2></section>`,
	})
	cfg.AssetsRoots = []string{"images"}

	doc, manifest, err := Assemble(context.Background(), fragments, index, bundle, cfg)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	t.Run("numbers injected into headings", func(t *testing.T) {
		for _, want := range []string{
			`<span class="sec-num">1</span>`,
			`<span class="sec-num">2</span>`,
			`<span class="sec-num">2.1</span>`,
		} {
			if !strings.Contains(doc.HTML, want) {
				t.Errorf("HTML missing %q", want)
			}
		}
	})

	t.Run("stable ids assigned", func(t *testing.T) {
		for _, want := range []string{`id="sec-1-intro"`, `id="sec-2-1-data"`} {
			if !strings.Contains(doc.HTML, want) {
				t.Errorf("HTML missing %q", want)
			}
		}
	})

	t.Run("cross references become hyperlinks", func(t *testing.T) {
		if !strings.Contains(doc.HTML, `href="#sec-1-intro"`) {
			t.Error("HTML missing link to intro")
		}
		// Empty link text is filled with the computed number.
		if !strings.Contains(doc.HTML, "§1") {
			t.Error("HTML missing generated §1 link text")
		}
		// Authored link text is preserved.
		if !strings.Contains(doc.HTML, "the data section") {
			t.Error("HTML lost authored link text")
		}
		if strings.Contains(doc.HTML, "data-ref=") {
			t.Error("HTML still contains unrewritten data-ref tokens")
		}
	})

	t.Run("asset paths become file URLs", func(t *testing.T) {
		if !strings.Contains(doc.HTML, "file://") || !strings.Contains(doc.HTML, "chart.png") {
			t.Error("HTML missing file:// asset URL")
		}
	})

	t.Run("placeholders substituted and escaped", func(t *testing.T) {
		if !strings.Contains(doc.HTML, "Annual Report &lt;2026&gt;") {
			t.Error("HTML missing escaped title")
		}
		if strings.Contains(doc.HTML, "[TITLE]") || strings.Contains(doc.HTML, "[KICKER]") {
			t.Error("HTML still contains raw placeholders")
		}
	})

	t.Run("theme styles inlined in cascade order", func(t *testing.T) {
		lastIdx := -1
		for _, role := range CascadeOrder {
			idx := strings.Index(doc.HTML, `<style data-role="`+role+`"`)
			if idx == -1 {
				t.Fatalf("HTML missing style block for role %q", role)
			}
			if idx < lastIdx {
				t.Errorf("style block %q out of cascade order", role)
			}
			lastIdx = idx
		}
	})

	t.Run("body inserted before the end marker", func(t *testing.T) {
		body := strings.Index(doc.HTML, `id="sec-1-intro"`)
		end := strings.Index(doc.HTML, bodyMarker)
		if body == -1 || end == -1 || body > end {
			t.Error("section content not placed before the closing page")
		}
	})

	t.Run("manifest mirrors the document", func(t *testing.T) {
		if manifest.Title != cfg.Title {
			t.Errorf("manifest.Title = %q", manifest.Title)
		}
		if len(manifest.Sections) != 2 {
			t.Fatalf("len(Sections) = %d, want 2", len(manifest.Sections))
		}
		if manifest.Sections[1].Number != "2" || manifest.Sections[1].Title != "Setup" {
			t.Errorf("Sections[1] = %+v", manifest.Sections[1])
		}
		if len(manifest.Anchors) != 3 {
			t.Errorf("len(Anchors) = %d, want 3", len(manifest.Anchors))
		}
		if len(manifest.Theme.Roles) != len(CascadeOrder) {
			t.Errorf("len(Theme.Roles) = %d, want %d", len(manifest.Theme.Roles), len(CascadeOrder))
		}
	})
}

func TestAssembleIsDeterministic(t *testing.T) {
	fragments, index, bundle, cfg := assembleFixture(t, map[string]string{
		"01-intro.html":  `<section><h1>Intro</h1></section>`,
		"02-method.html": `<section><h1>Setup</h1><h2>Data</h2></section>`,
	})
	cfg.AssetsRoots = nil

	first, firstManifest, err := Assemble(context.Background(), fragments, index, bundle, cfg)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	second, secondManifest, err := Assemble(context.Background(), fragments, index, bundle, cfg)
	if err != nil {
		t.Fatalf("Assemble() second run error = %v", err)
	}

	if first.HTML != second.HTML {
		t.Error("assembled HTML differs between identical runs")
	}

	firstYAML, err := yamlutil.Marshal(firstManifest)
	if err != nil {
		t.Fatal(err)
	}
	secondYAML, err := yamlutil.Marshal(secondManifest)
	if err != nil {
		t.Fatal(err)
	}
	if string(firstYAML) != string(secondYAML) {
		t.Error("manifest YAML differs between identical runs")
	}
}

func TestAssembleRefusesBrokenInput(t *testing.T) {
	fragments, index, bundle, cfg := assembleFixture(t, map[string]string{
		"01-intro.html":  `<section><h1>Intro</h1><p><a data-ref="Nowhere"></a></p></section>`,
		"02-method.html": `<section><h1>Setup</h1></section>`,
	})
	cfg.AssetsRoots = nil

	_, _, err := Assemble(context.Background(), fragments, index, bundle, cfg)
	if err == nil {
		t.Fatal("Assemble() error = nil, want validation failure")
	}
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if !errors.Is(err, ErrValidationFailed) {
		t.Error("error does not unwrap to ErrValidationFailed")
	}
	if valErr.Report.ErrorCount() == 0 {
		t.Error("ValidationError carries no error findings")
	}
}

func TestAssembleWarningsDoNotBlock(t *testing.T) {
	fragments, index, bundle, cfg := assembleFixture(t, map[string]string{
		"01-intro.html": `<section><h2>Opens Deep</h2></section>`, // warning only
	})
	cfg.AssetsRoots = nil

	_, manifest, err := Assemble(context.Background(), fragments, index, bundle, cfg)
	if err != nil {
		t.Fatalf("Assemble() error = %v, want success with warnings", err)
	}
	if len(manifest.Warnings) == 0 {
		t.Error("manifest.Warnings empty, want the heading warning recorded")
	}
}

func TestAssembleFrontMatterAndLastPage(t *testing.T) {
	fragments, index, bundle, cfg := assembleFixture(t, map[string]string{
		"01-intro.html": `<section><h1>Intro</h1></section>`,
	})
	cfg.AssetsRoots = nil

	if err := os.WriteFile(filepath.Join(cfg.BaseDir, "preface.html"), []byte("<p>Preface.</p>"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfg.BaseDir, "colophon.html"), []byte("<p>Colophon.</p>"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg.FrontMatter = []string{"preface.html"}
	cfg.LastPage = []string{"colophon.html"}

	doc, _, err := Assemble(context.Background(), fragments, index, bundle, cfg)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	front := strings.Index(doc.HTML, `class="front-matter unnumbered"`)
	section := strings.Index(doc.HTML, `id="sec-1-intro"`)
	last := strings.Index(doc.HTML, `class="last-page-extra unnumbered"`)
	if front == -1 || section == -1 || last == -1 {
		t.Fatalf("missing blocks: front=%d section=%d last=%d", front, section, last)
	}
	if !(front < section && section < last) {
		t.Errorf("block order wrong: front=%d section=%d last=%d", front, section, last)
	}
	// Unnumbered content never receives section numbers.
	if strings.Contains(doc.HTML[front:section], "sec-num") {
		t.Error("front matter received a section number")
	}
}

func TestAssembleCancelledContext(t *testing.T) {
	fragments, index, bundle, cfg := assembleFixture(t, map[string]string{
		"01-intro.html": `<section><h1>Intro</h1></section>`,
	})
	cfg.AssetsRoots = nil

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := Assemble(ctx, fragments, index, bundle, cfg); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
