package scriptura

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/scriptura/scriptura/internal/fileutil"
)

// defaultTimeout bounds PDF rendering when no timeout is specified.
const defaultTimeout = 60 * time.Second

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	timeout time.Duration
	logger  io.Writer
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout sets the PDF rendering timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("scriptura: WithTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.timeout = d
	}
}

// WithExporter injects a PDF exporter (e.g., a fake for tests).
func WithExporter(e Exporter) Option {
	return func(s *Service) {
		s.exporter = e
	}
}

// WithLogger sets a destination for progress messages. Nil disables them.
func WithLogger(w io.Writer) Option {
	return func(s *Service) {
		s.cfg.logger = w
	}
}

// Service orchestrates the lint and build pipelines.
type Service struct {
	cfg      serviceConfig
	store    *FragmentStore
	exporter Exporter
}

// New creates a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		cfg:   serviceConfig{timeout: defaultTimeout},
		store: NewFragmentStore(),
	}

	for _, opt := range opts {
		opt(s)
	}

	// Create exporter if not injected (e.g., by tests)
	if s.exporter == nil {
		s.exporter = newRodExporter(s.cfg.timeout)
	}

	return s
}

// Lint loads fragments, builds the index, composes the theme and runs
// every structural check. Load failures that prevent validation entirely
// (unreadable directory, malformed filename) surface as errors; everything
// else lands in the report.
func (s *Service) Lint(ctx context.Context, cfg *Config) (*DiagnosticReport, error) {
	fragments, index, bundle, err := s.prepare(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return Validate(fragments, index, bundle, cfg), nil
}

// BuildResult describes the artifacts of one build.
type BuildResult struct {
	HTMLPath     string
	PDFPath      string
	ManifestPath string
	Report       *DiagnosticReport
	Manifest     *Manifest
}

// BuildOptions tweak a single build invocation.
type BuildOptions struct {
	SkipPDF bool // write HTML and manifest only
}

// Build runs the full pipeline: load, index, compose, assemble, write
// artifacts, export PDF. Assembly fails fast with a ValidationError when
// lint would have reported errors.
func (s *Service) Build(ctx context.Context, cfg *Config, opts BuildOptions) (*BuildResult, error) {
	fragments, index, bundle, err := s.prepare(ctx, cfg)
	if err != nil {
		return nil, err
	}

	doc, manifest, err := Assemble(ctx, fragments, index, bundle, cfg)
	if err != nil {
		return nil, err
	}

	result := &BuildResult{
		HTMLPath:     cfg.Resolve(cfg.Output.HTML),
		ManifestPath: cfg.Resolve(cfg.Output.Manifest),
		Manifest:     manifest,
		Report:       Validate(fragments, index, bundle, cfg),
	}

	if err := fileutil.WriteFile(result.HTMLPath, doc.HTML); err != nil {
		return nil, err
	}
	s.logf("✓ Assembled HTML → %s", result.HTMLPath)

	if result.ManifestPath != "" {
		if err := manifest.WriteFile(result.ManifestPath); err != nil {
			return nil, err
		}
		s.logf("✓ Manifest → %s", result.ManifestPath)
	}

	if !opts.SkipPDF && cfg.Output.PDF != "" {
		result.PDFPath = cfg.Resolve(cfg.Output.PDF)
		if err := s.exporter.Export(ctx, doc, result.PDFPath); err != nil {
			return nil, fmt.Errorf("exporting PDF: %w", err)
		}
		s.logf("✓ PDF written → %s", result.PDFPath)
	}

	return result, nil
}

// prepare runs the shared front half of lint and build. Theme composition
// failure is non-fatal here: the partial bundle flows into validation so
// missing roles are reported as findings.
func (s *Service) prepare(ctx context.Context, cfg *Config) ([]Fragment, *ReferenceIndex, *ThemeBundle, error) {
	fragments, err := s.store.LoadFragments(ctx, cfg.Resolve(cfg.SectionsDir))
	if err != nil {
		return nil, nil, nil, err
	}

	// Duplicate anchors are carried inside the index and reported as
	// findings; only a nil index is fatal.
	index, _ := BuildIndex(fragments)

	bundle, err := ComposeTheme(cfg.Theme, cfg.Resolve(cfg.StylesRoot), cfg.Resolve(cfg.StyleOverrideDir))
	if err != nil && bundle == nil {
		return nil, nil, nil, err
	}

	return fragments, index, bundle, nil
}

// Close releases resources (headless Chrome browser).
func (s *Service) Close() error {
	if s.exporter != nil {
		return s.exporter.Close()
	}
	return nil
}

func (s *Service) logf(format string, args ...any) {
	if s.cfg.logger == nil {
		return
	}
	fmt.Fprintf(s.cfg.logger, format+"\n", args...)
}
