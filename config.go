package scriptura

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/scriptura/scriptura/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrConfigInvalid  = errors.New("invalid config")
)

// DefaultOrderingBase is the first expected fragment order key.
const DefaultOrderingBase = 1

// Config is the resolved configuration consumed by the pipeline. Paths are
// relative to BaseDir (the directory the config file was loaded from)
// unless absolute.
type Config struct {
	// Placeholder data substituted into the wrapper document.
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
	Prepared string `yaml:"prepared"`
	Kicker   string `yaml:"kicker"`

	Theme            string   `yaml:"theme"`            // theme name (default: "default")
	SectionsDir      string   `yaml:"sectionsDir"`      // fragment directory (default: "sections")
	StylesRoot       string   `yaml:"stylesRoot"`       // named theme directories (optional)
	StyleOverrideDir string   `yaml:"styleOverrideDir"` // per-role override directory (optional)
	AssetsRoots      []string `yaml:"assetsRoots"`      // roots for relative asset references
	OrderingBase     int      `yaml:"orderingBase"`     // first expected order key (default: 1)
	FrontMatter      []string `yaml:"frontMatter"`      // unnumbered fragments before the body
	LastPage         []string `yaml:"lastPage"`         // unnumbered fragments after the body

	Output OutputConfig `yaml:"output"`

	// BaseDir anchors relative paths. Set by LoadConfig; callers building
	// a Config by hand should set it explicitly.
	BaseDir string `yaml:"-"`
}

// OutputConfig defines where build artifacts are written.
type OutputConfig struct {
	HTML     string `yaml:"html"`     // assembled document (default: "build/report.html")
	PDF      string `yaml:"pdf"`      // rendered PDF (default: "build/report.pdf")
	Manifest string `yaml:"manifest"` // structure manifest (default: "build/manifest.yaml")
}

// DefaultConfig returns a configuration with scaffold-compatible defaults.
func DefaultConfig() *Config {
	return &Config{
		Theme:        "default",
		SectionsDir:  "sections",
		AssetsRoots:  []string{"images"},
		OrderingBase: DefaultOrderingBase,
		Output: OutputConfig{
			HTML:     "build/report.html",
			PDF:      "build/report.pdf",
			Manifest: "build/manifest.yaml",
		},
	}
}

// LoadConfig reads and validates a YAML config file. Unknown fields are
// rejected so typos surface instead of silently dropping settings.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}
	cfg.BaseDir = filepath.Dir(absPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks structural soundness of the configuration.
func (c *Config) Validate() error {
	if c.Theme == "" {
		return fmt.Errorf("%w: theme name cannot be empty", ErrConfigInvalid)
	}
	if c.SectionsDir == "" {
		return fmt.Errorf("%w: sectionsDir cannot be empty", ErrConfigInvalid)
	}
	if c.OrderingBase < 0 {
		return fmt.Errorf("%w: orderingBase must be non-negative, got %d", ErrConfigInvalid, c.OrderingBase)
	}
	if c.Output.HTML == "" {
		return fmt.Errorf("%w: output.html cannot be empty", ErrConfigInvalid)
	}
	return nil
}

// Resolve returns path anchored at BaseDir unless already absolute.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.BaseDir == "" {
		return path
	}
	return filepath.Join(c.BaseDir, path)
}

// ResolveAll applies Resolve to each path.
func (c *Config) ResolveAll(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = c.Resolve(p)
	}
	return out
}
