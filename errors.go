package scriptura

import "errors"

// Sentinel errors for library operations.
var (
	// Fragment loading errors.
	ErrMalformedFilename = errors.New("fragment filename prefix is not a non-negative integer")
	ErrEmptyDirectory    = errors.New("sections directory contains no fragment files")
	ErrFragmentRead      = errors.New("failed to read fragment")
	ErrFragmentParse     = errors.New("failed to parse fragment")
	ErrMarkdownConvert   = errors.New("markdown conversion failed")

	// Reference index errors.
	ErrDuplicateAnchor = errors.New("duplicate anchor within the same section scope")

	// Theme composition errors.
	ErrIncompleteTheme = errors.New("theme is missing a stylesheet role")
	ErrThemeRead       = errors.New("failed to read theme stylesheet")

	// Assembly errors.
	ErrValidationFailed = errors.New("validation reported errors")

	// PDF export errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
)
