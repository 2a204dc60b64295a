package main

import (
	"context"
	"fmt"
	"os"

	"github.com/scriptura/scriptura"
)

// runLint validates the document structure and prints every finding.
// Warnings never affect the exit code.
func runLint(args []string) int {
	f, err := parseLintFlags(args)
	if err != nil {
		return exitUsage
	}

	cfg, err := scriptura.LoadConfig(f.common.config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}

	svc := scriptura.New()
	defer func() { _ = svc.Close() }()

	report, err := svc.Lint(context.Background(), cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}

	printReport(report, f.common.quiet)

	if !report.OK() {
		fmt.Fprintf(os.Stderr, "✗ Lint failed: %d error(s), %d warning(s)\n", report.ErrorCount(), report.WarningCount())
		return exitFailure
	}

	if !f.common.quiet {
		fmt.Println("✓ Lint passed")
	}
	return exitOK
}

// printReport writes findings to stderr; in quiet mode warnings are
// suppressed.
func printReport(report *scriptura.DiagnosticReport, quiet bool) {
	for _, finding := range report.Findings {
		if quiet && finding.Severity == scriptura.SeverityWarning {
			continue
		}
		fmt.Fprintln(os.Stderr, finding.String())
	}
}
