package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/scriptura/scriptura"
)

// runBuild assembles the canonical document and exports the PDF.
func runBuild(args []string) int {
	f, err := parseBuildFlags(args)
	if err != nil {
		return exitUsage
	}

	cfg, err := scriptura.LoadConfig(f.common.config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}

	// Flag overrides win over config output paths.
	if f.out != "" {
		cfg.Output.PDF = f.out
	}
	if f.htmlOut != "" {
		cfg.Output.HTML = f.htmlOut
	}
	if f.manifestOut != "" {
		cfg.Output.Manifest = f.manifestOut
	}

	opts := []scriptura.Option{}
	if !f.common.quiet {
		opts = append(opts, scriptura.WithLogger(os.Stderr))
	}
	if f.timeout != "" {
		d, err := time.ParseDuration(f.timeout)
		if err != nil || d <= 0 {
			fmt.Fprintf(os.Stderr, "invalid timeout %q\n", f.timeout)
			return exitUsage
		}
		opts = append(opts, scriptura.WithTimeout(d))
	}

	svc := scriptura.New(opts...)
	defer func() { _ = svc.Close() }()

	result, err := svc.Build(context.Background(), cfg, scriptura.BuildOptions{SkipPDF: f.skipPDF})
	if err != nil {
		var valErr *scriptura.ValidationError
		if errors.As(err, &valErr) {
			printReport(valErr.Report, f.common.quiet)
			fmt.Fprintf(os.Stderr, "✗ Build aborted: %d error(s)\n", valErr.Report.ErrorCount())
			return exitFailure
		}
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}

	if f.common.verbose {
		for _, warning := range result.Report.Warnings() {
			fmt.Fprintln(os.Stderr, warning.String())
		}
	}
	return exitOK
}
