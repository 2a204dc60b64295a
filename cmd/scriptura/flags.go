package main

import (
	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// addCommonFlags adds shared flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "config.yaml", "config file path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show progress detail")
}

// buildFlags holds flags for the build command.
type buildFlags struct {
	common      commonFlags
	out         string
	htmlOut     string
	manifestOut string
	skipPDF     bool
	timeout     string
}

// parseBuildFlags parses build command flags.
func parseBuildFlags(args []string) (*buildFlags, error) {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	f := &buildFlags{}

	addCommonFlags(fs, &f.common)
	fs.StringVarP(&f.out, "out", "o", "", "PDF output path (default from config)")
	fs.StringVar(&f.htmlOut, "html-out", "", "assembled HTML output path (default from config)")
	fs.StringVar(&f.manifestOut, "manifest-out", "", "manifest output path (default from config)")
	fs.BoolVar(&f.skipPDF, "skip-pdf", false, "write HTML and manifest only")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "PDF rendering timeout (e.g., 30s, 2m)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

// lintFlags holds flags for the lint command.
type lintFlags struct {
	common commonFlags
}

// parseLintFlags parses lint command flags.
func parseLintFlags(args []string) (*lintFlags, error) {
	fs := flag.NewFlagSet("lint", flag.ContinueOnError)
	f := &lintFlags{}

	addCommonFlags(fs, &f.common)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

// initFlags holds flags for the init command.
type initFlags struct {
	force bool
	name  string
}

// parseInitFlags parses init command flags and the target name argument.
func parseInitFlags(args []string) (*initFlags, error) {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	f := &initFlags{}

	fs.BoolVar(&f.force, "force", false, "replace an existing directory")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	f.name = "report"
	if fs.NArg() > 0 {
		f.name = fs.Arg(0)
	}
	return f, nil
}
