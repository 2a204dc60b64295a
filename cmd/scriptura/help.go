package main

import (
	"fmt"
	"io"
)

const usageText = `scriptura — modular paginated reports

Usage:
  scriptura <command> [flags]

Commands:
  init [name]    create a new report scaffold (default: ./report)
  lint           validate fragments, references, assets and theme
  build          assemble the document and export the PDF
  version        print the version

Common flags:
  -c, --config   config file path (default: config.yaml)
  -q, --quiet    only show errors
  -v, --verbose  show progress detail

Build flags:
  -o, --out        PDF output path
      --html-out   assembled HTML output path
      --skip-pdf   write HTML and manifest only
  -t, --timeout    PDF rendering timeout (e.g., 30s, 2m)

Run "scriptura <command> --help" for command flags.
`

func printUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}
