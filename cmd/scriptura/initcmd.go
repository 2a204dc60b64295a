package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/scriptura/scriptura/internal/assets"
	"github.com/scriptura/scriptura/internal/fileutil"
)

// runInit creates a new report scaffold directory.
func runInit(args []string) int {
	f, err := parseInitFlags(args)
	if err != nil {
		return exitUsage
	}

	if _, err := os.Stat(f.name); err == nil {
		if !f.force {
			fmt.Fprintf(os.Stderr, "%q already exists; use --force to replace it\n", f.name)
			return exitFailure
		}
		if err := os.RemoveAll(f.name); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitFailure
		}
	}

	if err := writeScaffold(f.name); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}

	fmt.Printf("✓ Scaffold created at ./%s\n", f.name)
	return exitOK
}

// writeScaffold materializes the embedded scaffold under target.
func writeScaffold(target string) error {
	files, err := assets.ScaffoldFiles()
	if err != nil {
		return err
	}

	for _, file := range files {
		path := filepath.Join(target, file.Path)
		// The embedder cannot carry dotfiles; "gitignore" lands as ".gitignore".
		if filepath.Base(path) == "gitignore" {
			path = filepath.Join(filepath.Dir(path), ".gitignore")
		}
		if err := fileutil.WriteFile(path, file.Content); err != nil {
			return err
		}
	}

	// Empty directories the build expects.
	for _, dir := range []string{"images", "build"} {
		if err := os.MkdirAll(filepath.Join(target, dir), 0o750); err != nil {
			return err
		}
	}
	return nil
}
