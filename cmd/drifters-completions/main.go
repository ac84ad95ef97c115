package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/drifters/cmd/drifters"
)

// Writes the completion script for one shell to stdout, or with -d <dir>
// one file per supported shell into dir, named the way shell packages
// expect them.
func main() {
	switch {
	case len(os.Args) == 3 && os.Args[1] == "-d":
		if err := writeAll(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Error generating completions: %v\n", err)
			os.Exit(1)
		}
	case len(os.Args) == 2:
		if err := drifters.GenCompletion(drifters.NewRootCmd(), os.Stdout, os.Args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Error generating %s completion: %v\n", os.Args[1], err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Usage: %s <bash|zsh|fish|powershell>\n       %s -d <dir>\n", os.Args[0], os.Args[0])
		os.Exit(1)
	}
}

func writeAll(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	root := drifters.NewRootCmd()
	for _, shell := range drifters.CompletionShells {
		path := filepath.Join(dir, drifters.CompletionFile(shell))
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		err = drifters.GenCompletion(root, f, shell)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("%s: %w", shell, err)
		}
	}
	return nil
}
