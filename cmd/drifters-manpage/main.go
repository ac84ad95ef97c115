package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/drifters/cmd/drifters"
	"github.com/arthur-debert/drifters/internal/version"
)

// Writes drifters.1 to stdout, or one page per command into the directory
// given as the first argument.
func main() {
	rootCmd := drifters.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "DRIFTERS",
		Section: "1",
		Source:  "drifters " + version.Version,
		Manual:  "drifters manual",
	}

	var err error
	if len(os.Args) > 1 {
		err = doc.GenManTree(rootCmd, header, os.Args[1])
	} else {
		err = doc.GenMan(rootCmd, header, os.Stdout)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
