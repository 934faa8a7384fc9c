// Command formlayout converts, validates, inspects and edits form layout
// documents.
package main

import (
	"os"
)

func main() {
	cmd := newRootCommand(newApp(os.Stdout, os.Stderr))
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
