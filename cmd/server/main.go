// Package main implements the xtlz command: the HTTP server for the English
// vocabulary and grammar trainer plus maintenance subcommands for
// migrations, exports and imports.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
