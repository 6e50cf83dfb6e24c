// Command annotate embeds, reads and checks type annotations in
// WebAssembly module binaries.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
