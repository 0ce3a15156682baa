// Command pagecore renders documents to PNG and dumps their node and box
// trees.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
