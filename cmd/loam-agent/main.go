// Command loam-agent is the command-line interface for the Loam platform:
// login, dataset inspection, and resumable chunked uploads.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
