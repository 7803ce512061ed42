// Command coversheet runs the intake engines offline: commission
// derivation, record-field projection, cover-sheet rendering, and
// validation of the embedded tables.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
