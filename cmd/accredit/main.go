// Command accredit scores fixture files of extracted evidence without a
// database or blob store, and runs trend and forecast analytics over them.
package main

import (
	"fmt"
	"os"
)

func main() {
	root := newRootCmd(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "accredit: %v\n", err)
		os.Exit(1)
	}
}
