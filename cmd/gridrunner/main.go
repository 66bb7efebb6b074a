// Package main provides gridrunner, the command-line front end for resolving
// browser session capabilities and reporting test verdicts to Sauce Labs.
package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
