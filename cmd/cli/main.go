package main

import (
	"errors"
	"os"
)

// Exit codes. A reached --fail-on threshold is distinct from a failed run so CI can tell them apart.
const (
	exitError     = 1
	exitThreshold = 2
)

func main() {
	err := rootCmd.Execute()
	switch {
	case err == nil:
	case errors.Is(err, errSeverityThreshold):
		warnColor.Fprintln(os.Stderr, err)
		os.Exit(exitThreshold)
	default:
		errorColor.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitError)
	}
}
