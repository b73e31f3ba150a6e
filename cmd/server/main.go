// Package main is the entry point of the Fluent progress API. It serves the
// learner API, runs database migrations and mints development tokens.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
