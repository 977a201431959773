// Package main provides the entry point for the sourcedrift CLI.
//
// sourcedrift verifies the GitHub repositories referenced by a Markdown
// tutorial corpus: it extracts repository links, resolves known renames to
// canonical identities, fetches live metadata, and reports which references
// are verified, redirected, or broken.
//
// Usage:
//
//	sourcedrift verify <corpus-dir>
//	sourcedrift signals
//	sourcedrift drift
//
// See --help for all available options.
package main

// main is the entry point for sourcedrift.
func main() {
	Execute()
}
