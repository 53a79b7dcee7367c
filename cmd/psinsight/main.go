// Package main provides the entry point for the psinsight CLI.
//
// psinsight fetches website performance data from the Google PageSpeed
// Insights API and renders human-readable reports for desktop and mobile.
//
// Usage:
//
//	psinsight analyze https://example.com
//	psinsight analyze --json https://example.com https://example.org
//
// See --help for all available options.
package main

import "github.com/joho/godotenv"

// main is the entry point for psinsight.
func main() {
	// Load PAGESPEED_API_KEY and friends from a local .env file when present.
	// A missing file is not an error.
	_ = godotenv.Load() //nolint:errcheck // .env is optional

	Execute()
}
