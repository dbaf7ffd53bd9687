// Package cli implements the command-line interface for covid19-scrape.
//
// The cli package provides the Cobra-based CLI that reads a rendered tracker page,
// parses the per-state and per-county statistics, writes one workbook sheet per state,
// and reports a summary (text/JSON) including skipped states and changes since the
// previous run. It coordinates the source, pipeline, workbook and storage packages.
package cli
