// Package cli implements the command-line interface for kennzeichen.
//
// The cli package provides the Cobra-based CLI that loads configuration, fetches and
// normalizes the code list, writes the raw data file and optionally prints a summary
// (text/JSON). It coordinates the config, scraper, record and storage packages.
package cli
