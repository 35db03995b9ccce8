package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/pfrederiksen/kennzeichen/internal/record"
)

// OutputFormat specifies the summary format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult is the summary printed after a run or by the show command
type OutputResult struct {
	Path    string          `json:"path"`
	Summary *record.Summary `json:"summary"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs the summary as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs the summary as an aligned table
func writeText(w io.Writer, result *OutputResult) error {
	s := result.Summary

	fmt.Fprintf(w, "%s: %d registration codes (%d geographic, %d special)\n",
		result.Path, s.Total, s.Geographic, s.Special)

	if len(s.ByState) == 0 {
		return nil
	}

	const header = "State"
	width := runewidth.StringWidth(header)
	for _, sc := range s.ByState {
		width = max(width, runewidth.StringWidth(sc.State))
	}

	fmt.Fprintf(w, "\n%s  %5s\n", runewidth.FillRight(header, width), "Codes")
	fmt.Fprintln(w, strings.Repeat("-", width+7))
	for _, sc := range s.ByState {
		fmt.Fprintf(w, "%s  %5d\n", runewidth.FillRight(sc.State, width), sc.Codes)
	}

	return nil
}
