// Package report renders collected measurements as a footnoted markdown
// comparison table.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/staticintlucas/soml/binsize/harness"
)

const tableTitle = "Binary size"

// Header cells and the footnotes their placeholders refer to.
var (
	tableHeaders = []string{
		"Crate", "Version", "TOML{1}", "Maintained", "Size{2}", "Overhead{3}",
	}

	tableFootnotes = []string{
		"Latest version of the TOML specification the crate claims to support",
		"Size of the .text section of a release build",
		"Relative to the baseline program, which copies the input file without parsing it",
	}
)

// Write renders the collected entries as the markdown report: the footnoted
// comparison table followed by reference-link definitions for every crate.
func Write(w io.Writer, entries []harness.Entry) error {
	if len(entries) == 0 {
		return fmt.Errorf("no results to report")
	}

	table, err := build(entries)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, table.String()); err != nil {
		return fmt.Errorf("write table: %w", err)
	}

	if links := linkRefs(entries); links != "" {
		if _, err := io.WriteString(w, "\n\n"+links); err != nil {
			return fmt.Errorf("write links: %w", err)
		}
	}

	_, err = io.WriteString(w, "\n")

	return err
}

// WriteJSON writes the collected entries as JSON to w.
func WriteJSON(w io.Writer, entries []harness.Entry) error {
	type row struct {
		Package  string `json:"package,omitempty"`
		Version  string `json:"version,omitempty"`
		TextSize uint64 `json:"text_size"`
	}

	rows := make([]row, len(entries))
	for i, e := range entries {
		rows[i].Version = e.Result.Version
		rows[i].TextSize = e.Result.TextSize

		if e.Desc != nil {
			rows[i].Package = e.Desc.Package
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(rows)
}

// build assembles the comparison table, one row per entry in collection
// order.
func build(entries []harness.Entry) (*Table, error) {
	table, err := NewTable(tableTitle, tableHeaders, tableFootnotes)
	if err != nil {
		return nil, err
	}

	baseline, haveBaseline := baselineSize(entries)

	for _, e := range entries {
		if e.Desc == nil {
			err = table.AddRow([]string{
				"(baseline)", "-", "-", "-", formatSize(e.Result.TextSize), "-",
			}, nil)
		} else {
			err = table.AddRow(crateRow(e, baseline, haveBaseline))
		}

		if err != nil {
			return nil, err
		}
	}

	return table, nil
}

// crateRow renders one measured crate as table cells plus its footnote
// list. The notes field, when present, rides along as a trailing footnote on
// the crate cell.
func crateRow(e harness.Entry, baseline uint64, haveBaseline bool) ([]string, []string) {
	desc := e.Desc

	footnotes := append([]string(nil), desc.Footnotes...)
	if desc.Notes != "" {
		footnotes = append(footnotes, desc.Notes)
	}

	crate := fmt.Sprintf("[%s]", desc.Name)
	for i := range footnotes {
		crate += fmt.Sprintf("{%d}", i+1)
	}

	version := e.Result.Version
	if version == "" {
		version = "-"
	}

	maintained := "no"
	if desc.Maintained {
		maintained = "yes"
	}

	overhead := "-"
	if haveBaseline {
		overhead = formatDelta(e.Result.TextSize, baseline)
	}

	cells := []string{
		crate,
		version,
		desc.TOMLVersion,
		maintained,
		formatSize(e.Result.TextSize),
		overhead,
	}

	return cells, footnotes
}

func baselineSize(entries []harness.Entry) (uint64, bool) {
	for _, e := range entries {
		if e.Desc == nil {
			return e.Result.TextSize, true
		}
	}

	return 0, false
}

// linkRefs renders the reference-link definitions the crate cells point at,
// one "[name]: url" per line.
func linkRefs(entries []harness.Entry) string {
	var lines []string
	for _, e := range entries {
		if e.Desc == nil {
			continue
		}

		lines = append(lines, fmt.Sprintf("[%s]: %s", e.Desc.Name, e.Desc.URL))
	}

	return strings.Join(lines, "\n")
}

func formatSize(b uint64) string {
	return fmt.Sprintf("%.1f KiB", float64(b)/1024)
}

// formatDelta renders the signed size difference from the baseline.
func formatDelta(size, baseline uint64) string {
	if size >= baseline {
		return fmt.Sprintf("+%.1f KiB", float64(size-baseline)/1024)
	}

	return fmt.Sprintf("-%.1f KiB", float64(baseline-size)/1024)
}
