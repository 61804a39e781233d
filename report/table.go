package report

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrShapeMismatch marks tables that cannot be rendered: a row whose arity
// differs from the header, or more distinct footnotes than the marker
// alphabet can name.
var ErrShapeMismatch = errors.New("table shape mismatch")

// markers is the fixed footnote alphabet, in assignment order. The asterisk
// is entity-escaped so markdown does not read it as emphasis.
var markers = []string{"&ast;", "†", "‡", "§", "¶"}

// Table accumulates rows and footnotes and renders them as an aligned
// markdown table. Cells may embed positional placeholders {1}, {2}, ...
// referring to the footnote list passed alongside them; each referenced
// footnote is assigned the next free marker, and rows that cite footnote
// text already assigned one share the existing marker instead.
type Table struct {
	title   string
	headers []string
	rows    [][]string

	order     []string          // markers in assignment order
	footnotes map[string]string // marker -> footnote text
}

// NewTable creates a table with the given title and header cells, resolving
// any {i} placeholders the headers embed against footnotes.
func NewTable(title string, headers, footnotes []string) (*Table, error) {
	t := &Table{
		title:     title,
		footnotes: make(map[string]string),
	}

	resolved, err := t.resolve(headers, footnotes, false)
	if err != nil {
		return nil, err
	}
	t.headers = resolved

	return t, nil
}

// AddRow appends one row, resolving its {i} placeholders against footnotes.
// The row must have exactly as many cells as the header. A failed append
// leaves the table unchanged.
func (t *Table) AddRow(cells, footnotes []string) error {
	if len(cells) != len(t.headers) {
		return fmt.Errorf("%w: row has %d cells, header has %d",
			ErrShapeMismatch, len(cells), len(t.headers))
	}

	resolved, err := t.resolve(cells, footnotes, true)
	if err != nil {
		return err
	}

	t.rows = append(t.rows, resolved)

	return nil
}

// resolve substitutes {i} placeholders in cells with footnote markers,
// minting markers for each referenced footnote. With reuse set, footnote
// text that already has a marker resolves to it instead of a fresh one.
// Markers are committed to the table only after every placeholder resolves,
// so a failure mutates nothing.
func (t *Table) resolve(cells, footnotes []string, reuse bool) ([]string, error) {
	out := append([]string(nil), cells...)

	var staged, stagedText []string

	for idx, text := range footnotes {
		placeholder := fmt.Sprintf("{%d}", idx+1)

		if !containsAny(out, placeholder) {
			continue
		}

		text = strings.TrimRightFunc(text, unicode.IsSpace)

		marker := ""
		if reuse {
			marker = t.markerFor(text, staged, stagedText)
		}

		if marker == "" {
			next := len(t.order) + len(staged)
			if next >= len(markers) {
				return nil, fmt.Errorf("%w: more than %d distinct footnotes",
					ErrShapeMismatch, len(markers))
			}

			marker = markers[next]
			staged = append(staged, marker)
			stagedText = append(stagedText, text)
		}

		for i, cell := range out {
			out[i] = strings.ReplaceAll(cell, placeholder, marker)
		}
	}

	for i, marker := range staged {
		t.order = append(t.order, marker)
		t.footnotes[marker] = stagedText[i]
	}

	return out, nil
}

// markerFor returns the marker already assigned to text, considering both
// committed and staged assignments, or "" if there is none.
func (t *Table) markerFor(text string, staged, stagedText []string) string {
	for _, marker := range t.order {
		if t.footnotes[marker] == text {
			return marker
		}
	}

	for i, st := range stagedText {
		if st == text {
			return staged[i]
		}
	}

	return ""
}

func containsAny(cells []string, substr string) bool {
	for _, cell := range cells {
		if strings.Contains(cell, substr) {
			return true
		}
	}

	return false
}

// String renders the table: title, aligned pipe grid, and the footnote block
// in marker-assignment order.
func (t *Table) String() string {
	widths := make([]int, len(t.headers))
	for col, h := range t.headers {
		widths[col] = utf8.RuneCountInString(h)
	}

	for _, row := range t.rows {
		for col, cell := range row {
			if w := utf8.RuneCountInString(cell); w > widths[col] {
				widths[col] = w
			}
		}
	}

	var b strings.Builder

	fmt.Fprintf(&b, "## %s\n\n", t.title)

	headerCells := make([]string, len(t.headers))
	sepCells := make([]string, len(t.headers))
	for col, h := range t.headers {
		headerCells[col] = center(h, widths[col])
		sepCells[col] = strings.Repeat("-", widths[col])
	}

	b.WriteString("| " + strings.Join(headerCells, " | ") + " |\n")
	b.WriteString("|:" + strings.Join(sepCells, ":|:") + ":|\n")

	for _, row := range t.rows {
		cells := make([]string, len(row))
		for col, cell := range row {
			cells[col] = center(cell, widths[col])
		}

		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	b.WriteString("\n")

	lines := make([]string, len(t.order))
	for i, marker := range t.order {
		lines[i] = fmt.Sprintf("%s *%s*", marker, t.footnotes[marker])
	}
	b.WriteString(strings.Join(lines, " \\\n"))

	return b.String()
}

// center pads s with spaces to width runes. Uneven padding leaves the extra
// space on the right, except in odd-width columns where it shifts left.
// Widths count runes, not bytes, so the multibyte dagger markers do not skew
// alignment.
func center(s string, width int) string {
	gap := width - utf8.RuneCountInString(s)
	if gap <= 0 {
		return s
	}

	left := gap / 2
	if gap%2 == 1 && width%2 == 1 {
		left++
	}

	return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
}
