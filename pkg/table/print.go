package table

import (
	"fmt"
	"io"
	"strings"

	"tablekit/pkg/types"
)

// minColWidth keeps narrow columns readable in plain text output.
const minColWidth = 8

// Print renders the visible columns as fixed-width text: name row, type
// row, a rule, then formatted cells with "-" for null.
func (t *Table) Print(w io.Writer) error {
	var idx []int
	for i, format := range t.formats {
		if format != types.FormatSuppress {
			idx = append(idx, i)
		}
	}

	widths := make([]int, len(idx))
	rendered := make([][]string, len(t.rows))
	for r, row := range t.rows {
		cells := make([]string, len(idx))
		for k, i := range idx {
			cells[k] = types.FormatCell(t.formats[i], row[i])
			if cells[k] == "" {
				cells[k] = "-"
			}
		}
		rendered[r] = cells
	}
	for k, i := range idx {
		widths[k] = max(minColWidth, len(t.names[i]), len(t.types[i].Name()))
		for r := range rendered {
			if n := len(rendered[r][k]); n > widths[k] {
				widths[k] = n
			}
		}
	}

	writeRow := func(cells []string) error {
		parts := make([]string, len(cells))
		for k, cell := range cells {
			parts[k] = fmt.Sprintf("%-*s", widths[k], cell)
		}
		_, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, " "), " "))
		return err
	}

	if t.title != "" {
		if _, err := fmt.Fprintln(w, t.title); err != nil {
			return err
		}
	}
	names := make([]string, len(idx))
	typeNames := make([]string, len(idx))
	rules := make([]string, len(idx))
	for k, i := range idx {
		names[k] = t.names[i]
		typeNames[k] = t.types[i].Name()
		rules[k] = strings.Repeat("-", 6)
	}
	if err := writeRow(names); err != nil {
		return err
	}
	if err := writeRow(typeNames); err != nil {
		return err
	}
	if err := writeRow(rules); err != nil {
		return err
	}
	for _, cells := range rendered {
		if err := writeRow(cells); err != nil {
			return err
		}
	}
	return nil
}

// String renders the table as Print does.
func (t *Table) String() string {
	var b strings.Builder
	_ = t.Print(&b)
	return b.String()
}
