package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tablekit/pkg/table"
	"tablekit/pkg/types"
)

// Options controls styled table rendering.
type Options struct {
	MaxRows      int // 0 renders every row
	MaxCellWidth int // 0 disables truncation
	HideTitle    bool
}

// DefaultOptions suit interactive terminal output.
var DefaultOptions = Options{MaxCellWidth: 40}

// Table renders the visible columns of t as a styled terminal table:
// title, header row, type row, a rule, data rows and a row-count footer.
// Suppressed columns are skipped, null cells render dimmed.
func Table(t *table.Table, opts Options) string {
	names := t.ColNames()
	colTypes := t.ColTypes()
	formats := t.ColFormats()

	var idx []int
	for i, format := range formats {
		if format != types.FormatSuppress {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return footerStyle.Render(fmt.Sprintf("%d rows, no visible columns", t.Len()))
	}

	limit := t.Len()
	truncated := false
	if opts.MaxRows > 0 && limit > opts.MaxRows {
		limit = opts.MaxRows
		truncated = true
	}

	cells := make([][]string, limit)
	nulls := make([][]bool, limit)
	for r := 0; r < limit; r++ {
		row, err := t.Row(r)
		if err != nil {
			return ""
		}
		cells[r] = make([]string, len(idx))
		nulls[r] = make([]bool, len(idx))
		for k, i := range idx {
			s := types.FormatCell(formats[i], row[i])
			if s == "" {
				s = "-"
			}
			if opts.MaxCellWidth > 0 {
				s = truncateString(s, opts.MaxCellWidth)
			}
			cells[r][k] = s
			nulls[r][k] = row[i] == nil
		}
	}

	widths := make([]int, len(idx))
	for k, i := range idx {
		widths[k] = max(len(names[i]), len(colTypes[i].Name()))
		for r := range cells {
			if n := len(cells[r][k]); n > widths[k] {
				widths[k] = n
			}
		}
	}

	var b strings.Builder
	if t.Title() != "" && !opts.HideTitle {
		b.WriteString(titleStyle.Render(t.Title()) + "\n")
	}
	b.WriteString(styledRow(headerStyle, pick(names, idx), widths) + "\n")
	typeNames := make([]string, len(idx))
	for k, i := range idx {
		typeNames[k] = colTypes[i].Name()
	}
	b.WriteString(styledRow(typeRowStyle, typeNames, widths) + "\n")
	b.WriteString(rule(widths) + "\n")
	for r := range cells {
		parts := make([]string, len(idx))
		for k := range idx {
			style := cellStyle
			if nulls[r][k] {
				style = nullStyle
			}
			parts[k] = style.Render(padString(cells[r][k], widths[k]))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, parts...) + "\n")
	}

	footer := fmt.Sprintf("%d rows", t.Len())
	if truncated {
		footer = fmt.Sprintf("%d of %d rows", limit, t.Len())
	}
	b.WriteString(footerStyle.Render(footer))
	return b.String()
}

// InfoPanel renders a bordered summary of a table: title, dimensions,
// metadata and the per-column schema.
func InfoPanel(t *table.Table) string {
	var lines []string
	entry := func(label, value string) {
		lines = append(lines, labelStyle.Render(padString(label, 10))+valueStyle.Render(value))
	}

	title := t.Title()
	if title == "" {
		title = "(untitled)"
	}
	entry("title", title)
	entry("rows", fmt.Sprintf("%d", t.Len()))
	entry("columns", fmt.Sprintf("%d", t.NumCols()))

	meta := t.Meta()
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		entry("meta."+k, fmt.Sprintf("%v", meta[k]))
	}

	lines = append(lines, "")
	names := t.ColNames()
	colTypes := t.ColTypes()
	formats := t.ColFormats()
	for i, name := range names {
		desc := colTypes[i].Name()
		if formats[i] == types.FormatSuppress {
			desc += ", hidden"
		} else {
			desc += ", " + formats[i]
		}
		entry(name, desc)
	}

	return panelStyle.Render(strings.Join(lines, "\n"))
}

func styledRow(style lipgloss.Style, cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for k, cell := range cells {
		parts[k] = style.Render(padString(cell, widths[k]))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func rule(widths []int) string {
	parts := make([]string, len(widths))
	for k, w := range widths {
		parts[k] = strings.Repeat("─", w+2)
	}
	return ruleStyle.Render(strings.Join(parts, "┼"))
}

func pick(values []string, idx []int) []string {
	out := make([]string, len(idx))
	for k, i := range idx {
		out[k] = values[i]
	}
	return out
}
