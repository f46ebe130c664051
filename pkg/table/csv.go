package table

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tablekit/pkg/errs"
	"tablekit/pkg/logging"
	"tablekit/pkg/types"
)

// csvSeparator joins header names and data cells in exported files.
const csvSeparator = "; "

// SaveCSV writes the table as text. The path must end in ".csv"; an
// existing file is never overwritten; the writer probes path.1, path.2
// and so on until a free name is found, and reports the path actually
// written. With onlyVisible set, suppressed columns stay out of the file;
// otherwise they are exported through their type's default directive.
func (t *Table) SaveCSV(path string, onlyVisible bool) (string, error) {
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return "", errs.Newf(errs.KindIO, "BAD_EXTENSION",
			"%s does not end in .csv", path)
	}

	target, err := freePath(path)
	if err != nil {
		return "", err
	}

	var (
		names   []string
		idx     []int
		formats []string
	)
	for i, name := range t.names {
		format := t.formats[i]
		if format == types.FormatSuppress {
			if onlyVisible {
				continue
			}
			format = types.DefaultFormat(t.types[i])
		}
		names = append(names, name)
		idx = append(idx, i)
		formats = append(formats, format)
	}

	var b strings.Builder
	b.WriteString(strings.Join(names, csvSeparator))
	b.WriteByte('\n')
	cells := make([]string, len(idx))
	for _, row := range t.rows {
		for k, i := range idx {
			cells[k] = types.FormatCell(formats[k], row[i])
		}
		b.WriteString(strings.Join(cells, csvSeparator))
		b.WriteByte('\n')
	}

	if err := os.WriteFile(target, []byte(b.String()), 0o644); err != nil {
		return "", errs.Wrap(err, errs.KindIO, "WRITE_FAILED", "Table.SaveCSV")
	}
	logging.WithPath(target).Info("table exported", "rows", len(t.rows), "columns", len(idx))
	return target, nil
}

// freePath returns path itself if unused, else the first unused
// path.<n> variant.
func freePath(path string) (string, error) {
	candidate := path
	for i := 1; ; i++ {
		_, err := os.Stat(candidate)
		if os.IsNotExist(err) {
			return candidate, nil
		}
		if err != nil {
			return "", errs.Wrap(err, errs.KindIO, "STAT_FAILED", "Table.SaveCSV")
		}
		candidate = fmt.Sprintf("%s.%d", path, i)
	}
}
