// Package table implements the columnar in-memory table: typed columns
// with display formats, row-major storage, structural edits, sorting,
// filtering, grouping, aggregation and joins driven by the expr algebra.
package table

import (
	"fmt"
	"sort"
	"strings"

	"tablekit/pkg/errs"
	"tablekit/pkg/expr"
	"tablekit/pkg/types"
	"tablekit/pkg/utils/functools"
)

// AutoFormat asks the engine to derive the display directive from the
// column's (possibly inferred) type. types.FormatSuppress hides the column
// from textual rendering instead.
const AutoFormat = "%auto"

// Table is ordered typed columns over row-major storage. All mutating
// operations validate their preconditions before touching any state, so a
// failed call leaves the table unchanged.
//
// A Table is not safe for concurrent mutation; callers in concurrent hosts
// must provide their own exclusion.
type Table struct {
	names   []string
	types   []types.Type
	formats []string
	rows    [][]any
	title   string
	meta    map[string]any

	colIndex map[string]int
	sortedBy int
}

// New builds a table from parallel schema slices and row data. Rows are
// converted cell by cell to the declared column types; formats may be nil
// for all-default directives.
func New(names []string, colTypes []types.Type, formats []string, rows [][]any, title string, meta map[string]any) (*Table, error) {
	if len(names) != len(colTypes) {
		return nil, errs.Newf(errs.KindSchema, "ARITY_MISMATCH",
			"%d column names but %d types", len(names), len(colTypes))
	}
	if formats == nil {
		formats = make([]string, len(names))
		for i := range formats {
			formats[i] = AutoFormat
		}
	}
	if len(formats) != len(names) {
		return nil, errs.Newf(errs.KindSchema, "ARITY_MISMATCH",
			"%d column names but %d formats", len(names), len(formats))
	}
	if err := validateNames(names); err != nil {
		return nil, err
	}

	t := &Table{
		names:    append([]string(nil), names...),
		types:    append([]types.Type(nil), colTypes...),
		formats:  make([]string, len(formats)),
		title:    title,
		meta:     copyMeta(meta),
		sortedBy: -1,
	}
	for i, f := range formats {
		if f == AutoFormat {
			f = types.DefaultFormat(colTypes[i])
		}
		t.formats[i] = f
	}
	t.rebuildIndex()

	t.rows = make([][]any, 0, len(rows))
	for _, row := range rows {
		if err := t.AddRow(row); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// MustNew is New for statically known-good schemas.
func MustNew(names []string, colTypes []types.Type, formats []string, rows [][]any, title string, meta map[string]any) *Table {
	t, err := New(names, colTypes, formats, rows, title, meta)
	if err != nil {
		panic(err)
	}
	return t
}

// FromSlice builds a one-column table, inferring the column type from the
// values.
func FromSlice(name string, values []any, title string) (*Table, error) {
	canonical, err := functools.MapWithError(values, func(v any) (any, error) {
		return types.Convert(v, types.AutoType)
	})
	if err != nil {
		return nil, err
	}
	colType := types.CommonTypeFor(canonical)
	rows := functools.Map(canonical, func(v any) []any { return []any{v} })
	return New([]string{name}, []types.Type{colType}, nil, rows, title, nil)
}

func validateNames(names []string) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" {
			return errs.New(errs.KindSchema, "INVALID_NAME", "empty column name")
		}
		if seen[name] {
			return errs.Newf(errs.KindSchema, "DUPLICATE_COLUMN",
				"column %q appears twice", name)
		}
		seen[name] = true
		if _, err := postfixValue(name); err != nil {
			return err
		}
	}
	return nil
}

func copyMeta(meta map[string]any) map[string]any {
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}

func (t *Table) rebuildIndex() {
	t.colIndex = make(map[string]int, len(t.names))
	for i, name := range t.names {
		t.colIndex[name] = i
	}
}

// Len is the row count.
func (t *Table) Len() int { return len(t.rows) }

// NumCols is the column count.
func (t *Table) NumCols() int { return len(t.names) }

// ColNames returns a copy of the column names in order.
func (t *Table) ColNames() []string { return append([]string(nil), t.names...) }

// ColTypes returns a copy of the column types in order.
func (t *Table) ColTypes() []types.Type { return append([]types.Type(nil), t.types...) }

// ColFormats returns a copy of the column display directives in order.
func (t *Table) ColFormats() []string { return append([]string(nil), t.formats...) }

// VisibleColNames returns the names of the columns that take part in
// textual rendering.
func (t *Table) VisibleColNames() []string {
	out := make([]string, 0, len(t.names))
	for i, name := range t.names {
		if t.formats[i] != types.FormatSuppress {
			out = append(out, name)
		}
	}
	return out
}

func (t *Table) Title() string         { return t.title }
func (t *Table) SetTitle(title string) { t.title = title }

// Meta is the table's free-form annotation map. The map itself is live;
// values are shared.
func (t *Table) Meta() map[string]any { return t.meta }

func (t *Table) HasColumn(name string) bool {
	_, ok := t.colIndex[name]
	return ok
}

func (t *Table) HasColumns(names ...string) bool {
	for _, name := range names {
		if !t.HasColumn(name) {
			return false
		}
	}
	return true
}

// RequireColumn errors unless the named column exists.
func (t *Table) RequireColumn(name string) error {
	if !t.HasColumn(name) {
		return errs.Newf(errs.KindSchema, "UNKNOWN_COLUMN",
			"table %q has no column %q", t.title, name)
	}
	return nil
}

// ColIndex reports the position of a column, -1 when absent.
func (t *Table) ColIndex(name string) int {
	idx, ok := t.colIndex[name]
	if !ok {
		return -1
	}
	return idx
}

// Col returns an expression handle on the named column. Existence is
// checked at evaluation time, matching the lazy algebra.
func (t *Table) Col(name string) *expr.Column {
	return expr.NewColumn(t, name)
}

// ColumnValues materializes one column as a fresh slice.
func (t *Table) ColumnValues(name string) ([]any, error) {
	if err := t.RequireColumn(name); err != nil {
		return nil, err
	}
	return t.columnValues(t.colIndex[name]), nil
}

func (t *Table) columnValues(idx int) []any {
	out := make([]any, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[idx]
	}
	return out
}

// Get reads one cell.
func (t *Table) Get(row int, name string) (any, error) {
	if err := t.RequireColumn(name); err != nil {
		return nil, err
	}
	if row < 0 || row >= len(t.rows) {
		return nil, errs.Newf(errs.KindSchema, "ROW_OUT_OF_RANGE",
			"row %d out of %d", row, len(t.rows))
	}
	return t.rows[row][t.colIndex[name]], nil
}

// Set writes one cell, converting to the column type. Writing to the
// primary-index column drops the index.
func (t *Table) Set(row int, name string, v any) error {
	if err := t.RequireColumn(name); err != nil {
		return err
	}
	if row < 0 || row >= len(t.rows) {
		return errs.Newf(errs.KindSchema, "ROW_OUT_OF_RANGE",
			"row %d out of %d", row, len(t.rows))
	}
	idx := t.colIndex[name]
	cell, err := types.Convert(v, t.types[idx])
	if err != nil {
		return err
	}
	t.rows[row][idx] = cell
	if t.sortedBy == idx {
		t.sortedBy = -1
	}
	return nil
}

// AddRow appends one row, converting each cell to its column type.
func (t *Table) AddRow(cells []any) error {
	if len(cells) != len(t.names) {
		return errs.Newf(errs.KindSchema, "ARITY_MISMATCH",
			"row has %d cells, table has %d columns", len(cells), len(t.names))
	}
	row := make([]any, len(cells))
	for i, v := range cells {
		cell, err := types.Convert(v, t.types[i])
		if err != nil {
			return errs.Wrap(err, errs.KindType, "BAD_CELL", "Table.AddRow").
				WithDetail("column %q", t.names[i])
		}
		row[i] = cell
	}
	t.rows = append(t.rows, row)
	t.sortedBy = -1
	return nil
}

// Row returns a copy of one row.
func (t *Table) Row(i int) ([]any, error) {
	if i < 0 || i >= len(t.rows) {
		return nil, errs.Newf(errs.KindSchema, "ROW_OUT_OF_RANGE",
			"row %d out of %d", i, len(t.rows))
	}
	return append([]any(nil), t.rows[i]...), nil
}

// EmptyClone copies the schema, title and meta with no rows.
func (t *Table) EmptyClone() *Table {
	clone := &Table{
		names:    append([]string(nil), t.names...),
		types:    append([]types.Type(nil), t.types...),
		formats:  append([]string(nil), t.formats...),
		rows:     [][]any{},
		title:    t.title,
		meta:     copyMeta(t.meta),
		sortedBy: -1,
	}
	clone.rebuildIndex()
	return clone
}

// Copy builds an independent table: fresh row storage, shared opaque cell
// identities.
func (t *Table) Copy() *Table {
	clone := t.EmptyClone()
	clone.rows = make([][]any, len(t.rows))
	for i, row := range t.rows {
		clone.rows[i] = append([]any(nil), row...)
	}
	clone.sortedBy = t.sortedBy
	return clone
}

// Slice copies the rows in [i, j).
func (t *Table) Slice(i, j int) (*Table, error) {
	if i < 0 || j > len(t.rows) || i > j {
		return nil, errs.Newf(errs.KindSchema, "ROW_OUT_OF_RANGE",
			"slice [%d, %d) out of %d rows", i, j, len(t.rows))
	}
	out := t.EmptyClone()
	out.rows = make([][]any, 0, j-i)
	for _, row := range t.rows[i:j] {
		out.rows = append(out.rows, append([]any(nil), row...))
	}
	out.sortedBy = t.sortedBy
	return out, nil
}

// Append appends the rows of other tables in place. Column names and types
// must match exactly; formats stay the receiver's.
func (t *Table) Append(others ...*Table) error {
	for _, o := range others {
		if !equalStrings(t.names, o.names) {
			return errs.New(errs.KindSchema, "SCHEMA_MISMATCH", "column names do not match")
		}
		if !equalTypes(t.types, o.types) {
			return errs.New(errs.KindType, "SCHEMA_MISMATCH", "column types do not match")
		}
	}
	for _, o := range others {
		for _, row := range o.rows {
			t.rows = append(t.rows, append([]any(nil), row...))
		}
	}
	t.sortedBy = -1
	return nil
}

// UniqueRows copies the table keeping the first occurrence of every
// distinct row, hidden columns included.
func (t *Table) UniqueRows() *Table {
	out := t.EmptyClone()
	seen := make(map[string]bool, len(t.rows))
	for _, row := range t.rows {
		key := types.ComputeRowKey(row)
		if seen[key] {
			continue
		}
		seen[key] = true
		out.rows = append(out.rows, append([]any(nil), row...))
	}
	out.sortedBy = t.sortedBy
	return out
}

// Info summarizes the table: title, row count, meta and per-column
// distinct/null statistics.
func (t *Table) Info() string {
	var b strings.Builder
	fmt.Fprintf(&b, "table %q: %d rows, %d columns\n", t.title, len(t.rows), len(t.names))
	if len(t.meta) > 0 {
		keys := make([]string, 0, len(t.meta))
		for k := range t.meta {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "meta %s=%v\n", k, t.meta[k])
		}
	}
	for i, name := range t.names {
		nulls := 0
		distinct := make(map[string]bool)
		for _, row := range t.rows {
			if row[i] == nil {
				nulls++
				continue
			}
			distinct[types.ComputeKey(row[i])] = true
		}
		fmt.Fprintf(&b, "#%-2d %-20s %-12s fmt=%-6q %d distinct, %d null\n",
			i, name, t.types[i].Name(), t.formats[i], len(distinct), nulls)
	}
	return b.String()
}

// bindInto attaches this table's bindings for the referenced columns,
// erroring up front on unknown names.
func (t *Table) bindInto(ctx *expr.Context, refs []expr.Ref) error {
	cols := make(map[string]expr.ColumnData)
	for _, ref := range refs {
		if ref.Source != any(t) {
			continue
		}
		idx, ok := t.colIndex[ref.Name]
		if !ok {
			return errs.Newf(errs.KindEval, "UNKNOWN_COLUMN",
				"expression references column %q absent from table %q", ref.Name, t.title)
		}
		cols[ref.Name] = expr.ColumnData{
			Values: t.columnValues(idx),
			Sorted: t.sortedBy == idx,
			Type:   t.types[idx],
		}
	}
	ctx.Bind(t, cols)
	return nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalTypes(a, b []types.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
