package table

import (
	"tablekit/pkg/errs"
	"tablekit/pkg/expr"
	"tablekit/pkg/types"
)

// appendPos is the insert position meaning "after the last column".
const appendPos = -1 << 31

// AddColumn appends a column from materialized values. typ may be
// types.AutoType to infer the common type of the values; format may be
// AutoFormat to derive it from the resulting type.
func (t *Table) AddColumn(name string, values []any, typ types.Type, format string) error {
	return t.insertColumn(appendPos, name, values, typ, format)
}

// InsertColumnBefore is AddColumn at a position given by an existing
// column's name or an integer index (negative values count from the end).
func (t *Table) InsertColumnBefore(before any, name string, values []any, typ types.Type, format string) error {
	pos, err := t.resolvePos(before)
	if err != nil {
		return err
	}
	return t.insertColumn(pos, name, values, typ, format)
}

// AddColumnFunc appends a column computed per row. The callback receives
// the row slice and must not mutate it.
func (t *Table) AddColumnFunc(name string, fn func(row []any) any, typ types.Type, format string) error {
	values := make([]any, len(t.rows))
	for i, row := range t.rows {
		values[i] = fn(row)
	}
	return t.insertColumn(appendPos, name, values, typ, format)
}

// AddColumnExpr appends a column computed by evaluating an expression
// against this table. A scalar result is broadcast over all rows.
func (t *Table) AddColumnExpr(name string, node expr.Node, typ types.Type, format string) error {
	values, err := t.evalToColumn(node)
	if err != nil {
		return err
	}
	return t.insertColumn(appendPos, name, values, typ, format)
}

// AddConstantColumn appends a column holding the same value in every row.
func (t *Table) AddConstantColumn(name string, v any, typ types.Type, format string) error {
	values := make([]any, len(t.rows))
	for i := range values {
		values[i] = v
	}
	return t.insertColumn(appendPos, name, values, typ, format)
}

// AddEnumeration prepends an integer column numbering the rows from zero
// in current order. An empty name defaults to "id".
func (t *Table) AddEnumeration(name string) error {
	if name == "" {
		name = "id"
	}
	values := make([]any, len(t.rows))
	for i := range values {
		values[i] = int64(i)
	}
	return t.insertColumn(0, name, values, types.IntType, AutoFormat)
}

func (t *Table) resolvePos(before any) (int, error) {
	switch x := before.(type) {
	case string:
		if err := t.RequireColumn(x); err != nil {
			return 0, err
		}
		return t.colIndex[x], nil
	case int:
		pos := x
		if pos < 0 {
			pos += len(t.names)
		}
		if pos < 0 || pos > len(t.names) {
			return 0, errs.Newf(errs.KindSchema, "BAD_POSITION",
				"insert position %v out of %d columns", before, len(t.names))
		}
		return pos, nil
	}
	return 0, errs.Newf(errs.KindSchema, "BAD_POSITION",
		"insert position must be a column name or an index, got %T", before)
}

func (t *Table) insertColumn(pos int, name string, values []any, typ types.Type, format string) error {
	if t.HasColumn(name) {
		return errs.Newf(errs.KindSchema, "DUPLICATE_COLUMN",
			"column %q already exists", name)
	}
	if err := validateNames(append(t.ColNames(), name)); err != nil {
		return err
	}
	if len(values) != len(t.rows) {
		return errs.Newf(errs.KindSchema, "ARITY_MISMATCH",
			"%d values for %d rows", len(values), len(t.rows))
	}
	cells, typ, err := convertColumn(name, values, typ)
	if err != nil {
		return err
	}
	if format == AutoFormat {
		format = types.DefaultFormat(typ)
	}

	if pos == appendPos {
		pos = len(t.names)
	}
	t.names = insertAt(t.names, pos, name)
	t.types = insertAt(t.types, pos, typ)
	t.formats = insertAt(t.formats, pos, format)
	for i, row := range t.rows {
		t.rows[i] = insertAt(row, pos, cells[i])
	}
	if t.sortedBy >= pos {
		t.sortedBy++
	}
	t.rebuildIndex()
	return nil
}

// convertColumn coerces values to typ, inferring the common type first
// when typ is AutoType.
func convertColumn(name string, values []any, typ types.Type) ([]any, types.Type, error) {
	if typ == types.AutoType {
		canonical := make([]any, len(values))
		for i, v := range values {
			c, err := types.Convert(v, types.AutoType)
			if err != nil {
				return nil, 0, err
			}
			canonical[i] = c
		}
		return canonical, types.CommonTypeFor(canonical), nil
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cell, err := types.Convert(v, typ)
		if err != nil {
			return nil, 0, errs.Wrap(err, errs.KindType, "BAD_CELL", "Table.AddColumn").
				WithDetail("column %q row %d", name, i)
		}
		cells[i] = cell
	}
	return cells, typ, nil
}

func insertAt[T any](s []T, pos int, v T) []T {
	s = append(s, v)
	copy(s[pos+1:], s[pos:])
	s[pos] = v
	return s
}

// ReplaceColumn swaps a column's values, type and format in place.
func (t *Table) ReplaceColumn(name string, values []any, typ types.Type, format string) error {
	if err := t.RequireColumn(name); err != nil {
		return err
	}
	if len(values) != len(t.rows) {
		return errs.Newf(errs.KindSchema, "ARITY_MISMATCH",
			"%d values for %d rows", len(values), len(t.rows))
	}
	cells, typ, err := convertColumn(name, values, typ)
	if err != nil {
		return err
	}
	if format == AutoFormat {
		format = types.DefaultFormat(typ)
	}
	idx := t.colIndex[name]
	t.types[idx] = typ
	t.formats[idx] = format
	for i, row := range t.rows {
		row[idx] = cells[i]
	}
	if t.sortedBy == idx {
		t.sortedBy = -1
	}
	return nil
}

// UpdateColumn recomputes a column's cells from an expression, keeping its
// declared type and format.
func (t *Table) UpdateColumn(name string, node expr.Node) error {
	if err := t.RequireColumn(name); err != nil {
		return err
	}
	values, err := t.evalToColumn(node)
	if err != nil {
		return err
	}
	idx := t.colIndex[name]
	cells, _, err := convertColumn(name, values, t.types[idx])
	if err != nil {
		return err
	}
	for i, row := range t.rows {
		row[idx] = cells[i]
	}
	if t.sortedBy == idx {
		t.sortedBy = -1
	}
	return nil
}

// evalToColumn evaluates a node against this table and stretches a scalar
// result over the row count.
func (t *Table) evalToColumn(node expr.Node) ([]any, error) {
	ctx := expr.NewContext()
	if err := t.bindInto(ctx, node.Needed()); err != nil {
		return nil, err
	}
	res, err := node.Eval(ctx)
	if err != nil {
		return nil, err
	}
	if res.Scalar && len(res.Values) == 1 {
		out := make([]any, len(t.rows))
		for i := range out {
			out[i] = res.Values[0]
		}
		return out, nil
	}
	if len(res.Values) != len(t.rows) {
		return nil, errs.Newf(errs.KindEval, "SIZE_MISMATCH",
			"expression produced %d values for %d rows", len(res.Values), len(t.rows))
	}
	return res.Values, nil
}

// DropColumns removes the named columns in place. Either every name
// exists and all are removed, or nothing changes.
func (t *Table) DropColumns(names ...string) error {
	drop := make(map[int]bool, len(names))
	for _, name := range names {
		if err := t.RequireColumn(name); err != nil {
			return err
		}
		drop[t.colIndex[name]] = true
	}

	var (
		newNames   []string
		newTypes   []types.Type
		newFormats []string
	)
	sortedIdx := -1
	for i := range t.names {
		if drop[i] {
			continue
		}
		if t.sortedBy == i {
			sortedIdx = len(newNames)
		}
		newNames = append(newNames, t.names[i])
		newTypes = append(newTypes, t.types[i])
		newFormats = append(newFormats, t.formats[i])
	}
	for r, row := range t.rows {
		newRow := make([]any, 0, len(newNames))
		for i, cell := range row {
			if !drop[i] {
				newRow = append(newRow, cell)
			}
		}
		t.rows[r] = newRow
	}
	t.names, t.types, t.formats = newNames, newTypes, newFormats
	t.sortedBy = sortedIdx
	t.rebuildIndex()
	return nil
}

// RenameColumns renames columns in place per the old-to-new mapping.
// Missing old names, duplicate targets and collisions with untouched
// columns are all rejected before any mutation.
func (t *Table) RenameColumns(mapping map[string]string) error {
	for old := range mapping {
		if err := t.RequireColumn(old); err != nil {
			return err
		}
	}
	newNames := make([]string, len(t.names))
	for i, name := range t.names {
		if renamed, ok := mapping[name]; ok {
			newNames[i] = renamed
		} else {
			newNames[i] = name
		}
	}
	if err := validateNames(newNames); err != nil {
		return errs.Wrap(err, errs.KindSchema, "RENAME_COLLISION", "Table.RenameColumns")
	}
	t.names = newNames
	t.rebuildIndex()
	return nil
}

// ExtractColumns copies the named columns, in the given order, into a new
// table.
func (t *Table) ExtractColumns(names ...string) (*Table, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		if err := t.RequireColumn(name); err != nil {
			return nil, err
		}
		idx[i] = t.colIndex[name]
	}
	if err := validateNames(names); err != nil {
		return nil, errs.Wrap(err, errs.KindSchema, "DUPLICATE_COLUMN", "Table.ExtractColumns")
	}
	out := &Table{
		title:    t.title,
		meta:     copyMeta(t.meta),
		sortedBy: -1,
	}
	for _, j := range idx {
		out.names = append(out.names, t.names[j])
		out.types = append(out.types, t.types[j])
		out.formats = append(out.formats, t.formats[j])
	}
	out.rebuildIndex()
	out.rows = make([][]any, len(t.rows))
	for r, row := range t.rows {
		newRow := make([]any, len(idx))
		for i, j := range idx {
			newRow[i] = row[j]
		}
		out.rows[r] = newRow
	}
	return out, nil
}
