package table

import (
	"sort"

	"tablekit/pkg/errs"
	"tablekit/pkg/expr"
	"tablekit/pkg/types"
)

// SortBy stably sorts the rows by the named column's natural order, nulls
// first, and returns the applied permutation. An ascending sort makes the
// column the primary index for fast-path comparisons; a descending sort,
// like every other row mutation, leaves the table without one.
func (t *Table) SortBy(name string, ascending bool) ([]int, error) {
	if err := t.RequireColumn(name); err != nil {
		return nil, err
	}
	idx := t.colIndex[name]

	perm := make([]int, len(t.rows))
	for i := range perm {
		perm[i] = i
	}
	var cmpErr error
	sort.SliceStable(perm, func(a, b int) bool {
		c, err := types.CompareValues(t.rows[perm[a]][idx], t.rows[perm[b]][idx])
		if err != nil && cmpErr == nil {
			cmpErr = err
		}
		if ascending {
			return c < 0
		}
		return c > 0
	})
	if cmpErr != nil {
		return nil, errs.Wrap(cmpErr, errs.KindEval, "NOT_ORDERABLE", "Table.SortBy")
	}

	newRows := make([][]any, len(t.rows))
	for i, j := range perm {
		newRows[i] = t.rows[j]
	}
	t.rows = newRows
	if ascending {
		t.sortedBy = idx
	} else {
		t.sortedBy = -1
	}
	return perm, nil
}

// Filter copies the rows whose mask cell is true into a new table,
// preserving order; null mask cells exclude their row. A scalar boolean
// keeps either all rows or none. The source's primary index survives,
// since filtering never reorders.
func (t *Table) Filter(node expr.Node) (*Table, error) {
	ctx := expr.NewContext()
	if err := t.bindInto(ctx, node.Needed()); err != nil {
		return nil, err
	}
	res, err := node.Eval(ctx)
	if err != nil {
		return nil, err
	}

	out := t.EmptyClone()
	out.sortedBy = t.sortedBy

	if res.Scalar && len(res.Values) == 1 {
		keep, err := maskCell(res.Values[0])
		if err != nil {
			return nil, err
		}
		if keep {
			for _, row := range t.rows {
				out.rows = append(out.rows, append([]any(nil), row...))
			}
		}
		return out, nil
	}

	if len(res.Values) != len(t.rows) {
		return nil, errs.Newf(errs.KindEval, "SIZE_MISMATCH",
			"filter mask has %d cells for %d rows", len(res.Values), len(t.rows))
	}
	for i, cell := range res.Values {
		keep, err := maskCell(cell)
		if err != nil {
			return nil, err
		}
		if keep {
			out.rows = append(out.rows, append([]any(nil), t.rows[i]...))
		}
	}
	return out, nil
}

// maskCell narrows a mask cell: null counts as false.
func maskCell(v any) (bool, error) {
	if v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, errs.Newf(errs.KindEval, "NON_BOOL_MASK",
			"filter mask holds %T value", v)
	}
	return b, nil
}

// SplitBy partitions the rows into one table per distinct combination of
// the named columns' values, compared by deep equality. Groups appear in
// first-seen row order.
func (t *Table) SplitBy(names ...string) ([]*Table, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		if err := t.RequireColumn(name); err != nil {
			return nil, err
		}
		idx[i] = t.colIndex[name]
	}

	var order []string
	groups := make(map[string]*Table)
	for _, row := range t.rows {
		key := groupKey(row, idx)
		sub, ok := groups[key]
		if !ok {
			sub = t.EmptyClone()
			groups[key] = sub
			order = append(order, key)
		}
		sub.rows = append(sub.rows, append([]any(nil), row...))
	}

	out := make([]*Table, len(order))
	for i, key := range order {
		out[i] = groups[key]
	}
	return out, nil
}

func groupKey(row []any, idx []int) string {
	cells := make([]any, len(idx))
	for i, j := range idx {
		cells[i] = row[j]
	}
	return types.ComputeRowKey(cells)
}

// Aggregate adds a column holding, for every row, the expression reduced
// over that row's group. With no groupBy columns the whole table is one
// group. Each row receives its own group's value, so the new column lines
// up with the original row order regardless of how groups interleave.
func (t *Table) Aggregate(node expr.Node, newName string, groupBy ...string) error {
	if t.HasColumn(newName) {
		return errs.Newf(errs.KindSchema, "DUPLICATE_COLUMN",
			"column %q already exists", newName)
	}
	idx := make([]int, len(groupBy))
	for i, name := range groupBy {
		if err := t.RequireColumn(name); err != nil {
			return err
		}
		idx[i] = t.colIndex[name]
	}

	// rows of each group, keyed in first-seen order
	groupOf := make([]string, len(t.rows))
	members := make(map[string][]int)
	for r, row := range t.rows {
		key := groupKey(row, idx)
		groupOf[r] = key
		members[key] = append(members[key], r)
	}

	reduced := make(map[string]any, len(members))
	for key, rows := range members {
		v, err := t.evalOnRows(node, rows)
		if err != nil {
			return err
		}
		reduced[key] = v
	}

	values := make([]any, len(t.rows))
	for r := range t.rows {
		values[r] = reduced[groupOf[r]]
	}
	return t.AddColumn(newName, values, types.AutoType, AutoFormat)
}

// evalOnRows evaluates the node against a context restricted to the given
// row subset and requires a single-value result.
func (t *Table) evalOnRows(node expr.Node, rows []int) (any, error) {
	ctx := expr.NewContext()
	cols := make(map[string]expr.ColumnData)
	for _, ref := range node.Needed() {
		if ref.Source != any(t) {
			continue
		}
		j, ok := t.colIndex[ref.Name]
		if !ok {
			return nil, errs.Newf(errs.KindEval, "UNKNOWN_COLUMN",
				"expression references column %q absent from table %q", ref.Name, t.title)
		}
		values := make([]any, len(rows))
		for i, r := range rows {
			values[i] = t.rows[r][j]
		}
		cols[ref.Name] = expr.ColumnData{Values: values, Type: t.types[j]}
	}
	ctx.Bind(t, cols)

	res, err := node.Eval(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Values) != 1 {
		return nil, errs.Newf(errs.KindEval, "NOT_REDUCED",
			"aggregation produced %d values for a group, want exactly one", len(res.Values))
	}
	return res.Values[0], nil
}
