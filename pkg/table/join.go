package table

import (
	"fmt"

	"tablekit/pkg/errs"
	"tablekit/pkg/expr"
	"tablekit/pkg/logging"
)

// joinProgressEvery is the left-row interval between Debug progress logs.
const joinProgressEvery = 1000

// Join computes the inner join of two tables: the cross product filtered
// by the expression, evaluated once per left row against that row's
// singleton bindings combined with the full right table. A nil expression
// keeps every pair.
//
// The result's schema is fixed before any row work: the right table's
// column postfixes are shifted past the left's maximum so names never
// collide, and every column the expression references is checked against
// both schemas up front.
//
// A self-join binds the two sides of a comparison differently: wherever a
// comparison or arithmetic node references the table on both sides, its
// left operand sees the current left row and its right operand the full
// column, so t.Join(t, t.Col("n").Eq(t.Col("n"))) yields the diagonal.
func (t *Table) Join(other *Table, node expr.Node) (*Table, error) {
	return t.joinRows(other, node, false)
}

// LeftJoin is Join, except a left row with no matches still appears once
// with the right-hand cells null.
func (t *Table) LeftJoin(other *Table, node expr.Node) (*Table, error) {
	return t.joinRows(other, node, true)
}

// CrossJoin is the unfiltered cross product.
func (t *Table) CrossJoin(other *Table) (*Table, error) {
	return t.joinRows(other, nil, false)
}

func (t *Table) joinRows(other *Table, node expr.Node, outer bool) (*Table, error) {
	out, err := t.buildJoinSchema(other)
	if err != nil {
		return nil, err
	}

	eval, err := t.newJoinEvaluator(other, node)
	if err != nil {
		return nil, err
	}

	log := logging.WithOp("join")
	filler := make([]any, other.NumCols())

	for ii, leftRow := range t.rows {
		matched := false

		if node == nil {
			for _, rightRow := range other.rows {
				out.rows = append(out.rows, joinedRow(leftRow, rightRow))
			}
			matched = len(other.rows) > 0
		} else {
			mask, err := eval.maskFor(leftRow)
			if err != nil {
				return nil, err
			}
			if len(mask) == 1 {
				keep, err := maskCell(mask[0])
				if err != nil {
					return nil, err
				}
				if keep {
					for _, rightRow := range other.rows {
						out.rows = append(out.rows, joinedRow(leftRow, rightRow))
					}
					matched = len(other.rows) > 0
				}
			} else {
				for n, cell := range mask {
					keep, err := maskCell(cell)
					if err != nil {
						return nil, err
					}
					if keep {
						out.rows = append(out.rows, joinedRow(leftRow, other.rows[n]))
						matched = true
					}
				}
			}
		}

		if outer && !matched {
			out.rows = append(out.rows, joinedRow(leftRow, filler))
		}
		if (ii+1)%joinProgressEvery == 0 {
			log.Debug("join progress", "done", ii+1, "total", len(t.rows))
		}
	}
	return out, nil
}

// joinEvaluator evaluates the join expression once per left row. The
// right-hand bindings and the role assignment are computed a single time.
type joinEvaluator struct {
	left      *Table
	other     *Table
	node      expr.Node
	refs      []expr.Ref
	leftCols  []*expr.Column
	rightCols []*expr.Column
	rightData map[string]expr.ColumnData
}

func (t *Table) newJoinEvaluator(other *Table, node expr.Node) (*joinEvaluator, error) {
	if node == nil {
		return nil, nil
	}
	refs := node.Needed()
	for _, ref := range refs {
		holder, ok := ref.Source.(*Table)
		if !ok || (holder != t && holder != other) {
			return nil, errs.New(errs.KindEval, "UNBOUND_TABLE",
				"join expression references a table that is neither operand")
		}
		if err := holder.RequireColumn(ref.Name); err != nil {
			return nil, errs.Wrap(err, errs.KindEval, "UNKNOWN_COLUMN", "Table.Join")
		}
	}

	e := &joinEvaluator{left: t, other: other, node: node, refs: refs}

	e.rightData = make(map[string]expr.ColumnData)
	for _, ref := range refs {
		if ref.Source == any(other) {
			j := other.colIndex[ref.Name]
			e.rightData[ref.Name] = expr.ColumnData{
				Values: other.columnValues(j),
				Sorted: other.sortedBy == j,
				Type:   other.types[j],
			}
		}
	}

	if t == other {
		rightRole := selfJoinRightRoles(node, t)
		for _, col := range expr.ColumnsOf(node) {
			if col.Source() != any(t) {
				continue
			}
			if rightRole[col] {
				e.rightCols = append(e.rightCols, col)
			} else {
				e.leftCols = append(e.leftCols, col)
			}
		}
	}
	return e, nil
}

// maskFor evaluates the expression for one left row. The mask must have
// length 1 or the right row count.
func (e *joinEvaluator) maskFor(leftRow []any) ([]any, error) {
	ctx := expr.NewContext()

	if e.left == e.other {
		// Self-join: bind each column occurrence by its role.
		for _, col := range e.leftCols {
			j := e.left.colIndex[col.Name()]
			ctx.BindColumnNode(col, expr.ColumnData{
				Values: []any{leftRow[j]},
				Type:   e.left.types[j],
			})
		}
		for _, col := range e.rightCols {
			j := e.other.colIndex[col.Name()]
			ctx.BindColumnNode(col, expr.ColumnData{
				Values: e.other.columnValues(j),
				Sorted: e.other.sortedBy == j,
				Type:   e.other.types[j],
			})
		}
	} else {
		leftData := make(map[string]expr.ColumnData)
		for _, ref := range e.refs {
			if ref.Source != any(e.left) {
				continue
			}
			j := e.left.colIndex[ref.Name]
			leftData[ref.Name] = expr.ColumnData{
				Values: []any{leftRow[j]},
				Type:   e.left.types[j],
			}
		}
		ctx.Bind(e.left, leftData)
		ctx.Bind(e.other, e.rightData)
	}

	res, err := e.node.Eval(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Values) != 1 && len(res.Values) != e.other.Len() {
		return nil, errs.Newf(errs.KindEval, "SIZE_MISMATCH",
			"join mask has %d cells for %d right rows", len(res.Values), e.other.Len())
	}
	return res.Values, nil
}

// selfJoinRightRoles finds the column occurrences that play the right-hand
// side of a self-join: for every comparison or arithmetic node whose both
// operands reference the table, every column under the right operand takes
// the right role. Everything else sees the left row.
func selfJoinRightRoles(node expr.Node, self *Table) map[*expr.Column]bool {
	rightRole := make(map[*expr.Column]bool)
	expr.Walk(node, func(n expr.Node) {
		left, right, ok := expr.ValueOperands(n)
		if !ok {
			return
		}
		if !refersTo(left, self) || !refersTo(right, self) {
			return
		}
		for _, col := range expr.ColumnsOf(right) {
			if col.Source() == any(self) {
				rightRole[col] = true
			}
		}
	})
	return rightRole
}

func refersTo(node expr.Node, t *Table) bool {
	for _, ref := range node.Needed() {
		if ref.Source == any(t) {
			return true
		}
	}
	return false
}

func joinedRow(left, right []any) []any {
	row := make([]any, 0, len(left)+len(right))
	row = append(row, left...)
	return append(row, right...)
}

// buildJoinSchema computes the joined table's schema, a pure function of
// the two input schemas: the right-hand postfixes shift by
// leftMax - rightMin + 1 so the combined names stay unique.
func (t *Table) buildJoinSchema(other *Table) (*Table, error) {
	incrementBy := t.MaxPostfix() - other.MinPostfix() + 1

	names := append(t.ColNames(), other.incrementedPostfixes(incrementBy)...)
	colTypes := append(t.ColTypes(), other.ColTypes()...)
	formats := append(t.ColFormats(), other.ColFormats()...)
	title := fmt.Sprintf("%s vs %s", t.title, other.title)
	meta := map[string]any{
		"left":  copyMeta(t.meta),
		"right": copyMeta(other.meta),
	}
	return New(names, colTypes, formats, nil, title, meta)
}
