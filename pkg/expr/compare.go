package expr

import (
	"fmt"
	"sort"

	"tablekit/pkg/errs"
	"tablekit/pkg/types"
)

// CompOp is a comparison operator.
type CompOp int

const (
	OpEq CompOp = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

func (op CompOp) String() string {
	switch op {
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	default:
		return "?"
	}
}

// mirror maps an operator to its reflected orientation, so that
// "literal OP column" is evaluated as "column mirror(OP) literal" and both
// directions share one bound formula.
func (op CompOp) mirror() CompOp {
	switch op {
	case OpLt:
		return OpGt
	case OpLe:
		return OpGe
	case OpGt:
		return OpLt
	case OpGe:
		return OpLe
	default:
		return op
	}
}

// Comparison compares two operands elementwise with three-valued null
// semantics. When one side is a reference to a sorted column and the other
// a non-null scalar literal, the boolean mask is derived from two binary
// searches instead of a full scan.
type Comparison struct {
	op    CompOp
	left  Node
	right Node
}

func NewComparison(op CompOp, left, right any) *Comparison {
	return &Comparison{op: op, left: toNode(left), right: toNode(right)}
}

func (c *Comparison) Eval(ctx *Context) (Result, error) {
	if mask, ok, err := c.tryFastPath(ctx); err != nil {
		return Result{}, err
	} else if ok {
		return vectorResult(mask), nil
	}

	l, err := c.left.Eval(ctx)
	if err != nil {
		return Result{}, err
	}
	r, err := c.right.Eval(ctx)
	if err != nil {
		return Result{}, err
	}

	n, lAt, rAt, err := broadcast(l, r)
	if err != nil {
		return Result{}, err
	}

	out := make([]any, n)
	for i := 0; i < n; i++ {
		cell, err := compareCells(c.op, lAt(i), rAt(i))
		if err != nil {
			return Result{}, err
		}
		out[i] = cell
	}
	return Result{Values: out, Scalar: l.Scalar && r.Scalar}, nil
}

func (c *Comparison) Size(ctx *Context) (int, error) {
	sl, err := c.left.Size(ctx)
	if err != nil {
		return 0, err
	}
	sr, err := c.right.Size(ctx)
	if err != nil {
		return 0, err
	}
	return broadcastSizes(sl, sr)
}

func (c *Comparison) Needed() []Ref {
	return append(c.left.Needed(), c.right.Needed()...)
}

func (c *Comparison) String() string {
	return fmt.Sprintf("(%s %s %s)", c.left, c.op, c.right)
}

// tryFastPath answers "column OP literal" (either orientation) over a
// sorted column via binary searches. It reports ok=false when the shape
// does not qualify, leaving the elementwise path to run.
func (c *Comparison) tryFastPath(ctx *Context) ([]any, bool, error) {
	if col, lit, op, ok := fastOperands(c.op, c.left, c.right); ok {
		cd, err := col.data(ctx)
		if err != nil {
			return nil, false, err
		}
		if !cd.Sorted || !comparableScalar(cd.Type, lit.Value()) {
			return nil, false, nil
		}
		return rangeMask(op, cd.Values, lit.Value()), true, nil
	}
	return nil, false, nil
}

// fastOperands normalizes both orientations to (column, literal, op).
func fastOperands(op CompOp, left, right Node) (*Column, *Literal, CompOp, bool) {
	if col, ok := left.(*Column); ok {
		if lit, ok := right.(*Literal); ok {
			return col, lit, op, true
		}
	}
	if col, ok := right.(*Column); ok {
		if lit, ok := left.(*Literal); ok {
			return col, lit, op.mirror(), true
		}
	}
	return nil, nil, op, false
}

// comparableScalar reports whether the literal can be ordered against
// every non-null cell of a column of the given type. A mismatched kind
// falls back to the elementwise path, which settles equality as false and
// rejects order operators, instead of trusting binary-search bounds built
// on failed comparisons.
func comparableScalar(t types.Type, v any) bool {
	switch v.(type) {
	case int64, float64:
		return t == types.IntType || t == types.FloatType
	case string:
		return t == types.StringType
	}
	return false
}

// rangeMask materializes the boolean mask for "values OP x" over an
// ascending column. Nulls sort first; their mask cells are null, exactly as
// the elementwise path produces. Both bounds come from one canonical
// definition: lower = first index with v >= x, upper = first index with
// v > x, searched within the non-null suffix.
func rangeMask(op CompOp, values []any, x any) []any {
	n := len(values)
	nullEnd := 0
	for nullEnd < n && values[nullEnd] == nil {
		nullEnd++
	}

	// comparableScalar already vetted x against the column type, so the
	// comparison cannot fail on non-null cells.
	cmp := func(i int) int {
		c, _ := types.CompareValues(values[i], x)
		return c
	}
	lower := nullEnd + sort.Search(n-nullEnd, func(i int) bool { return cmp(nullEnd+i) >= 0 })
	upper := nullEnd + sort.Search(n-nullEnd, func(i int) bool { return cmp(nullEnd+i) > 0 })

	var from, to int
	negate := false
	switch op {
	case OpLt:
		from, to = nullEnd, lower
	case OpLe:
		from, to = nullEnd, upper
	case OpGt:
		from, to = upper, n
	case OpGe:
		from, to = lower, n
	case OpEq:
		from, to = lower, upper
	case OpNe:
		from, to = lower, upper
		negate = true
	}

	mask := make([]any, n)
	for i := 0; i < nullEnd; i++ {
		mask[i] = nil
	}
	for i := nullEnd; i < n; i++ {
		in := i >= from && i < to
		mask[i] = in != negate
	}
	return mask
}

// compareCells applies one comparison with three-valued semantics: a null
// operand yields null, equality uses value equality across numeric
// representations, and order operators use the engine's total order.
func compareCells(op CompOp, a, b any) (any, error) {
	if a == nil || b == nil {
		return nil, nil
	}

	switch op {
	case OpEq:
		return types.Equal(a, b), nil
	case OpNe:
		return !types.Equal(a, b), nil
	}

	c, err := types.CompareValues(a, b)
	if err != nil {
		return nil, errs.Wrap(err, errs.KindEval, "NOT_ORDERABLE", "Comparison.Eval")
	}
	switch op {
	case OpLt:
		return c < 0, nil
	case OpLe:
		return c <= 0, nil
	case OpGt:
		return c > 0, nil
	case OpGe:
		return c >= 0, nil
	}
	return nil, errs.Newf(errs.KindEval, "BAD_OPERATOR", "unknown comparison operator %d", op)
}
