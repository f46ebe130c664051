package expr

// Package-level builders for combining arbitrary nodes. Plain Go values
// are lifted to literals, so Lt(col, 3) and Lt(3, col) both work.

// Lt builds left < right.
func Lt(left, right any) Node { return NewComparison(OpLt, left, right) }

// Le builds left <= right.
func Le(left, right any) Node { return NewComparison(OpLe, left, right) }

// Gt builds left > right.
func Gt(left, right any) Node { return NewComparison(OpGt, left, right) }

// Ge builds left >= right.
func Ge(left, right any) Node { return NewComparison(OpGe, left, right) }

// Eq builds left == right.
func Eq(left, right any) Node { return NewComparison(OpEq, left, right) }

// Ne builds left != right.
func Ne(left, right any) Node { return NewComparison(OpNe, left, right) }

// And builds the three-valued conjunction of left and right.
func And(left, right any) Node { return NewLogical(OpAnd, left, right) }

// Or builds the three-valued disjunction of left and right.
func Or(left, right any) Node { return NewLogical(OpOr, left, right) }

// Xor builds the three-valued exclusive disjunction of left and right.
func Xor(left, right any) Node { return NewLogical(OpXor, left, right) }

// Not builds the three-valued negation of x.
func Not(x any) Node { return NewNegation(x) }

// Add builds left + right.
func Add(left, right any) Node { return NewArithmetic(OpAdd, left, right) }

// Sub builds left - right.
func Sub(left, right any) Node { return NewArithmetic(OpSub, left, right) }

// Mul builds left * right.
func Mul(left, right any) Node { return NewArithmetic(OpMul, left, right) }

// Div builds left / right.
func Div(left, right any) Node { return NewArithmetic(OpDiv, left, right) }

// The Column method set mirrors the package-level builders so conditions
// read left to right from the column they constrain.

func (c *Column) Lt(other any) Node { return Lt(c, other) }
func (c *Column) Le(other any) Node { return Le(c, other) }
func (c *Column) Gt(other any) Node { return Gt(c, other) }
func (c *Column) Ge(other any) Node { return Ge(c, other) }
func (c *Column) Eq(other any) Node { return Eq(c, other) }
func (c *Column) Ne(other any) Node { return Ne(c, other) }

func (c *Column) Add(other any) Node { return Add(c, other) }
func (c *Column) Sub(other any) Node { return Sub(c, other) }
func (c *Column) Mul(other any) Node { return Mul(c, other) }
func (c *Column) Div(other any) Node { return Div(c, other) }

func (c *Column) Contains(substring any) Node { return Contains(c, substring) }
func (c *Column) StartsWith(prefix any) Node  { return StartsWith(c, prefix) }
func (c *Column) IsIn(values []any) Node      { return IsIn(c, values) }
func (c *Column) InRange(lo, hi any) Node     { return InRange(c, lo, hi) }
func (c *Column) ApproxEqual(target, tolerance any) Node {
	return ApproxEqual(c, target, tolerance)
}

func (c *Column) IsNull() Node    { return IsNull(c) }
func (c *Column) IsNotNull() Node { return IsNotNull(c) }

func (c *Column) Mean() Node          { return Mean(c) }
func (c *Column) StdDev() Node        { return StdDev(c) }
func (c *Column) Min() Node           { return Min(c) }
func (c *Column) Max() Node           { return Max(c) }
func (c *Column) Sum() Node           { return Sum(c) }
func (c *Column) Count() Node         { return Count(c) }
func (c *Column) CountNotNull() Node  { return CountNotNull(c) }
func (c *Column) UniqueNotNull() Node { return UniqueNotNull(c) }
