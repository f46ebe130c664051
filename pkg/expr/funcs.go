package expr

import (
	"fmt"
	"math"
	"strings"

	"tablekit/pkg/errs"
	"tablekit/pkg/types"
)

// UnaryFunc applies a scalar function elementwise. Numeric inputs widen to
// float64; nulls pass through.
type UnaryFunc struct {
	name  string
	fn    func(float64) float64
	child Node
}

func newUnaryFunc(name string, fn func(float64) float64, child any) *UnaryFunc {
	return &UnaryFunc{name: name, fn: fn, child: toNode(child)}
}

// Log is the elementwise natural logarithm.
func Log(x any) Node { return newUnaryFunc("log", math.Log, x) }

// Exp is the elementwise exponential.
func Exp(x any) Node { return newUnaryFunc("exp", math.Exp, x) }

// Sin is the elementwise sine.
func Sin(x any) Node { return newUnaryFunc("sin", math.Sin, x) }

// Cos is the elementwise cosine.
func Cos(x any) Node { return newUnaryFunc("cos", math.Cos, x) }

// Sqrt is the elementwise square root.
func Sqrt(x any) Node { return newUnaryFunc("sqrt", math.Sqrt, x) }

func (u *UnaryFunc) Eval(ctx *Context) (Result, error) {
	res, err := u.child.Eval(ctx)
	if err != nil {
		return Result{}, err
	}
	out := make([]any, len(res.Values))
	for i, v := range res.Values {
		if v == nil {
			out[i] = nil
			continue
		}
		f, ok := types.AsFloat(v)
		if !ok {
			return Result{}, errs.Newf(errs.KindEval, "BAD_OPERANDS",
				"%s applied to non-numeric %T value", u.name, v)
		}
		out[i] = u.fn(f)
	}
	return Result{Values: out, Scalar: res.Scalar}, nil
}

func (u *UnaryFunc) Size(ctx *Context) (int, error) {
	return u.child.Size(ctx)
}

func (u *UnaryFunc) Needed() []Ref {
	return u.child.Needed()
}

func (u *UnaryFunc) String() string {
	return fmt.Sprintf("%s(%s)", u.name, u.child)
}

// StringMatch applies a string predicate elementwise against a pattern
// operand, with three-valued null handling.
type StringMatch struct {
	name    string
	fn      func(s, pattern string) bool
	child   Node
	pattern Node
}

func newStringMatch(name string, fn func(s, pattern string) bool, child, pattern any) *StringMatch {
	return &StringMatch{name: name, fn: fn, child: toNode(child), pattern: toNode(pattern)}
}

// Contains tests substring membership elementwise.
func Contains(x, substring any) Node {
	return newStringMatch("contains", strings.Contains, x, substring)
}

// StartsWith tests prefix membership elementwise.
func StartsWith(x, prefix any) Node {
	return newStringMatch("startswith", strings.HasPrefix, x, prefix)
}

func (m *StringMatch) Eval(ctx *Context) (Result, error) {
	child, err := m.child.Eval(ctx)
	if err != nil {
		return Result{}, err
	}
	pattern, err := m.pattern.Eval(ctx)
	if err != nil {
		return Result{}, err
	}

	n, cAt, pAt, err := broadcast(child, pattern)
	if err != nil {
		return Result{}, err
	}

	out := make([]any, n)
	for i := 0; i < n; i++ {
		cv, pv := cAt(i), pAt(i)
		if cv == nil || pv == nil {
			out[i] = nil
			continue
		}
		cs, ok1 := cv.(string)
		ps, ok2 := pv.(string)
		if !ok1 || !ok2 {
			return Result{}, errs.Newf(errs.KindEval, "BAD_OPERANDS",
				"%s applied to %T and %T", m.name, cv, pv)
		}
		out[i] = m.fn(cs, ps)
	}
	return Result{Values: out, Scalar: child.Scalar && pattern.Scalar}, nil
}

func (m *StringMatch) Size(ctx *Context) (int, error) {
	sc, err := m.child.Size(ctx)
	if err != nil {
		return 0, err
	}
	sp, err := m.pattern.Size(ctx)
	if err != nil {
		return 0, err
	}
	return broadcastSizes(sc, sp)
}

func (m *StringMatch) Needed() []Ref {
	return append(m.child.Needed(), m.pattern.Needed()...)
}

func (m *StringMatch) String() string {
	return fmt.Sprintf("%s.%s(%s)", m.child, m.name, m.pattern)
}

// NullCheck tests cells against the null marker. Unlike every other
// comparison it always yields a definite boolean.
type NullCheck struct {
	child  Node
	isNull bool
}

// IsNull tests cells for the null marker.
func IsNull(x any) Node { return &NullCheck{child: toNode(x), isNull: true} }

// IsNotNull is the complement of IsNull.
func IsNotNull(x any) Node { return &NullCheck{child: toNode(x), isNull: false} }

func (nc *NullCheck) Eval(ctx *Context) (Result, error) {
	res, err := nc.child.Eval(ctx)
	if err != nil {
		return Result{}, err
	}
	out := make([]any, len(res.Values))
	for i, v := range res.Values {
		out[i] = (v == nil) == nc.isNull
	}
	return Result{Values: out, Scalar: res.Scalar}, nil
}

func (nc *NullCheck) Size(ctx *Context) (int, error) {
	return nc.child.Size(ctx)
}

func (nc *NullCheck) Needed() []Ref {
	return nc.child.Needed()
}

func (nc *NullCheck) String() string {
	if nc.isNull {
		return fmt.Sprintf("%s.isNull()", nc.child)
	}
	return fmt.Sprintf("%s.isNotNull()", nc.child)
}

// Membership tests cells against a fixed value set. Null matches only an
// explicit null entry; the result is always a definite boolean.
type Membership struct {
	child  Node
	values []any
}

// IsIn tests set membership elementwise.
func IsIn(x any, values []any) Node {
	canonical := make([]any, len(values))
	for i, v := range values {
		canonical[i] = canonicalScalar(v)
	}
	return &Membership{child: toNode(x), values: canonical}
}

func (m *Membership) Eval(ctx *Context) (Result, error) {
	res, err := m.child.Eval(ctx)
	if err != nil {
		return Result{}, err
	}
	out := make([]any, len(res.Values))
	for i, v := range res.Values {
		found := false
		for _, candidate := range m.values {
			if types.Equal(v, candidate) {
				found = true
				break
			}
		}
		out[i] = found
	}
	return Result{Values: out, Scalar: res.Scalar}, nil
}

func (m *Membership) Size(ctx *Context) (int, error) {
	return m.child.Size(ctx)
}

func (m *Membership) Needed() []Ref {
	return m.child.Needed()
}

func (m *Membership) String() string {
	return fmt.Sprintf("%s.isIn(%v)", m.child, m.values)
}

// InRange is shorthand for lo <= x && x <= hi. Built from the comparison
// nodes, it inherits their sorted-column fast path.
func InRange(x any, lo, hi any) Node {
	child := toNode(x)
	return NewLogical(OpAnd,
		NewComparison(OpGe, child, lo),
		NewComparison(OpLe, child, hi))
}

// Approx tests |x - target| <= tolerance elementwise; both target and
// tolerance may themselves be expressions. Nulls propagate.
type Approx struct {
	child     Node
	target    Node
	tolerance Node
}

// ApproxEqual tests approximate numeric equality elementwise.
func ApproxEqual(x, target, tolerance any) Node {
	return &Approx{child: toNode(x), target: toNode(target), tolerance: toNode(tolerance)}
}

func (ap *Approx) Eval(ctx *Context) (Result, error) {
	child, err := ap.child.Eval(ctx)
	if err != nil {
		return Result{}, err
	}
	target, err := ap.target.Eval(ctx)
	if err != nil {
		return Result{}, err
	}
	tol, err := ap.tolerance.Eval(ctx)
	if err != nil {
		return Result{}, err
	}

	n, err := broadcastSizes(len(child.Values), len(target.Values))
	if err != nil {
		return Result{}, err
	}
	n, err = broadcastSizes(n, len(tol.Values))
	if err != nil {
		return Result{}, err
	}
	cAt, tAt, dAt := at(child.Values), at(target.Values), at(tol.Values)

	out := make([]any, n)
	for i := 0; i < n; i++ {
		cv, tv, dv := cAt(i), tAt(i), dAt(i)
		if cv == nil || tv == nil || dv == nil {
			out[i] = nil
			continue
		}
		cf, ok1 := types.AsFloat(cv)
		tf, ok2 := types.AsFloat(tv)
		df, ok3 := types.AsFloat(dv)
		if !ok1 || !ok2 || !ok3 {
			return Result{}, errs.Newf(errs.KindEval, "BAD_OPERANDS",
				"approxEqual applied to %T, %T, %T", cv, tv, dv)
		}
		out[i] = math.Abs(cf-tf) <= df
	}
	return Result{Values: out, Scalar: child.Scalar && target.Scalar && tol.Scalar}, nil
}

func (ap *Approx) Size(ctx *Context) (int, error) {
	sc, err := ap.child.Size(ctx)
	if err != nil {
		return 0, err
	}
	st, err := ap.target.Size(ctx)
	if err != nil {
		return 0, err
	}
	n, err := broadcastSizes(sc, st)
	if err != nil {
		return 0, err
	}
	sd, err := ap.tolerance.Size(ctx)
	if err != nil {
		return 0, err
	}
	return broadcastSizes(n, sd)
}

func (ap *Approx) Needed() []Ref {
	refs := append(ap.child.Needed(), ap.target.Needed()...)
	return append(refs, ap.tolerance.Needed()...)
}

func (ap *Approx) String() string {
	return fmt.Sprintf("%s.approxEqual(%s, %s)", ap.child, ap.target, ap.tolerance)
}
