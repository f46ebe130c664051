// Package expr implements the lazy expression algebra evaluated against
// table columns: literals, column references, comparisons, arithmetic,
// logical combinators, elementwise functions and reductions.
//
// Expressions are immutable trees. Building one performs no work; Eval
// computes the result against a Context binding column names to their
// values, sortedness and declared type. Comparisons against sorted columns
// take a binary-search fast path that produces bit-for-bit the same mask as
// the elementwise evaluation.
//
// Null cells (nil) propagate through elementwise operators: any comparison,
// arithmetic or logical operation with a null operand yields null, with the
// Kleene exceptions false∧null=false and true∨null=true.
package expr

import (
	"tablekit/pkg/errs"
)

// Result is the outcome of evaluating a node. Scalar marks a true scalar
// that broadcasts against any column; a single-element vector with
// Scalar=false stays size 1.
type Result struct {
	Values []any
	Scalar bool
}

// Ref names a column an expression needs, keyed by the identity of the
// table it came from.
type Ref struct {
	Source any
	Name   string
}

// Node is an element of the expression tree.
type Node interface {
	// Eval computes the node's value against the bound context.
	Eval(ctx *Context) (Result, error)

	// Size reports the length Eval would produce, without computing values.
	Size(ctx *Context) (int, error)

	// Needed lists the column references appearing in the subtree.
	Needed() []Ref

	String() string
}

func scalarResult(v any) Result {
	return Result{Values: []any{v}, Scalar: true}
}

func vectorResult(vs []any) Result {
	return Result{Values: vs}
}

// toNode wraps plain Go values as Literal leaves.
func toNode(v any) Node {
	if n, ok := v.(Node); ok {
		return n
	}
	return NewLiteral(v)
}

// canonicalScalar maps Go numeric kinds onto the engine's canonical cell
// representations so literals compare cleanly against column cells.
func canonicalScalar(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	case float32:
		return float64(x)
	}
	return v
}

// broadcastSizes combines two operand sizes under the broadcasting rule:
// size 1 stretches to the partner's size, equal sizes pass through, and
// anything else is a size mismatch.
func broadcastSizes(sl, sr int) (int, error) {
	if sl == 1 {
		return sr, nil
	}
	if sr == 1 {
		return sl, nil
	}
	if sl == sr {
		return sl, nil
	}
	return 0, errs.Newf(errs.KindEval, "SIZE_MISMATCH",
		"operand sizes %d and %d do not fit", sl, sr)
}

// broadcast pairs two results elementwise. The returned accessors stretch a
// size-1 operand across the combined length.
func broadcast(l, r Result) (n int, lAt, rAt func(i int) any, err error) {
	n, err = broadcastSizes(len(l.Values), len(r.Values))
	if err != nil {
		return 0, nil, nil, err
	}
	lAt = at(l.Values)
	rAt = at(r.Values)
	return n, lAt, rAt, nil
}

func at(values []any) func(i int) any {
	if len(values) == 1 {
		v := values[0]
		return func(int) any { return v }
	}
	return func(i int) any { return values[i] }
}
