package expr

import (
	"fmt"

	"tablekit/pkg/errs"
	"tablekit/pkg/types"
)

// ArithOp is an arithmetic operator.
type ArithOp int

const (
	OpAdd ArithOp = iota
	OpSub
	OpMul
	OpDiv
)

func (op ArithOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	default:
		return "?"
	}
}

// Arithmetic applies +, -, * or / elementwise with broadcasting. Integer
// operands stay integer (truncating division), any float operand widens the
// result to float, and + concatenates strings. Nulls propagate.
type Arithmetic struct {
	op    ArithOp
	left  Node
	right Node
}

func NewArithmetic(op ArithOp, left, right any) *Arithmetic {
	return &Arithmetic{op: op, left: toNode(left), right: toNode(right)}
}

func (a *Arithmetic) Eval(ctx *Context) (Result, error) {
	l, err := a.left.Eval(ctx)
	if err != nil {
		return Result{}, err
	}
	r, err := a.right.Eval(ctx)
	if err != nil {
		return Result{}, err
	}

	n, lAt, rAt, err := broadcast(l, r)
	if err != nil {
		return Result{}, err
	}

	out := make([]any, n)
	for i := 0; i < n; i++ {
		cell, err := applyArith(a.op, lAt(i), rAt(i))
		if err != nil {
			return Result{}, err
		}
		out[i] = cell
	}
	return Result{Values: out, Scalar: l.Scalar && r.Scalar}, nil
}

func (a *Arithmetic) Size(ctx *Context) (int, error) {
	sl, err := a.left.Size(ctx)
	if err != nil {
		return 0, err
	}
	sr, err := a.right.Size(ctx)
	if err != nil {
		return 0, err
	}
	return broadcastSizes(sl, sr)
}

func (a *Arithmetic) Needed() []Ref {
	return append(a.left.Needed(), a.right.Needed()...)
}

func (a *Arithmetic) String() string {
	return fmt.Sprintf("(%s %s %s)", a.left, a.op, a.right)
}

func applyArith(op ArithOp, a, b any) (any, error) {
	if a == nil || b == nil {
		return nil, nil
	}

	if ia, ok := a.(int64); ok {
		if ib, ok := b.(int64); ok {
			switch op {
			case OpAdd:
				return ia + ib, nil
			case OpSub:
				return ia - ib, nil
			case OpMul:
				return ia * ib, nil
			case OpDiv:
				if ib == 0 {
					return nil, errs.New(errs.KindEval, "DIVISION_BY_ZERO",
						"integer division by zero")
				}
				return ia / ib, nil
			}
		}
	}

	if fa, ok := types.AsFloat(a); ok {
		if fb, ok := types.AsFloat(b); ok {
			switch op {
			case OpAdd:
				return fa + fb, nil
			case OpSub:
				return fa - fb, nil
			case OpMul:
				return fa * fb, nil
			case OpDiv:
				return fa / fb, nil
			}
		}
	}

	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok && op == OpAdd {
			return sa + sb, nil
		}
	}

	return nil, errs.Newf(errs.KindEval, "BAD_OPERANDS",
		"operator %s not defined for %T and %T", op, a, b)
}
