package expr

import (
	"fmt"

	"tablekit/pkg/errs"
)

// LogicOp is a boolean combinator.
type LogicOp int

const (
	OpAnd LogicOp = iota
	OpOr
	OpXor
)

func (op LogicOp) String() string {
	switch op {
	case OpAnd:
		return "&"
	case OpOr:
		return "|"
	case OpXor:
		return "^"
	default:
		return "?"
	}
}

// Logical combines two boolean operands under Kleene three-valued logic:
// false∧null=false, true∨null=true, null propagates everywhere else.
//
// A scalar false left operand of "and" (scalar true of "or") short-circuits:
// the result is an all-false (all-true) mask sized like the right operand,
// which is never evaluated. Expressions are pure, so the shortcut is not
// observable.
type Logical struct {
	op    LogicOp
	left  Node
	right Node
}

func NewLogical(op LogicOp, left, right any) *Logical {
	return &Logical{op: op, left: toNode(left), right: toNode(right)}
}

func (l *Logical) Eval(ctx *Context) (Result, error) {
	lres, err := l.left.Eval(ctx)
	if err != nil {
		return Result{}, err
	}

	if shortcut, ok := l.shortCircuit(lres); ok {
		n, err := l.right.Size(ctx)
		if err != nil {
			return Result{}, err
		}
		out := make([]any, n)
		for i := range out {
			out[i] = shortcut
		}
		// The scalar flag must come out as if the right operand had been
		// evaluated: a size-1 array right side keeps the result an array.
		rScalar, known := scalarShape(l.right)
		return Result{Values: out, Scalar: lres.Scalar && known && rScalar}, nil
	}

	rres, err := l.right.Eval(ctx)
	if err != nil {
		return Result{}, err
	}

	n, lAt, rAt, err := broadcast(lres, rres)
	if err != nil {
		return Result{}, err
	}

	out := make([]any, n)
	for i := 0; i < n; i++ {
		a, err := boolCell(lAt(i))
		if err != nil {
			return Result{}, err
		}
		b, err := boolCell(rAt(i))
		if err != nil {
			return Result{}, err
		}
		out[i] = combine3(l.op, a, b)
	}
	return Result{Values: out, Scalar: lres.Scalar && rres.Scalar}, nil
}

// shortCircuit reports the mask fill value when the scalar left operand
// decides the result alone.
func (l *Logical) shortCircuit(lres Result) (bool, bool) {
	if !lres.Scalar || len(lres.Values) != 1 {
		return false, false
	}
	b, ok := lres.Values[0].(bool)
	if !ok {
		return false, false
	}
	if l.op == OpAnd && !b {
		return false, true
	}
	if l.op == OpOr && b {
		return true, true
	}
	return false, false
}

func (l *Logical) Size(ctx *Context) (int, error) {
	sl, err := l.left.Size(ctx)
	if err != nil {
		return 0, err
	}
	sr, err := l.right.Size(ctx)
	if err != nil {
		return 0, err
	}
	return broadcastSizes(sl, sr)
}

func (l *Logical) Needed() []Ref {
	return append(l.left.Needed(), l.right.Needed()...)
}

func (l *Logical) String() string {
	return fmt.Sprintf("(%s %s %s)", l.left, l.op, l.right)
}

// Negation is the three-valued "not".
type Negation struct {
	child Node
}

func NewNegation(child any) *Negation {
	return &Negation{child: toNode(child)}
}

func (n *Negation) Eval(ctx *Context) (Result, error) {
	res, err := n.child.Eval(ctx)
	if err != nil {
		return Result{}, err
	}
	out := make([]any, len(res.Values))
	for i, v := range res.Values {
		b, err := boolCell(v)
		if err != nil {
			return Result{}, err
		}
		if b == nil {
			out[i] = nil
		} else {
			out[i] = !*b
		}
	}
	return Result{Values: out, Scalar: res.Scalar}, nil
}

func (n *Negation) Size(ctx *Context) (int, error) {
	return n.child.Size(ctx)
}

func (n *Negation) Needed() []Ref {
	return n.child.Needed()
}

func (n *Negation) String() string {
	return fmt.Sprintf("(not %s)", n.child)
}

// boolCell narrows a mask cell to bool or null.
func boolCell(v any) (*bool, error) {
	if v == nil {
		return nil, nil
	}
	if b, ok := v.(bool); ok {
		return &b, nil
	}
	return nil, errs.Newf(errs.KindEval, "LOGIC_ON_NON_BOOL",
		"logical operator applied to %T value", v)
}

func combine3(op LogicOp, a, b *bool) any {
	switch op {
	case OpAnd:
		if a != nil && !*a {
			return false
		}
		if b != nil && !*b {
			return false
		}
		if a == nil || b == nil {
			return nil
		}
		return true
	case OpOr:
		if a != nil && *a {
			return true
		}
		if b != nil && *b {
			return true
		}
		if a == nil || b == nil {
			return nil
		}
		return false
	case OpXor:
		if a == nil || b == nil {
			return nil
		}
		return *a != *b
	}
	return nil
}
