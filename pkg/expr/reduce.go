package expr

import (
	"fmt"
	"math"

	"tablekit/pkg/errs"
	"tablekit/pkg/types"
)

// Reduction collapses a vector to a single scalar. All reductions except
// Count skip null cells; an all-null input reduces to null.
type Reduction struct {
	name  string
	fn    func(values []any) (any, error)
	child Node
}

func newReduction(name string, fn func([]any) (any, error), child any) *Reduction {
	return &Reduction{name: name, fn: fn, child: toNode(child)}
}

// Mean is the arithmetic mean of the non-null cells.
func Mean(x any) Node { return newReduction("mean", reduceMean, x) }

// StdDev is the sample standard deviation of the non-null cells.
func StdDev(x any) Node { return newReduction("std", reduceStdDev, x) }

// Min is the smallest non-null cell.
func Min(x any) Node { return newReduction("min", reduceMin, x) }

// Max is the largest non-null cell.
func Max(x any) Node { return newReduction("max", reduceMax, x) }

// Sum adds the non-null cells, preserving integer sums.
func Sum(x any) Node { return newReduction("sum", reduceSum, x) }

// Count is the total cell count, nulls included.
func Count(x any) Node { return newReduction("len", reduceCount, x) }

// CountNotNull counts the non-null cells.
func CountNotNull(x any) Node { return newReduction("countNotNone", reduceCountNotNull, x) }

// UniqueNotNull reduces to the single distinct non-null value, erroring
// when none or more than one exists.
func UniqueNotNull(x any) Node { return newReduction("uniqueNotNone", reduceUniqueNotNull, x) }

func (r *Reduction) Eval(ctx *Context) (Result, error) {
	res, err := r.child.Eval(ctx)
	if err != nil {
		return Result{}, err
	}
	v, err := r.fn(res.Values)
	if err != nil {
		return Result{}, err
	}
	return scalarResult(v), nil
}

func (r *Reduction) Size(*Context) (int, error) {
	return 1, nil
}

func (r *Reduction) Needed() []Ref {
	return r.child.Needed()
}

func (r *Reduction) String() string {
	return fmt.Sprintf("%s(%s)", r.name, r.child)
}

func notNull(values []any) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

func floatsOf(values []any, op string) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		f, ok := types.AsFloat(v)
		if !ok {
			return nil, errs.Newf(errs.KindEval, "BAD_OPERANDS",
				"%s applied to non-numeric %T value", op, v)
		}
		out[i] = f
	}
	return out, nil
}

func reduceMean(values []any) (any, error) {
	vs, err := floatsOf(notNull(values), "mean")
	if err != nil || len(vs) == 0 {
		return nil, err
	}
	sum := 0.0
	for _, f := range vs {
		sum += f
	}
	return sum / float64(len(vs)), nil
}

func reduceStdDev(values []any) (any, error) {
	vs, err := floatsOf(notNull(values), "std")
	if err != nil || len(vs) < 2 {
		return nil, err
	}
	mean := 0.0
	for _, f := range vs {
		mean += f
	}
	mean /= float64(len(vs))
	ss := 0.0
	for _, f := range vs {
		d := f - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vs)-1)), nil
}

func reduceMin(values []any) (any, error) {
	return reduceExtreme(values, -1)
}

func reduceMax(values []any) (any, error) {
	return reduceExtreme(values, 1)
}

// reduceExtreme keeps the cell whose comparison sign against the running
// best matches want.
func reduceExtreme(values []any, want int) (any, error) {
	var best any
	seen := false
	for _, v := range values {
		if v == nil {
			continue
		}
		if !seen {
			best, seen = v, true
			continue
		}
		c, err := types.CompareValues(v, best)
		if err != nil {
			return nil, err
		}
		if c == want {
			best = v
		}
	}
	if !seen {
		return nil, nil
	}
	return best, nil
}

func reduceSum(values []any) (any, error) {
	vs := notNull(values)
	if len(vs) == 0 {
		return nil, nil
	}
	allInt := true
	for _, v := range vs {
		if _, ok := v.(int64); !ok {
			allInt = false
			break
		}
	}
	if allInt {
		var sum int64
		for _, v := range vs {
			sum += v.(int64)
		}
		return sum, nil
	}
	fs, err := floatsOf(vs, "sum")
	if err != nil {
		return nil, err
	}
	sum := 0.0
	for _, f := range fs {
		sum += f
	}
	return sum, nil
}

func reduceCount(values []any) (any, error) {
	return int64(len(values)), nil
}

func reduceCountNotNull(values []any) (any, error) {
	return int64(len(notNull(values))), nil
}

func reduceUniqueNotNull(values []any) (any, error) {
	var unique any
	seen := false
	for _, v := range values {
		if v == nil {
			continue
		}
		if !seen {
			unique, seen = v, true
			continue
		}
		if !types.Equal(v, unique) {
			return nil, errs.Newf(errs.KindEval, "NOT_UNIQUE",
				"values %v and %v both present", unique, v)
		}
	}
	if !seen {
		return nil, errs.New(errs.KindEval, "NOT_UNIQUE", "no non-null value present")
	}
	return unique, nil
}
