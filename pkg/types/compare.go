package types

import (
	"strings"

	"tablekit/pkg/errs"
)

// CompareValues defines the total order used by sorting and by the
// binary-search fast path. It returns a negative number, zero, or a positive
// number as a sorts before, equal to, or after b.
//
// Null sorts before every non-null value. Numeric cells compare across the
// int64/float64 representations, strings lexicographically. Opaque values
// have no defined order.
func CompareValues(a, b any) (int, error) {
	if a == nil {
		if b == nil {
			return 0, nil
		}
		return -1, nil
	}
	if b == nil {
		return 1, nil
	}

	if fa, ok := AsFloat(a); ok {
		if fb, ok := AsFloat(b); ok {
			switch {
			case fa < fb:
				return -1, nil
			case fa > fb:
				return 1, nil
			default:
				return 0, nil
			}
		}
	}

	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return strings.Compare(sa, sb), nil
		}
	}

	return 0, errs.Newf(errs.KindType, "NOT_ORDERABLE",
		"values of type %T and %T have no defined order", a, b)
}
