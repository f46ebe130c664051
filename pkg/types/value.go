package types

import (
	"math"
	"reflect"

	"tablekit/pkg/errs"
)

// Convert coerces v to the canonical runtime representation of t:
// int64 for IntType, float64 for FloatType, string for StringType.
// nil passes through unchanged as the null marker, and ObjectType accepts
// any value untouched. AutoType canonicalizes the numeric kind without
// imposing a column type.
func Convert(v any, t Type) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch t {
	case AutoType:
		switch x := v.(type) {
		case int:
			return int64(x), nil
		case int8:
			return int64(x), nil
		case int16:
			return int64(x), nil
		case int32:
			return int64(x), nil
		case uint:
			return int64(x), nil
		case uint8:
			return int64(x), nil
		case uint16:
			return int64(x), nil
		case uint32:
			return int64(x), nil
		case uint64:
			if x > math.MaxInt64 {
				return nil, errs.Newf(errs.KindType, "VALUE_OUT_OF_RANGE",
					"value %d overflows int column", x)
			}
			return int64(x), nil
		case float32:
			return float64(x), nil
		}
		return v, nil
	case IntType:
		switch x := v.(type) {
		case int:
			return int64(x), nil
		case int8:
			return int64(x), nil
		case int16:
			return int64(x), nil
		case int32:
			return int64(x), nil
		case int64:
			return x, nil
		case uint:
			return int64(x), nil
		case uint8:
			return int64(x), nil
		case uint16:
			return int64(x), nil
		case uint32:
			return int64(x), nil
		case uint64:
			if x > math.MaxInt64 {
				return nil, errs.Newf(errs.KindType, "VALUE_OUT_OF_RANGE",
					"value %d overflows int column", x)
			}
			return int64(x), nil
		case float32:
			return int64(x), nil
		case float64:
			return int64(x), nil
		}
	case FloatType:
		switch x := v.(type) {
		case int:
			return float64(x), nil
		case int8:
			return float64(x), nil
		case int16:
			return float64(x), nil
		case int32:
			return float64(x), nil
		case int64:
			return float64(x), nil
		case uint:
			return float64(x), nil
		case uint8:
			return float64(x), nil
		case uint16:
			return float64(x), nil
		case uint32:
			return float64(x), nil
		case uint64:
			return float64(x), nil
		case float32:
			return float64(x), nil
		case float64:
			return x, nil
		}
	case StringType:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case ObjectType:
		return v, nil
	}

	return nil, errs.Newf(errs.KindType, "CONVERSION_FAILED",
		"cannot convert %T value to %s column", v, t)
}

// IsNumeric reports whether v is one of the canonical numeric representations.
func IsNumeric(v any) bool {
	switch v.(type) {
	case int64, float64:
		return true
	}
	return false
}

// AsFloat returns the float64 value of a canonical numeric cell.
func AsFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

// Equal reports value equality of two cells. Two nulls are equal; numeric
// cells compare across int/float representations; everything else falls back
// to deep equality, so opaque container values compare by content.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := AsFloat(a); ok {
		if fb, ok := AsFloat(b); ok {
			return fa == fb
		}
		return false
	}
	if sa, ok := a.(string); ok {
		sb, ok := b.(string)
		return ok && sa == sb
	}
	return reflect.DeepEqual(a, b)
}
