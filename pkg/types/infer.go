package types

// CommonTypeFor infers the narrowest column type that can hold every value
// in the slice. Nulls are ignored. A mix of ints and floats widens to
// FloatType; anything heterogeneous beyond that degrades to ObjectType.
// A slice with no non-null values has no evidence either way and is typed
// ObjectType.
func CommonTypeFor(values []any) Type {
	sawInt := false
	sawFloat := false
	sawString := false
	sawAny := false

	for _, v := range values {
		if v == nil {
			continue
		}
		sawAny = true
		switch v.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			sawInt = true
		case float32, float64:
			sawFloat = true
		case string:
			sawString = true
		default:
			return ObjectType
		}
	}

	if !sawAny {
		return ObjectType
	}
	if sawString {
		if sawInt || sawFloat {
			return ObjectType
		}
		return StringType
	}
	if sawFloat {
		return FloatType
	}
	return IntType
}
