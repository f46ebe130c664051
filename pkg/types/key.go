package types

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// ComputeKey builds a deterministic grouping key for a cell value. Scalars
// key by value, maps by their sorted key/value pairs, slices and arrays
// recursively, so that structurally equal containers land in the same group.
// Values the engine cannot look into key by identity.
func ComputeKey(v any) string {
	if v == nil {
		return "~"
	}

	switch x := v.(type) {
	case int64:
		return fmt.Sprintf("i:%d", x)
	case float64:
		return fmt.Sprintf("f:%g", x)
	case string:
		// Length-prefixed so embedded separators cannot make two distinct
		// tuples collide when keys are joined.
		return fmt.Sprintf("s:%d:%s", len(x), x)
	case bool:
		return fmt.Sprintf("b:%t", x)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			parts[i] = ComputeKey(rv.Index(i).Interface())
		}
		return "[" + strings.Join(parts, ",") + "]"
	case reflect.Map:
		parts := make([]string, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			parts = append(parts,
				ComputeKey(iter.Key().Interface())+"="+ComputeKey(iter.Value().Interface()))
		}
		sort.Strings(parts)
		return "{" + strings.Join(parts, ",") + "}"
	case reflect.Ptr, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return fmt.Sprintf("p:%x", rv.Pointer())
	}

	return fmt.Sprintf("v:%v", v)
}

// ComputeRowKey builds a grouping key for a tuple of cells.
func ComputeRowKey(cells []any) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = ComputeKey(c)
	}
	return strings.Join(parts, "|")
}
