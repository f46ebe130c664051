package types

import (
	"fmt"
	"strings"
)

// FormatSuppress marks a column as hidden from textual rendering. It is a
// presentation directive only and has no effect on query semantics.
const FormatSuppress = ""

// DefaultFormat returns the standard printf-style display directive for a
// column type.
func DefaultFormat(t Type) string {
	switch t {
	case IntType:
		return "%d"
	case FloatType:
		return "%.2f"
	case StringType:
		return "%s"
	default:
		return "%v"
	}
}

// FormatCell renders a cell through its column's format directive. Null
// renders as "-". A directive whose verb does not fit the value's kind
// degrades to the empty string rather than panicking or leaking fmt error
// markers. The check inspects the directive, not the rendered output, so
// cell content containing "%!" passes through untouched.
func FormatCell(format string, v any) string {
	if v == nil {
		return "-"
	}
	if format == FormatSuppress {
		return ""
	}
	if !verbFits(format, v) {
		return ""
	}
	return fmt.Sprintf(format, v)
}

// formatVerb extracts the single conversion verb of a directive. ok is
// false when the directive holds no verb, or more than one.
func formatVerb(format string) (rune, bool) {
	verb := rune(0)
	found := false
	runes := []rune(format)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '%' {
			continue
		}
		i++
		if i < len(runes) && runes[i] == '%' {
			continue
		}
		for i < len(runes) && strings.ContainsRune("+-# 0123456789.", runes[i]) {
			i++
		}
		if i >= len(runes) || found {
			return 0, false
		}
		verb = runes[i]
		found = true
	}
	return verb, found
}

// verbFits reports whether the directive's verb accepts the value's
// canonical runtime kind.
func verbFits(format string, v any) bool {
	verb, ok := formatVerb(format)
	if !ok {
		return false
	}
	switch verb {
	case 'v':
		return true
	case 'd', 'b', 'o', 'c':
		_, ok := v.(int64)
		return ok
	case 'x', 'X':
		switch v.(type) {
		case int64, float64, string:
			return true
		}
		return false
	case 'f', 'F', 'e', 'E', 'g', 'G':
		_, ok := v.(float64)
		return ok
	case 't':
		_, ok := v.(bool)
		return ok
	case 's', 'q':
		if _, ok := v.(string); ok {
			return true
		}
		if _, ok := v.(fmt.Stringer); ok {
			return true
		}
		if _, ok := v.(error); ok {
			return true
		}
		return false
	}
	return false
}
