package types

// Type is the scalar type tag of a column. Every cell of a column holds a
// value of the column's canonical runtime representation, or nil as the null
// marker. ObjectType columns may hold any value; the engine never inspects
// them.
type Type int

const (
	IntType Type = iota
	FloatType
	StringType
	ObjectType
)

// AutoType asks constructors to infer the column type from the supplied
// values via CommonTypeFor.
const AutoType Type = -1

// String returns a string representation of the type
func (t Type) String() string {
	switch t {
	case IntType:
		return "INT_TYPE"
	case FloatType:
		return "FLOAT_TYPE"
	case StringType:
		return "STRING_TYPE"
	case ObjectType:
		return "OBJECT_TYPE"
	default:
		return "UNKNOWN_TYPE"
	}
}

// Name returns the short lowercase name used in textual table rendering.
func (t Type) Name() string {
	switch t {
	case IntType:
		return "int"
	case FloatType:
		return "float"
	case StringType:
		return "str"
	case ObjectType:
		return "object"
	default:
		return "unknown"
	}
}
