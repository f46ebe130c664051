package expr

import (
	"tablekit/pkg/errs"
	"tablekit/pkg/types"
)

// ColumnData is one column's runtime binding: its cell values, whether the
// column is currently sorted ascending (enabling the binary-search fast
// path), and its declared type.
type ColumnData struct {
	Values []any
	Sorted bool
	Type   types.Type
}

// Context binds table identities to per-column lookups for one evaluation.
// It is built on demand from the columns an expression actually references
// and discarded afterwards.
type Context struct {
	tables    map[any]map[string]ColumnData
	overrides map[*Column]ColumnData
}

func NewContext() *Context {
	return &Context{tables: make(map[any]map[string]ColumnData)}
}

// BindColumnNode overrides the binding of one specific column occurrence.
// Lookups through other occurrences of the same reference are unaffected,
// which lets a self-join give the two sides of one comparison different
// data.
func (c *Context) BindColumnNode(col *Column, data ColumnData) {
	if c.overrides == nil {
		c.overrides = make(map[*Column]ColumnData)
	}
	c.overrides[col] = data
}

func (c *Context) nodeOverride(col *Column) (ColumnData, bool) {
	data, ok := c.overrides[col]
	return data, ok
}

// Bind attaches the column bindings of one table. Binding the same source
// twice merges the column maps, with later entries winning.
func (c *Context) Bind(source any, columns map[string]ColumnData) {
	existing, ok := c.tables[source]
	if !ok {
		c.tables[source] = columns
		return
	}
	for name, cd := range columns {
		existing[name] = cd
	}
}

func (c *Context) column(ref Ref) (ColumnData, error) {
	cols, ok := c.tables[ref.Source]
	if !ok {
		return ColumnData{}, errs.Newf(errs.KindEval, "UNBOUND_TABLE",
			"expression references a table that is not bound in this context")
	}
	cd, ok := cols[ref.Name]
	if !ok {
		return ColumnData{}, errs.Newf(errs.KindEval, "UNKNOWN_COLUMN",
			"column %q is not bound in this context", ref.Name)
	}
	return cd, nil
}
