package expr

import (
	"fmt"
)

// Literal is a constant scalar leaf. It broadcasts against columns of any
// size.
type Literal struct {
	value any
}

func NewLiteral(v any) *Literal {
	return &Literal{value: canonicalScalar(v)}
}

// Value returns the canonicalized literal value.
func (l *Literal) Value() any {
	return l.value
}

func (l *Literal) Eval(*Context) (Result, error) {
	return scalarResult(l.value), nil
}

func (l *Literal) Size(*Context) (int, error) {
	return 1, nil
}

func (l *Literal) Needed() []Ref {
	return nil
}

func (l *Literal) String() string {
	if s, ok := l.value.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", l.value)
}

// Column is a reference leaf. It holds the identity of the table it came
// from, never a copy of the values; the context supplies those at
// evaluation time.
type Column struct {
	source any
	name   string
}

func NewColumn(source any, name string) *Column {
	return &Column{source: source, name: name}
}

// Name returns the referenced column name.
func (c *Column) Name() string {
	return c.name
}

// Source returns the identity of the table the reference is bound to.
func (c *Column) Source() any {
	return c.source
}

func (c *Column) ref() Ref {
	return Ref{Source: c.source, Name: c.name}
}

func (c *Column) Eval(ctx *Context) (Result, error) {
	cd, err := c.data(ctx)
	if err != nil {
		return Result{}, err
	}
	return vectorResult(cd.Values), nil
}

func (c *Column) Size(ctx *Context) (int, error) {
	cd, err := c.data(ctx)
	if err != nil {
		return 0, err
	}
	return len(cd.Values), nil
}

func (c *Column) data(ctx *Context) (ColumnData, error) {
	if cd, ok := ctx.nodeOverride(c); ok {
		return cd, nil
	}
	return ctx.column(c.ref())
}

func (c *Column) Needed() []Ref {
	return []Ref{c.ref()}
}

func (c *Column) String() string {
	return c.name
}
