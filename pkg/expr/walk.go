package expr

// Children exposes a node's direct subtrees for structural inspection,
// e.g. assigning the two occurrences of one column reference different
// bindings in a self-join.

func (l *Literal) Children() []Node    { return nil }
func (c *Column) Children() []Node     { return nil }
func (c *Comparison) Children() []Node { return []Node{c.left, c.right} }
func (a *Arithmetic) Children() []Node { return []Node{a.left, a.right} }
func (l *Logical) Children() []Node    { return []Node{l.left, l.right} }
func (n *Negation) Children() []Node   { return []Node{n.child} }
func (u *UnaryFunc) Children() []Node  { return []Node{u.child} }
func (m *StringMatch) Children() []Node {
	return []Node{m.child, m.pattern}
}
func (nc *NullCheck) Children() []Node { return []Node{nc.child} }
func (m *Membership) Children() []Node { return []Node{m.child} }
func (ap *Approx) Children() []Node    { return []Node{ap.child, ap.target, ap.tolerance} }
func (r *Reduction) Children() []Node  { return []Node{r.child} }

// ValueOperands reports the two subtrees of a value-level binary node
// (comparison or arithmetic). Logical combinators do not qualify: they
// combine masks, not cell values.
func ValueOperands(n Node) (left, right Node, ok bool) {
	switch x := n.(type) {
	case *Comparison:
		return x.left, x.right, true
	case *Arithmetic:
		return x.left, x.right, true
	}
	return nil, nil, false
}

// Walk visits n and every descendant in depth-first pre-order.
func Walk(n Node, visit func(Node)) {
	visit(n)
	if parent, ok := n.(interface{ Children() []Node }); ok {
		for _, child := range parent.Children() {
			Walk(child, visit)
		}
	}
}

// scalarShape reports whether a node always evaluates to a true scalar,
// regardless of bindings: literals and reductions are scalar, column
// references never are, and every combinator is scalar exactly when all
// its operands are. known is false for node types outside this package's
// algebra, whose shape cannot be read off the tree.
func scalarShape(n Node) (scalar, known bool) {
	switch n.(type) {
	case *Literal:
		return true, true
	case *Column:
		return false, true
	case *Reduction:
		return true, true
	}
	parent, ok := n.(interface{ Children() []Node })
	if !ok {
		return false, false
	}
	for _, child := range parent.Children() {
		s, k := scalarShape(child)
		if !k {
			return false, false
		}
		if !s {
			return false, true
		}
	}
	return true, true
}

// ColumnsOf collects the column leaves under n, one entry per occurrence.
func ColumnsOf(n Node) []*Column {
	var out []*Column
	Walk(n, func(node Node) {
		if col, ok := node.(*Column); ok {
			out = append(out, col)
		}
	})
	return out
}
