package seltree

// Toggle applies an explicit user action to a single node: the node and
// every descendant are forced to the given definite state, then every
// ancestor is recomputed from its immediate children. After Toggle returns
// the whole-tree tri-state invariant holds; there is no externally
// observable intermediate state.
func (t *Tree) Toggle(n *Node, checked bool) error {
	if n == nil || n.tree != t {
		path := ""
		if n != nil {
			path = n.FullPath
		}
		return &StaleNodeError{Path: path}
	}

	state := Unchecked
	if checked {
		state = Checked
	}
	forceState(n, state)

	for a := n.parent; a != nil; a = a.parent {
		a.recomputeFromChildren()
	}
	return nil
}

// forceState clears any indeterminate state below n by setting the whole
// subtree to a single definite state.
func forceState(n *Node, state State) {
	n.State = state
	for _, c := range n.children {
		forceState(c, state)
	}
}

// recomputeFromChildren derives a directory's state from its immediate
// children: all checked, all unchecked, or a mix (indeterminate). A node
// with no children keeps its previous explicit state; Build never produces
// such a directory, but a defensive caller could.
func (n *Node) recomputeFromChildren() {
	if len(n.children) == 0 {
		return
	}
	allChecked, allUnchecked := true, true
	for _, c := range n.children {
		if c.State != Checked {
			allChecked = false
		}
		if c.State != Unchecked {
			allUnchecked = false
		}
	}
	switch {
	case allChecked:
		n.State = Checked
	case allUnchecked:
		n.State = Unchecked
	default:
		n.State = Indeterminate
	}
}
