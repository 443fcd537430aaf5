package seltree

import "sort"

// Reduce converts the current selection into the minimal inclusion set: the
// sorted list of paths whose subtrees are fully checked, with nested entries
// collapsed into their nearest checked ancestor. A fully checked tree
// reduces to [""], the sentinel for "include everything". Reduce is a pure
// read of the tree and can be called repeatedly.
func (t *Tree) Reduce() []string {
	if t.Root.State == Checked {
		return []string{""}
	}

	var out []string
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, c := range n.Children() {
			switch c.State {
			case Checked:
				// The whole subtree is included; one entry subsumes it.
				out = append(out, c.FullPath)
			case Indeterminate:
				walk(c)
			}
			// Unchecked subtrees contribute nothing.
		}
	}
	walk(t.Root)

	sort.Strings(out)
	return out
}
