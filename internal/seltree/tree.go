// Package seltree models the checkbox tree used to pick files out of a
// repository listing. It builds a directory/file tree from a flat path list,
// tracks a tri-state (checked / unchecked / indeterminate) selection on every
// node, and reduces the current selection into the minimal list of path
// prefixes to send to the digest generator.
package seltree

import (
	"fmt"
	"sort"
	"strings"
)

// Kind distinguishes the repository root from directories and files.
type Kind int

const (
	KindRoot Kind = iota
	KindDir
	KindFile
)

// State is the tri-state selection value of a node. Files are only ever
// Checked or Unchecked; directories and the root may also be Indeterminate
// when their contents are a strict mix.
type State int

const (
	Unchecked State = iota
	Checked
	Indeterminate
)

func (s State) String() string {
	switch s {
	case Checked:
		return "checked"
	case Unchecked:
		return "unchecked"
	case Indeterminate:
		return "indeterminate"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MalformedPathError reports a structurally invalid path in the input
// listing. The whole build is rejected; no partial tree is returned.
type MalformedPathError struct {
	Path   string
	Reason string
}

func (e *MalformedPathError) Error() string {
	return fmt.Sprintf("malformed path %q: %s", e.Path, e.Reason)
}

// StaleNodeError reports a Toggle on a node that belongs to a different tree
// generation, e.g. a handle kept across a re-fetch.
type StaleNodeError struct {
	Path string
}

func (e *StaleNodeError) Error() string {
	return fmt.Sprintf("stale node %q: node does not belong to this tree", e.Path)
}

// Node is a single entry in the tree: the root, a directory, or a file.
type Node struct {
	Name     string // last path segment; empty for the root
	FullPath string // slash-joined path from the root; "" for the root
	Kind     Kind
	State    State

	// Expanded is presentation state for tree rendering. It is orthogonal
	// to State: expanding or collapsing never changes the selection.
	Expanded bool

	parent   *Node
	children map[string]*Node
	tree     *Tree
}

// Tree owns one generation of nodes. A new fetch builds a new Tree; nodes
// from an older Tree are rejected by Toggle.
type Tree struct {
	Root *Node

	byPath map[string]*Node
}

// Build constructs a tree from a flat list of slash-separated repository
// paths. Intermediate segments become directories, the final segment a file.
// Every node starts Checked. The result is independent of input order since
// children are keyed by name.
func Build(paths []string) (*Tree, error) {
	t := &Tree{byPath: make(map[string]*Node)}
	t.Root = &Node{
		Kind:     KindRoot,
		State:    Checked,
		Expanded: true,
		children: make(map[string]*Node),
		tree:     t,
	}
	t.byPath[""] = t.Root

	for _, path := range paths {
		if path == "" {
			return nil, &MalformedPathError{Path: path, Reason: "empty path"}
		}
		segments := strings.Split(path, "/")
		cur := t.Root
		for i, seg := range segments {
			if seg == "" {
				return nil, &MalformedPathError{Path: path, Reason: "empty segment"}
			}
			isLast := i == len(segments)-1

			child, ok := cur.children[seg]
			if ok {
				if isLast {
					reason := "duplicate path"
					if child.Kind == KindDir {
						reason = fmt.Sprintf("%q is already a directory", child.FullPath)
					}
					return nil, &MalformedPathError{Path: path, Reason: reason}
				}
				if child.Kind == KindFile {
					return nil, &MalformedPathError{
						Path:   path,
						Reason: fmt.Sprintf("%q is already a file", child.FullPath),
					}
				}
			} else {
				kind := KindDir
				if isLast {
					kind = KindFile
				}
				child = &Node{
					Name:     seg,
					FullPath: joinPath(cur.FullPath, seg),
					Kind:     kind,
					State:    Checked,
					parent:   cur,
					tree:     t,
				}
				if kind == KindDir {
					child.children = make(map[string]*Node)
				}
				cur.children[seg] = child
				t.byPath[child.FullPath] = child
			}
			cur = child
		}
	}
	return t, nil
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

// Lookup returns the node at the given full path, or nil. The root is at "".
func (t *Tree) Lookup(path string) *Node {
	return t.byPath[path]
}

// Len returns the number of nodes in the tree, including the root.
func (t *Tree) Len() int {
	return len(t.byPath)
}

// Parent returns the node's parent, nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the node's immediate children sorted by name.
func (n *Node) Children() []*Node {
	if len(n.children) == 0 {
		return nil
	}
	out := make([]*Node, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// displayChildren orders directories before files, each group sorted by
// name. This is a presentation rule only; Children keeps plain name order.
func (n *Node) displayChildren() []*Node {
	all := n.Children()
	out := make([]*Node, 0, len(all))
	for _, c := range all {
		if c.Kind == KindDir {
			out = append(out, c)
		}
	}
	for _, c := range all {
		if c.Kind == KindFile {
			out = append(out, c)
		}
	}
	return out
}

// Row is one visible line of the tree as presented to the user.
type Row struct {
	Node  *Node
	Depth int
}

// VisibleRows flattens the tree into the rows currently visible, descending
// only into expanded directories. The root itself is not included.
func (t *Tree) VisibleRows() []Row {
	var rows []Row
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		for _, c := range n.displayChildren() {
			rows = append(rows, Row{Node: c, Depth: depth})
			if c.Kind == KindDir && c.Expanded {
				walk(c, depth+1)
			}
		}
	}
	walk(t.Root, 0)
	return rows
}

// SetExpanded sets the presentation expand/collapse flag. No-op for files.
func (n *Node) SetExpanded(expanded bool) {
	if n.Kind == KindFile {
		return
	}
	n.Expanded = expanded
}

// ExpandAll expands every directory in the tree.
func (t *Tree) ExpandAll() {
	for _, n := range t.byPath {
		if n.Kind != KindFile {
			n.Expanded = true
		}
	}
}
