package textractor

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// WriteTreeDiagram renders the given file paths as an ascii directory tree.
// Intermediate directories are reconstructed from the paths.
func WriteTreeDiagram(w io.Writer, paths []string) error {
	type treeNode struct {
		name     string
		isDir    bool
		children map[string]*treeNode
	}

	root := &treeNode{children: make(map[string]*treeNode)}
	for _, path := range paths {
		cur := root
		segments := strings.Split(path, "/")
		for i, seg := range segments {
			child, ok := cur.children[seg]
			if !ok {
				child = &treeNode{name: seg, children: make(map[string]*treeNode)}
				cur.children[seg] = child
			}
			if i < len(segments)-1 {
				child.isDir = true
			}
			cur = child
		}
	}

	var writeChildren func(n *treeNode, prefix string) error
	writeChildren = func(n *treeNode, prefix string) error {
		names := make([]string, 0, len(n.children))
		for name := range n.children {
			names = append(names, name)
		}
		sort.Strings(names)

		for i, name := range names {
			child := n.children[name]
			connector, childPrefix := "├── ", prefix+"│   "
			if i == len(names)-1 {
				connector, childPrefix = "└── ", prefix+"    "
			}

			display := child.name
			if child.isDir {
				display += "/"
			}
			if _, err := fmt.Fprintln(w, prefix+connector+display); err != nil {
				return err
			}
			if err := writeChildren(child, childPrefix); err != nil {
				return err
			}
		}
		return nil
	}
	return writeChildren(root, "")
}
