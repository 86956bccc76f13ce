// Package include parses dotted include-path lists into a prefix-merged tree
// describing which relationships to eager-load.
package include

import (
	"sort"
	"strings"
)

// Node is one relationship in an include tree. The root node has an empty
// name. Children are keyed by relationship name, so repeated prefixes merge
// into one subtree.
type Node struct {
	Name     string
	Children map[string]*Node
}

// Parse builds an include tree from one or more include parameters. Each
// parameter may itself be a comma-separated list; each entry is a dotted
// path. Empty input yields an empty tree.
func Parse(paths ...string) *Node {
	root := &Node{Children: map[string]*Node{}}
	for _, raw := range paths {
		for _, entry := range strings.Split(raw, ",") {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			root.insert(strings.Split(entry, "."))
		}
	}
	return root
}

func (n *Node) insert(segments []string) {
	current := n
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		child, ok := current.Children[seg]
		if !ok {
			child = &Node{Name: seg, Children: map[string]*Node{}}
			current.Children[seg] = child
		}
		current = child
	}
}

// IsEmpty reports whether the node has no children: the terminal case where
// no loading happens at all.
func (n *Node) IsEmpty() bool {
	return n == nil || len(n.Children) == 0
}

// ChildNames returns the node's child relationship names sorted, so sibling
// branches process in a reproducible order.
func (n *Node) ChildNames() []string {
	if n == nil {
		return nil
	}
	names := make([]string, 0, len(n.Children))
	for name := range n.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Paths flattens the tree back into sorted dotted paths, mainly for logging
// and tests.
func (n *Node) Paths() []string {
	if n.IsEmpty() {
		return nil
	}
	var out []string
	for _, name := range n.ChildNames() {
		child := n.Children[name]
		sub := child.Paths()
		if len(sub) == 0 {
			out = append(out, name)
			continue
		}
		for _, p := range sub {
			out = append(out, name+"."+p)
		}
	}
	return out
}
