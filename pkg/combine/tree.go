// File: pkg/combine/tree.go
package combine

import (
	"fmt"
	"sort"
	"strings"
)

// treeNode is a directory or file in the rendered tree.
type treeNode struct {
	name     string
	children map[string]*treeNode
}

func newTreeNode(name string) *treeNode {
	return &treeNode{name: name, children: map[string]*treeNode{}}
}

// GenerateTree renders slash-separated relative paths as an indented tree
// under a "./" root line. Directories are listed before files, each group
// alphabetically, case-insensitively.
func GenerateTree(paths []string) string {
	root := newTreeNode(".")
	for _, p := range paths {
		node := root
		for _, part := range strings.Split(p, "/") {
			if part == "" {
				continue
			}
			child, ok := node.children[part]
			if !ok {
				child = newTreeNode(part)
				node.children[part] = child
			}
			node = child
		}
	}

	var treeBuilder strings.Builder
	treeBuilder.WriteString("./\n")
	writeTree(&treeBuilder, root, "")
	return treeBuilder.String()
}

// writeTree appends the children of node, one per line, prefixed with
// box-drawing connectors.
func writeTree(b *strings.Builder, node *treeNode, prefix string) {
	entries := make([]*treeNode, 0, len(node.children))
	for _, child := range node.children {
		entries = append(entries, child)
	}

	sort.Slice(entries, func(i, j int) bool {
		iDir, jDir := len(entries[i].children) > 0, len(entries[j].children) > 0
		if iDir != jDir {
			return iDir
		}
		li, lj := strings.ToLower(entries[i].name), strings.ToLower(entries[j].name)
		if li != lj {
			return li < lj
		}
		return entries[i].name < entries[j].name
	})

	for i, entry := range entries {
		connector := "├── "
		extension := "│   "
		if i == len(entries)-1 {
			connector = "└── "
			extension = "    "
		}

		if len(entry.children) > 0 {
			fmt.Fprintf(b, "%s%s%s/\n", prefix, connector, entry.name)
			writeTree(b, entry, prefix+extension)
		} else {
			fmt.Fprintf(b, "%s%s%s\n", prefix, connector, entry.name)
		}
	}
}
