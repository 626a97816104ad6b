package analysis

import (
	"sort"
	"strings"

	"repolens/internal/scanner"
)

// FileNode is one entry of the repository tree.
type FileNode struct {
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	Dir      bool        `json:"dir,omitempty"`
	Size     int64       `json:"size,omitempty"`
	Children []*FileNode `json:"children,omitempty"`

	index map[string]*FileNode
}

// BuildTree arranges snapshot paths into a tree. Within a directory,
// subdirectories come first and each group is sorted by name.
func BuildTree(snap *scanner.Snapshot) *FileNode {
	root := newDir("", "")
	for _, f := range snap.Files {
		parts := strings.Split(f.Path, "/")
		cur := root
		for i, part := range parts {
			if part == "" {
				continue
			}
			p := strings.Join(parts[:i+1], "/")
			if i == len(parts)-1 {
				cur.index[part] = &FileNode{Name: part, Path: p, Size: f.SizeBytes}
				continue
			}
			child, ok := cur.index[part]
			if !ok || !child.Dir {
				child = newDir(part, p)
				cur.index[part] = child
			}
			cur = child
		}
	}
	root.seal()
	return root
}

func newDir(name, p string) *FileNode {
	return &FileNode{Name: name, Path: p, Dir: true, index: make(map[string]*FileNode)}
}

// seal turns the child index into the ordered Children slice.
func (n *FileNode) seal() {
	if !n.Dir {
		return
	}
	n.Children = make([]*FileNode, 0, len(n.index))
	for _, c := range n.index {
		c.seal()
		n.Children = append(n.Children, c)
	}
	sort.Slice(n.Children, func(i, j int) bool {
		a, b := n.Children[i], n.Children[j]
		if a.Dir != b.Dir {
			return a.Dir
		}
		return a.Name < b.Name
	})
	n.index = nil
}

// Render writes the tree as indented text, directories suffixed with "/".
// maxDepth < 0 means unlimited.
func (n *FileNode) Render(maxDepth int) string {
	var b strings.Builder
	renderTree(&b, n, "", 0, maxDepth)
	return b.String()
}

func renderTree(b *strings.Builder, node *FileNode, indent string, depth, maxDepth int) {
	if maxDepth >= 0 && depth > maxDepth {
		return
	}
	for _, c := range node.Children {
		b.WriteString(indent)
		b.WriteString(c.Name)
		if c.Dir {
			b.WriteString("/\n")
			renderTree(b, c, indent+"  ", depth+1, maxDepth)
			continue
		}
		b.WriteString("\n")
	}
}

// Count returns the number of files and directories below n.
func (n *FileNode) Count() (files, dirs int) {
	for _, c := range n.Children {
		if c.Dir {
			dirs++
			f, d := c.Count()
			files += f
			dirs += d
		} else {
			files++
		}
	}
	return files, dirs
}
