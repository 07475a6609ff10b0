package domain

import "sort"

type FileNode struct {
	Path     string
	Name     string
	IsDir    bool
	Size     int64
	Err      ErrKind
	Parent   *FileNode
	Children []*FileNode
}

func NewDirNode(path, name string) *FileNode {
	return &FileNode{Path: path, Name: name, IsDir: true}
}

func NewFileNode(path, name string, size int64) *FileNode {
	return &FileNode{Path: path, Name: name, Size: size}
}

func (node *FileNode) AddChild(child *FileNode) {
	child.Parent = node
	node.Children = append(node.Children, child)
}

// SortBySize orders children largest first, names breaking ties so the
// order stays deterministic for equal sizes.
func (node *FileNode) SortBySize() {
	sort.SliceStable(node.Children, func(i, j int) bool {
		if node.Children[i].Size != node.Children[j].Size {
			return node.Children[i].Size > node.Children[j].Size
		}
		return node.Children[i].Name < node.Children[j].Name
	})
}

// TopAncestor returns the child of root on the path from node up to root,
// or node itself when node is the root.
func (node *FileNode) TopAncestor(root *FileNode) *FileNode {
	current := node
	for current != root && current.Parent != nil && current.Parent != root {
		current = current.Parent
	}
	return current
}

func (node *FileNode) Depth(root *FileNode) int {
	depth := 0
	for current := node; current != root && current.Parent != nil; current = current.Parent {
		depth++
	}
	return depth
}

func (node *FileNode) ChildIndex(child *FileNode) int {
	for i, candidate := range node.Children {
		if candidate == child {
			return i
		}
	}
	return -1
}
