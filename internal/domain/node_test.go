package domain

import "testing"

func TestSortBySize(t *testing.T) {
	root := NewDirNode("/r", "r")
	root.AddChild(NewFileNode("/r/b", "b", 10))
	root.AddChild(NewFileNode("/r/c", "c", 30))
	root.AddChild(NewFileNode("/r/a", "a", 10))
	root.SortBySize()

	want := []string{"c", "a", "b"}
	for i, name := range want {
		if root.Children[i].Name != name {
			t.Errorf("child %d = %s, want %s", i, root.Children[i].Name, name)
		}
	}
}

func TestTopAncestorAndDepth(t *testing.T) {
	root := NewDirNode("/r", "r")
	top := NewDirNode("/r/top", "top")
	mid := NewDirNode("/r/top/mid", "mid")
	leaf := NewFileNode("/r/top/mid/leaf", "leaf", 1)
	root.AddChild(top)
	top.AddChild(mid)
	mid.AddChild(leaf)

	if got := leaf.TopAncestor(root); got != top {
		t.Errorf("TopAncestor = %s, want top", got.Name)
	}
	if got := top.TopAncestor(root); got != top {
		t.Errorf("TopAncestor of a top-level child = %s, want itself", got.Name)
	}
	if got := root.TopAncestor(root); got != root {
		t.Errorf("TopAncestor of root = %s, want root", got.Name)
	}

	if got := leaf.Depth(root); got != 3 {
		t.Errorf("Depth = %d, want 3", got)
	}
	if got := root.Depth(root); got != 0 {
		t.Errorf("root Depth = %d, want 0", got)
	}
}

func TestChildIndex(t *testing.T) {
	root := NewDirNode("/r", "r")
	a := NewFileNode("/r/a", "a", 1)
	root.AddChild(a)

	if got := root.ChildIndex(a); got != 0 {
		t.Errorf("ChildIndex = %d, want 0", got)
	}
	if got := root.ChildIndex(NewFileNode("/x", "x", 1)); got != -1 {
		t.Errorf("ChildIndex of stranger = %d, want -1", got)
	}
}
