package treemap

import (
	"fmt"
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"

	"diskmap/internal/domain"
)

type Rect struct {
	X, Y, W, H float64
}

func (rect Rect) Area() float64 {
	if rect.W <= 0 || rect.H <= 0 {
		return 0
	}
	return rect.W * rect.H
}

// Snap rounds the rectangle onto an integer grid. Both edges are rounded
// independently, so neighbours that share a float edge share the snapped
// edge too and rounding error never opens a gap between siblings.
func (rect Rect) Snap() (x, y, w, h int) {
	x0 := int(math.Round(rect.X))
	y0 := int(math.Round(rect.Y))
	x1 := int(math.Round(rect.X + rect.W))
	y1 := int(math.Round(rect.Y + rect.H))
	return x0, y0, x1 - x0, y1 - y0
}

type Entry struct {
	Node  *domain.FileNode
	Rect  Rect
	Color colorful.Color
}

// Children contributing less than minVisibleRatio of their level are
// folded into one synthetic "other" block; blocks that small would snap
// to zero cells anyway.
const minVisibleRatio = 0.015

type Layouter struct {
	root    *domain.FileNode
	palette []colorful.Color
}

func NewLayouter(root *domain.FileNode) *Layouter {
	return &Layouter{root: root, palette: defaultPalette()}
}

// Layout partitions rect among the immediate children of node using the
// squarified heuristic. Children with zero or negative size are omitted.
// Deeper levels are laid out lazily by calling Layout again on a child.
func (layouter *Layouter) Layout(node *domain.FileNode, rect Rect) []Entry {
	if node == nil || rect.W <= 0 || rect.H <= 0 {
		return nil
	}

	children := make([]*domain.FileNode, 0, len(node.Children))
	var total float64
	for _, child := range node.Children {
		if child.Size <= 0 {
			continue
		}
		children = append(children, child)
		total += float64(child.Size)
	}
	if len(children) == 0 || total <= 0 {
		return nil
	}
	sortBySizeDesc(children)
	children, synthetic := foldSlivers(node, children, total)

	if len(children) == 1 {
		entries := []Entry{{Node: children[0], Rect: rect, Color: layouter.colorFor(children[0])}}
		recolorSynthetic(entries, synthetic)
		return entries
	}

	// Normalize sizes to areas within rect.
	areas := make([]float64, len(children))
	scale := rect.Area() / total
	for i, child := range children {
		areas[i] = float64(child.Size) * scale
	}

	entries := make([]Entry, 0, len(children))
	remaining := rect
	row := make([]float64, 0, len(children))
	rowNodes := make([]*domain.FileNode, 0, len(children))

	next := 0
	for next < len(children) {
		side := shortSide(remaining)
		if len(row) == 0 || worstRatio(append(append([]float64{}, row...), areas[next]), side) <= worstRatio(row, side) {
			row = append(row, areas[next])
			rowNodes = append(rowNodes, children[next])
			next++
			continue
		}
		remaining = layouter.layoutRow(&entries, row, rowNodes, remaining)
		row = row[:0]
		rowNodes = rowNodes[:0]
	}
	if len(row) > 0 {
		layouter.layoutRow(&entries, row, rowNodes, remaining)
	}
	recolorSynthetic(entries, synthetic)
	return entries
}

// foldSlivers replaces the tail of a sorted child list with one synthetic
// directory node when two or more children each fall below the visible
// ratio. The synthetic node's children are the folded originals, so
// drilling into it works like any other directory.
func foldSlivers(parent *domain.FileNode, children []*domain.FileNode, total float64) ([]*domain.FileNode, *domain.FileNode) {
	cut := len(children)
	for cut > 0 && float64(children[cut-1].Size)/total < minVisibleRatio {
		cut--
	}
	if len(children)-cut < 2 {
		return children, nil
	}

	folded := children[cut:]
	var sum int64
	for _, child := range folded {
		sum += child.Size
	}
	synthetic := &domain.FileNode{
		Path:     parent.Path,
		Name:     fmt.Sprintf("other (%d items)", len(folded)),
		IsDir:    true,
		Size:     sum,
		Parent:   parent,
		Children: folded,
	}
	return append(children[:cut:cut], synthetic), synthetic
}

func recolorSynthetic(entries []Entry, synthetic *domain.FileNode) {
	if synthetic == nil {
		return
	}
	for i := range entries {
		if entries[i].Node == synthetic {
			entries[i].Color = syntheticColor
		}
	}
}

// layoutRow places one closed row along the shorter side of rect and
// returns the rectangle left over. Offsets accumulate in float64 so
// adjacent items share exact edges.
func (layouter *Layouter) layoutRow(entries *[]Entry, row []float64, nodes []*domain.FileNode, rect Rect) Rect {
	var rowSum float64
	for _, area := range row {
		rowSum += area
	}
	if rowSum <= 0 || rect.W <= 0 || rect.H <= 0 {
		return rect
	}

	if rect.W >= rect.H {
		// Column against the left edge, items stacked top to bottom.
		colWidth := rowSum / rect.H
		offset := rect.Y
		for i, area := range row {
			itemHeight := area / colWidth
			*entries = append(*entries, Entry{
				Node:  nodes[i],
				Rect:  Rect{X: rect.X, Y: offset, W: colWidth, H: itemHeight},
				Color: layouter.colorFor(nodes[i]),
			})
			offset += itemHeight
		}
		return Rect{X: rect.X + colWidth, Y: rect.Y, W: rect.W - colWidth, H: rect.H}
	}

	// Row against the top edge, items left to right.
	rowHeight := rowSum / rect.W
	offset := rect.X
	for i, area := range row {
		itemWidth := area / rowHeight
		*entries = append(*entries, Entry{
			Node:  nodes[i],
			Rect:  Rect{X: offset, Y: rect.Y, W: itemWidth, H: rowHeight},
			Color: layouter.colorFor(nodes[i]),
		})
		offset += itemWidth
	}
	return Rect{X: rect.X, Y: rect.Y + rowHeight, W: rect.W, H: rect.H - rowHeight}
}

func shortSide(rect Rect) float64 {
	if rect.W < rect.H {
		return rect.W
	}
	return rect.H
}

// worstRatio is the squarify heuristic: the worst aspect ratio a row of
// the given areas would have when laid along a side of the given length.
func worstRatio(row []float64, side float64) float64 {
	if len(row) == 0 || side <= 0 {
		return math.Inf(1)
	}
	var sum, largest float64
	smallest := math.Inf(1)
	for _, area := range row {
		sum += area
		if area > largest {
			largest = area
		}
		if area < smallest {
			smallest = area
		}
	}
	if sum <= 0 || smallest <= 0 {
		return math.Inf(1)
	}
	side2 := side * side
	return math.Max(side2*largest/(sum*sum), sum*sum/(side2*smallest))
}

func sortBySizeDesc(nodes []*domain.FileNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Size != nodes[j].Size {
			return nodes[i].Size > nodes[j].Size
		}
		return nodes[i].Name < nodes[j].Name
	})
}
