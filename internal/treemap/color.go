package treemap

import (
	"github.com/cespare/xxhash/v2"
	"github.com/lucasb-eyer/go-colorful"

	"diskmap/internal/domain"
)

// Low-saturation base hues cycled across the top-level children of the
// scan root. Everything below a top-level directory stays in its hue
// family so a folder and its contents read as one visual group.
var baseHexPalette = []string{
	"#4e79a7",
	"#a0cbe8",
	"#f28e2b",
	"#ffbe7d",
	"#59a14f",
	"#8cd17d",
	"#76b7b2",
	"#b07aa1",
	"#edc949",
	"#9c755f",
}

// syntheticColor marks the folded "other" block: a neutral gray outside
// the palette so it never reads as a real directory's hue family.
var syntheticColor = colorful.Color{R: 0.42, G: 0.44, B: 0.47}

const (
	lightnessStep  = 0.05
	lightnessFloor = 0.18
	lightnessCeil  = 0.82
	jitterSpan     = 0.06
	jitterGranules = 13
)

func defaultPalette() []colorful.Color {
	palette := make([]colorful.Color, 0, len(baseHexPalette))
	for _, hex := range baseHexPalette {
		color, err := colorful.Hex(hex)
		if err != nil {
			continue
		}
		palette = append(palette, color)
	}
	return palette
}

// colorFor maps a node to its color. The mapping depends only on the
// node's position in the tree and its path, so repeated layout calls over
// an unchanged tree always produce identical colors.
func (layouter *Layouter) colorFor(node *domain.FileNode) colorful.Color {
	if len(layouter.palette) == 0 {
		return colorful.Color{R: 0.5, G: 0.5, B: 0.5}
	}

	top := node.TopAncestor(layouter.root)
	index := layouter.root.ChildIndex(top)
	if index < 0 {
		index = 0
	}
	base := layouter.palette[index%len(layouter.palette)]

	hue, sat, light := base.Hsl()
	depth := node.Depth(layouter.root)
	if depth > 1 {
		light += lightnessStep * float64(depth-1)
	}
	light += pathJitter(node.Path)
	light = clamp(light, lightnessFloor, lightnessCeil)
	return colorful.Hsl(hue, sat, light)
}

// pathJitter derives a small deterministic lightness offset from the path
// so equal-depth siblings remain distinguishable.
func pathJitter(path string) float64 {
	granule := xxhash.Sum64String(path) % jitterGranules
	centered := float64(granule) - float64(jitterGranules-1)/2
	return centered / float64(jitterGranules-1) * jitterSpan
}

func clamp(value, low, high float64) float64 {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
