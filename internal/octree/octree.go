// Package octree builds an adaptive color palette from a histogram of
// pixels using a bit-interleaved octree, the way the original image
// reductor's octree_* family does: insert every pixel into an 8-ary
// tree keyed on successive RGB bit-planes, prune the tree down to the
// requested color count by repeatedly folding the cheapest reducible
// parent into a leaf, then emit one averaged color per surviving leaf.
package octree

import (
	"sort"

	"github.com/sayaka-go/sayaka/internal/rimg"
)

const maxDepth = 5 // 5 bits/channel, matching the ARGB16 working format

type node struct {
	children [8]*node
	leaf     bool
	sumR     uint64
	sumG     uint64
	sumB     uint64
	count    uint64
	// paletteIdx is not set or read anywhere in this package.
	paletteIdx int
}

// Tree accumulates a color histogram and reduces it to a fixed-size
// palette on demand.
type Tree struct {
	root      *node
	leafCount int
}

// New returns an empty octree.
func New() *Tree {
	return &Tree{root: &node{}}
}

// octantIndex returns the 0-7 child slot for (r,g,b) (each 0-31) at
// tree depth d: one bit per channel, most significant bit first,
// matching octree_set's bit-interleave.
func octantIndex(r, g, b uint8, d int) int {
	shift := maxDepth - 1 - d
	ri := (r >> uint(shift)) & 1
	gi := (g >> uint(shift)) & 1
	bi := (b >> uint(shift)) & 1
	return int(ri)<<2 | int(gi)<<1 | int(bi)
}

// Add inserts one occurrence of (r,g,b), each a 5-bit channel value
// (0-31), into the histogram. This is octree_set.
func (t *Tree) Add(r, g, b uint8) {
	n := t.root
	for d := 0; d < maxDepth; d++ {
		if n.leaf {
			break
		}
		idx := octantIndex(r, g, b, d)
		child := n.children[idx]
		if child == nil {
			child = &node{}
			n.children[idx] = child
			if d == maxDepth-1 {
				child.leaf = true
				t.leafCount++
			}
		}
		n = child
	}
	n.sumR += uint64(r)
	n.sumG += uint64(g)
	n.sumB += uint64(b)
	n.count++
}

// findMinParent finds the parent of some leaf pair with the minimum total
// pixel count among its leaf children, walking bottom-up exactly like
// octree_find_minnode: the cheapest merge is the one that throws away
// the fewest pixels' worth of distinctness.
func (t *Tree) findMinParent() (*node, uint64) {
	var best *node
	var bestCount uint64 = ^uint64(0)
	var walk func(n *node, depth int)
	walk = func(n *node, depth int) {
		if n == nil || n.leaf {
			return
		}
		hasLeafChild := false
		var sum uint64
		for _, c := range n.children {
			if c != nil {
				if c.leaf {
					hasLeafChild = true
					sum += c.count
				}
				walk(c, depth+1)
			}
		}
		if hasLeafChild && sum < bestCount {
			bestCount = sum
			best = n
		}
	}
	walk(t.root, 0)
	return best, bestCount
}

// mergeLeaves folds all leaf children of p into p itself, turning p
// into a single leaf carrying their combined histogram. This is
// octree_merge_leaves.
func (t *Tree) mergeLeaves(p *node) {
	var r, g, b, c uint64
	merged := 0
	for i, child := range p.children {
		if child != nil && child.leaf {
			r += child.sumR
			g += child.sumG
			b += child.sumB
			c += child.count
			p.children[i] = nil
			merged++
		}
	}
	p.leaf = true
	p.sumR, p.sumG, p.sumB, p.count = r, g, b, c
	t.leafCount -= merged - 1
}

// Reduce prunes the tree until at most maxColors leaves remain, then
// emits one averaged ColorRGB per leaf, sorted by luminance. This is
// octree_make_palette.
func (t *Tree) Reduce(maxColors int) []rimg.ColorRGB {
	if maxColors < 1 {
		maxColors = 1
	}
	for t.leafCount > maxColors {
		parent, _ := t.findMinParent()
		if parent == nil {
			break
		}
		t.mergeLeaves(parent)
	}

	var out []rimg.ColorRGB
	var walk func(n *node)
	walk = func(n *node) {
		if n == nil {
			return
		}
		if n.leaf {
			if n.count == 0 {
				return
			}
			r8 := scale5to8(uint8(n.sumR / n.count))
			g8 := scale5to8(uint8(n.sumG / n.count))
			b8 := scale5to8(uint8(n.sumB / n.count))
			out = append(out, rimg.ColorRGB{
				R: r8, G: g8, B: b8,
				Y: luminance(r8, g8, b8),
			})
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(t.root)

	sort.Slice(out, func(i, j int) bool { return out[i].Y < out[j].Y })
	return out
}

func scale5to8(v uint8) uint8 {
	return v<<3 | v>>2
}

// luminance is the Rec. 601 weighting used by cmp_y to order palette
// entries and to bucket the finder.
func luminance(r, g, b uint8) uint8 {
	y := (299*int(r) + 587*int(g) + 114*int(b)) / 1000
	if y > 255 {
		y = 255
	}
	return uint8(y)
}

// Finder does a bucketed nearest-color search over a luminance-sorted
// palette: instead of a full linear scan per pixel, it starts from the
// bucket whose luminance matches the query and widens outward only as
// far as a fixed margin, trading a small amount of accuracy at palette
// boundaries for a large constant-factor speedup. This is finder_linear
// made bucket-aware.
type Finder struct {
	palette []rimg.ColorRGB
	margin  int
}

// NewFinder builds a finder over a palette already sorted by Y
// (ascending), as returned by Reduce.
func NewFinder(palette []rimg.ColorRGB, margin int) *Finder {
	if margin < 1 {
		margin = 8
	}
	return &Finder{palette: palette, margin: margin}
}

// Nearest returns the index of the closest palette entry to (r,g,b) by
// squared Euclidean distance in RGB space.
func (f *Finder) Nearest(r, g, b uint8) int {
	if len(f.palette) == 0 {
		return -1
	}
	y := luminance(r, g, b)
	start := sort.Search(len(f.palette), func(i int) bool { return f.palette[i].Y >= y })

	lo := start - f.margin
	if lo < 0 {
		lo = 0
	}
	hi := start + f.margin
	if hi > len(f.palette) {
		hi = len(f.palette)
	}

	best := lo
	bestDist := -1
	for i := lo; i < hi; i++ {
		c := f.palette[i]
		dr := int(c.R) - int(r)
		dg := int(c.G) - int(g)
		db := int(c.B) - int(b)
		d := dr*dr + dg*dg + db*db
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}
