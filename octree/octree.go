// Package octree implements a bounding-volume octree over items that expose
// an axis-aligned box.
//
// Nodes live in a single arena slice and reference their children by index.
// A node subdivides the first time an insertion would exceed MaxItemCount and
// never merges back. Items that no child accepts stay in the parent.
//
// An item goes to the first child it overlaps and may extend past that
// child's box. Every node therefore also tracks its reach, the union of its
// box and the boxes of all items stored at or below it, and queries prune
// on reach rather than on the node box.
package octree

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxItemCount is the number of items a leaf holds before it subdivides.
const MaxItemCount = 48

// Item is anything with bounds. Items are compared by value.
type Item interface {
	comparable
	Bounds() Box
}

// NodeIndex addresses a node inside the arena.
type NodeIndex int32

const (
	root       NodeIndex = 0
	noChildren NodeIndex = -1
)

// childSigns gives the offset direction of each child center.
var childSigns = [8]mgl32.Vec3{
	{-1, +1, +1},
	{-1, +1, -1},
	{+1, +1, +1},
	{+1, +1, -1},
	{-1, -1, +1},
	{-1, -1, -1},
	{+1, -1, +1},
	{+1, -1, -1},
}

type node[T Item] struct {
	bounds Box
	// reach covers bounds and every item stored in the subtree. It only
	// grows until Clear.
	reach Box
	items []T
	// first is the index of the first of eight contiguous children, or noChildren.
	first NodeIndex
}

func (n *node[T]) divided() bool { return n.first != noChildren }

// Octree is not safe for concurrent mutation.
type Octree[T Item] struct {
	nodes []node[T]
	count int
}

// New creates an octree covering bounds.
func New[T Item](bounds Box) *Octree[T] {
	return &Octree[T]{
		nodes: []node[T]{{bounds: bounds, reach: bounds, first: noChildren}},
	}
}

// Bounds returns the volume covered by the tree.
func (o *Octree[T]) Bounds() Box { return o.nodes[root].bounds }

// Len returns the number of stored items.
func (o *Octree[T]) Len() int { return o.count }

// NodeCount returns the number of allocated nodes.
func (o *Octree[T]) NodeCount() int { return len(o.nodes) }

// Divided reports whether the root has subdivided.
func (o *Octree[T]) Divided() bool { return o.nodes[root].divided() }

// Insert adds item. It returns false when the item's bounds neither lie in
// nor intersect the tree's bounds.
func (o *Octree[T]) Insert(item T) bool {
	if !o.nodes[root].bounds.Overlaps(item.Bounds()) {
		return false
	}
	o.place(root, item)
	o.count++
	return true
}

// place stores item at or below n, which must overlap the item.
func (o *Octree[T]) place(n NodeIndex, item T) {
	b := item.Bounds()
	for {
		o.nodes[n].reach = o.nodes[n].reach.Union(b)
		if !o.nodes[n].divided() {
			if len(o.nodes[n].items) < MaxItemCount {
				o.nodes[n].items = append(o.nodes[n].items, item)
				return
			}
			o.divide(n)
		}
		child, ok := o.childFor(n, b)
		if !ok {
			o.nodes[n].items = append(o.nodes[n].items, item)
			return
		}
		n = child
	}
}

func (o *Octree[T]) childFor(n NodeIndex, b Box) (NodeIndex, bool) {
	first := o.nodes[n].first
	for i := NodeIndex(0); i < 8; i++ {
		if o.nodes[first+i].bounds.Overlaps(b) {
			return first + i, true
		}
	}
	return 0, false
}

// divide creates the eight children of n and moves every held item that a
// child accepts into it, in list order.
func (o *Octree[T]) divide(n NodeIndex) {
	if o.nodes[n].divided() {
		panic("octree: node already divided")
	}
	bounds := o.nodes[n].bounds
	center := bounds.Center()
	q := bounds.Extent().Mul(0.25)

	first := NodeIndex(len(o.nodes))
	for _, s := range childSigns {
		c := mgl32.Vec3{center[0] + s[0]*q[0], center[1] + s[1]*q[1], center[2] + s[2]*q[2]}
		cb := Box{Min: c.Sub(q), Max: c.Add(q)}
		o.nodes = append(o.nodes, node[T]{bounds: cb, reach: cb, first: noChildren})
	}
	o.nodes[n].first = first

	held := o.nodes[n].items
	o.nodes[n].items = nil
	kept := held[:0]
	for _, it := range held {
		if child, ok := o.childFor(n, it.Bounds()); ok {
			o.place(child, it)
			continue
		}
		kept = append(kept, it)
	}
	clear(held[len(kept):])
	o.nodes[n].items = kept
}

type frame struct {
	n    NodeIndex
	next int8
}

// Remove deletes the first stored item equal to item. Children are searched
// depth-first in order before a node's own list.
func (o *Octree[T]) Remove(item T) bool {
	b := item.Bounds()
	if !o.nodes[root].bounds.Overlaps(b) {
		return false
	}
	stack := []frame{{n: root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		nd := &o.nodes[top.n]
		if nd.divided() && top.next < 8 {
			c := nd.first + NodeIndex(top.next)
			top.next++
			if o.nodes[c].reach.Overlaps(b) {
				stack = append(stack, frame{n: c})
			}
			continue
		}
		if i := slices.Index(nd.items, item); i >= 0 {
			nd.items = slices.Delete(nd.items, i, i+1)
			o.count--
			return true
		}
		stack = stack[:len(stack)-1]
	}
	return false
}

// Clear empties every node. Subdivisions stay in place.
func (o *Octree[T]) Clear() {
	for i := range o.nodes {
		clear(o.nodes[i].items)
		o.nodes[i].items = o.nodes[i].items[:0]
		o.nodes[i].reach = o.nodes[i].bounds
	}
	o.count = 0
}

// visit walks every node whose reach is accepted by enter, depth-first,
// children in order.
func (o *Octree[T]) visit(enter func(Box) bool, fn func(nd *node[T])) {
	if !enter(o.nodes[root].reach) {
		return
	}
	stack := []NodeIndex{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nd := &o.nodes[n]
		fn(nd)
		if !nd.divided() {
			continue
		}
		for i := NodeIndex(7); i >= 0; i-- {
			c := nd.first + i
			if enter(o.nodes[c].reach) {
				stack = append(stack, c)
			}
		}
	}
}

// Intersecting returns every item whose bounds contain or intersect box.
// Result order is unspecified.
func (o *Octree[T]) Intersecting(box Box) []T {
	var out []T
	o.visit(box.Overlaps, func(nd *node[T]) {
		for _, it := range nd.items {
			if it.Bounds().Overlaps(box) {
				out = append(out, it)
			}
		}
	})
	return out
}

// Collides reports whether any stored item overlaps box.
func (o *Octree[T]) Collides(box Box) bool {
	hit := false
	o.visit(func(b Box) bool { return !hit && b.Overlaps(box) }, func(nd *node[T]) {
		for _, it := range nd.items {
			if it.Bounds().Overlaps(box) {
				hit = true
				return
			}
		}
	})
	return hit
}

// RayHit is a stored item crossed by a ray and the distance at which the
// ray enters its bounds.
type RayHit[T Item] struct {
	Item     T
	Distance float32
}

// RayHits returns every stored item whose bounds the ray crosses.
// Rays with near-zero direction components only hit boxes whose slab holds
// the origin on that axis.
func (o *Octree[T]) RayHits(ray Ray) []RayHit[T] {
	var out []RayHit[T]
	crosses := func(b Box) bool {
		_, ok := b.IntersectRay(ray)
		return ok
	}
	o.visit(crosses, func(nd *node[T]) {
		for _, it := range nd.items {
			if d, ok := it.Bounds().IntersectRay(ray); ok {
				out = append(out, RayHit[T]{Item: it, Distance: d})
			}
		}
	})
	return out
}

// RayDistances returns one entry distance per stored item the ray crosses.
func (o *Octree[T]) RayDistances(ray Ray) []float32 {
	hits := o.RayHits(ray)
	out := make([]float32, len(hits))
	for i, h := range hits {
		out[i] = h.Distance
	}
	return out
}

// Items returns every stored item in traversal order.
func (o *Octree[T]) Items() []T {
	out := make([]T, 0, o.count)
	o.visit(func(Box) bool { return true }, func(nd *node[T]) {
		out = append(out, nd.items...)
	})
	return out
}
