package chunk

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/voxelsplace/voxcore/octree"
)

// slot is the octree item for a chunk in a Collection.
type slot struct {
	index  int
	bounds octree.Box
}

func (s slot) Bounds() octree.Box { return s.bounds }

// Collection is an ordered set of chunks indexed by their world bounds.
type Collection struct {
	chunks []*Model
	index  *octree.Octree[slot]
}

// ChunkHit is a chunk crossed by a ray.
type ChunkHit struct {
	Chunk    *Model
	Distance float32
}

// NewCollection creates an empty collection covering world.
func NewCollection(world octree.Box) *Collection {
	return &Collection{index: octree.New[slot](world)}
}

// LoadCollection loads every content into a collection covering world.
func LoadCollection(world octree.Box, contents []Content) (*Collection, error) {
	c := NewCollection(world)
	for i := range contents {
		m, err := Load(&contents[i])
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		if !c.Add(m) {
			return nil, fmt.Errorf("chunk %d at %v: outside collection bounds", i, m.Origin())
		}
	}
	return c, nil
}

// Add appends m. It returns false when m lies outside the collection bounds.
// Chunks must not be moved after being added.
func (c *Collection) Add(m *Model) bool {
	s := slot{index: len(c.chunks), bounds: m.Bounds()}
	if !c.index.Insert(s) {
		return false
	}
	c.chunks = append(c.chunks, m)
	return true
}

func (c *Collection) Len() int { return len(c.chunks) }

// Chunks returns the chunks in insertion order.
func (c *Collection) Chunks() []*Model { return c.chunks }

func (c *Collection) Bounds() octree.Box { return c.index.Bounds() }

// Query returns the chunks whose bounds overlap box, in insertion order.
func (c *Collection) Query(box octree.Box) []*Model {
	slots := c.index.Intersecting(box)
	slices.SortFunc(slots, func(a, b slot) int { return cmp.Compare(a.index, b.index) })
	out := make([]*Model, len(slots))
	for i, s := range slots {
		out[i] = c.chunks[s.index]
	}
	return out
}

// Raycast returns the chunks crossed by ray, nearest first.
func (c *Collection) Raycast(ray octree.Ray) []ChunkHit {
	hits := c.index.RayHits(ray)
	slices.SortFunc(hits, func(a, b octree.RayHit[slot]) int {
		if d := cmp.Compare(a.Distance, b.Distance); d != 0 {
			return d
		}
		return cmp.Compare(a.Item.index, b.Item.index)
	})
	out := make([]ChunkHit, len(hits))
	for i, h := range hits {
		out[i] = ChunkHit{Chunk: c.chunks[h.Item.index], Distance: h.Distance}
	}
	return out
}

// Intersect runs Model.Intersect on the chunks crossed by ray, nearest first,
// and returns the first hit or error.
func (c *Collection) Intersect(ray octree.Ray) (BlockIntersection, *Model, error) {
	for _, h := range c.Raycast(ray) {
		hit, ok, err := h.Chunk.Intersect(ray)
		if err != nil {
			return BlockIntersection{}, h.Chunk, err
		}
		if ok {
			return hit, h.Chunk, nil
		}
	}
	return BlockIntersection{}, nil, nil
}
