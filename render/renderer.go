// Package render prepares CPU-side buffers for drawing chunks. The actual
// GPU calls live behind the Drawer interface.
package render

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxelsplace/voxcore/chunk"
	"github.com/voxelsplace/voxcore/mesh"
	"github.com/voxelsplace/voxcore/palette"
)

// Strategy selects how a chunk is turned into draw data.
type Strategy uint8

const (
	// Batch expands every block into a colored cube.
	Batch Strategy = iota
	// Instanced draws the shared cube once per active block.
	Instanced
	// Greedy draws the merged faces produced by the greedy mesher.
	Greedy
)

func (s Strategy) String() string {
	switch s {
	case Batch:
		return "batch"
	case Instanced:
		return "instanced"
	case Greedy:
		return "greedy"
	}
	return fmt.Sprintf("strategy(%d)", uint8(s))
}

func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "batch":
		return Batch, nil
	case "instanced":
		return Instanced, nil
	case "greedy", "":
		return Greedy, nil
	}
	return 0, fmt.Errorf("render: unknown strategy %q", s)
}

var (
	ErrNotInitialized = errors.New("render: renderer not initialized")
	ErrBufferFull     = errors.New("render: block buffer is full")
	ErrBlockIndex     = errors.New("render: block index out of range")
	ErrNeedsRebuild   = errors.New("render: strategy only updates through Rebuild")
)

// Vertex is a fully expanded vertex for indexed drawing.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	Color    [4]float32
}

// Drawer is implemented by the graphics backend.
type Drawer interface {
	// DrawInstanced draws geom once per instance. Each instance is a
	// packed chunk.Block.
	DrawInstanced(origin mgl32.Vec3, geom *Geometry, instances []uint32)
	DrawIndexed(origin mgl32.Vec3, vertices []Vertex, indices []uint32)
}

// Renderer holds the draw data of one chunk for one strategy.
type Renderer struct {
	strategy Strategy
	geom     *Geometry
	pal      *palette.Palette

	origin      mgl32.Vec3
	capacity    int
	initialized bool

	// Instanced: one slot per block, drawn when shown is set
	instances []uint32
	shown     []bool
	visible   int
	drawn     []uint32
	dirty     bool

	// Batch and Greedy
	vertices []Vertex
	indices  []uint32
}

// New creates a renderer. geom and pal are shared and never modified.
func New(s Strategy, geom *Geometry, pal *palette.Palette) *Renderer {
	return &Renderer{strategy: s, geom: geom, pal: pal}
}

func (r *Renderer) Strategy() Strategy { return r.strategy }

func (r *Renderer) Initialized() bool { return r.initialized }

// Initialize fills the buffers from m, replacing any previous contents.
func (r *Renderer) Initialize(m *chunk.Model) {
	r.origin = m.Origin()
	r.capacity = m.Capacity()
	r.instances, r.shown, r.visible = nil, nil, 0
	r.drawn, r.dirty = nil, true
	r.vertices, r.indices = nil, nil

	switch r.strategy {
	case Instanced:
		blocks := m.Blocks()
		r.instances = make([]uint32, len(blocks))
		r.shown = make([]bool, len(blocks))
		active := len(m.Active())
		for i, b := range blocks {
			r.instances[i] = b.Pack()
			r.shown[i] = i < active
		}
		r.visible = active
	case Batch:
		for _, b := range m.Blocks() {
			r.appendCube(b)
		}
	case Greedy:
		verts, inds := mesh.Generate(m.Grid(), mesh.Quad)
		r.vertices = make([]Vertex, len(verts))
		for i, v := range verts {
			r.vertices[i] = Vertex{
				Position: v.Position([3]float32{}),
				Normal:   mesh.Direction(v.Normal).Normal(),
				Color:    r.pal.Linear(v.Material),
			}
		}
		r.indices = make([]uint32, len(inds))
		for i, idx := range inds {
			r.indices[i] = uint32(idx)
		}
	}
	r.initialized = true
}

// Rebuild refreshes the buffers after m changed.
func (r *Renderer) Rebuild(m *chunk.Model) { r.Initialize(m) }

func (r *Renderer) cube(b chunk.Block) []Vertex {
	out := make([]Vertex, r.geom.VertexCount())
	col := r.pal.Linear(b.Index)
	for i, p := range r.geom.Positions {
		out[i] = Vertex{
			Position: [3]float32{p[0] + float32(b.X), p[1] + float32(b.Y), p[2] + float32(b.Z)},
			Normal:   r.geom.Normals[i],
			Color:    col,
		}
	}
	return out
}

func (r *Renderer) appendCube(b chunk.Block) {
	base := uint32(len(r.vertices))
	r.vertices = append(r.vertices, r.cube(b)...)
	for _, idx := range r.geom.Indices {
		r.indices = append(r.indices, base+uint32(idx))
	}
}

// SetBlock overwrites block index, or appends it when index equals the
// current block count. An Instanced renderer draws the written slot from
// then on; other hidden slots stay hidden. Greedy renderers return
// ErrNeedsRebuild.
func (r *Renderer) SetBlock(index int, b chunk.Block) error {
	if !r.initialized {
		return ErrNotInitialized
	}
	switch r.strategy {
	case Instanced:
		switch {
		case index >= r.capacity:
			return ErrBufferFull
		case index < len(r.instances):
			r.instances[index] = b.Pack()
		case index == len(r.instances):
			r.instances = append(r.instances, b.Pack())
			r.shown = append(r.shown, false)
		default:
			return fmt.Errorf("%w: %d of %d", ErrBlockIndex, index, len(r.instances))
		}
		if !r.shown[index] {
			r.shown[index] = true
			r.visible++
		}
		r.dirty = true
	case Batch:
		n := r.geom.VertexCount()
		count := len(r.vertices) / n
		switch {
		case index >= r.capacity:
			return ErrBufferFull
		case index < count:
			copy(r.vertices[index*n:], r.cube(b))
		case index == count:
			r.appendCube(b)
		default:
			return fmt.Errorf("%w: %d of %d", ErrBlockIndex, index, count)
		}
	case Greedy:
		return ErrNeedsRebuild
	}
	return nil
}

// Draw issues the draw calls for the chunk.
func (r *Renderer) Draw(d Drawer) error {
	if !r.initialized {
		return ErrNotInitialized
	}
	switch r.strategy {
	case Instanced:
		if r.visible > 0 {
			d.DrawInstanced(r.origin, r.geom, r.drawList())
		}
	default:
		if len(r.indices) > 0 {
			d.DrawIndexed(r.origin, r.vertices, r.indices)
		}
	}
	return nil
}

// drawList returns the packed blocks of the shown slots in slot order.
func (r *Renderer) drawList() []uint32 {
	if r.dirty {
		r.drawn = r.drawn[:0]
		for i, p := range r.instances {
			if r.shown[i] {
				r.drawn = append(r.drawn, p)
			}
		}
		r.dirty = false
	}
	return r.drawn
}

// Stats reports the buffer sizes: vertices and indices for indexed
// strategies, drawn instances for Instanced.
func (r *Renderer) Stats() (vertices, indices, instances int) {
	return len(r.vertices), len(r.indices), r.visible
}
