package voxel

import "fmt"

// MaxAxis is the largest size of a grid along any axis. Coordinates are
// serialized as single bytes, so 0..255 is the full range.
const MaxAxis = 256

// Voxel is a material reference into an external palette. 0 is air.
type Voxel uint8

// Empty is the air voxel.
const Empty Voxel = 0

func (v Voxel) IsEmpty() bool { return v == Empty }

// Grid is a dense sx*sy*sz volume stored in a flat buffer.
// Offset of (x,y,z) is x + sx*y + sx*sy*z.
type Grid struct {
	sx, sy, sz int
	cells      []Voxel
}

// NewGrid allocates an empty grid. Every axis must be in 1..MaxAxis.
func NewGrid(sx, sy, sz int) *Grid {
	if sx < 1 || sy < 1 || sz < 1 || sx > MaxAxis || sy > MaxAxis || sz > MaxAxis {
		panic(fmt.Sprintf("voxel: invalid grid size %dx%dx%d", sx, sy, sz))
	}
	return &Grid{sx: sx, sy: sy, sz: sz, cells: make([]Voxel, sx*sy*sz)}
}

// Size returns the grid dimensions.
func (g *Grid) Size() (x, y, z int) { return g.sx, g.sy, g.sz }

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.cells) }

// InBounds reports whether (x,y,z) addresses a cell of the grid.
func (g *Grid) InBounds(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < g.sx && y < g.sy && z < g.sz
}

// Index converts grid coordinates to the linear offset.
func (g *Grid) Index(x, y, z int) int {
	if !g.InBounds(x, y, z) {
		panic(fmt.Sprintf("voxel: (%d,%d,%d) outside %dx%dx%d grid", x, y, z, g.sx, g.sy, g.sz))
	}
	return x + g.sx*y + g.sx*g.sy*z
}

// Coords is the inverse of Index.
func (g *Grid) Coords(i int) (x, y, z int) {
	if i < 0 || i >= len(g.cells) {
		panic(fmt.Sprintf("voxel: offset %d outside grid of %d cells", i, len(g.cells)))
	}
	x = i % g.sx
	y = (i / g.sx) % g.sy
	z = i / (g.sx * g.sy)
	return
}

// Get returns the voxel at (x,y,z); unset cells are Empty.
func (g *Grid) Get(x, y, z int) Voxel {
	return g.cells[g.Index(x, y, z)]
}

// Set overwrites the voxel at (x,y,z).
func (g *Grid) Set(x, y, z int, v Voxel) {
	g.cells[g.Index(x, y, z)] = v
}

// At returns the raw material byte at (x,y,z).
func (g *Grid) At(x, y, z int) uint8 {
	return uint8(g.cells[g.Index(x, y, z)])
}

// Clear resets every cell to Empty.
func (g *Grid) Clear() {
	clear(g.cells)
}

// Count returns the number of non-empty cells.
func (g *Grid) Count() int {
	n := 0
	for _, v := range g.cells {
		if v != Empty {
			n++
		}
	}
	return n
}

// Cells exposes the flat buffer in addressing order. Callers must not
// retain it across a Resized call.
func (g *Grid) Cells() []Voxel { return g.cells }

// Resized returns a new grid of the given size holding every voxel of g
// that still fits. g itself is left untouched.
func (g *Grid) Resized(sx, sy, sz int) *Grid {
	out := NewGrid(sx, sy, sz)
	mx, my, mz := min(sx, g.sx), min(sy, g.sy), min(sz, g.sz)
	for z := 0; z < mz; z++ {
		for y := 0; y < my; y++ {
			src := g.sx*y + g.sx*g.sy*z
			dst := sx*y + sx*sy*z
			copy(out.cells[dst:dst+mx], g.cells[src:src+mx])
		}
	}
	return out
}
