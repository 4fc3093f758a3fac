package render

import (
	"github.com/voxelsplace/voxcore/mesh"
	"github.com/voxelsplace/voxcore/voxel"
)

// Geometry is a read-only unit cube shared by renderers: four corners per
// face, counter-clockwise from outside, spanning 0..1 on every axis.
type Geometry struct {
	Positions [][3]float32
	Normals   [][3]float32
	Indices   []uint16
}

// UnitCube builds the cube by meshing a single voxel. Build it once and
// pass it to every renderer.
func UnitCube() *Geometry {
	g := voxel.NewGrid(1, 1, 1)
	g.Set(0, 0, 0, 1)
	verts, inds := mesh.Generate(g, mesh.Quad)

	geom := &Geometry{
		Positions: make([][3]float32, len(verts)),
		Normals:   make([][3]float32, len(verts)),
		Indices:   make([]uint16, len(inds)),
	}
	for i, v := range verts {
		geom.Positions[i] = v.Position([3]float32{})
		geom.Normals[i] = mesh.Direction(v.Normal).Normal()
	}
	for i, idx := range inds {
		geom.Indices[i] = uint16(idx)
	}
	return geom
}

// VertexCount is the number of cube corners, 24.
func (g *Geometry) VertexCount() int { return len(g.Positions) }
