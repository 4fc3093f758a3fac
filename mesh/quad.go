package mesh

// QuadVertex is the compact vertex emitted by Quad. Normal holds the
// Direction code of the face.
type QuadVertex struct {
	Pos      [3]uint16
	Material uint8
	Normal   uint8
}

// Quad is the default vertex builder for Generate. Corners are ordered so
// that every face winds counter-clockwise seen from outside the solid.
func Quad(f Face) [4]QuadVertex {
	c := f.Corners()
	if !f.BackFace {
		// du x dv points toward +Axis; flip for faces looking the other way
		c[1], c[3] = c[3], c[1]
	}
	dir := uint8(f.Direction())
	var out [4]QuadVertex
	for i, p := range c {
		out[i] = QuadVertex{
			Pos:      [3]uint16{uint16(p[0]), uint16(p[1]), uint16(p[2])},
			Material: f.Material,
			Normal:   dir,
		}
	}
	return out
}

// Position returns the vertex position as floats, offset by origin.
func (q QuadVertex) Position(origin [3]float32) [3]float32 {
	return [3]float32{
		origin[0] + float32(q.Pos[0]),
		origin[1] + float32(q.Pos[1]),
		origin[2] + float32(q.Pos[2]),
	}
}
