package mesh

// Direction identifies the outward normal of a face: axis*2 for the
// positive side, axis*2+1 for the negative side.
type Direction uint8

const (
	PosX Direction = iota
	NegX
	PosY
	NegY
	PosZ
	NegZ
)

var normals = [6][3]float32{
	{1, 0, 0},
	{-1, 0, 0},
	{0, 1, 0},
	{0, -1, 0},
	{0, 0, 1},
	{0, 0, -1},
}

func (d Direction) Axis() int { return int(d) / 2 }

func (d Direction) Positive() bool { return d%2 == 0 }

// Normal returns the unit outward normal.
func (d Direction) Normal() [3]float32 { return normals[d] }

func (d Direction) String() string {
	return [6]string{"+x", "-x", "+y", "-y", "+z", "-z"}[d]
}

// Face is one merged rectangle produced by the mesher, in grid units.
// Origin lies on the face plane; DU and DV span the rectangle along the
// two axes following Axis.
type Face struct {
	Origin, DU, DV [3]int
	Axis           int
	// BackFace is set for faces whose solid voxel lies on the negative side
	// of the plane, so the face looks toward +Axis.
	BackFace bool
	Material uint8
}

func (f Face) Direction() Direction {
	d := Direction(f.Axis * 2)
	if !f.BackFace {
		d++
	}
	return d
}

// Width is the extent along DU.
func (f Face) Width() int { return f.DU[(f.Axis+1)%3] }

// Height is the extent along DV.
func (f Face) Height() int { return f.DV[(f.Axis+2)%3] }

func (f Face) Area() int { return f.Width() * f.Height() }

// Corners returns origin, origin+du, origin+du+dv and origin+dv.
func (f Face) Corners() [4][3]int {
	var c [4][3]int
	for i := 0; i < 3; i++ {
		c[0][i] = f.Origin[i]
		c[1][i] = f.Origin[i] + f.DU[i]
		c[2][i] = f.Origin[i] + f.DU[i] + f.DV[i]
		c[3][i] = f.Origin[i] + f.DV[i]
	}
	return c
}
