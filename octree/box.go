package octree

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// rayEpsilon is the smallest direction component treated as non-zero by the slab test.
const rayEpsilon = 1e-6

// Containment describes how one box relates to another.
type Containment uint8

const (
	Disjoint Containment = iota
	Intersects
	Contains
)

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max mgl32.Vec3
}

// NewBox builds a box from a corner and its dimensions.
func NewBox(min mgl32.Vec3, size mgl32.Vec3) Box {
	return Box{Min: min, Max: min.Add(size)}
}

func (b Box) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Extent returns the full dimensions of the box along each axis.
func (b Box) Extent() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Contains classifies other against b. Touching faces count as intersecting.
func (b Box) Contains(other Box) Containment {
	for i := 0; i < 3; i++ {
		if other.Max[i] < b.Min[i] || other.Min[i] > b.Max[i] {
			return Disjoint
		}
	}
	for i := 0; i < 3; i++ {
		if other.Min[i] < b.Min[i] || other.Max[i] > b.Max[i] {
			return Intersects
		}
	}
	return Contains
}

// Overlaps reports whether b contains or intersects other.
func (b Box) Overlaps(other Box) bool {
	return b.Contains(other) != Disjoint
}

// Union returns the smallest box holding both b and other.
func (b Box) Union(other Box) Box {
	var u Box
	for i := 0; i < 3; i++ {
		u.Min[i] = math32.Min(b.Min[i], other.Min[i])
		u.Max[i] = math32.Max(b.Max[i], other.Max[i])
	}
	return u
}

// ContainsPoint reports whether p lies inside or on the surface of b.
func (b Box) ContainsPoint(p mgl32.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// IntersectRay returns the distance along r at which it enters b.
// A ray starting inside the box hits at distance 0.
func (b Box) IntersectRay(r Ray) (float32, bool) {
	near := math32.Inf(-1)
	far := math32.Inf(1)
	for i := 0; i < 3; i++ {
		o, d := r.Origin[i], r.Direction[i]
		if math32.Abs(d) < rayEpsilon {
			if o < b.Min[i] || o > b.Max[i] {
				return 0, false
			}
			continue
		}
		inv := 1 / d
		t1 := (b.Min[i] - o) * inv
		t2 := (b.Max[i] - o) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		near = math32.Max(near, t1)
		far = math32.Min(far, t2)
		if near > far {
			return 0, false
		}
	}
	if far < 0 {
		return 0, false
	}
	if near < 0 {
		return 0, true
	}
	return near, true
}

// Ray is a half-line. Direction need not be normalized; distances are
// expressed in multiples of it.
type Ray struct {
	Origin, Direction mgl32.Vec3
}

// At returns the point at distance t.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}
