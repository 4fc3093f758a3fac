// Package mesh turns voxel volumes into merged quads with a greedy
// sweep-and-merge pass over each axis.
package mesh

// Volume is a readable 3D grid of material ids. 0 is empty.
// At is only called with in-range coordinates.
type Volume interface {
	Size() (x, y, z int)
	At(x, y, z int) uint8
}

// quadIndices is the triangle pair for a quad, relative to its first vertex.
var quadIndices = [6]int{0, 1, 2, 2, 3, 0}

// Generate meshes vol. build turns each merged face into four vertices in
// the order origin, +du, +du+dv, +dv; the matching six indices are appended
// by Generate. Output is a pure function of the volume contents.
func Generate[T any](vol Volume, build func(Face) [4]T) ([]T, []int) {
	var (
		verts []T
		inds  []int
	)
	sweep(vol, func(f Face) {
		base := len(verts)
		for _, i := range quadIndices {
			inds = append(inds, base+i)
		}
		q := build(f)
		verts = append(verts, q[:]...)
	})
	return verts, inds
}

// Faces returns the merged faces of vol in emission order.
func Faces(vol Volume) []Face {
	var out []Face
	sweep(vol, func(f Face) { out = append(out, f) })
	return out
}

func sweep(vol Volume, emit func(Face)) {
	sx, sy, sz := vol.Size()
	size := [3]int{sx, sy, sz}
	at := func(p [3]int) uint8 {
		if p[0] < 0 || p[1] < 0 || p[2] < 0 || p[0] >= sx || p[1] >= sy || p[2] >= sz {
			return 0
		}
		return vol.At(p[0], p[1], p[2])
	}

	for d := 0; d < 3; d++ {
		u, v := (d+1)%3, (d+2)%3
		n := size[u] * size[v]
		if n == 0 || size[d] == 0 {
			continue
		}
		back := make([]uint8, n)
		front := make([]uint8, n)

		var p [3]int
		for p[d] = -1; p[d] < size[d]; p[d]++ {
			for p[v] = 0; p[v] < size[v]; p[v]++ {
				for p[u] = 0; p[u] < size[u]; p[u]++ {
					q := p
					q[d]++
					a, b := at(p), at(q)
					i := p[v]*size[u] + p[u]
					back[i], front[i] = 0, 0
					switch {
					case a != 0 && b == 0:
						back[i] = a
					case a == 0 && b != 0:
						front[i] = b
					}
				}
			}
			plane := p[d] + 1
			mergeLayer(back, size, d, plane, true, emit)
			mergeLayer(front, size, d, plane, false, emit)
		}
	}
}

// mergeLayer emits maximal same-material rectangles from mask, scanning v
// outer and u inner, growing width before height. Covered cells are zeroed.
func mergeLayer(mask []uint8, size [3]int, d, plane int, backFace bool, emit func(Face)) {
	u, v := (d+1)%3, (d+2)%3
	su, sv := size[u], size[v]
	for v0 := 0; v0 < sv; v0++ {
		for u0 := 0; u0 < su; {
			n := v0*su + u0
			m := mask[n]
			if m == 0 {
				u0++
				continue
			}

			w := 1
			for u0+w < su && mask[n+w] == m {
				w++
			}
			h := 1
		grow:
			for ; v0+h < sv; h++ {
				row := n + h*su
				for k := 0; k < w; k++ {
					if mask[row+k] != m {
						break grow
					}
				}
			}

			f := Face{Axis: d, BackFace: backFace, Material: m}
			f.Origin[d] = plane
			f.Origin[u] = u0
			f.Origin[v] = v0
			f.DU[u] = w
			f.DV[v] = h
			emit(f)

			for l := 0; l < h; l++ {
				row := n + l*su
				clear(mask[row : row+w])
			}
			u0 += w
		}
	}
}
