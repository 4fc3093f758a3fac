package chunk

import (
	"github.com/voxelsplace/voxcore/mesh"
	"github.com/voxelsplace/voxcore/voxel"
)

// IsActive reports whether the voxel at (x,y,z) can be seen: it lies on the
// volume boundary or one of its six neighbours is empty.
func IsActive(vol mesh.Volume, x, y, z int) bool {
	sx, sy, sz := vol.Size()
	if x == 0 || y == 0 || z == 0 || x == sx-1 || y == sy-1 || z == sz-1 {
		return true
	}
	return vol.At(x, y, z+1) == 0 || vol.At(x, y, z-1) == 0 ||
		vol.At(x, y+1, z) == 0 || vol.At(x, y-1, z) == 0 ||
		vol.At(x+1, y, z) == 0 || vol.At(x-1, y, z) == 0
}

// Partition orders blocks for Build: active blocks first, then occluded
// ones, each group in input order. Empty blocks, blocks outside the
// sx*sy*sz volume and later blocks at an already filled cell are dropped.
func Partition(sx, sy, sz int, blocks []Block) (ordered []Block, active int) {
	g := voxel.NewGrid(sx, sy, sz)
	kept := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		if b.IsEmpty() || !g.InBounds(int(b.X), int(b.Y), int(b.Z)) {
			continue
		}
		if !g.Get(int(b.X), int(b.Y), int(b.Z)).IsEmpty() {
			continue
		}
		g.Set(int(b.X), int(b.Y), int(b.Z), voxel.Voxel(b.Index))
		kept = append(kept, b)
	}

	ordered = make([]Block, 0, len(kept))
	var hidden []Block
	for _, b := range kept {
		if IsActive(g, int(b.X), int(b.Y), int(b.Z)) {
			ordered = append(ordered, b)
		} else {
			hidden = append(hidden, b)
		}
	}
	active = len(ordered)
	return append(ordered, hidden...), active
}
