package chunk

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Split cuts c into chunks of at most size voxels per axis. Chunks on the
// far edges are trimmed to the remaining extent and empty chunks are
// omitted. Each chunk is re-partitioned since its boundary changes which
// blocks are visible. Chunks are returned in z, y, x order.
func Split(c *Content, size int) []Content {
	if size < 1 {
		size = DefaultSize
	}
	nx := ceilDiv(int(c.SizeX), size)
	ny := ceilDiv(int(c.SizeY), size)
	nz := ceilDiv(int(c.SizeZ), size)

	buckets := make([][]Block, nx*ny*nz)
	for _, b := range c.Blocks {
		cx, cy, cz := int(b.X)/size, int(b.Y)/size, int(b.Z)/size
		if cx >= nx || cy >= ny || cz >= nz {
			continue
		}
		i := cx + nx*cy + nx*ny*cz
		buckets[i] = append(buckets[i], Block{
			X:     b.X - uint8(cx*size),
			Y:     b.Y - uint8(cy*size),
			Z:     b.Z - uint8(cz*size),
			Index: b.Index,
		})
	}

	var out []Content
	for cz := 0; cz < nz; cz++ {
		for cy := 0; cy < ny; cy++ {
			for cx := 0; cx < nx; cx++ {
				blocks := buckets[cx+nx*cy+nx*ny*cz]
				if len(blocks) == 0 {
					continue
				}
				sx := min(size, int(c.SizeX)-cx*size)
				sy := min(size, int(c.SizeY)-cy*size)
				sz := min(size, int(c.SizeZ)-cz*size)
				ordered, active := Partition(sx, sy, sz, blocks)
				out = append(out, Content{
					SizeX: int32(sx), SizeY: int32(sy), SizeZ: int32(sz),
					Origin:  c.Origin.Add(mgl32.Vec3{float32(cx * size), float32(cy * size), float32(cz * size)}),
					Blocks:  ordered,
					Active:  int32(active),
					Palette: c.Palette,
				})
			}
		}
	}
	return out
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }
