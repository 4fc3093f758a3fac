package chunk

// Block is one voxel placement inside a chunk: local coordinates plus a
// material index into the chunk palette.
type Block struct {
	X, Y, Z uint8
	Index   uint8
}

// Pack returns the block as x | y<<8 | z<<16 | index<<24.
func (b Block) Pack() uint32 {
	return uint32(b.X) | uint32(b.Y)<<8 | uint32(b.Z)<<16 | uint32(b.Index)<<24
}

func UnpackBlock(v uint32) Block {
	return Block{X: uint8(v), Y: uint8(v >> 8), Z: uint8(v >> 16), Index: uint8(v >> 24)}
}

func (b Block) IsEmpty() bool { return b.Index == 0 }

// BlockIntersection describes a ray hit on a block face.
type BlockIntersection struct {
	Block Block
	// UV is the hit position on the face, in 0..1.
	UV [2]float32
}

func (i BlockIntersection) Empty() bool { return i.Block.IsEmpty() }
