// Package chunk holds fixed-size voxel chunks: the block list with its
// active/inactive partition, the backing grid and the persisted format.
package chunk

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxelsplace/voxcore/octree"
	"github.com/voxelsplace/voxcore/voxel"
)

// DefaultSize is the edge length used when splitting larger models.
const DefaultSize = 32

var (
	ErrTooManyBlocks        = errors.New("chunk: more blocks than the chunk can hold")
	ErrActiveCount          = errors.New("chunk: active count out of range")
	ErrChunkFull            = errors.New("chunk: chunk is full")
	ErrOccupied             = errors.New("chunk: cell already holds a block")
	ErrEmptyMaterial        = errors.New("chunk: block has material 0")
	ErrIntersectUnsupported = errors.New("chunk: ray-voxel intersection is not supported")
)

// Model is a chunk placed in the world. Blocks are kept in load order with
// the first Active() entries being the visible ones.
type Model struct {
	origin mgl32.Vec3
	grid   *voxel.Grid
	blocks []Block
	active int
	built  bool
}

// New creates an empty chunk of the given size at origin.
func New(origin mgl32.Vec3, sx, sy, sz int) *Model {
	return &Model{origin: origin, grid: voxel.NewGrid(sx, sy, sz)}
}

// Build bulk-loads blocks; the first active of them are the visible ones.
// Building an already built chunk panics unless rebuild is set, in which
// case the previous contents are dropped first. Blocks must lie inside the
// chunk.
func (m *Model) Build(blocks []Block, active int, rebuild bool) error {
	if len(blocks) > m.grid.Len() {
		return fmt.Errorf("%w: %d blocks, capacity %d", ErrTooManyBlocks, len(blocks), m.grid.Len())
	}
	if active < 0 || active > len(blocks) {
		return fmt.Errorf("%w: %d of %d", ErrActiveCount, active, len(blocks))
	}
	if m.built && !rebuild {
		panic("chunk: already built, set rebuild to replace the contents")
	}
	seen := make([]bool, m.grid.Len())
	for i, b := range blocks {
		if b.IsEmpty() {
			return fmt.Errorf("block %d at (%d,%d,%d): %w", i, b.X, b.Y, b.Z, ErrEmptyMaterial)
		}
		x, y, z := int(b.X), int(b.Y), int(b.Z)
		if !m.grid.InBounds(x, y, z) {
			return fmt.Errorf("block %d at (%d,%d,%d) outside the chunk", i, x, y, z)
		}
		c := m.grid.Index(x, y, z)
		if seen[c] {
			return fmt.Errorf("block %d at (%d,%d,%d): %w", i, x, y, z, ErrOccupied)
		}
		seen[c] = true
	}

	m.grid.Clear()
	for _, b := range blocks {
		m.grid.Set(int(b.X), int(b.Y), int(b.Z), voxel.Voxel(b.Index))
	}
	m.blocks = slices.Clone(blocks)
	m.active = active
	m.built = true
	return nil
}

// AddOne appends b after the existing blocks.
func (m *Model) AddOne(b Block) error {
	if m.Full() {
		return ErrChunkFull
	}
	if b.IsEmpty() {
		return ErrEmptyMaterial
	}
	if !m.grid.Get(int(b.X), int(b.Y), int(b.Z)).IsEmpty() {
		return fmt.Errorf("%w: (%d,%d,%d)", ErrOccupied, b.X, b.Y, b.Z)
	}
	m.grid.Set(int(b.X), int(b.Y), int(b.Z), voxel.Voxel(b.Index))
	m.blocks = append(m.blocks, b)
	return nil
}

// Remove deletes the block at (x,y,z) and reports whether one was there.
func (m *Model) Remove(x, y, z uint8) bool {
	if m.grid.Get(int(x), int(y), int(z)).IsEmpty() {
		return false
	}
	i := slices.IndexFunc(m.blocks, func(b Block) bool { return b.X == x && b.Y == y && b.Z == z })
	if i < 0 {
		return false
	}
	m.grid.Set(int(x), int(y), int(z), voxel.Empty)
	m.blocks = slices.Delete(m.blocks, i, i+1)
	if i < m.active {
		m.active--
	}
	return true
}

// Get returns the block at (x,y,z); Index is 0 when the cell is empty.
func (m *Model) Get(x, y, z uint8) Block {
	return Block{X: x, Y: y, Z: z, Index: uint8(m.grid.Get(int(x), int(y), int(z)))}
}

// Clear empties the chunk and allows a fresh Build.
func (m *Model) Clear() {
	m.grid.Clear()
	m.blocks = nil
	m.active = 0
	m.built = false
}

// Blocks returns every block, active first. The slice must not be modified.
func (m *Model) Blocks() []Block { return m.blocks }

// Active returns the visible blocks.
func (m *Model) Active() []Block { return m.blocks[:m.active] }

// Inactive returns the occluded blocks and those added after Build.
func (m *Model) Inactive() []Block { return m.blocks[m.active:] }

func (m *Model) Len() int      { return len(m.blocks) }
func (m *Model) Capacity() int { return m.grid.Len() }
func (m *Model) Built() bool   { return m.built }
func (m *Model) Full() bool    { return len(m.blocks) >= m.grid.Len() }

func (m *Model) Origin() mgl32.Vec3 { return m.origin }

func (m *Model) Size() (x, y, z int) { return m.grid.Size() }

// Center is the origin offset by half the size, rounded down per axis.
func (m *Model) Center() mgl32.Vec3 {
	sx, sy, sz := m.grid.Size()
	return m.origin.Add(mgl32.Vec3{float32(sx / 2), float32(sy / 2), float32(sz / 2)})
}

// Bounds is the world-space box covered by the chunk.
func (m *Model) Bounds() octree.Box {
	sx, sy, sz := m.grid.Size()
	return octree.NewBox(m.origin, mgl32.Vec3{float32(sx), float32(sy), float32(sz)})
}

// Grid exposes the backing voxel grid. Mutating it bypasses the block list.
func (m *Model) Grid() *voxel.Grid { return m.grid }

// Intersect tests ray against the chunk. Only the broad phase against the
// chunk bounds is performed: a miss reports false with a nil error, while a
// bounds hit returns ErrIntersectUnsupported since no per-voxel traversal
// exists yet.
func (m *Model) Intersect(ray octree.Ray) (BlockIntersection, bool, error) {
	if _, ok := m.Bounds().IntersectRay(ray); !ok {
		return BlockIntersection{}, false, nil
	}
	return BlockIntersection{}, false, ErrIntersectUnsupported
}
