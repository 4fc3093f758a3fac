package chunk

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/voxelsplace/voxcore/octree"
	"github.com/voxelsplace/voxcore/palette"
	"github.com/voxelsplace/voxcore/voxel"
)

// Content is a chunk as stored on disk: header, block placements with the
// active ones first, and the palette.
type Content struct {
	SizeX, SizeY, SizeZ int32
	Origin              mgl32.Vec3
	Blocks              []Block
	Active              int32
	Palette             palette.Palette
}

// header is the fixed-size prefix of an encoded chunk.
type header struct {
	SizeX, SizeY, SizeZ int32
	Origin              [3]float32
	Total               int32
	Active              int32
}

const (
	blockBytes   = 4
	paletteBytes = palette.Size * 4
)

// Bounds is the world box the chunk occupies once loaded.
func (c *Content) Bounds() octree.Box {
	return octree.NewBox(c.Origin, mgl32.Vec3{float32(c.SizeX), float32(c.SizeY), float32(c.SizeZ)})
}

func (c *Content) validate() error {
	for _, s := range [3]int32{c.SizeX, c.SizeY, c.SizeZ} {
		if s < 1 || s > voxel.MaxAxis {
			return errors.Errorf("chunk: invalid size %dx%dx%d", c.SizeX, c.SizeY, c.SizeZ)
		}
	}
	capacity := int(c.SizeX) * int(c.SizeY) * int(c.SizeZ)
	if len(c.Blocks) > capacity {
		return errors.Wrapf(ErrTooManyBlocks, "%d blocks, capacity %d", len(c.Blocks), capacity)
	}
	if c.Active < 0 || int(c.Active) > len(c.Blocks) {
		return errors.Wrapf(ErrActiveCount, "%d of %d", c.Active, len(c.Blocks))
	}
	seen := make([]bool, capacity)
	for i, b := range c.Blocks {
		if int32(b.X) >= c.SizeX || int32(b.Y) >= c.SizeY || int32(b.Z) >= c.SizeZ {
			return errors.Errorf("chunk: block %d at (%d,%d,%d) outside %dx%dx%d", i, b.X, b.Y, b.Z, c.SizeX, c.SizeY, c.SizeZ)
		}
		if b.IsEmpty() {
			return errors.Wrapf(ErrEmptyMaterial, "block %d", i)
		}
		cell := int(b.X) + int(c.SizeX)*(int(b.Y)+int(c.SizeY)*int(b.Z))
		if seen[cell] {
			return errors.Wrapf(ErrOccupied, "block %d at (%d,%d,%d)", i, b.X, b.Y, b.Z)
		}
		seen[cell] = true
	}
	return nil
}

// Encode writes c in the persisted little-endian layout.
func Encode(w io.Writer, c *Content) error {
	if err := c.validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	h := header{
		SizeX: c.SizeX, SizeY: c.SizeY, SizeZ: c.SizeZ,
		Origin: [3]float32(c.Origin),
		Total:  int32(len(c.Blocks)),
		Active: c.Active,
	}
	if err := binary.Write(bw, binary.LittleEndian, &h); err != nil {
		return errors.Wrap(err, "write chunk header")
	}

	buf := make([]byte, 0, len(c.Blocks)*blockBytes+paletteBytes)
	for _, b := range c.Blocks {
		buf = append(buf, b.X, b.Y, b.Z, b.Index)
	}
	for _, col := range c.Palette {
		buf = append(buf, col.R, col.G, col.B, col.A)
	}
	if _, err := bw.Write(buf); err != nil {
		return errors.Wrap(err, "write chunk body")
	}
	return errors.Wrap(bw.Flush(), "flush chunk")
}

// Decode reads a chunk written by Encode and validates its counts and
// block coordinates.
func Decode(r io.Reader) (*Content, error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, errors.Wrap(err, "read chunk header")
	}
	c := &Content{SizeX: h.SizeX, SizeY: h.SizeY, SizeZ: h.SizeZ, Origin: mgl32.Vec3(h.Origin), Active: h.Active}
	if h.Total < 0 {
		return nil, errors.Errorf("chunk: negative block count %d", h.Total)
	}
	// reject absurd counts before allocating
	if int64(h.Total) > int64(voxel.MaxAxis*voxel.MaxAxis*voxel.MaxAxis) {
		return nil, errors.Wrapf(ErrTooManyBlocks, "%d blocks", h.Total)
	}

	raw := make([]byte, int(h.Total)*blockBytes)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, errors.Wrap(err, "read chunk blocks")
	}
	c.Blocks = make([]Block, h.Total)
	for i := range c.Blocks {
		o := i * blockBytes
		c.Blocks[i] = Block{X: raw[o], Y: raw[o+1], Z: raw[o+2], Index: raw[o+3]}
	}

	var pal [paletteBytes]byte
	if _, err := io.ReadFull(r, pal[:]); err != nil {
		return nil, errors.Wrap(err, "read chunk palette")
	}
	for i := range c.Palette {
		o := i * 4
		c.Palette[i].R, c.Palette[i].G, c.Palette[i].B, c.Palette[i].A = pal[o], pal[o+1], pal[o+2], pal[o+3]
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Marshal returns the encoded form of c.
func Marshal(c *Content) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func Unmarshal(data []byte) (*Content, error) {
	return Decode(bytes.NewReader(data))
}

// Load builds a Model from c.
func Load(c *Content) (*Model, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	m := New(c.Origin, int(c.SizeX), int(c.SizeY), int(c.SizeZ))
	if err := m.Build(c.Blocks, int(c.Active), false); err != nil {
		return nil, err
	}
	return m, nil
}

// ContentOf captures m and pal as a Content ready for Encode.
func ContentOf(m *Model, pal palette.Palette) *Content {
	sx, sy, sz := m.Size()
	return &Content{
		SizeX: int32(sx), SizeY: int32(sy), SizeZ: int32(sz),
		Origin:  m.Origin(),
		Blocks:  m.Blocks(),
		Active:  int32(len(m.Active())),
		Palette: pal,
	}
}
