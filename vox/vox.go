// Package vox imports MagicaVoxel .vox models.
//
// MagicaVoxel is Z-up; models are converted to Y-up on load so that a
// MagicaVoxel voxel (x, y, z) lands at (x, z, depth-1-y), where depth is
// the MagicaVoxel y size.
package vox

import (
	"encoding/binary"
	"io"
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/voxelsplace/voxcore/chunk"
	"github.com/voxelsplace/voxcore/palette"
	"github.com/voxelsplace/voxcore/voxel"
)

const (
	magic         = "VOX "
	mainChunk     = "MAIN"
	sizeChunk     = "SIZE"
	voxelChunk    = "XYZI"
	paletteChunk  = "RGBA"
	paletteLength = 256

	// voxels decoded per read
	voxelBatch = 4096
)

var ErrNoVoxels = errors.New("vox: file holds no voxel data")

// Voxel is a single placement after axis conversion. Color is the
// palette index, 1..255.
type Voxel struct {
	X, Y, Z uint8
	Color   uint8
}

// Model is the first model of a .vox file.
type Model struct {
	Version             int32
	SizeX, SizeY, SizeZ int
	Voxels              []Voxel
	Palette             palette.Palette
	// CustomPalette is false when the file had no RGBA chunk and the
	// default palette was used.
	CustomPalette bool
}

type chunkHeader struct {
	ID       [4]byte
	Content  int32
	Children int32
}

// Decode reads a .vox stream. logger may be nil.
func Decode(r io.Reader, logger *log.Logger) (*Model, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	var head [4]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, errors.Wrap(err, "read vox magic")
	}
	if string(head[:]) != magic {
		return nil, errors.Errorf("vox: not a .vox file (magic %q)", head[:])
	}
	m := &Model{}
	if err := binary.Read(r, binary.LittleEndian, &m.Version); err != nil {
		return nil, errors.Wrap(err, "read vox version")
	}
	logger.Printf("reading MagicaVoxel file, version %d", m.Version)

	var main chunkHeader
	if err := binary.Read(r, binary.LittleEndian, &main); err != nil {
		return nil, errors.Wrap(err, "read MAIN chunk")
	}
	if string(main.ID[:]) != mainChunk {
		return nil, errors.Errorf("vox: expected MAIN chunk, found %q", main.ID[:])
	}

	haveSize, haveVoxels := false, false
	for {
		var h chunkHeader
		err := binary.Read(r, binary.LittleEndian, &h)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read chunk header")
		}
		id := string(h.ID[:])

		switch {
		case id == sizeChunk && !haveSize:
			if err := m.readSize(r); err != nil {
				return nil, err
			}
			haveSize = true
		case id == voxelChunk && !haveVoxels:
			if !haveSize {
				return nil, errors.New("vox: XYZI chunk before SIZE")
			}
			if err := m.readVoxels(r, h.Content, logger); err != nil {
				return nil, err
			}
			haveVoxels = true
		case id == paletteChunk:
			if err := m.readPalette(r); err != nil {
				return nil, err
			}
		default:
			logger.Printf("skipping chunk %s", id)
			if err := skip(r, int64(h.Content)+int64(h.Children)); err != nil {
				return nil, errors.Wrapf(err, "skip %s chunk", id)
			}
		}
	}

	if !haveVoxels {
		return nil, ErrNoVoxels
	}
	if !m.CustomPalette {
		m.Palette = palette.Default()
	}
	return m, nil
}

func skip(r io.Reader, n int64) error {
	if n < 0 {
		return errors.Errorf("vox: negative chunk size %d", n)
	}
	_, err := io.CopyN(io.Discard, r, n)
	return err
}

func (m *Model) readSize(r io.Reader) error {
	var s [3]int32
	if err := binary.Read(r, binary.LittleEndian, &s); err != nil {
		return errors.Wrap(err, "read SIZE chunk")
	}
	// x, y, z in MagicaVoxel order; y becomes depth and z height
	m.SizeX, m.SizeZ, m.SizeY = int(s[0]), int(s[1]), int(s[2])
	if m.SizeX < 1 || m.SizeY < 1 || m.SizeZ < 1 {
		return errors.Errorf("vox: invalid model size %dx%dx%d", s[0], s[1], s[2])
	}
	return nil
}

func (m *Model) readVoxels(r io.Reader, content int32, logger *log.Logger) error {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return errors.Wrap(err, "read XYZI count")
	}
	if n < 0 {
		return errors.Errorf("vox: negative voxel count %d", n)
	}
	if 4+4*int64(n) > int64(content) {
		return errors.Errorf("vox: %d voxels do not fit a %d byte XYZI chunk", n, content)
	}
	m.Voxels = make([]Voxel, 0, min(int(n), voxelBatch))
	dropped := 0
	raw := make([]byte, min(int(n), voxelBatch)*4)
	for left := int(n); left > 0; {
		batch := raw[:min(left, voxelBatch)*4]
		if _, err := io.ReadFull(r, batch); err != nil {
			return errors.Wrap(err, "read XYZI voxels")
		}
		left -= len(batch) / 4
		for i := 0; i < len(batch); i += 4 {
			x, ymv, zmv, c := int(batch[i]), int(batch[i+1]), int(batch[i+2]), batch[i+3]
			z := m.SizeZ - 1 - ymv
			if x >= m.SizeX || zmv >= m.SizeY || z < 0 || c == 0 {
				dropped++
				continue
			}
			m.Voxels = append(m.Voxels, Voxel{X: uint8(x), Y: uint8(zmv), Z: uint8(z), Color: c})
		}
	}
	if err := skip(r, int64(content)-4-4*int64(n)); err != nil {
		return errors.Wrap(err, "skip XYZI padding")
	}
	if dropped > 0 {
		logger.Printf("dropped %d voxels outside the model bounds", dropped)
	}
	logger.Printf("read %d voxels", len(m.Voxels))
	return nil
}

func (m *Model) readPalette(r io.Reader) error {
	var raw [paletteLength * 4]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return errors.Wrap(err, "read RGBA chunk")
	}
	// entry i colors index i+1; the last entry is unused
	for i := range m.Palette {
		m.Palette[i].R = raw[i*4]
		m.Palette[i].G = raw[i*4+1]
		m.Palette[i].B = raw[i*4+2]
		m.Palette[i].A = raw[i*4+3]
	}
	m.CustomPalette = true
	return nil
}

// Content converts the model into a single chunk at origin, active blocks
// first. Use chunk.Split on the result to cut it into smaller chunks.
func (m *Model) Content(origin mgl32.Vec3) (*chunk.Content, error) {
	if m.SizeX > voxel.MaxAxis || m.SizeY > voxel.MaxAxis || m.SizeZ > voxel.MaxAxis {
		return nil, errors.Errorf("vox: model %dx%dx%d exceeds %d per axis", m.SizeX, m.SizeY, m.SizeZ, voxel.MaxAxis)
	}
	blocks := make([]chunk.Block, len(m.Voxels))
	for i, v := range m.Voxels {
		blocks[i] = chunk.Block{X: v.X, Y: v.Y, Z: v.Z, Index: v.Color}
	}
	ordered, active := chunk.Partition(m.SizeX, m.SizeY, m.SizeZ, blocks)
	return &chunk.Content{
		SizeX: int32(m.SizeX), SizeY: int32(m.SizeY), SizeZ: int32(m.SizeZ),
		Origin:  origin,
		Blocks:  ordered,
		Active:  int32(active),
		Palette: m.Palette,
	}, nil
}
