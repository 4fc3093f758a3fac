package chunk

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"

	"github.com/voxelsplace/voxcore/octree"
	"github.com/voxelsplace/voxcore/palette"
)

func sampleContent() *Content {
	pal := palette.Default()
	pal.Set(3, color.RGBA{1, 2, 3, 4})
	return &Content{
		SizeX: 4, SizeY: 2, SizeZ: 3,
		Origin:  mgl32.Vec3{1.5, -2, 32},
		Blocks:  []Block{{0, 0, 0, 1}, {3, 1, 2, 3}, {2, 0, 1, 255}},
		Active:  2,
		Palette: pal,
	}
}

func TestEncodeLayout(t *testing.T) {
	c := sampleContent()
	data, err := Marshal(c)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if want := 32 + 3*4 + 255*4; len(data) != want {
		t.Fatalf("encoded %d bytes, want %d", len(data), want)
	}
	le := binary.LittleEndian
	if le.Uint32(data[0:]) != 4 || le.Uint32(data[4:]) != 2 || le.Uint32(data[8:]) != 3 {
		t.Fatalf("size fields wrong: % x", data[:12])
	}
	if math.Float32frombits(le.Uint32(data[12:])) != 1.5 || math.Float32frombits(le.Uint32(data[20:])) != 32 {
		t.Fatalf("origin fields wrong: % x", data[12:24])
	}
	if le.Uint32(data[24:]) != 3 || le.Uint32(data[28:]) != 2 {
		t.Fatalf("count fields wrong: % x", data[24:32])
	}
	if !bytes.Equal(data[36:40], []byte{3, 1, 2, 3}) {
		t.Fatalf("second block = % x", data[36:40])
	}
	// palette entry for material 3 sits at index 2
	pal := data[32+12:]
	if !bytes.Equal(pal[8:12], []byte{1, 2, 3, 4}) {
		t.Fatalf("palette entry = % x", pal[8:12])
	}
}

func TestCodecRoundTrip(t *testing.T) {
	c := sampleContent()
	data, err := Marshal(c)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if diff := cmp.Diff(c, got); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
}

func TestDecodeRejects(t *testing.T) {
	good, _ := Marshal(sampleContent())

	if _, err := Unmarshal(good[:len(good)-1]); err == nil {
		t.Fatalf("truncated palette accepted")
	}
	if _, err := Unmarshal(good[:20]); err == nil {
		t.Fatalf("truncated header accepted")
	}

	bad := bytes.Clone(good)
	binary.LittleEndian.PutUint32(bad[28:], 9)
	if _, err := Unmarshal(bad); !errors.Is(err, ErrActiveCount) {
		t.Fatalf("err = %v, want ErrActiveCount", err)
	}

	bad = bytes.Clone(good)
	bad[32] = 7 // x of the first block, past sizeX
	if _, err := Unmarshal(bad); err == nil {
		t.Fatalf("out-of-range block accepted")
	}

	bad = bytes.Clone(good)
	copy(bad[36:39], []byte{0, 0, 0}) // second block onto the first
	if _, err := Unmarshal(bad); !errors.Is(err, ErrOccupied) {
		t.Fatalf("err = %v, want ErrOccupied", err)
	}
	shared := sampleContent()
	shared.Blocks[2] = Block{3, 1, 2, 9}
	if _, err := Marshal(shared); !errors.Is(err, ErrOccupied) {
		t.Fatalf("Marshal err = %v, want ErrOccupied", err)
	}

	bad = bytes.Clone(good)
	binary.LittleEndian.PutUint32(bad[0:], 0)
	if _, err := Unmarshal(bad); err == nil {
		t.Fatalf("zero size accepted")
	}
}

func TestLoad(t *testing.T) {
	m, err := Load(sampleContent())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Len() != 3 || len(m.Active()) != 2 || m.Get(2, 0, 1).Index != 255 {
		t.Fatalf("loaded model: len %d active %d", m.Len(), len(m.Active()))
	}
	c := ContentOf(m, sampleContent().Palette)
	if diff := cmp.Diff(sampleContent(), c); diff != "" {
		t.Fatalf("ContentOf (-want +got):\n%s", diff)
	}
}

func TestSplit(t *testing.T) {
	c := &Content{SizeX: 5, SizeY: 2, SizeZ: 3, Origin: mgl32.Vec3{100, 0, 0}, Palette: palette.Default()}
	for z := uint8(0); z < 3; z++ {
		for y := uint8(0); y < 2; y++ {
			for x := uint8(0); x < 5; x++ {
				c.Blocks = append(c.Blocks, Block{x, y, z, 1 + x})
			}
		}
	}
	c.Blocks, _ = Partition(5, 2, 3, c.Blocks)

	parts := Split(c, 2)
	// 3 chunks along x, 1 along y, 2 along z
	if len(parts) != 6 {
		t.Fatalf("got %d chunks, want 6", len(parts))
	}
	total := 0
	for _, p := range parts {
		total += len(p.Blocks)
		if err := p.validate(); err != nil {
			t.Fatalf("chunk at %v invalid: %v", p.Origin, err)
		}
	}
	if total != len(c.Blocks) {
		t.Fatalf("split kept %d of %d blocks", total, len(c.Blocks))
	}
	last := parts[len(parts)-1]
	if last.SizeX != 1 || last.SizeZ != 1 || last.Origin != (mgl32.Vec3{104, 0, 2}) {
		t.Fatalf("edge chunk %dx%dx%d at %v", last.SizeX, last.SizeY, last.SizeZ, last.Origin)
	}
	if last.Blocks[0].Index != 5 {
		t.Fatalf("edge chunk material %d, want 5", last.Blocks[0].Index)
	}
}

func TestCollection(t *testing.T) {
	world := octree.Box{Min: mgl32.Vec3{-64, -64, -64}, Max: mgl32.Vec3{64, 64, 64}}
	var contents []Content
	for i := 0; i < 3; i++ {
		contents = append(contents, Content{
			SizeX: 4, SizeY: 4, SizeZ: 4,
			Origin: mgl32.Vec3{float32(i * 8), 0, 0},
			Blocks: []Block{{0, 0, 0, 1}},
			Active: 1,
		})
	}
	col, err := LoadCollection(world, contents)
	if err != nil {
		t.Fatalf("LoadCollection: %v", err)
	}
	if col.Len() != 3 {
		t.Fatalf("Len = %d", col.Len())
	}

	hits := col.Raycast(octree.Ray{Origin: mgl32.Vec3{30, 1, 1}, Direction: mgl32.Vec3{-1, 0, 0}})
	if len(hits) != 3 || hits[0].Chunk != col.Chunks()[2] || hits[0].Distance != 10 {
		t.Fatalf("Raycast = %+v", hits)
	}

	q := col.Query(octree.Box{Min: mgl32.Vec3{5, 0, 0}, Max: mgl32.Vec3{9, 1, 1}})
	if len(q) != 1 || q[0] != col.Chunks()[1] {
		t.Fatalf("Query returned %d chunks", len(q))
	}

	if _, m, err := col.Intersect(octree.Ray{Origin: mgl32.Vec3{0, 30, 30}, Direction: mgl32.Vec3{1, 0, 0}}); m != nil || err != nil {
		t.Fatalf("miss returned chunk %v err %v", m, err)
	}
	if _, _, err := col.Intersect(hitsRay()); !errors.Is(err, ErrIntersectUnsupported) {
		t.Fatalf("err = %v, want ErrIntersectUnsupported", err)
	}

	far := New(mgl32.Vec3{100, 100, 100}, 2, 2, 2)
	if col.Add(far) {
		t.Fatalf("chunk outside the world accepted")
	}
}

func TestCollectionManyChunks(t *testing.T) {
	col := NewCollection(octree.NewBox(mgl32.Vec3{}, mgl32.Vec3{128, 128, 128}))
	for z := 0; z < 4; z++ {
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				m := New(mgl32.Vec3{float32(x * 32), float32(y * 32), float32(z * 32)}, 32, 32, 32)
				if !col.Add(m) {
					t.Fatalf("chunk at %v rejected", m.Origin())
				}
			}
		}
	}
	if col.Len() != 64 {
		t.Fatalf("Len = %d", col.Len())
	}

	q := col.Query(octree.Box{Min: mgl32.Vec3{40, 40, 40}, Max: mgl32.Vec3{41, 41, 41}})
	if len(q) != 1 || q[0].Origin() != (mgl32.Vec3{32, 32, 32}) {
		t.Fatalf("Query returned %d chunks", len(q))
	}

	face := col.Query(octree.Box{Min: mgl32.Vec3{64, 40, 40}, Max: mgl32.Vec3{64, 41, 41}})
	if len(face) != 2 || face[0].Origin() != (mgl32.Vec3{32, 32, 32}) || face[1].Origin() != (mgl32.Vec3{64, 32, 32}) {
		t.Fatalf("face Query returned %d chunks", len(face))
	}

	hits := col.Raycast(octree.Ray{Origin: mgl32.Vec3{-10, 40, 40}, Direction: mgl32.Vec3{1, 0, 0}})
	if len(hits) != 4 {
		t.Fatalf("Raycast returned %d hits, want 4", len(hits))
	}
	for i, h := range hits {
		wantX := float32(i * 32)
		if h.Distance != wantX+10 || h.Chunk.Origin() != (mgl32.Vec3{wantX, 32, 32}) {
			t.Fatalf("hit %d: chunk %v at %v", i, h.Chunk.Origin(), h.Distance)
		}
	}
}

func hitsRay() octree.Ray {
	return octree.Ray{Origin: mgl32.Vec3{-10, 1, 1}, Direction: mgl32.Vec3{1, 0, 0}}
}
