package api

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"
	"github.com/qmuntal/gltf"

	"github.com/voxelsplace/voxcore/chunk"
	"github.com/voxelsplace/voxcore/octree"
	"github.com/voxelsplace/voxcore/pack"
)

// voxBytes builds a MagicaVoxel file with a SIZE and an XYZI chunk.
func voxBytes(size [3]int32, voxels ...[4]byte) []byte {
	var content bytes.Buffer
	content.WriteString("SIZE")
	binary.Write(&content, binary.LittleEndian, [2]int32{12, 0})
	binary.Write(&content, binary.LittleEndian, size)
	content.WriteString("XYZI")
	binary.Write(&content, binary.LittleEndian, [2]int32{int32(4 + 4*len(voxels)), 0})
	binary.Write(&content, binary.LittleEndian, int32(len(voxels)))
	for _, v := range voxels {
		content.Write(v[:])
	}

	var b bytes.Buffer
	b.WriteString("VOX ")
	binary.Write(&b, binary.LittleEndian, int32(150))
	b.WriteString("MAIN")
	binary.Write(&b, binary.LittleEndian, [2]int32{0, int32(content.Len())})
	b.Write(content.Bytes())
	return b.Bytes()
}

func decodeGLB(t *testing.T, data []byte) *gltf.Document {
	t.Helper()
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		t.Fatalf("decode glb: %v", err)
	}
	return doc
}

func TestVoxToChunks(t *testing.T) {
	// 4x4x4 in MagicaVoxel axes; one voxel in each far corner
	data := voxBytes([3]int32{4, 4, 4}, [4]byte{0, 0, 0, 1}, [4]byte{3, 0, 3, 2})
	entries, err := VoxToChunks(data, 2)
	if err != nil {
		t.Fatalf("VoxToChunks: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	// mv (0,0,0) -> (0,0,3); mv (3,0,3) -> (3,3,3)
	if diff := cmp.Diff([]string{"0_0_2.chunk", "2_2_2.chunk"}, names); diff != "" {
		t.Fatalf("chunk names (-want +got):\n%s", diff)
	}
	c, err := chunk.Unmarshal(entries[1].Data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := []chunk.Block{{X: 1, Y: 1, Z: 1, Index: 2}}
	if diff := cmp.Diff(want, c.Blocks); diff != "" {
		t.Fatalf("blocks (-want +got):\n%s", diff)
	}

	if _, err := VoxToChunks(voxBytes([3]int32{2, 2, 2}), 2); !errors.Is(err, ErrNoChunks) {
		t.Fatalf("err = %v, want ErrNoChunks", err)
	}
}

func TestChunkToGLB(t *testing.T) {
	c := NoiseChunk(rand.New(rand.NewSource(1)), 4, 100, mgl32.Vec3{})
	data, err := chunk.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	glb, err := ChunkToGLB(data)
	if err != nil {
		t.Fatalf("ChunkToGLB: %v", err)
	}
	doc := decodeGLB(t, glb)
	if len(doc.Meshes) != 1 || len(doc.Nodes) != 1 {
		t.Fatalf("%d meshes, %d nodes", len(doc.Meshes), len(doc.Nodes))
	}
	prim := doc.Meshes[0].Primitives[0]
	for _, attr := range []string{gltf.POSITION, gltf.NORMAL, gltf.COLOR_0} {
		if _, ok := prim.Attributes[attr]; !ok {
			t.Fatalf("missing %s", attr)
		}
	}

	if _, err := ChunkToGLB([]byte("garbage")); err == nil {
		t.Fatalf("garbage accepted")
	}
}

func TestChunksToGLBPlacesNodes(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	var entries []pack.Entry
	for _, o := range []mgl32.Vec3{{0, 0, 0}, {8, 0, 0}, {0, 8, 16}} {
		c := NoiseChunk(r, 8, 30, o)
		data, err := chunk.Marshal(c)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		entries = append(entries, pack.Entry{Name: ChunkName(c), Data: data})
	}
	glb, err := ChunksToGLB(context.Background(), entries, 2)
	if err != nil {
		t.Fatalf("ChunksToGLB: %v", err)
	}
	doc := decodeGLB(t, glb)
	if len(doc.Nodes) != 3 {
		t.Fatalf("%d nodes", len(doc.Nodes))
	}
	if doc.Nodes[2].Name != "0_8_16.chunk" || doc.Nodes[2].Translation != [3]float32{0, 8, 16} {
		t.Fatalf("node 2 = %s at %v", doc.Nodes[2].Name, doc.Nodes[2].Translation)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ChunksToGLB(ctx, entries, 2); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRaycastChunks(t *testing.T) {
	r := rand.New(rand.NewSource(6))
	var entries []pack.Entry
	for _, o := range []mgl32.Vec3{{64, 0, 0}, {0, 0, 0}, {32, 0, 0}, {0, 32, 0}} {
		c := NoiseChunk(r, 32, 5, o)
		data, err := chunk.Marshal(c)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		entries = append(entries, pack.Entry{Name: ChunkName(c), Data: data})
	}

	coll, contents, err := World(entries)
	if err != nil {
		t.Fatalf("World: %v", err)
	}
	if coll.Len() != 4 || len(contents) != 4 {
		t.Fatalf("world holds %d chunks", coll.Len())
	}
	if b := coll.Bounds(); b.Min != (mgl32.Vec3{}) || b.Max != (mgl32.Vec3{96, 64, 32}) {
		t.Fatalf("world bounds %v", b)
	}

	hits, err := RaycastChunks(entries, octree.Ray{Origin: mgl32.Vec3{-4, 8, 8}, Direction: mgl32.Vec3{1, 0, 0}})
	if err != nil {
		t.Fatalf("RaycastChunks: %v", err)
	}
	want := []ChunkHit{
		{Name: "0_0_0.chunk", Origin: mgl32.Vec3{0, 0, 0}, Distance: 4},
		{Name: "32_0_0.chunk", Origin: mgl32.Vec3{32, 0, 0}, Distance: 36},
		{Name: "64_0_0.chunk", Origin: mgl32.Vec3{64, 0, 0}, Distance: 68},
	}
	if diff := cmp.Diff(want, hits); diff != "" {
		t.Fatalf("hits (-want +got):\n%s", diff)
	}

	if _, err := RaycastChunks(nil, octree.Ray{Direction: mgl32.Vec3{1, 0, 0}}); !errors.Is(err, ErrNoChunks) {
		t.Fatalf("err = %v, want ErrNoChunks", err)
	}
}

func TestPackChunks(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	var entries []pack.Entry
	for i := 0; i < 3; i++ {
		c := NoiseChunk(r, 6, 50, mgl32.Vec3{float32(6 * i), 0, 0})
		data, _ := chunk.Marshal(c)
		entries = append(entries, pack.Entry{Name: ChunkName(c), Data: data})
	}
	data, err := PackChunks(entries, pack.LayoutCDC, pack.CompZstd)
	if err != nil {
		t.Fatalf("PackChunks: %v", err)
	}
	got, err := UnpackChunks(data)
	if err != nil {
		t.Fatalf("UnpackChunks: %v", err)
	}
	if diff := cmp.Diff(entries, got); diff != "" {
		t.Fatalf("entries (-want +got):\n%s", diff)
	}

	bad := append(entries, pack.Entry{Name: "bad.chunk", Data: []byte{1, 2, 3}})
	if _, err := PackChunks(bad, pack.LayoutWhole, pack.CompNone); err == nil {
		t.Fatalf("invalid chunk packed")
	}
	if _, err := PackChunks(nil, pack.LayoutWhole, pack.CompNone); !errors.Is(err, ErrNoChunks) {
		t.Fatalf("err = %v, want ErrNoChunks", err)
	}
}

func TestNoiseChunk(t *testing.T) {
	a := NoiseChunk(rand.New(rand.NewSource(4)), 10, 25, mgl32.Vec3{})
	b := NoiseChunk(rand.New(rand.NewSource(4)), 10, 25, mgl32.Vec3{})
	if len(a.Blocks) != 250 {
		t.Fatalf("%d blocks, want 250", len(a.Blocks))
	}
	if diff := cmp.Diff(a.Blocks, b.Blocks); diff != "" {
		t.Fatalf("same seed, different chunks:\n%s", diff)
	}
	if _, err := chunk.Load(a); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if full := NoiseChunk(rand.New(rand.NewSource(5)), 4, 150, mgl32.Vec3{}); len(full.Blocks) != 64 || full.Active != 56 {
		t.Fatalf("full chunk: %d blocks, %d active", len(full.Blocks), full.Active)
	}
}
