package render

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxelsplace/voxcore/chunk"
	"github.com/voxelsplace/voxcore/palette"
)

type recorder struct {
	instanced [][]uint32
	indexed   int
	vertices  int
	origin    mgl32.Vec3
}

func (r *recorder) DrawInstanced(origin mgl32.Vec3, geom *Geometry, instances []uint32) {
	r.origin = origin
	r.instanced = append(r.instanced, append([]uint32(nil), instances...))
}

func (r *recorder) DrawIndexed(origin mgl32.Vec3, vertices []Vertex, indices []uint32) {
	r.origin = origin
	r.indexed += len(indices)
	r.vertices += len(vertices)
}

func testModel(t *testing.T) *chunk.Model {
	t.Helper()
	m := chunk.New(mgl32.Vec3{8, 0, 0}, 3, 3, 3)
	var blocks []chunk.Block
	for z := uint8(0); z < 3; z++ {
		for y := uint8(0); y < 3; y++ {
			for x := uint8(0); x < 3; x++ {
				blocks = append(blocks, chunk.Block{X: x, Y: y, Z: z, Index: 1})
			}
		}
	}
	ordered, active := chunk.Partition(3, 3, 3, blocks)
	if err := m.Build(ordered, active, false); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return m
}

func TestUnitCube(t *testing.T) {
	g := UnitCube()
	if g.VertexCount() != 24 || len(g.Indices) != 36 {
		t.Fatalf("cube has %d vertices, %d indices", g.VertexCount(), len(g.Indices))
	}
	for i, p := range g.Positions {
		for _, c := range p {
			if c != 0 && c != 1 {
				t.Fatalf("corner %d = %v outside the unit cube", i, p)
			}
		}
	}
}

func TestInstanced(t *testing.T) {
	pal := palette.Default()
	r := New(Instanced, UnitCube(), &pal)
	var rec recorder
	if err := r.Draw(&rec); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("err = %v, want ErrNotInitialized", err)
	}

	m := testModel(t)
	r.Initialize(m)
	if err := r.Draw(&rec); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if len(rec.instanced) != 1 || len(rec.instanced[0]) != 26 {
		t.Fatalf("drew %v, want 26 active instances", rec.instanced)
	}
	if rec.origin != m.Origin() {
		t.Fatalf("origin %v", rec.origin)
	}

	// overwriting the hidden center block makes it drawn
	if err := r.SetBlock(26, chunk.Block{X: 1, Y: 1, Z: 1, Index: 4}); err != nil {
		t.Fatalf("SetBlock: %v", err)
	}
	if _, _, n := r.Stats(); n != 27 {
		t.Fatalf("visible = %d, want 27", n)
	}
	if err := r.SetBlock(27, chunk.Block{}); !errors.Is(err, ErrBufferFull) {
		t.Fatalf("err = %v, want ErrBufferFull", err)
	}
}

func TestInstancedShowsOnlyWrittenSlot(t *testing.T) {
	m := chunk.New(mgl32.Vec3{}, 4, 4, 4)
	var blocks []chunk.Block
	for z := uint8(0); z < 4; z++ {
		for y := uint8(0); y < 4; y++ {
			for x := uint8(0); x < 4; x++ {
				blocks = append(blocks, chunk.Block{X: x, Y: y, Z: z, Index: 1})
			}
		}
	}
	ordered, active := chunk.Partition(4, 4, 4, blocks)
	if err := m.Build(ordered, active, false); err != nil {
		t.Fatalf("Build: %v", err)
	}
	pal := palette.Default()
	r := New(Instanced, UnitCube(), &pal)
	r.Initialize(m)
	if _, _, n := r.Stats(); n != 56 {
		t.Fatalf("visible = %d, want 56", n)
	}

	recolored := ordered[60]
	recolored.Index = 9
	if err := r.SetBlock(60, recolored); err != nil {
		t.Fatalf("SetBlock: %v", err)
	}
	var rec recorder
	if err := r.Draw(&rec); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	drawn := rec.instanced[0]
	if len(drawn) != 57 {
		t.Fatalf("drew %d instances, want 57", len(drawn))
	}
	set := make(map[uint32]bool, len(drawn))
	for _, p := range drawn {
		set[p] = true
	}
	if !set[recolored.Pack()] {
		t.Fatalf("written block not drawn")
	}
	for i, b := range ordered[active:] {
		if active+i != 60 && set[b.Pack()] {
			t.Fatalf("hidden block %v drawn", b)
		}
	}

	// writing the same slot again keeps the count
	if err := r.SetBlock(60, ordered[60]); err != nil {
		t.Fatalf("SetBlock: %v", err)
	}
	if _, _, n := r.Stats(); n != 57 {
		t.Fatalf("visible = %d, want 57", n)
	}
}

func TestBatch(t *testing.T) {
	pal := palette.Default()
	r := New(Batch, UnitCube(), &pal)
	r.Initialize(testModel(t))
	v, i, _ := r.Stats()
	if v != 27*24 || i != 27*36 {
		t.Fatalf("batch buffers %d/%d", v, i)
	}
	if err := r.SetBlock(0, chunk.Block{X: 2, Y: 2, Z: 2, Index: 5}); err != nil {
		t.Fatalf("SetBlock: %v", err)
	}
	if r.vertices[0].Color != pal.Linear(5) {
		t.Fatalf("SetBlock did not recolor the cube")
	}
	if err := r.SetBlock(40, chunk.Block{}); !errors.Is(err, ErrBufferFull) {
		t.Fatalf("err = %v, want ErrBufferFull", err)
	}
}

func TestGreedy(t *testing.T) {
	pal := palette.Default()
	r := New(Greedy, UnitCube(), &pal)
	m := testModel(t)
	r.Initialize(m)
	var rec recorder
	if err := r.Draw(&rec); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	// a solid 3x3x3 cube merges into six quads
	if rec.vertices != 24 || rec.indexed != 36 {
		t.Fatalf("greedy drew %d vertices, %d indices", rec.vertices, rec.indexed)
	}
	if err := r.SetBlock(0, chunk.Block{}); !errors.Is(err, ErrNeedsRebuild) {
		t.Fatalf("err = %v, want ErrNeedsRebuild", err)
	}

	m.Remove(1, 2, 1)
	r.Rebuild(m)
	if v, _, _ := r.Stats(); v <= 24 {
		t.Fatalf("rebuild after removing a block kept %d vertices", v)
	}
}

func TestParseStrategy(t *testing.T) {
	for _, s := range []Strategy{Batch, Instanced, Greedy} {
		got, err := ParseStrategy(s.String())
		if err != nil || got != s {
			t.Fatalf("ParseStrategy(%s) = %v, %v", s, got, err)
		}
	}
	if _, err := ParseStrategy("raytrace"); err == nil {
		t.Fatalf("unknown strategy accepted")
	}
}
