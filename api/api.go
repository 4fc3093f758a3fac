// Package api exposes the byte-in, byte-out conversions shared by the CLI
// and the wasm build.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/voxelsplace/voxcore/chunk"
	"github.com/voxelsplace/voxcore/mesh"
	"github.com/voxelsplace/voxcore/octree"
	"github.com/voxelsplace/voxcore/pack"
	"github.com/voxelsplace/voxcore/palette"
	"github.com/voxelsplace/voxcore/vox"
	"github.com/voxelsplace/voxcore/voxel"
)

var ErrNoChunks = errors.New("api: no chunks")

// ChunkName names a chunk file after its origin.
func ChunkName(c *chunk.Content) string {
	return fmt.Sprintf("%d_%d_%d.chunk", int(c.Origin[0]), int(c.Origin[1]), int(c.Origin[2]))
}

// VoxToChunks imports a MagicaVoxel file and cuts it into encoded chunks of
// at most size voxels per axis.
func VoxToChunks(voxBytes []byte, size int) ([]pack.Entry, error) {
	model, err := vox.Decode(bytes.NewReader(voxBytes), nil)
	if err != nil {
		return nil, err
	}
	whole, err := model.Content(mgl32.Vec3{})
	if err != nil {
		return nil, err
	}
	parts := chunk.Split(whole, size)
	if len(parts) == 0 {
		return nil, ErrNoChunks
	}
	out := make([]pack.Entry, len(parts))
	for i := range parts {
		data, err := chunk.Marshal(&parts[i])
		if err != nil {
			return nil, err
		}
		out[i] = pack.Entry{Name: ChunkName(&parts[i]), Data: data}
	}
	return out, nil
}

// ChunkToGLB meshes one encoded chunk into a binary glTF.
func ChunkToGLB(chunkBytes []byte) ([]byte, error) {
	return ChunksToGLB(context.Background(), []pack.Entry{{Name: "chunk", Data: chunkBytes}}, 1)
}

// World decodes every entry and indexes the chunks in a collection whose
// bounds are the union of the chunk bounds. Contents are returned in entry
// order alongside.
func World(entries []pack.Entry) (*chunk.Collection, []chunk.Content, error) {
	if len(entries) == 0 {
		return nil, nil, ErrNoChunks
	}
	contents := make([]chunk.Content, len(entries))
	var world octree.Box
	for i, e := range entries {
		c, err := chunk.Unmarshal(e.Data)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", e.Name, err)
		}
		contents[i] = *c
		if i == 0 {
			world = c.Bounds()
		} else {
			world = world.Union(c.Bounds())
		}
	}
	coll, err := chunk.LoadCollection(world, contents)
	if err != nil {
		return nil, nil, err
	}
	return coll, contents, nil
}

// ChunkHit is a chunk entry crossed by a ray.
type ChunkHit struct {
	Name     string
	Origin   mgl32.Vec3
	Distance float32
}

// RaycastChunks returns the entries whose chunk bounds ray crosses, nearest
// first.
func RaycastChunks(entries []pack.Entry, ray octree.Ray) ([]ChunkHit, error) {
	coll, _, err := World(entries)
	if err != nil {
		return nil, err
	}
	names := make(map[*chunk.Model]string, coll.Len())
	for i, m := range coll.Chunks() {
		names[m] = entries[i].Name
	}
	hits := coll.Raycast(ray)
	out := make([]ChunkHit, len(hits))
	for i, h := range hits {
		out[i] = ChunkHit{Name: names[h.Chunk], Origin: h.Chunk.Origin(), Distance: h.Distance}
	}
	return out, nil
}

// ChunksToGLB meshes every encoded chunk on a worker pool and writes one
// node per chunk, translated to the chunk origin.
func ChunksToGLB(ctx context.Context, entries []pack.Entry, workers int) ([]byte, error) {
	coll, contents, err := World(entries)
	if err != nil {
		return nil, err
	}
	jobs := make([]mesh.Job, coll.Len())
	for i, m := range coll.Chunks() {
		jobs[i] = mesh.Job{Name: entries[i].Name, Volume: m.Grid()}
	}
	results, err := mesh.GenerateAll(ctx, jobs, workers)
	if err != nil {
		return nil, err
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = "voxtool"
	pbr := &gltf.PBRMetallicRoughness{BaseColorFactor: &[4]float32{1, 1, 1, 1}, MetallicFactor: gltf.Float(0), RoughnessFactor: gltf.Float(1)}
	material := &gltf.Material{PBRMetallicRoughness: pbr, AlphaMode: gltf.AlphaOpaque}
	doc.Materials = []*gltf.Material{material}

	for i, r := range results {
		if len(r.Indices) == 0 {
			continue
		}
		if addChunkMesh(doc, r, &contents[i].Palette, contents[i].Origin) {
			material.AlphaMode = gltf.AlphaBlend
		}
	}

	var out bytes.Buffer
	enc := gltf.NewEncoder(&out)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// addChunkMesh appends a mesh and its node. It reports whether any vertex
// color is translucent.
func addChunkMesh(doc *gltf.Document, r mesh.Result, pal *palette.Palette, origin mgl32.Vec3) bool {
	positions := make([][3]float32, len(r.Vertices))
	normals := make([][3]float32, len(r.Vertices))
	colors := make([][4]float32, len(r.Vertices))
	hasAlpha := false
	for i, v := range r.Vertices {
		positions[i] = v.Position([3]float32{})
		normals[i] = mesh.Direction(v.Normal).Normal()
		colors[i] = pal.Linear(v.Material)
		if colors[i][3] < 1 {
			hasAlpha = true
		}
	}
	indices := make([]uint32, len(r.Indices))
	for i, idx := range r.Indices {
		indices[i] = uint32(idx)
	}

	posAccessor := modeler.WritePosition(doc, positions)
	normalAccessor := modeler.WriteNormal(doc, normals)
	colorAccessor := modeler.WriteColor(doc, colors)
	indicesAccessor := modeler.WriteIndices(doc, indices)
	prim := &gltf.Primitive{
		Attributes: map[string]uint32{
			gltf.POSITION: uint32(posAccessor),
			gltf.NORMAL:   uint32(normalAccessor),
			gltf.COLOR_0:  uint32(colorAccessor),
		},
		Indices:  gltf.Index(uint32(indicesAccessor)),
		Material: gltf.Index(0),
	}

	m := &gltf.Mesh{Name: path.Base(r.Name), Primitives: []*gltf.Primitive{prim}}
	doc.Meshes = append(doc.Meshes, m)
	node := &gltf.Node{Name: m.Name, Mesh: gltf.Index(uint32(len(doc.Meshes) - 1))}
	node.Translation = [3]float32{origin[0], origin[1], origin[2]}
	doc.Nodes = append(doc.Nodes, node)
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)-1))
	return hasAlpha
}

// PackChunks builds a pack from encoded chunks. Every entry must decode as
// a valid chunk.
func PackChunks(entries []pack.Entry, layout pack.Layout, comp pack.Compression) ([]byte, error) {
	if len(entries) == 0 {
		return nil, ErrNoChunks
	}
	p := &pack.Pack{}
	for _, e := range entries {
		if _, err := chunk.Unmarshal(e.Data); err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name, err)
		}
		p.Add(e.Name, e.Data)
	}
	return p.Marshal(layout, comp)
}

// UnpackChunks returns the entries of a pack in stored order.
func UnpackChunks(packBytes []byte) ([]pack.Entry, error) {
	p, _, err := pack.Unmarshal(packBytes)
	if err != nil {
		return nil, err
	}
	return p.Entries, nil
}

// NoiseChunk fills a size³ chunk at origin with percent% random voxels of
// materials 1..63.
func NoiseChunk(r *rand.Rand, size int, percent float64, origin mgl32.Vec3) *chunk.Content {
	percent = min(max(percent, 0), 100)
	g := voxel.NewGrid(size, size, size)
	total := g.Len()
	want := min(int(float64(total)*percent/100+0.5), total)

	// partial Fisher-Yates over cell indices
	idx := make([]int, total)
	for i := range idx {
		idx[i] = i
	}
	blocks := make([]chunk.Block, 0, want)
	for i := 0; i < want; i++ {
		j := i + r.Intn(total-i)
		idx[i], idx[j] = idx[j], idx[i]
		x, y, z := g.Coords(idx[i])
		blocks = append(blocks, chunk.Block{X: uint8(x), Y: uint8(y), Z: uint8(z), Index: uint8(1 + r.Intn(63))})
	}
	ordered, active := chunk.Partition(size, size, size, blocks)
	return &chunk.Content{
		SizeX: int32(size), SizeY: int32(size), SizeZ: int32(size),
		Origin:  origin,
		Blocks:  ordered,
		Active:  int32(active),
		Palette: palette.Default(),
	}
}
