package utils

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/voxelsplace/voxcore/chunk"
	"github.com/voxelsplace/voxcore/config"
	"github.com/voxelsplace/voxcore/mesh"
	"github.com/voxelsplace/voxcore/render"
)

// RunInfo prints a summary of a chunk file to w, including the buffer sizes
// the configured render strategy would upload.
func RunInfo(inPath string, w io.Writer, cfg *config.Config) error {
	strategy, err := cfg.Strategy()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	c, err := chunk.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}
	m, err := chunk.Load(c)
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}

	label := color.New(color.FgCyan)
	sx, sy, sz := m.Size()
	b := m.Bounds()
	label.Fprint(w, "size:     ")
	fmt.Fprintf(w, "%dx%dx%d\n", sx, sy, sz)
	label.Fprint(w, "origin:   ")
	fmt.Fprintf(w, "%v\n", m.Origin())
	label.Fprint(w, "bounds:   ")
	fmt.Fprintf(w, "%v - %v\n", b.Min, b.Max)
	label.Fprint(w, "blocks:   ")
	fmt.Fprintf(w, "%d of %d (%d active, %d hidden)\n", m.Len(), m.Capacity(), len(m.Active()), len(m.Inactive()))

	faces := mesh.Faces(m.Grid())
	area := 0
	for _, f := range faces {
		area += f.Area()
	}
	label.Fprint(w, "faces:    ")
	fmt.Fprintf(w, "%d quads covering %d voxel faces\n", len(faces), area)

	materials := make([]uint8, len(c.Blocks))
	for i, blk := range c.Blocks {
		materials[i] = blk.Index
	}
	used := c.Palette.Used(materials)
	colors := make([]string, len(used))
	for i, mat := range used {
		colors[i] = fmt.Sprintf("%d=%s", mat, c.Palette.Hex(mat))
	}
	label.Fprint(w, "palette:  ")
	fmt.Fprintln(w, strings.Join(colors, " "))

	r := render.New(strategy, render.UnitCube(), &c.Palette)
	r.Initialize(m)
	verts, inds, instances := r.Stats()
	label.Fprint(w, "render:   ")
	if strategy == render.Instanced {
		fmt.Fprintf(w, "%s, %d instances\n", strategy, instances)
	} else {
		fmt.Fprintf(w, "%s, %d vertices, %d indices\n", strategy, verts, inds)
	}
	return nil
}
