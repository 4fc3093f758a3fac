package utils

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxelsplace/voxcore/api"
	"github.com/voxelsplace/voxcore/octree"
)

// RunRaycast lists the chunks of a pack crossed by a ray, nearest first.
func RunRaycast(packPath string, origin, dir mgl32.Vec3, w io.Writer) error {
	if dir.Len() == 0 {
		return fmt.Errorf("raycast: zero direction")
	}
	data, err := os.ReadFile(packPath)
	if err != nil {
		return err
	}
	entries, err := api.UnpackChunks(data)
	if err != nil {
		return fmt.Errorf("%s: %w", packPath, err)
	}
	hits, err := api.RaycastChunks(entries, octree.Ray{Origin: origin, Direction: dir.Normalize()})
	if err != nil {
		return fmt.Errorf("%s: %w", packPath, err)
	}
	if len(hits) == 0 {
		color.New(color.FgYellow).Fprintln(w, "no chunk hit")
		return nil
	}
	label := color.New(color.FgCyan)
	for _, h := range hits {
		label.Fprintf(w, "%8.2f  ", h.Distance)
		fmt.Fprintf(w, "%s at %v\n", h.Name, h.Origin)
	}
	return nil
}
