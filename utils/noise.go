package utils

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxelsplace/voxcore/api"
	"github.com/voxelsplace/voxcore/chunk"
	"github.com/voxelsplace/voxcore/config"
	"github.com/voxelsplace/voxcore/palette"
)

// RunGenerateNoise writes amount random chunks named 0.chunk..(amount-1).chunk
// into outDir. Each file gets a fill percentage drawn uniformly from
// [percentMin, percentMax]. The chunks are laid out along +X.
func RunGenerateNoise(percentMin, percentMax float64, amount int, outDir string, cfg *config.Config) error {
	return generateNoise(percentMin, percentMax, amount, outDir, cfg, uint64(time.Now().UnixNano()))
}

func generateNoise(percentMin, percentMax float64, amount int, outDir string, cfg *config.Config, baseSeed uint64) error {
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	if percentMax < percentMin {
		percentMin, percentMax = percentMax, percentMin
	}
	pal, err := configPalette(cfg)
	if err != nil {
		return err
	}
	size := cfg.Chunk.SplitSize

	return forEach(max(amount, 0), func(i int) error {
		// per-file seed from a Weyl sequence
		const weyl = uint64(0x9e3779b97f4a7c15)
		seed := baseSeed ^ (uint64(i)+1)*weyl
		r := rand.New(rand.NewSource(int64(seed & 0x7fffffffffffffff)))

		perc := percentMin
		if percentMax > percentMin {
			perc = percentMin + r.Float64()*(percentMax-percentMin)
		}
		c := api.NoiseChunk(r, size, perc, mgl32.Vec3{float32(i * size), 0, 0})
		c.Palette = pal
		data, err := chunk.Marshal(c)
		if err != nil {
			return err
		}
		path := filepath.Join(outDir, fmt.Sprintf("%d.chunk", i))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("save %s: %w", path, err)
		}
		return nil
	})
}

// configPalette returns the configured palette, or the default one.
func configPalette(cfg *config.Config) (palette.Palette, error) {
	if len(cfg.Palette) == 0 {
		return palette.Default(), nil
	}
	pal, err := palette.FromHex(cfg.Palette)
	if err != nil {
		return pal, fmt.Errorf("config palette: %w", err)
	}
	color.Yellow("using %d configured palette colors", len(cfg.Palette))
	return pal, nil
}
