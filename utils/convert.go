package utils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"

	"github.com/voxelsplace/voxcore/api"
	"github.com/voxelsplace/voxcore/config"
	"github.com/voxelsplace/voxcore/pack"
)

// RunVox2Chunk imports a .vox file and writes its chunks into outDir.
func RunVox2Chunk(inPath, outDir string, cfg *config.Config) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	entries, err := api.VoxToChunks(data, cfg.Chunk.SplitSize)
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}
	if err := writeEntries(entries, outDir); err != nil {
		return err
	}
	color.Green("wrote %d chunks to %s", len(entries), outDir)
	return nil
}

// RunChunk2GLB meshes one chunk file into a .glb.
func RunChunk2GLB(inPath, outPath string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	glb, err := api.ChunkToGLB(data)
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}
	return os.WriteFile(outPath, glb, 0o644)
}

// RunPack2GLB meshes every chunk of a pack into one .glb, one node per chunk.
func RunPack2GLB(inPath, outPath string, cfg *config.Config) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	entries, err := api.UnpackChunks(data)
	if err != nil {
		return err
	}
	start := time.Now()
	glb, err := api.ChunksToGLB(context.Background(), entries, cfg.Mesh.Workers)
	if err != nil {
		return err
	}
	color.Cyan("meshing %d chunks took %d ms", len(entries), time.Since(start).Milliseconds())
	return os.WriteFile(outPath, glb, 0o644)
}

// RunPack reads chunk files and writes them into one pack.
func RunPack(outPath string, inputs []string, cfg *config.Config) error {
	if len(inputs) == 0 {
		return api.ErrNoChunks
	}
	comp, err := cfg.Compression()
	if err != nil {
		return err
	}
	layout, err := cfg.Layout()
	if err != nil {
		return err
	}
	entries, err := readEntries(inputs)
	if err != nil {
		return err
	}
	start := time.Now()
	data, err := api.PackChunks(entries, layout, comp)
	if err != nil {
		return err
	}
	color.Cyan("packing (%s, %s) took %d ms", layout, comp, time.Since(start).Milliseconds())
	return os.WriteFile(outPath, data, 0o644)
}

// RunUnpack writes every chunk of a pack into outDir under its stored name.
func RunUnpack(inPath, outDir string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	entries, err := api.UnpackChunks(data)
	if err != nil {
		return err
	}
	return writeEntries(entries, outDir)
}

func readEntries(paths []string) ([]pack.Entry, error) {
	entries := make([]pack.Entry, len(paths))
	err := forEach(len(paths), func(i int) error {
		b, err := os.ReadFile(paths[i])
		if err != nil {
			return err
		}
		entries[i] = pack.Entry{Name: filepath.Base(paths[i]), Data: b}
		return nil
	})
	return entries, err
}

func writeEntries(entries []pack.Entry, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	return forEach(len(entries), func(i int) error {
		// names come from the pack; keep them inside outDir
		name := filepath.Base(entries[i].Name)
		return os.WriteFile(filepath.Join(outDir, name), entries[i].Data, 0o644)
	})
}
