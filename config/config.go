// Package config holds the voxtool settings read from a YAML file.
package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/voxelsplace/voxcore/chunk"
	"github.com/voxelsplace/voxcore/pack"
	"github.com/voxelsplace/voxcore/render"
)

type ChunkConfig struct {
	// SplitSize is the edge length of chunks cut from an imported model.
	SplitSize int `yaml:"split_size"`
}

type MeshConfig struct {
	Workers int `yaml:"workers"`
}

type PackConfig struct {
	Compression string `yaml:"compression"`
	Layout      string `yaml:"layout"`
}

type RenderConfig struct {
	Strategy string `yaml:"strategy"`
}

type Config struct {
	Chunk  ChunkConfig  `yaml:"chunk"`
	Mesh   MeshConfig   `yaml:"mesh"`
	Pack   PackConfig   `yaml:"pack"`
	Render RenderConfig `yaml:"render"`
	// Palette optionally replaces the default palette, one hex color per
	// material starting at 1.
	Palette []string `yaml:"palette"`
}

func Default() *Config {
	return &Config{
		Chunk:  ChunkConfig{SplitSize: chunk.DefaultSize},
		Mesh:   MeshConfig{Workers: runtime.NumCPU()},
		Pack:   PackConfig{Compression: "zstd", Layout: "whole"},
		Render: RenderConfig{Strategy: "greedy"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	if err := yaml.NewDecoder(fp).Decode(c); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.Chunk.SplitSize < 1 || c.Chunk.SplitSize > 256 {
		return fmt.Errorf("config: chunk.split_size %d outside 1..256", c.Chunk.SplitSize)
	}
	if c.Mesh.Workers < 1 {
		return fmt.Errorf("config: mesh.workers must be positive, got %d", c.Mesh.Workers)
	}
	if _, err := c.Compression(); err != nil {
		return err
	}
	if _, err := c.Layout(); err != nil {
		return err
	}
	if _, err := c.Strategy(); err != nil {
		return err
	}
	if len(c.Palette) > 255 {
		return fmt.Errorf("config: palette has %d colors, at most 255 allowed", len(c.Palette))
	}
	return nil
}

func (c *Config) Compression() (pack.Compression, error) {
	return pack.ParseCompression(c.Pack.Compression)
}

func (c *Config) Layout() (pack.Layout, error) {
	return pack.ParseLayout(c.Pack.Layout)
}

func (c *Config) Strategy() (render.Strategy, error) {
	return render.ParseStrategy(c.Render.Strategy)
}
