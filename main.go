//go:build !(js && wasm)

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxelsplace/voxcore/config"
	"github.com/voxelsplace/voxcore/utils"
)

var configPath = flag.String("c", "", "path to a YAML config file")

func usage() {
	fmt.Println("Usage: voxtool [-c config.yaml] <command> [args]")
	fmt.Println("Commands:")
	fmt.Println("  vox2chunk input.vox output_dir              (import a MagicaVoxel model and split it into chunks)")
	fmt.Println("  chunk2glb input.chunk output.glb            (greedy mesh one chunk into a .glb)")
	fmt.Println("  pack output.voxpack input1.chunk [...]      (pack chunks into one container)")
	fmt.Println("  unpack input.voxpack output_dir             (extract chunks from a pack)")
	fmt.Println("  pack2glb input.voxpack output.glb           (mesh every chunk of a pack, one node per chunk)")
	fmt.Println("  info input.chunk                            (print chunk size, blocks and palette)")
	fmt.Println("  raycast input.voxpack ox oy oz dx dy dz     (list the chunks a ray crosses, nearest first)")
	fmt.Println("  gennoise <percentage> <amount> <output_dir>                     (random chunks with fixed fill %)")
	fmt.Println("  gennoise <percentageMin> <percentageMax> <amount> <output_dir>  (random chunks with fill in [min,max])")
}

func fail(err error) {
	color.Red("Error: %v", err)
	os.Exit(1)
}

func main() {
	flag.Usage = usage
	flag.Parse()
	args := flag.Args()
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fail(err)
	}

	need := func(n int) {
		if len(args) != n {
			usage()
			os.Exit(1)
		}
	}

	switch args[0] {
	case "vox2chunk":
		need(3)
		err = utils.RunVox2Chunk(args[1], args[2], cfg)
	case "chunk2glb":
		need(3)
		err = utils.RunChunk2GLB(args[1], args[2])
	case "pack":
		if len(args) < 3 {
			usage()
			os.Exit(1)
		}
		err = utils.RunPack(args[1], args[2:], cfg)
	case "unpack":
		need(3)
		err = utils.RunUnpack(args[1], args[2])
	case "pack2glb":
		need(3)
		err = utils.RunPack2GLB(args[1], args[2], cfg)
	case "info":
		need(2)
		err = utils.RunInfo(args[1], os.Stdout, cfg)
	case "raycast":
		need(8)
		err = raycast(args[1], args[2:])
	case "gennoise":
		err = gennoise(args[1:], cfg)
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fail(err)
	}
	color.Green("Operation completed!")
}

// gennoise accepts "percent amount dir" or "min max amount dir".
func gennoise(args []string, cfg *config.Config) error {
	var minP, maxP float64
	var amount int
	switch len(args) {
	case 3:
		if _, err := fmt.Sscan(args[0], &minP); err != nil {
			return err
		}
		maxP = minP
	case 4:
		if _, err := fmt.Sscan(args[0], &minP); err != nil {
			return err
		}
		if _, err := fmt.Sscan(args[1], &maxP); err != nil {
			return err
		}
	default:
		usage()
		os.Exit(1)
	}
	if _, err := fmt.Sscan(args[len(args)-2], &amount); err != nil {
		return err
	}
	return utils.RunGenerateNoise(minP, maxP, amount, args[len(args)-1], cfg)
}

// raycast parses the ray origin and direction from six numbers.
func raycast(packPath string, args []string) error {
	var v [6]float32
	for i := range v {
		if _, err := fmt.Sscan(args[i], &v[i]); err != nil {
			return fmt.Errorf("raycast argument %q: %w", args[i], err)
		}
	}
	return utils.RunRaycast(packPath, mgl32.Vec3{v[0], v[1], v[2]}, mgl32.Vec3{v[3], v[4], v[5]}, os.Stdout)
}
