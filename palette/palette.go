// Package palette maps voxel materials to colors.
package palette

import (
	"errors"
	"fmt"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Size is the number of usable materials. Material 0 is empty and has no entry.
const Size = 255

var ErrTooManyColors = errors.New("palette: more than 255 colors")

// Palette holds the color of material m at index m-1.
type Palette [Size]color.RGBA

// Color returns the color of material m. Material 0 is fully transparent.
func (p *Palette) Color(m uint8) color.RGBA {
	if m == 0 {
		return color.RGBA{}
	}
	return p[m-1]
}

// Set assigns the color of material m. Setting material 0 panics.
func (p *Palette) Set(m uint8, c color.RGBA) {
	if m == 0 {
		panic("palette: material 0 has no color")
	}
	p[m-1] = c
}

// Default returns the MagicaVoxel default palette.
func Default() Palette {
	var p Palette
	for i := range p {
		p[i] = fromABGR(magicaDefault[i+1])
	}
	return p
}

func fromABGR(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v), G: uint8(v >> 8), B: uint8(v >> 16), A: uint8(v >> 24)}
}

// FromHex builds a palette from "#rrggbb" strings for materials 1..len(hex).
// Remaining entries are left transparent.
func FromHex(hex []string) (Palette, error) {
	var p Palette
	if len(hex) > Size {
		return p, ErrTooManyColors
	}
	for i, h := range hex {
		c, err := colorful.Hex(h)
		if err != nil {
			return p, fmt.Errorf("palette: material %d: %w", i+1, err)
		}
		r, g, b := c.RGB255()
		p[i] = color.RGBA{R: r, G: g, B: b, A: 0xff}
	}
	return p, nil
}

func toColorful(c color.RGBA) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Linear returns the color of material m in linear RGB with straight alpha,
// as expected by glTF vertex colors.
func (p *Palette) Linear(m uint8) [4]float32 {
	c := p.Color(m)
	r, g, b := toColorful(c).LinearRgb()
	return [4]float32{float32(r), float32(g), float32(b), float32(c.A) / 255}
}

// Hex returns the "#rrggbb" form of material m.
func (p *Palette) Hex(m uint8) string {
	return toColorful(p.Color(m)).Hex()
}

// Used returns the distinct materials in materials that have a visible
// color, in ascending order.
func (p *Palette) Used(materials []uint8) []uint8 {
	var seen [256]bool
	for _, m := range materials {
		seen[m] = true
	}
	var out []uint8
	for m := 1; m < 256; m++ {
		if seen[m] && p[m-1].A != 0 {
			out = append(out, uint8(m))
		}
	}
	return out
}
