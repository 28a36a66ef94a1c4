package render

import (
	"image/color"

	"github.com/taigrr/orrery/pkg/math3d"
)

// Color is a linear RGB color with every channel held in [0, 1]. All
// constructors and operations clamp their result, so out-of-range values
// never leak into the framebuffer.
type Color struct {
	R, G, B float64
}

// Colors for convenience
var (
	Black = Color{}
	White = Color{1, 1, 1}
)

// RGB creates a color from float channels, clamping each to [0, 1].
func RGB(r, g, b float64) Color {
	return Color{math3d.Saturate(r), math3d.Saturate(g), math3d.Saturate(b)}
}

// RGB8 creates a color from 8-bit channels.
func RGB8(r, g, b uint8) Color {
	return Color{float64(r) / 255, float64(g) / 255, float64(b) / 255}
}

// Hex creates a color from a 0xRRGGBB value.
func Hex(v uint32) Color {
	return RGB8(uint8(v>>16), uint8(v>>8), uint8(v))
}

// FromRGBA converts an 8-bit color, ignoring alpha.
func FromRGBA(c color.RGBA) Color {
	return RGB8(c.R, c.G, c.B)
}

// Add returns the channel-wise sum.
func (c Color) Add(o Color) Color {
	return RGB(c.R+o.R, c.G+o.G, c.B+o.B)
}

// Sub returns the channel-wise difference.
func (c Color) Sub(o Color) Color {
	return RGB(c.R-o.R, c.G-o.G, c.B-o.B)
}

// Mul modulates c by o channel-wise.
func (c Color) Mul(o Color) Color {
	return RGB(c.R*o.R, c.G*o.G, c.B*o.B)
}

// Scale multiplies every channel by s.
func (c Color) Scale(s float64) Color {
	return RGB(c.R*s, c.G*s, c.B*s)
}

// Lerp blends from c towards o by t.
func (c Color) Lerp(o Color, t float64) Color {
	return RGB(
		math3d.Mix(c.R, o.R, t),
		math3d.Mix(c.G, o.G, t),
		math3d.Mix(c.B, o.B, t),
	)
}

// Luminance returns the Rec. 709 relative luminance in [0, 1].
func (c Color) Luminance() float64 {
	return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
}

// RGBA converts to an opaque 8-bit color, rounding to nearest.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{
		R: uint8(math3d.Saturate(c.R)*255 + 0.5),
		G: uint8(math3d.Saturate(c.G)*255 + 0.5),
		B: uint8(math3d.Saturate(c.B)*255 + 0.5),
		A: 255,
	}
}
