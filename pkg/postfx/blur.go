// Package postfx implements the screen-space passes that run on a finished
// frame: bright-pass extraction, separable Gaussian blur and additive
// compositing, combined as bloom.
package postfx

import (
	"fmt"
	"math"

	"github.com/taigrr/orrery/pkg/render"
)

// GaussianKernel returns a normalized 1D kernel of 2*radius+1 taps. A
// non-positive sigma yields the identity kernel.
func GaussianKernel(radius int, sigma float64) []float64 {
	radius = max(radius, 0)
	k := make([]float64, 2*radius+1)
	if sigma <= 0 || math.IsNaN(sigma) {
		k[radius] = 1
		return k
	}
	sum := 0.0
	for i := range k {
		x := float64(i - radius)
		k[i] = math.Exp(-(x * x) / (2 * sigma * sigma))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// Grid is a width x height color image, row-major.
type Grid struct {
	Width, Height int
	Pix           []render.Color
}

// NewGrid allocates a black grid.
func NewGrid(width, height int) *Grid {
	return &Grid{Width: width, Height: height, Pix: make([]render.Color, width*height)}
}

func (g *Grid) at(x, y int) render.Color {
	x = min(max(x, 0), g.Width-1)
	y = min(max(y, 0), g.Height-1)
	return g.Pix[y*g.Width+x]
}

func sameSize(a, b *Grid) error {
	if a.Width != b.Width || a.Height != b.Height || len(a.Pix) != len(b.Pix) {
		return fmt.Errorf("%dx%d vs %dx%d: %w", a.Width, a.Height, b.Width, b.Height, render.ErrSizeMismatch)
	}
	return nil
}

// blurPass convolves src along one axis into dst. Samples past the edge
// repeat the edge pixel. Sums are accumulated unclamped and clamped once.
func blurPass(dst, src *Grid, kernel []float64, horizontal bool) {
	r := len(kernel) / 2
	for y := range src.Height {
		for x := range src.Width {
			var sr, sg, sb float64
			for i, w := range kernel {
				var c render.Color
				if horizontal {
					c = src.at(x+i-r, y)
				} else {
					c = src.at(x, y+i-r)
				}
				sr += c.R * w
				sg += c.G * w
				sb += c.B * w
			}
			dst.Pix[y*src.Width+x] = render.RGB(sr, sg, sb)
		}
	}
}

// BlurSeparable blurs src into dst with a horizontal then a vertical pass of
// kernel. scratch holds the intermediate result. All three grids must be
// the same size; dst may alias src but not scratch.
func BlurSeparable(dst, src, scratch *Grid, kernel []float64) error {
	if err := sameSize(dst, src); err != nil {
		return fmt.Errorf("blur: %w", err)
	}
	if err := sameSize(scratch, src); err != nil {
		return fmt.Errorf("blur scratch: %w", err)
	}
	if src.Width == 0 || src.Height == 0 {
		return nil
	}
	blurPass(scratch, src, kernel, true)
	blurPass(dst, scratch, kernel, false)
	return nil
}
