package postfx

import (
	"fmt"
	"math"

	"github.com/taigrr/orrery/pkg/render"
)

// Bloom makes bright pixels glow: pixels above Threshold luminance are
// extracted, blurred, scaled by Strength and added back.
type Bloom struct {
	Threshold float64
	Radius    int
	Sigma     float64
	Strength  float64

	bright  *Grid
	blurred *Grid
	scratch *Grid
}

// DefaultBloom returns the stock settings.
func DefaultBloom() *Bloom {
	return &Bloom{Threshold: 0.8, Radius: 10, Sigma: 2.5, Strength: 0.8}
}

// Extract writes the pixels of src whose luminance exceeds threshold into
// dst and zeroes the rest.
func Extract(dst, src *Grid, threshold float64) error {
	if err := sameSize(dst, src); err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	for i, c := range src.Pix {
		if c.Luminance() > threshold {
			dst.Pix[i] = c
		} else {
			dst.Pix[i] = render.Black
		}
	}
	return nil
}

// Composite adds glow scaled by strength onto dst, clamping each pixel.
func Composite(dst, glow *Grid, strength float64) error {
	if err := sameSize(dst, glow); err != nil {
		return fmt.Errorf("composite: %w", err)
	}
	if strength <= 0 || math.IsNaN(strength) {
		return nil
	}
	for i, g := range glow.Pix {
		dst.Pix[i] = dst.Pix[i].Add(g.Scale(strength))
	}
	return nil
}

func (b *Bloom) ensure(w, h int) {
	if b.bright == nil || b.bright.Width != w || b.bright.Height != h {
		b.bright = NewGrid(w, h)
		b.blurred = NewGrid(w, h)
		b.scratch = NewGrid(w, h)
	}
}

// Process writes the bloomed version of src into dst. src is not modified
// unless it is dst.
func (b *Bloom) Process(dst, src *Grid) error {
	if err := sameSize(dst, src); err != nil {
		return fmt.Errorf("bloom: %w", err)
	}
	if dst != src {
		copy(dst.Pix, src.Pix)
	}
	// Luminance never exceeds 1, so nothing can be extracted.
	if b.Threshold >= 1 || b.Strength <= 0 {
		return nil
	}
	b.ensure(src.Width, src.Height)
	if err := Extract(b.bright, src, b.Threshold); err != nil {
		return err
	}
	if err := BlurSeparable(b.blurred, b.bright, b.scratch, GaussianKernel(b.Radius, b.Sigma)); err != nil {
		return err
	}
	return Composite(dst, b.blurred, b.Strength)
}

// Apply blooms the framebuffer's color grid in place. It must run after the
// frame's rasterization has finished.
func (b *Bloom) Apply(fb *render.Framebuffer) error {
	g := &Grid{Width: fb.Width, Height: fb.Height, Pix: fb.Colors()}
	return b.Process(g, g)
}
