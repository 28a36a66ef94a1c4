// Package render implements the software rasterization core of orrery: the
// vertex transform stage, the triangle rasterizer with depth testing, the
// shading contract and the framebuffer that is handed to the display.
package render

import (
	"errors"
	"fmt"
	"math"
)

// FarDepth is the depth every cell is reset to on Clear.
const FarDepth = math.MaxFloat64

var (
	// ErrInvalidSize is returned for non-positive framebuffer dimensions.
	ErrInvalidSize = errors.New("invalid framebuffer size")
	// ErrSizeMismatch is returned when two grids that must agree in size do not.
	ErrSizeMismatch = errors.New("buffer size mismatch")
)

// Framebuffer owns the color grid and the depth grid of one frame. Both
// grids are row-major and always Width*Height long.
type Framebuffer struct {
	Width      int
	Height     int
	Background Color

	color []Color
	depth []float64
}

// NewFramebuffer allocates a cleared framebuffer.
func NewFramebuffer(width, height int, background Color) (*Framebuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("new framebuffer %dx%d: %w", width, height, ErrInvalidSize)
	}
	fb := &Framebuffer{
		Width:      width,
		Height:     height,
		Background: background,
		color:      make([]Color, width*height),
		depth:      make([]float64, width*height),
	}
	fb.Clear()
	Logger().Info("framebuffer created", "width", width, "height", height)
	return fb, nil
}

// WrapFramebuffer builds a framebuffer over caller-owned grids. The grids are
// not cleared.
func WrapFramebuffer(colors []Color, depth []float64, width, height int, background Color) (*Framebuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("wrap framebuffer %dx%d: %w", width, height, ErrInvalidSize)
	}
	if len(colors) != width*height || len(depth) != width*height {
		return nil, fmt.Errorf("wrap framebuffer %dx%d: color %d, depth %d: %w",
			width, height, len(colors), len(depth), ErrSizeMismatch)
	}
	return &Framebuffer{
		Width:      width,
		Height:     height,
		Background: background,
		color:      colors,
		depth:      depth,
	}, nil
}

// Clear resets every color cell to the background and every depth cell to
// FarDepth.
func (fb *Framebuffer) Clear() {
	n := len(fb.color)
	if n == 0 {
		return
	}
	// copy-doubling fill
	fb.color[0] = fb.Background
	fb.depth[0] = FarDepth
	for i := 1; i < n; i *= 2 {
		copy(fb.color[i:], fb.color[:i])
		copy(fb.depth[i:], fb.depth[:i])
	}
}

// InBounds reports whether (x, y) addresses a cell.
func (fb *Framebuffer) InBounds(x, y int) bool {
	return x >= 0 && x < fb.Width && y >= 0 && y < fb.Height
}

// SetPixel writes color and depth at (x, y) unconditionally. Writes outside
// the grid are ignored and reported as false.
func (fb *Framebuffer) SetPixel(x, y int, c Color, depth float64) bool {
	if !fb.InBounds(x, y) {
		return false
	}
	i := y*fb.Width + x
	fb.color[i] = c
	fb.depth[i] = depth
	return true
}

// SetColor writes only the color at (x, y).
func (fb *Framebuffer) SetColor(x, y int, c Color) bool {
	if !fb.InBounds(x, y) {
		return false
	}
	fb.color[y*fb.Width+x] = c
	return true
}

// TestAndSetDepth stores depth at (x, y) if it is strictly closer than the
// stored value and reports whether it did.
func (fb *Framebuffer) TestAndSetDepth(x, y int, depth float64) bool {
	if !fb.InBounds(x, y) {
		return false
	}
	i := y*fb.Width + x
	if !(depth < fb.depth[i]) {
		return false
	}
	fb.depth[i] = depth
	return true
}

// Pixel returns the color at (x, y), or the background outside the grid.
func (fb *Framebuffer) Pixel(x, y int) Color {
	if !fb.InBounds(x, y) {
		return fb.Background
	}
	return fb.color[y*fb.Width+x]
}

// Depth returns the depth at (x, y), or FarDepth outside the grid.
func (fb *Framebuffer) Depth(x, y int) float64 {
	if !fb.InBounds(x, y) {
		return FarDepth
	}
	return fb.depth[y*fb.Width+x]
}

// Colors returns the live color grid, row-major. It must not be read while a
// frame is being rasterized.
func (fb *Framebuffer) Colors() []Color {
	return fb.color
}

// DepthGrid returns the live depth grid, row-major.
func (fb *Framebuffer) DepthGrid() []float64 {
	return fb.depth
}
