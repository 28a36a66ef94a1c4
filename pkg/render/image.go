package render

import (
	"fmt"
	"image"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// ToImage converts the color grid to an image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	_ = fb.CopyTo(img)
	return img
}

// CopyTo writes the color grid into dst, which must have the same size.
func (fb *Framebuffer) CopyTo(dst *image.RGBA) error {
	b := dst.Bounds()
	if b.Dx() != fb.Width || b.Dy() != fb.Height {
		return fmt.Errorf("copy %dx%d framebuffer to %dx%d image: %w",
			fb.Width, fb.Height, b.Dx(), b.Dy(), ErrSizeMismatch)
	}
	for y := range fb.Height {
		row := fb.color[y*fb.Width : (y+1)*fb.Width]
		for x, c := range row {
			dst.SetRGBA(b.Min.X+x, b.Min.Y+y, c.RGBA())
		}
	}
	return nil
}

// Scaled returns the image resized to width x height. Upscaling uses
// nearest neighbor so pixels stay crisp; downscaling uses Catmull-Rom.
func (fb *Framebuffer) Scaled(width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("scale to %dx%d: %w", width, height, ErrInvalidSize)
	}
	src := fb.ToImage()
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	var interp xdraw.Interpolator = xdraw.CatmullRom
	if width >= fb.Width && height >= fb.Height {
		interp = xdraw.NearestNeighbor
	}
	interp.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst, nil
}

// SavePNG writes the framebuffer to path as a PNG, upscaled by scale.
func (fb *Framebuffer) SavePNG(path string, scale int) error {
	img := fb.ToImage()
	if scale > 1 {
		var err error
		img, err = fb.Scaled(fb.Width*scale, fb.Height*scale)
		if err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode png %s: %w", path, err)
	}
	return f.Close()
}
