package render

import (
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func newTestFramebuffer(t testing.TB, w, h int) *Framebuffer {
	t.Helper()
	fb, err := NewFramebuffer(w, h, RGB(0.1, 0.2, 0.3))
	if err != nil {
		t.Fatal(err)
	}
	return fb
}

func TestNewFramebufferInvalidSize(t *testing.T) {
	for _, sz := range [][2]int{{0, 4}, {4, 0}, {-1, -1}} {
		if _, err := NewFramebuffer(sz[0], sz[1], Black); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("NewFramebuffer(%d, %d) err = %v, want ErrInvalidSize", sz[0], sz[1], err)
		}
	}
}

func TestFramebufferClear(t *testing.T) {
	fb := newTestFramebuffer(t, 7, 5)
	for y := range fb.Height {
		for x := range fb.Width {
			fb.SetPixel(x, y, White, 0.5)
		}
	}
	fb.Clear()
	for y := range fb.Height {
		for x := range fb.Width {
			if fb.Pixel(x, y) != fb.Background {
				t.Fatalf("pixel (%d,%d) = %v, want background", x, y, fb.Pixel(x, y))
			}
			if fb.Depth(x, y) != FarDepth {
				t.Fatalf("depth (%d,%d) = %v, want far", x, y, fb.Depth(x, y))
			}
		}
	}
}

func TestFramebufferBounds(t *testing.T) {
	fb := newTestFramebuffer(t, 4, 3)
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 3}, {100, 100}} {
		if fb.SetPixel(p[0], p[1], White, 0) {
			t.Errorf("SetPixel(%d,%d) reported a write", p[0], p[1])
		}
		if fb.TestAndSetDepth(p[0], p[1], -1) {
			t.Errorf("TestAndSetDepth(%d,%d) reported a write", p[0], p[1])
		}
		if fb.Pixel(p[0], p[1]) != fb.Background || fb.Depth(p[0], p[1]) != FarDepth {
			t.Errorf("out-of-bounds read at (%d,%d) did not return defaults", p[0], p[1])
		}
	}
}

func TestTestAndSetDepthStrict(t *testing.T) {
	fb := newTestFramebuffer(t, 2, 2)
	if !fb.TestAndSetDepth(1, 1, 0.5) {
		t.Fatal("first write rejected")
	}
	if fb.TestAndSetDepth(1, 1, 0.5) {
		t.Error("equal depth accepted")
	}
	if fb.TestAndSetDepth(1, 1, 0.7) {
		t.Error("farther depth accepted")
	}
	if !fb.TestAndSetDepth(1, 1, 0.2) || fb.Depth(1, 1) != 0.2 {
		t.Error("nearer depth rejected")
	}
}

func TestWrapFramebuffer(t *testing.T) {
	if _, err := WrapFramebuffer(make([]Color, 6), make([]float64, 5), 3, 2, Black); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("err = %v, want ErrSizeMismatch", err)
	}
	fb, err := WrapFramebuffer(make([]Color, 6), make([]float64, 6), 3, 2, Black)
	if err != nil {
		t.Fatal(err)
	}
	fb.SetPixel(2, 1, White, 0)
	if fb.Colors()[5] != White {
		t.Error("wrapped grid not shared")
	}
}

func TestCopyToSizeMismatch(t *testing.T) {
	fb := newTestFramebuffer(t, 4, 4)
	if err := fb.CopyTo(image.NewRGBA(image.Rect(0, 0, 4, 5))); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("err = %v, want ErrSizeMismatch", err)
	}
}

func TestScaledAndSavePNG(t *testing.T) {
	fb := newTestFramebuffer(t, 4, 3)
	fb.SetPixel(0, 0, White, 0)

	img, err := fb.Scaled(8, 6)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 6 {
		t.Fatalf("scaled bounds = %v", img.Bounds())
	}
	if img.RGBAAt(1, 1) != White.RGBA() {
		t.Errorf("upscaled pixel = %v, want white", img.RGBAAt(1, 1))
	}

	path := filepath.Join(t.TempDir(), "frame.png")
	if err := fb.SavePNG(path, 2); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Bounds().Dx() != 8 || decoded.Bounds().Dy() != 6 {
		t.Errorf("png bounds = %v", decoded.Bounds())
	}
}

func BenchmarkFramebufferClear(b *testing.B) {
	fb := newTestFramebuffer(b, 320, 180)
	for b.Loop() {
		fb.Clear()
	}
}
