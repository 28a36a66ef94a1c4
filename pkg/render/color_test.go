package render

import (
	"image/color"
	"math"
	"testing"
)

func TestColorClamps(t *testing.T) {
	tests := []struct {
		name string
		got  Color
		want Color
	}{
		{"add saturates", RGB(0.8, 0.5, 0.1).Add(RGB(0.5, 0.6, 0.2)), Color{1, 1, 0.30000000000000004}},
		{"sub floors", RGB(0.2, 0.5, 0.9).Sub(RGB(0.5, 0.1, 0.9)), Color{0, 0.4, 0}},
		{"scale up", RGB(0.4, 0.6, 0.2).Scale(3), Color{1, 1, 0.6000000000000001}},
		{"scale negative", White.Scale(-1), Black},
		{"nan", RGB(math.NaN(), 0.5, math.Inf(1)), Color{0, 0.5, 1}},
		{"mul", RGB(0.5, 1, 0).Mul(RGB(0.5, 0.5, 1)), Color{0.25, 0.5, 0}},
		{"lerp", Black.Lerp(White, 0.25), Color{0.25, 0.25, 0.25}},
		{"lerp past end", Black.Lerp(White, 4), White},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if math.Abs(tc.got.R-tc.want.R) > 1e-12 || math.Abs(tc.got.G-tc.want.G) > 1e-12 || math.Abs(tc.got.B-tc.want.B) > 1e-12 {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}
}

func TestColorRGBA(t *testing.T) {
	tests := []struct {
		in   Color
		want color.RGBA
	}{
		{Black, color.RGBA{0, 0, 0, 255}},
		{White, color.RGBA{255, 255, 255, 255}},
		{Color{0.5, 0.25, 1}, color.RGBA{128, 64, 255, 255}},
		{Color{2, -1, math.NaN()}, color.RGBA{255, 0, 0, 255}},
	}
	for _, tc := range tests {
		if got := tc.in.RGBA(); got != tc.want {
			t.Errorf("%v.RGBA() = %v, want %v", tc.in, got, tc.want)
		}
	}
	if got := FromRGBA(color.RGBA{255, 0, 51, 255}); got != (Color{1, 0, 0.2}) {
		t.Errorf("FromRGBA = %v", got)
	}
	if got := Hex(0xff0000); got != (Color{1, 0, 0}) {
		t.Errorf("Hex = %v", got)
	}
}

func TestLuminance(t *testing.T) {
	if l := White.Luminance(); math.Abs(l-1) > 1e-12 {
		t.Errorf("white luminance = %v", l)
	}
	if Black.Luminance() != 0 {
		t.Error("black luminance is not zero")
	}
	if RGB(0, 1, 0).Luminance() <= RGB(0, 0, 1).Luminance() {
		t.Error("green should be brighter than blue")
	}
}
