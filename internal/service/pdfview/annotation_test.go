package pdfview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapAnnotation(t *testing.T) {
	tests := []struct {
		name   string
		rect   Rect
		height float64
		scale  float64
		want   ScreenRect
	}{
		{
			name:   "unit scale",
			rect:   Rect{X1: 100, Y1: 700, X2: 200, Y2: 750},
			height: 800,
			scale:  1,
			want:   ScreenRect{Left: 100, Top: 50, Width: 100, Height: 50},
		},
		{
			name:   "doubled",
			rect:   Rect{X1: 100, Y1: 700, X2: 200, Y2: 750},
			height: 800,
			scale:  2,
			want:   ScreenRect{Left: 200, Top: 100, Width: 200, Height: 100},
		},
		{
			name:   "default zoom",
			rect:   Rect{X1: 0, Y1: 0, X2: 612, Y2: 792},
			height: 792,
			scale:  1.5,
			want:   ScreenRect{Left: 0, Top: 0, Width: 918, Height: 1188},
		},
		{
			name:   "inverted corners",
			rect:   Rect{X1: 200, Y1: 750, X2: 100, Y2: 700},
			height: 800,
			scale:  1,
			want:   ScreenRect{Left: 100, Top: 50, Width: 100, Height: 50},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapAnnotation(tt.rect, tt.height, tt.scale)
			assert.InDelta(t, tt.want.Left, got.Left, 1e-9)
			assert.InDelta(t, tt.want.Top, got.Top, 1e-9)
			assert.InDelta(t, tt.want.Width, got.Width, 1e-9)
			assert.InDelta(t, tt.want.Height, got.Height, 1e-9)
		})
	}
}

func TestOverlays_TargetOverlay(t *testing.T) {
	overlays := Overlays([]Link{
		{Rect: Rect{X1: 1, Y1: 1, X2: 2, Y2: 2}, URL: "https://a.example"},
		{Rect: Rect{X1: 3, Y1: 3, X2: 4, Y2: 4}, URL: "https://b.example"},
	}, 10, 1)

	assert.Len(t, overlays, 2)
	for _, o := range overlays {
		assert.Equal(t, OverlayTarget, o.Target)
	}
	assert.Equal(t, "https://b.example", overlays[1].URL)
}
