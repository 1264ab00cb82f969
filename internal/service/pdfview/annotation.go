// Package pdfview computes clickable link overlays for rendered PDF pages.
//
// PDF user space has its origin at the bottom-left of the page with y growing up;
// the screen has its origin at the top-left with y growing down. Overlays are
// positioned in CSS pixels of the rendered page at the current scale.
package pdfview

import "math"

// OverlayTarget is where every overlay link opens. Links open in the in-app overlay
// frame, never by navigating the host page.
const OverlayTarget = "overlay"

// Rect is an annotation rectangle in PDF user space: [x1 y1 x2 y2]
type Rect struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Normalize orders the corners so X1<=X2 and Y1<=Y2. PDF writers are free to
// store any two opposite corners.
func (r Rect) Normalize() Rect {
	return Rect{
		X1: math.Min(r.X1, r.X2),
		Y1: math.Min(r.Y1, r.Y2),
		X2: math.Max(r.X1, r.X2),
		Y2: math.Max(r.Y1, r.Y2),
	}
}

// ScreenRect is an absolutely positioned box on the rendered page
type ScreenRect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MapAnnotation converts an annotation rectangle to screen coordinates for a page of
// the given height rendered at scale.
func MapAnnotation(r Rect, pageHeight, scale float64) ScreenRect {
	r = r.Normalize()
	return ScreenRect{
		Left:   r.X1 * scale,
		Top:    (pageHeight - r.Y2) * scale,
		Width:  (r.X2 - r.X1) * scale,
		Height: (r.Y2 - r.Y1) * scale,
	}
}

// Link is a URI link annotation on a page
type Link struct {
	Rect Rect   `json:"rect"`
	URL  string `json:"url"`
}

// Overlay is a clickable box drawn over a rendered page
type Overlay struct {
	Rect   ScreenRect `json:"rect"`
	URL    string     `json:"url"`
	Target string     `json:"target"`
}

// Overlays maps every link on a page of the given height to an overlay at scale
func Overlays(links []Link, pageHeight, scale float64) []Overlay {
	out := make([]Overlay, 0, len(links))
	for _, l := range links {
		out = append(out, Overlay{
			Rect:   MapAnnotation(l.Rect, pageHeight, scale),
			URL:    l.URL,
			Target: OverlayTarget,
		})
	}
	return out
}
