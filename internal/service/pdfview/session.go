package pdfview

import (
	"context"
	"fmt"
	"math"
	"sync"

	"library/internal/config"
	"library/internal/domain"
)

// ErrStaleGeneration is returned for overlay requests made against a page or scale
// that has since changed. It matches domain.ErrConflict.
var ErrStaleGeneration = fmt.Errorf("overlay generation is stale: %w", domain.ErrConflict)

// PageChangeFunc is called after the session moves to another page
type PageChangeFunc func(ctx context.Context, page int)

// View is the state a client renders: one page at one scale with its overlays
type View struct {
	Page       int       `json:"page"`
	Pages      int       `json:"pages"`
	Scale      float64   `json:"scale"`
	Generation uint64    `json:"generation"`
	Overlays   []Overlay `json:"overlays"`
}

// Session is one open document in the viewer. Every page or scale change discards
// the overlay set and builds a new one under a new generation, so overlays computed
// for an old scale can never be served for the new one.
type Session struct {
	doc *Document

	mu         sync.Mutex
	page       int
	scale      float64
	generation uint64
	overlays   []Overlay

	onPageChange PageChangeFunc
}

// NewSession opens doc at page (clamped to the document) and the default zoom.
// onPageChange, when set, is called after every page change.
func NewSession(doc *Document, page int, onPageChange PageChangeFunc) (*Session, error) {
	if doc == nil || doc.NumPages() == 0 {
		return nil, fmt.Errorf("%w: document has no pages", ErrNotPDF)
	}
	s := &Session{
		doc:          doc,
		page:         clampPage(page, doc.NumPages()),
		scale:        config.DefaultZoom,
		onPageChange: onPageChange,
	}
	s.rebuild()
	return s, nil
}

// View returns the current page, scale and overlays
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

// Overlays returns the overlay set for generation, or ErrStaleGeneration when the
// page or scale has changed since
func (s *Session) Overlays(generation uint64) ([]Overlay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return nil, ErrStaleGeneration
	}
	return append([]Overlay(nil), s.overlays...), nil
}

// GoTo shows page n
func (s *Session) GoTo(ctx context.Context, n int) (View, error) {
	s.mu.Lock()
	if n < 1 || n > s.doc.NumPages() {
		s.mu.Unlock()
		return View{}, &domain.ValidationError{
			Field:   "page",
			Message: fmt.Sprintf("page must be between 1 and %d", s.doc.NumPages()),
		}
	}
	changed := n != s.page
	s.page = n
	s.rebuild()
	v := s.view()
	s.mu.Unlock()

	if changed && s.onPageChange != nil {
		s.onPageChange(ctx, n)
	}
	return v, nil
}

// Next moves one page forward; on the last page it changes nothing
func (s *Session) Next(ctx context.Context) View {
	return s.step(ctx, 1)
}

// Prev moves one page back; on the first page it changes nothing
func (s *Session) Prev(ctx context.Context) View {
	return s.step(ctx, -1)
}

// ZoomIn raises the scale by one step up to the maximum
func (s *Session) ZoomIn() View {
	return s.zoom(config.ZoomStep)
}

// ZoomOut lowers the scale by one step down to the minimum
func (s *Session) ZoomOut() View {
	return s.zoom(-config.ZoomStep)
}

// SetScale sets the scale directly; it must lie within the zoom bounds
func (s *Session) SetScale(scale float64) (View, error) {
	if err := ValidateScale(scale); err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scale = scale
	s.rebuild()
	return s.view(), nil
}

// Navigation actions accepted by Apply
const (
	ActionGoTo    = "goto"
	ActionNext    = "next"
	ActionPrev    = "prev"
	ActionZoomIn  = "zoom_in"
	ActionZoomOut = "zoom_out"
	ActionScale   = "scale"
)

// Action is one viewer navigation step. Page is read by goto, Scale by scale.
type Action struct {
	Op    string  `json:"action"`
	Page  int     `json:"page,omitempty"`
	Scale float64 `json:"scale,omitempty"`
}

// Apply performs a navigation action and returns the resulting view
func (s *Session) Apply(ctx context.Context, a Action) (View, error) {
	switch a.Op {
	case ActionGoTo:
		return s.GoTo(ctx, a.Page)
	case ActionNext:
		return s.Next(ctx), nil
	case ActionPrev:
		return s.Prev(ctx), nil
	case ActionZoomIn:
		return s.ZoomIn(), nil
	case ActionZoomOut:
		return s.ZoomOut(), nil
	case ActionScale:
		return s.SetScale(a.Scale)
	default:
		return View{}, &domain.ValidationError{
			Field:   "action",
			Message: fmt.Sprintf("unknown action %q", a.Op),
		}
	}
}

// ValidateScale reports whether scale is within the zoom bounds
func ValidateScale(scale float64) error {
	if math.IsNaN(scale) || scale < config.MinZoom || scale > config.MaxZoom {
		return &domain.ValidationError{
			Field:   "scale",
			Message: fmt.Sprintf("scale must be between %.2f and %.2f", config.MinZoom, config.MaxZoom),
		}
	}
	return nil
}

func (s *Session) step(ctx context.Context, delta int) View {
	s.mu.Lock()
	next := clampPage(s.page+delta, s.doc.NumPages())
	if next == s.page {
		v := s.view()
		s.mu.Unlock()
		return v
	}
	s.page = next
	s.rebuild()
	v := s.view()
	s.mu.Unlock()

	if s.onPageChange != nil {
		s.onPageChange(ctx, next)
	}
	return v
}

func (s *Session) zoom(delta float64) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := math.Min(config.MaxZoom, math.Max(config.MinZoom, s.scale+delta))
	if next != s.scale {
		s.scale = next
		s.rebuild()
	}
	return s.view()
}

// rebuild replaces the overlay set for the current page and scale. Callers hold mu.
func (s *Session) rebuild() {
	p := &s.doc.Pages[s.page-1]
	s.generation++
	s.overlays = Overlays(p.Links, p.Height, s.scale)
}

// view snapshots the state. Callers hold mu.
func (s *Session) view() View {
	return View{
		Page:       s.page,
		Pages:      s.doc.NumPages(),
		Scale:      s.scale,
		Generation: s.generation,
		Overlays:   append([]Overlay(nil), s.overlays...),
	}
}

func clampPage(page, pages int) int {
	if page < 1 {
		return 1
	}
	if page > pages {
		return pages
	}
	return page
}
